package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/zilaportal/portal/internal/domain/model"
)

// envelopeFields are server owned and ignored when they appear in a request
// body, so clients can send back what they fetched.
var envelopeFields = []string{
	"id",
	"kind",
	"ownerId",
	"category",
	"status",
	"slug",
	"publishedAt",
	"reviewedBy",
	"reviewedAt",
	"createdAt",
	"updatedAt",
}

// Submission renders the stored envelope merged with the kind specific
// fields into one flat object.
type Submission model.Submission

func (s Submission) MarshalJSON() ([]byte, error) {
	merged := make(map[string]json.RawMessage)
	if len(s.Data) > 0 {
		if err := json.Unmarshal(s.Data, &merged); err != nil {
			return nil, fmt.Errorf("decode submission data: %w", err)
		}
	}

	envelope, err := json.Marshal(model.Submission(s))
	if err != nil {
		return nil, err
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(envelope, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

func Submissions(items []model.Submission) ListResponse[Submission] {
	out := make([]Submission, 0, len(items))
	for _, item := range items {
		out = append(out, Submission(item))
	}
	return ListResponse[Submission]{Items: out}
}

// SubmissionBody is a flat request body split into the upazila reference and
// the remaining payload fields.
type SubmissionBody struct {
	UpazilaID *string
	Payload   json.RawMessage
}

// SplitSubmissionBody pulls upazilaId out of raw and drops envelope fields.
// An empty upazilaId clears the reference.
func SplitSubmissionBody(raw []byte) (SubmissionBody, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return SubmissionBody{}, err
	}
	if fields == nil {
		return SubmissionBody{}, fmt.Errorf("body must be a json object")
	}

	var body SubmissionBody
	if rawID, ok := fields["upazilaId"]; ok {
		delete(fields, "upazilaId")
		if !bytes.Equal(bytes.TrimSpace(rawID), []byte("null")) {
			var id string
			if err := json.Unmarshal(rawID, &id); err != nil {
				return SubmissionBody{}, fmt.Errorf("upazilaId must be a string")
			}
			if id != "" {
				body.UpazilaID = &id
			}
		}
	}
	for _, name := range envelopeFields {
		delete(fields, name)
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		return SubmissionBody{}, err
	}
	body.Payload = payload
	return body, nil
}
