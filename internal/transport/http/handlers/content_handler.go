package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zilaportal/portal/internal/domain/enums"
	"github.com/zilaportal/portal/internal/domain/model"
	"github.com/zilaportal/portal/internal/domain/rules"
	contentsvc "github.com/zilaportal/portal/internal/services/content"
	"github.com/zilaportal/portal/internal/transport/http/dto"
	httperrors "github.com/zilaportal/portal/internal/transport/http/errors"
)

// ContentHandler serves one submittable kind. The same handler type is
// mounted once per kind.
type ContentHandler struct {
	service *contentsvc.Service
	spec    contentsvc.KindSpec
	log     *zap.Logger
}

func NewContentHandler(service *contentsvc.Service, spec contentsvc.KindSpec, log *zap.Logger) *ContentHandler {
	return &ContentHandler{service: service, spec: spec, log: log}
}

func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CONTENT_SERVICE_UNAVAILABLE", "content service is unavailable")
		return
	}

	query, ok := h.listQuery(w, r)
	if !ok {
		return
	}
	items, err := h.service.List(r.Context(), principal(r), h.spec.Kind, query)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.Submissions(items))
}

func (h *ContentHandler) Pending(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CONTENT_SERVICE_UNAVAILABLE", "content service is unavailable")
		return
	}

	query, ok := h.listQuery(w, r)
	if !ok {
		return
	}
	items, err := h.service.Pending(r.Context(), principal(r), h.spec.Kind, query)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.Submissions(items))
}

func (h *ContentHandler) Mine(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CONTENT_SERVICE_UNAVAILABLE", "content service is unavailable")
		return
	}

	query, ok := h.listQuery(w, r)
	if !ok {
		return
	}
	items, err := h.service.Mine(r.Context(), principal(r), h.spec.Kind, query)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.Submissions(items))
}

func (h *ContentHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CONTENT_SERVICE_UNAVAILABLE", "content service is unavailable")
		return
	}

	sub, err := h.service.Get(r.Context(), principal(r), h.spec.Kind, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.Submission(sub))
}

func (h *ContentHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CONTENT_SERVICE_UNAVAILABLE", "content service is unavailable")
		return
	}

	sub, err := h.service.GetBySlug(r.Context(), principal(r), h.spec.Kind, chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.Submission(sub))
}

func (h *ContentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CONTENT_SERVICE_UNAVAILABLE", "content service is unavailable")
		return
	}

	if err := h.service.CanSubmit(principal(r), h.spec.Kind); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	sub, err := h.service.Submit(r.Context(), principal(r), h.spec.Kind, in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusCreated, dto.Submission(sub))
}

func (h *ContentHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CONTENT_SERVICE_UNAVAILABLE", "content service is unavailable")
		return
	}

	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	sub, err := h.service.Update(r.Context(), principal(r), h.spec.Kind, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.Submission(sub))
}

func (h *ContentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CONTENT_SERVICE_UNAVAILABLE", "content service is unavailable")
		return
	}

	if err := h.service.Delete(r.Context(), principal(r), h.spec.Kind, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *ContentHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.service.Approve)
}

func (h *ContentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.service.Reject)
}

type reviewFunc func(context.Context, rules.Principal, enums.SubmittableKind, string) (model.Submission, error)

func (h *ContentHandler) review(w http.ResponseWriter, r *http.Request, apply reviewFunc) {
	if h.service == nil {
		writeInternal(w, "CONTENT_SERVICE_UNAVAILABLE", "content service is unavailable")
		return
	}

	sub, err := apply(r.Context(), principal(r), h.spec.Kind, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.Submission(sub))
}

func (h *ContentHandler) listQuery(w http.ResponseWriter, r *http.Request) (contentsvc.ListQuery, bool) {
	status, ok := contentStatusParam(r)
	if !ok {
		writeBadRequest(w, httperrors.CodeValidation, "unknown status")
		return contentsvc.ListQuery{}, false
	}

	q := r.URL.Query()
	limit, offset := pageParams(r)
	query := contentsvc.ListQuery{
		UpazilaID: strings.TrimSpace(q.Get("upazilaId")),
		Status:    status,
		Limit:     limit,
		Offset:    offset,
	}
	if h.spec.CategoryParam != "" {
		query.Category = strings.ToUpper(strings.TrimSpace(q.Get(h.spec.CategoryParam)))
	}
	return query, true
}

// decodeInput reads a flat body and strictly decodes the kind specific
// fields into a fresh payload.
func (h *ContentHandler) decodeInput(w http.ResponseWriter, r *http.Request) (contentsvc.Input, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeBadRequest(w, httperrors.CodeInvalidRequest, "invalid request body")
		return contentsvc.Input{}, false
	}

	body, err := dto.SplitSubmissionBody(raw)
	if err != nil {
		writeBadRequest(w, httperrors.CodeInvalidRequest, "invalid request body")
		return contentsvc.Input{}, false
	}

	payload := h.spec.NewPayload()
	decoder := json.NewDecoder(bytes.NewReader(body.Payload))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		writeBadRequest(w, httperrors.CodeInvalidRequest, "invalid "+string(h.spec.Kind)+" body: "+err.Error())
		return contentsvc.Input{}, false
	}

	return contentsvc.Input{UpazilaID: body.UpazilaID, Payload: payload}, true
}
