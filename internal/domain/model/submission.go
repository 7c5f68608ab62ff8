package model

import (
	"encoding/json"
	"time"

	"github.com/zilaportal/portal/internal/domain/enums"
)

// Submission is the stored envelope shared by every submittable kind. The
// kind specific fields live in Data as JSON.
type Submission struct {
	ID          string                `json:"id"`
	Kind        enums.SubmittableKind `json:"kind"`
	OwnerID     string                `json:"ownerId"`
	UpazilaID   *string               `json:"upazilaId,omitempty"`
	Category    string                `json:"category,omitempty"`
	Status      enums.ContentStatus   `json:"status"`
	Slug        string                `json:"slug,omitempty"`
	PublishedAt *time.Time            `json:"publishedAt,omitempty"`
	ReviewedBy  *string               `json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time            `json:"reviewedAt,omitempty"`
	Data        json.RawMessage       `json:"-"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

type SubmissionFilter struct {
	Kind      enums.SubmittableKind
	Statuses  []enums.ContentStatus
	OwnerID   string
	UpazilaID string
	Category  string
	Limit     int
	Offset    int
}

// Review describes a moderation decision applied to a pending item.
type Review struct {
	To         enums.ContentStatus
	ReviewerID string
	At         time.Time
	// StampPublished sets PublishedAt when it is still empty.
	StampPublished bool
}
