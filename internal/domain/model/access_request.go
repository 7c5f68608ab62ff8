package model

import (
	"time"

	"github.com/zilaportal/portal/internal/domain/enums"
)

type AccessRequest struct {
	ID                 string              `json:"id"`
	UserID             string              `json:"userId"`
	RequestedUserTypes []enums.UserType    `json:"requestedUserTypes"`
	Note               string              `json:"note,omitempty"`
	Status             enums.ContentStatus `json:"status"`
	AdminNote          string              `json:"adminNote,omitempty"`
	ReviewedBy         *string             `json:"reviewedBy,omitempty"`
	ReviewedAt         *time.Time          `json:"reviewedAt,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

func (r AccessRequest) IsPending() bool {
	return r.Status == enums.ContentStatusPending
}

type AccessRequestFilter struct {
	UserID string
	Status *enums.ContentStatus
	Limit  int
	Offset int
}

// AccessDecision is applied atomically to a pending request. When the
// decision approves, the requested types are merged into the user.
type AccessDecision struct {
	To         enums.ContentStatus
	AdminNote  string
	ReviewerID string
	At         time.Time
}
