package enums

import "strings"

// ApprovalStatus is the lifecycle state of a user account.
type ApprovalStatus string

const (
	ApprovalStatusPending   ApprovalStatus = "PENDING"
	ApprovalStatusApproved  ApprovalStatus = "APPROVED"
	ApprovalStatusRejected  ApprovalStatus = "REJECTED"
	ApprovalStatusSuspended ApprovalStatus = "SUSPENDED"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected, ApprovalStatusSuspended:
		return true
	default:
		return false
	}
}

func ParseApprovalStatus(raw string) (ApprovalStatus, bool) {
	s := ApprovalStatus(strings.ToUpper(strings.TrimSpace(raw)))
	return s, s.Valid()
}

// ContentStatus is shared by submittable content and access requests.
type ContentStatus string

const (
	ContentStatusPending  ContentStatus = "PENDING"
	ContentStatusApproved ContentStatus = "APPROVED"
	ContentStatusRejected ContentStatus = "REJECTED"
)

func (s ContentStatus) Valid() bool {
	switch s {
	case ContentStatusPending, ContentStatusApproved, ContentStatusRejected:
		return true
	default:
		return false
	}
}

func (s ContentStatus) Terminal() bool {
	return s == ContentStatusApproved || s == ContentStatusRejected
}

func ParseContentStatus(raw string) (ContentStatus, bool) {
	s := ContentStatus(strings.ToUpper(strings.TrimSpace(raw)))
	return s, s.Valid()
}
