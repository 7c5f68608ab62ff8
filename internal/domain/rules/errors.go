package rules

import (
	"errors"
	"fmt"
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrAuthorizationDenied    = errors.New("authorization denied")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrValidation             = errors.New("validation error")
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
)

var (
	// ErrNoCapability is returned when a principal without any user type or role
	// attempts to create content. It matches ErrAuthorizationDenied as well.
	ErrNoCapability = &scopedError{msg: "no capability held", parent: ErrAuthorizationDenied}
	// ErrAccountInactive is returned for suspended or rejected accounts.
	ErrAccountInactive = &scopedError{msg: "account is not active", parent: ErrAuthorizationDenied}

	ErrEmptyRequest   = &scopedError{msg: "no user types requested", parent: ErrValidation}
	ErrAlreadyGranted = &scopedError{msg: "requested user types already granted", parent: ErrConflict}
	ErrPendingRequest = &scopedError{msg: "an access request is already pending", parent: ErrConflict}
)

type scopedError struct {
	msg    string
	parent error
}

func (e *scopedError) Error() string { return e.msg }

func (e *scopedError) Unwrap() error { return e.parent }

type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s is invalid", e.Field)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// TransitionError reports a state change the lifecycle does not allow.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
