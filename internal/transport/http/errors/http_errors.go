package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/zilaportal/portal/internal/domain/rules"
	authsvc "github.com/zilaportal/portal/internal/services/auth"
)

const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeNoCapability      = "NO_CAPABILITY"
	CodeAccountInactive   = "ACCOUNT_INACTIVE"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeAlreadyGranted    = "ALREADY_GRANTED"
	CodeRequestPending    = "REQUEST_PENDING"
	CodeRateLimited       = "RATE_LIMITED"
	CodeInternal          = "INTERNAL_ERROR"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type RateLimitError struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	RetryAfterSec int64  `json:"retryAfterSec"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// FromError maps a domain error to its HTTP status and body. Unknown errors
// become a 500 without leaking their text.
func FromError(err error) (int, APIError) {
	var (
		verr *rules.ValidationError
		terr *rules.TransitionError
	)
	switch {
	case err == nil:
		return http.StatusOK, APIError{}
	case stderrors.As(err, &verr):
		return http.StatusBadRequest, APIError{Code: CodeValidation, Message: verr.Error(), Field: verr.Field}
	case stderrors.Is(err, rules.ErrEmptyRequest):
		return http.StatusBadRequest, APIError{Code: CodeValidation, Message: rules.ErrEmptyRequest.Error(), Field: "requestedUserTypes"}
	case stderrors.Is(err, rules.ErrValidation), stderrors.Is(err, authsvc.ErrInvalidInput):
		return http.StatusBadRequest, APIError{Code: CodeValidation, Message: err.Error()}
	case stderrors.Is(err, authsvc.ErrInvalidCredentials):
		return http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "invalid email or password"}
	case stderrors.Is(err, rules.ErrAuthenticationRequired):
		return http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "authentication required"}
	case stderrors.Is(err, rules.ErrNoCapability):
		return http.StatusForbidden, APIError{Code: CodeNoCapability, Message: "you need an approved user type to submit content"}
	case stderrors.Is(err, rules.ErrAccountInactive):
		return http.StatusForbidden, APIError{Code: CodeAccountInactive, Message: rules.ErrAccountInactive.Error()}
	case stderrors.Is(err, rules.ErrAuthorizationDenied):
		return http.StatusForbidden, APIError{Code: CodeForbidden, Message: "you are not allowed to perform this action"}
	case stderrors.As(err, &terr):
		return http.StatusConflict, APIError{Code: CodeInvalidTransition, Message: terr.Error()}
	case stderrors.Is(err, rules.ErrInvalidTransition):
		return http.StatusConflict, APIError{Code: CodeInvalidTransition, Message: err.Error()}
	case stderrors.Is(err, rules.ErrNotFound):
		return http.StatusNotFound, APIError{Code: CodeNotFound, Message: err.Error()}
	case stderrors.Is(err, rules.ErrAlreadyGranted):
		return http.StatusConflict, APIError{Code: CodeAlreadyGranted, Message: rules.ErrAlreadyGranted.Error()}
	case stderrors.Is(err, rules.ErrPendingRequest):
		return http.StatusConflict, APIError{Code: CodeRequestPending, Message: rules.ErrPendingRequest.Error()}
	case stderrors.Is(err, rules.ErrConflict):
		return http.StatusConflict, APIError{Code: CodeConflict, Message: err.Error()}
	default:
		return http.StatusInternalServerError, APIError{Code: CodeInternal, Message: "internal server error"}
	}
}

// WriteError writes err using FromError. Throttled logins get a 429 with a
// Retry-After header.
func WriteError(w http.ResponseWriter, err error) {
	var retry *authsvc.RetryAfterError
	if stderrors.As(err, &retry) {
		w.Header().Set("Retry-After", strconv.FormatInt(retry.RetryAfterSec, 10))
		Write(w, http.StatusTooManyRequests, RateLimitError{
			Code:          CodeRateLimited,
			Message:       "too many login attempts",
			RetryAfterSec: retry.RetryAfterSec,
		})
		return
	}
	status, body := FromError(err)
	Write(w, status, body)
}
