package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/zilaportal/portal/internal/domain/enums"
	"github.com/zilaportal/portal/internal/domain/rules"
	authsvc "github.com/zilaportal/portal/internal/services/auth"
	httperrors "github.com/zilaportal/portal/internal/transport/http/errors"
)

const maxBodyBytes = 1 << 20

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

// decodeOptionalJSON accepts an empty body and leaves target untouched.
func decodeOptionalJSON(r *http.Request, target any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	err := decodeJSON(r, target)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

// writeError maps a service error. Server side failures are logged with the
// request path before the generic 500 is written.
func writeError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status, _ := httperrors.FromError(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	httperrors.WriteError(w, err)
}

func principal(r *http.Request) rules.Principal {
	return authsvc.PrincipalFromContext(r.Context())
}

func pageParams(r *http.Request) (int, int) {
	q := r.URL.Query()
	return parseIntOrDefault(q.Get("limit"), 0), parseIntOrDefault(q.Get("offset"), 0)
}

func parseIntOrDefault(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func contentStatusParam(r *http.Request) (*enums.ContentStatus, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("status"))
	if raw == "" {
		return nil, true
	}
	status, ok := enums.ParseContentStatus(raw)
	if !ok {
		return nil, false
	}
	return &status, true
}
