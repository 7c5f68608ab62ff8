package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	authsvc "github.com/zilaportal/portal/internal/services/auth"
	userssvc "github.com/zilaportal/portal/internal/services/users"
	"github.com/zilaportal/portal/internal/transport/http/dto"
	httperrors "github.com/zilaportal/portal/internal/transport/http/errors"
)

type AuthHandler struct {
	auth  *authsvc.Service
	users *userssvc.Service
	log   *zap.Logger
}

func NewAuthHandler(auth *authsvc.Service, users *userssvc.Service, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, log: log}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		writeInternal(w, "USERS_SERVICE_UNAVAILABLE", "users service is unavailable")
		return
	}

	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeInvalidRequest, "invalid request body")
		return
	}

	reg, err := h.users.Register(r.Context(), userssvc.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FullName:  req.FullName,
		Phone:     req.Phone,
		UserTypes: req.UserTypes,
		Note:      req.Note,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.RegisterResponse{
		User:          reg.User,
		AccessRequest: reg.Request,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeInvalidRequest, "invalid request body")
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, tokensResponse(res))
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeInvalidRequest, "invalid request body")
		return
	}

	res, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, tokensResponse(res))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, httperrors.CodeUnauthorized, "authentication required")
		return
	}

	if err := h.auth.Logout(r.Context(), identity.SID); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, httperrors.CodeUnauthorized, "authentication required")
		return
	}

	if err := h.auth.LogoutAll(r.Context(), identity.UserID); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func tokensResponse(res authsvc.AuthResult) dto.AuthTokensResponse {
	return dto.AuthTokensResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresInSec: max(0, int64(time.Until(res.AccessExpires).Seconds())),
		User:         res.User,
	}
}
