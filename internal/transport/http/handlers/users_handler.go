package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zilaportal/portal/internal/domain/enums"
	"github.com/zilaportal/portal/internal/domain/model"
	"github.com/zilaportal/portal/internal/domain/rules"
	accesssvc "github.com/zilaportal/portal/internal/services/accessrequests"
	userssvc "github.com/zilaportal/portal/internal/services/users"
	"github.com/zilaportal/portal/internal/transport/http/dto"
	httperrors "github.com/zilaportal/portal/internal/transport/http/errors"
)

type UsersHandler struct {
	users  *userssvc.Service
	access *accesssvc.Service
	log    *zap.Logger
}

func NewUsersHandler(users *userssvc.Service, access *accesssvc.Service, log *zap.Logger) *UsersHandler {
	return &UsersHandler{users: users, access: access, log: log}
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		writeInternal(w, "USERS_SERVICE_UNAVAILABLE", "users service is unavailable")
		return
	}

	var status *enums.ApprovalStatus
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		parsed, ok := enums.ParseApprovalStatus(raw)
		if !ok {
			writeBadRequest(w, httperrors.CodeValidation, "unknown approval status")
			return
		}
		status = &parsed
	}

	limit, offset := pageParams(r)
	items, err := h.users.List(r.Context(), principal(r), status, limit, offset)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.List(items))
}

func (h *UsersHandler) Pending(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		writeInternal(w, "USERS_SERVICE_UNAVAILABLE", "users service is unavailable")
		return
	}

	limit, offset := pageParams(r)
	items, err := h.users.Pending(r.Context(), principal(r), limit, offset)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.List(items))
}

func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		writeInternal(w, "USERS_SERVICE_UNAVAILABLE", "users service is unavailable")
		return
	}

	user, err := h.users.Me(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, user)
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		writeInternal(w, "USERS_SERVICE_UNAVAILABLE", "users service is unavailable")
		return
	}

	var req dto.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeInvalidRequest, "invalid request body")
		return
	}

	user, err := h.users.CreateUser(r.Context(), principal(r), userssvc.CreateInput{
		Email:     req.Email,
		Password:  req.Password,
		FullName:  req.FullName,
		Phone:     req.Phone,
		UserTypes: req.UserTypes,
		Roles:     req.Roles,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusCreated, user)
}

// RequestAccess is the users-scoped alias of POST /access-requests.
func (h *UsersHandler) RequestAccess(w http.ResponseWriter, r *http.Request) {
	if h.access == nil {
		writeInternal(w, "ACCESS_SERVICE_UNAVAILABLE", "access request service is unavailable")
		return
	}

	var req dto.AccessRequestCreate
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeInvalidRequest, "invalid request body")
		return
	}

	created, err := h.access.RequestAccess(r.Context(), principal(r), req.RequestedUserTypes, req.Note)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusCreated, created)
}

func (h *UsersHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.users.ApproveUser)
}

func (h *UsersHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.users.SuspendUser)
}

func (h *UsersHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.users.RejectUser)
}

func (h *UsersHandler) transition(w http.ResponseWriter, r *http.Request, apply func(context.Context, rules.Principal, string) (model.User, error)) {
	if h.users == nil {
		writeInternal(w, "USERS_SERVICE_UNAVAILABLE", "users service is unavailable")
		return
	}

	user, err := apply(r.Context(), principal(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, user)
}
