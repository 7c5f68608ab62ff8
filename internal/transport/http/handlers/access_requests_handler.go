package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	accesssvc "github.com/zilaportal/portal/internal/services/accessrequests"
	"github.com/zilaportal/portal/internal/transport/http/dto"
	httperrors "github.com/zilaportal/portal/internal/transport/http/errors"
)

type AccessRequestsHandler struct {
	service *accesssvc.Service
	log     *zap.Logger
}

func NewAccessRequestsHandler(service *accesssvc.Service, log *zap.Logger) *AccessRequestsHandler {
	return &AccessRequestsHandler{service: service, log: log}
}

func (h *AccessRequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "ACCESS_SERVICE_UNAVAILABLE", "access request service is unavailable")
		return
	}

	var req dto.AccessRequestCreate
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeInvalidRequest, "invalid request body")
		return
	}

	created, err := h.service.RequestAccess(r.Context(), principal(r), req.RequestedUserTypes, req.Note)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusCreated, created)
}

func (h *AccessRequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "ACCESS_SERVICE_UNAVAILABLE", "access request service is unavailable")
		return
	}

	status, ok := contentStatusParam(r)
	if !ok {
		writeBadRequest(w, httperrors.CodeValidation, "unknown status")
		return
	}
	limit, offset := pageParams(r)
	items, err := h.service.List(r.Context(), principal(r), status, limit, offset)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.List(items))
}

func (h *AccessRequestsHandler) Pending(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "ACCESS_SERVICE_UNAVAILABLE", "access request service is unavailable")
		return
	}

	limit, offset := pageParams(r)
	items, err := h.service.Pending(r.Context(), principal(r), limit, offset)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.List(items))
}

func (h *AccessRequestsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "ACCESS_SERVICE_UNAVAILABLE", "access request service is unavailable")
		return
	}

	items, err := h.service.Mine(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.List(items))
}

func (h *AccessRequestsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

func (h *AccessRequestsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *AccessRequestsHandler) decide(w http.ResponseWriter, r *http.Request, approve bool) {
	if h.service == nil {
		writeInternal(w, "ACCESS_SERVICE_UNAVAILABLE", "access request service is unavailable")
		return
	}

	var req dto.DecisionRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeInvalidRequest, "invalid request body")
		return
	}

	decide := h.service.Reject
	if approve {
		decide = h.service.Approve
	}
	decided, err := decide(r.Context(), principal(r), chi.URLParam(r, "id"), req.AdminNote)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, decided)
}
