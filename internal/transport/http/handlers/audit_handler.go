package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/zilaportal/portal/internal/services/audit"
	"github.com/zilaportal/portal/internal/transport/http/dto"
	httperrors "github.com/zilaportal/portal/internal/transport/http/errors"
)

type AuditHandler struct {
	service *audit.Service
	log     *zap.Logger
}

func NewAuditHandler(service *audit.Service, log *zap.Logger) *AuditHandler {
	return &AuditHandler{service: service, log: log}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUDIT_SERVICE_UNAVAILABLE", "audit service is unavailable")
		return
	}

	limit, offset := pageParams(r)
	items, err := h.service.Recent(r.Context(), principal(r), limit, offset)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.List(items))
}
