package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	settingssvc "github.com/zilaportal/portal/internal/services/settings"
	"github.com/zilaportal/portal/internal/transport/http/dto"
	httperrors "github.com/zilaportal/portal/internal/transport/http/errors"
)

type SettingsHandler struct {
	service *settingssvc.Service
	log     *zap.Logger
}

func NewSettingsHandler(service *settingssvc.Service, log *zap.Logger) *SettingsHandler {
	return &SettingsHandler{service: service, log: log}
}

func (h *SettingsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SETTINGS_SERVICE_UNAVAILABLE", "settings service is unavailable")
		return
	}

	items, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.List(items))
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SETTINGS_SERVICE_UNAVAILABLE", "settings service is unavailable")
		return
	}

	setting, err := h.service.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, setting)
}

func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SETTINGS_SERVICE_UNAVAILABLE", "settings service is unavailable")
		return
	}

	var req dto.SettingValueRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeInvalidRequest, "invalid request body")
		return
	}
	saved, err := h.service.Put(r.Context(), principal(r), chi.URLParam(r, "key"), req.Value, req.Description)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, saved)
}

// PutMany takes a JSON array of {key, value, description}.
func (h *SettingsHandler) PutMany(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SETTINGS_SERVICE_UNAVAILABLE", "settings service is unavailable")
		return
	}

	var req []settingssvc.Update
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeInvalidRequest, "invalid request body")
		return
	}
	saved, err := h.service.PutMany(r.Context(), principal(r), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.List(saved))
}
