package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	slidersvc "github.com/zilaportal/portal/internal/services/sliders"
	"github.com/zilaportal/portal/internal/transport/http/dto"
	httperrors "github.com/zilaportal/portal/internal/transport/http/errors"
)

type SlidersHandler struct {
	service *slidersvc.Service
	log     *zap.Logger
}

func NewSlidersHandler(service *slidersvc.Service, log *zap.Logger) *SlidersHandler {
	return &SlidersHandler{service: service, log: log}
}

func (h *SlidersHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SLIDER_SERVICE_UNAVAILABLE", "slider service is unavailable")
		return
	}

	items, err := h.service.List(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.List(items))
}

func (h *SlidersHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SLIDER_SERVICE_UNAVAILABLE", "slider service is unavailable")
		return
	}

	slider, err := h.service.Get(r.Context(), principal(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, slider)
}

func (h *SlidersHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SLIDER_SERVICE_UNAVAILABLE", "slider service is unavailable")
		return
	}

	var req slidersvc.Input
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeInvalidRequest, "invalid request body")
		return
	}
	created, err := h.service.Create(r.Context(), principal(r), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusCreated, created)
}

func (h *SlidersHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SLIDER_SERVICE_UNAVAILABLE", "slider service is unavailable")
		return
	}

	var req slidersvc.Input
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeInvalidRequest, "invalid request body")
		return
	}
	updated, err := h.service.Update(r.Context(), principal(r), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, updated)
}

func (h *SlidersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SLIDER_SERVICE_UNAVAILABLE", "slider service is unavailable")
		return
	}

	if err := h.service.Delete(r.Context(), principal(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}
