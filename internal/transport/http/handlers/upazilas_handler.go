package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	upazilasvc "github.com/zilaportal/portal/internal/services/upazilas"
	"github.com/zilaportal/portal/internal/transport/http/dto"
	httperrors "github.com/zilaportal/portal/internal/transport/http/errors"
)

type UpazilasHandler struct {
	service *upazilasvc.Service
	log     *zap.Logger
}

func NewUpazilasHandler(service *upazilasvc.Service, log *zap.Logger) *UpazilasHandler {
	return &UpazilasHandler{service: service, log: log}
}

func (h *UpazilasHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "UPAZILA_SERVICE_UNAVAILABLE", "upazila service is unavailable")
		return
	}

	items, err := h.service.List(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.List(items))
}

func (h *UpazilasHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "UPAZILA_SERVICE_UNAVAILABLE", "upazila service is unavailable")
		return
	}

	detail, err := h.service.GetBySlug(r.Context(), principal(r), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.UpazilaDetailResponse{
		Upazila: detail.Upazila,
		Counts:  detail.Counts,
	})
}

func (h *UpazilasHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "UPAZILA_SERVICE_UNAVAILABLE", "upazila service is unavailable")
		return
	}

	var req dto.UpazilaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeInvalidRequest, "invalid request body")
		return
	}
	created, err := h.service.Create(r.Context(), principal(r), upazilaInput(req))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusCreated, created)
}

func (h *UpazilasHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "UPAZILA_SERVICE_UNAVAILABLE", "upazila service is unavailable")
		return
	}

	var req dto.UpazilaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, httperrors.CodeInvalidRequest, "invalid request body")
		return
	}
	updated, err := h.service.Update(r.Context(), principal(r), chi.URLParam(r, "id"), upazilaInput(req))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, updated)
}

func (h *UpazilasHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "UPAZILA_SERVICE_UNAVAILABLE", "upazila service is unavailable")
		return
	}

	if err := h.service.Delete(r.Context(), principal(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *UpazilasHandler) Seed(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "UPAZILA_SERVICE_UNAVAILABLE", "upazila service is unavailable")
		return
	}

	inserted, err := h.service.Seed(r.Context(), principal(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.SeedResponse{Inserted: inserted})
}

func upazilaInput(req dto.UpazilaRequest) upazilasvc.Input {
	return upazilasvc.Input{
		Name:          req.Name,
		NameBn:        req.NameBn,
		Slug:          req.Slug,
		Description:   req.Description,
		DescriptionBn: req.DescriptionBn,
		IsActive:      req.IsActive,
		DisplayOrder:  req.DisplayOrder,
	}
}
