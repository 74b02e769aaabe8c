package customer

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/arkan-dev/backend-pos/internal/common"
	"github.com/arkan-dev/backend-pos/internal/tenant"
)

// Handler exposes customer and dues endpoints.
type Handler struct {
	Svc *Service
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	shopID, ok := tenant.ShopID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "shop not selected", nil)
		return
	}
	var in CreateInput
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.RenderError(w, err)
		return
	}
	c, err := h.Svc.Create(r.Context(), shopID, in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": c})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	shopID, _ := tenant.ShopID(r.Context())
	page, perPage := common.ParsePagination(r, 20)
	customers, total, err := h.Svc.List(r.Context(), shopID, page, perPage)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": customers,
		"pagination": common.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: total,
		},
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	shopID, _ := tenant.ShopID(r.Context())
	c, err := h.Svc.Get(r.Context(), shopID, chi.URLParam(r, "phone"))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	shopID, _ := tenant.ShopID(r.Context())
	var in UpdateInput
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.RenderError(w, err)
		return
	}
	c, err := h.Svc.Update(r.Context(), shopID, chi.URLParam(r, "phone"), in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c})
}

func (h *Handler) Dues(w http.ResponseWriter, r *http.Request) {
	shopID, _ := tenant.ShopID(r.Context())
	entries, err := h.Svc.Dues(r.Context(), shopID, chi.URLParam(r, "phone"))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": entries})
}

func (h *Handler) Collect(w http.ResponseWriter, r *http.Request) {
	shopID, _ := tenant.ShopID(r.Context())
	var in CollectInput
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.RenderError(w, err)
		return
	}
	c, err := h.Svc.Collect(r.Context(), shopID, chi.URLParam(r, "phone"), in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c})
}

func (h *Handler) Remind(w http.ResponseWriter, r *http.Request) {
	shopID, _ := tenant.ShopID(r.Context())
	if err := h.Svc.Remind(r.Context(), shopID, chi.URLParam(r, "phone")); err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusAccepted, map[string]any{"data": map[string]string{"status": "queued"}})
}
