package inventory

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/arkan-dev/backend-pos/internal/common"
	"github.com/arkan-dev/backend-pos/internal/tenant"
)

// Handler exposes product stock endpoints.
type Handler struct {
	Svc *Service
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	shopID, _ := tenant.ShopID(r.Context())
	var in CreateInput
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.RenderError(w, err)
		return
	}
	product, err := h.Svc.Create(r.Context(), shopID, in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": product})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	shopID, _ := tenant.ShopID(r.Context())
	page, perPage := common.ParsePagination(r, 20)
	if perPage > 100 {
		perPage = 100
	}
	products, total, err := h.Svc.List(r.Context(), shopID, page, perPage)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": products,
		"pagination": common.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: total,
		},
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	shopID, _ := tenant.ShopID(r.Context())
	product, err := h.Svc.Get(r.Context(), shopID, chi.URLParam(r, "productID"))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": product})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	shopID, _ := tenant.ShopID(r.Context())
	var in UpdateInput
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.RenderError(w, err)
		return
	}
	product, err := h.Svc.Update(r.Context(), shopID, chi.URLParam(r, "productID"), in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": product})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	shopID, _ := tenant.ShopID(r.Context())
	if err := h.Svc.Delete(r.Context(), shopID, chi.URLParam(r, "productID")); err != nil {
		common.RenderError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	shopID, _ := tenant.ShopID(r.Context())
	products, err := h.Svc.ListLowStock(r.Context(), shopID)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": products})
}
