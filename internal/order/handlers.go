package order

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/arkan-dev/backend-pos/internal/common"
	"github.com/arkan-dev/backend-pos/internal/obs"
	"github.com/arkan-dev/backend-pos/internal/tenant"
)

// Handler exposes order endpoints.
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
	receipt, err := h.Svc.Create(r.Context(), shopID, in)
	if err != nil {
		if obs.OrdersCreatedTotal != nil {
			obs.OrdersCreatedTotal.WithLabelValues(in.PaymentMethod, "error").Inc()
		}
		common.RenderError(w, err)
		return
	}
	if obs.OrdersCreatedTotal != nil {
		obs.OrdersCreatedTotal.WithLabelValues(in.PaymentMethod, "ok").Inc()
		obs.OrderValue.WithLabelValues(in.PaymentMethod).Observe(float64(receipt.GrandTotal))
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": receipt})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	shopID, _ := tenant.ShopID(r.Context())
	page, perPage := common.ParsePagination(r, 20)
	if perPage > 100 {
		perPage = 100
	}
	orders, total, err := h.Svc.List(r.Context(), shopID, page, perPage)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": orders,
		"pagination": common.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: total,
		},
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	shopID, _ := tenant.ShopID(r.Context())
	receipt, err := h.Svc.Get(r.Context(), shopID, chi.URLParam(r, "transactionID"))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": receipt})
}
