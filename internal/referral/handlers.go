package referral

import (
	"net/http"

	"github.com/arkan-dev/backend-pos/internal/common"
	"github.com/arkan-dev/backend-pos/internal/tenant"
)

// Handler exposes referral endpoints.
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
	ref, err := h.Svc.Create(r.Context(), shopID, in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": ref})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	shopID, _ := tenant.ShopID(r.Context())
	referrals, err := h.Svc.List(r.Context(), shopID)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": referrals})
}
