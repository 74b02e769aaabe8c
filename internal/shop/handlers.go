package shop

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arkan-dev/backend-pos/internal/common"
)

// Handler exposes shop endpoints.
type Handler struct {
	Svc *Service
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	var in CreateInput
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.RenderError(w, err)
		return
	}
	shop, err := h.Svc.Create(r.Context(), userID, in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": shop})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserID(r.Context())
	shops, err := h.Svc.ListByOwner(r.Context(), userID)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": shops})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserID(r.Context())
	shop, err := h.Svc.Get(r.Context(), userID, chi.URLParam(r, "shopID"))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": shop})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserID(r.Context())
	var in UpdateInput
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.RenderError(w, err)
		return
	}
	shop, err := h.Svc.Update(r.Context(), userID, chi.URLParam(r, "shopID"), in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": shop})
}

type onboardInput struct {
	CompletedStep int `json:"completed_step" validate:"required,min=1,max=3"`
}

func (h *Handler) Onboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := common.UserID(r.Context())
	var in onboardInput
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.RenderError(w, err)
		return
	}
	shop, err := h.Svc.AdvanceOnboarding(r.Context(), userID, chi.URLParam(r, "shopID"), in.CompletedStep)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":      shop,
		"onboarded": shop.Onboarded(),
	})
}
