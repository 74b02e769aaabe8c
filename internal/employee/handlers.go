package employee

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arkan-dev/backend-pos/internal/common"
	"github.com/arkan-dev/backend-pos/internal/obs"
	"github.com/arkan-dev/backend-pos/internal/tenant"
)

// Handler exposes employee and attendance endpoints.
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
	e, err := h.Svc.Create(r.Context(), shopID, in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": e})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	shopID, _ := tenant.ShopID(r.Context())
	employees, err := h.Svc.List(r.Context(), shopID)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": employees})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	shopID, _ := tenant.ShopID(r.Context())
	e, err := h.Svc.Get(r.Context(), shopID, chi.URLParam(r, "employeeID"))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": e})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	shopID, _ := tenant.ShopID(r.Context())
	var in UpdateInput
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.RenderError(w, err)
		return
	}
	e, err := h.Svc.Update(r.Context(), shopID, chi.URLParam(r, "employeeID"), in)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": e})
}

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.punch(w, r, "check_in", h.Svc.CheckIn)
}

func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	h.punch(w, r, "check_out", h.Svc.CheckOut)
}

func (h *Handler) punch(w http.ResponseWriter, r *http.Request, event string,
	fn func(ctx context.Context, shopID, employeeID, pin string) (AttendanceRecord, error)) {
	shopID, _ := tenant.ShopID(r.Context())
	var in PunchInput
	if err := common.DecodeAndValidate(r, &in); err != nil {
		common.RenderError(w, err)
		return
	}
	rec, err := fn(r.Context(), shopID, chi.URLParam(r, "employeeID"), in.PIN)
	if err != nil {
		if obs.AttendanceEventsTotal != nil {
			obs.AttendanceEventsTotal.WithLabelValues(event, "error").Inc()
		}
		common.RenderError(w, err)
		return
	}
	if obs.AttendanceEventsTotal != nil {
		obs.AttendanceEventsTotal.WithLabelValues(event, "ok").Inc()
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rec})
}

func (h *Handler) Attendance(w http.ResponseWriter, r *http.Request) {
	shopID, _ := tenant.ShopID(r.Context())
	now := time.Now()
	year := now.Year()
	month := now.Month()
	if v := r.URL.Query().Get("year"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			year = n
		}
	}
	if v := r.URL.Query().Get("month"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 12 {
			month = time.Month(n)
		}
	}
	records, err := h.Svc.Attendance(r.Context(), shopID, chi.URLParam(r, "employeeID"), year, month)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": records})
}
