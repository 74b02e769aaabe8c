package invoice

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/arkan-dev/backend-pos/internal/common"
	"github.com/arkan-dev/backend-pos/internal/obs"
	"github.com/arkan-dev/backend-pos/internal/tenant"
)

// SnapshotLoader loads finalized invoices for display and print.
type SnapshotLoader interface {
	Snapshot(ctx context.Context, shopID, transactionID string) (Snapshot, error)
}

// Handler exposes invoice retrieval and print rendering. The shop id rides
// in the URL on these routes, so ownership is checked here instead of by the
// header-based tenant middleware.
type Handler struct {
	Svc     SnapshotLoader
	Checker tenant.ShopChecker
}

func (h *Handler) snapshot(r *http.Request) (Snapshot, error) {
	shopID := chi.URLParam(r, "shopID")
	userID, ok := common.UserID(r.Context())
	if !ok {
		return Snapshot{}, &common.AppError{Code: "UNAUTHORIZED", Message: "authentication required", HTTPStatus: http.StatusUnauthorized}
	}
	owns, err := h.Checker.UserOwnsShop(r.Context(), userID, shopID)
	if err != nil {
		return Snapshot{}, err
	}
	if !owns {
		return Snapshot{}, &common.AppError{Code: "FORBIDDEN", Message: "shop does not belong to user", HTTPStatus: http.StatusForbidden}
	}
	return h.Svc.Snapshot(r.Context(), shopID, chi.URLParam(r, "transactionID"))
}

// Retrieve returns the invoice snapshot as JSON.
func (h *Handler) Retrieve(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": snap})
}

// Print returns the self-contained printable HTML document.
func (h *Handler) Print(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r)
	if err != nil {
		if obs.InvoicesRenderedTotal != nil {
			obs.InvoicesRenderedTotal.WithLabelValues("error").Inc()
		}
		common.RenderError(w, err)
		return
	}
	doc, renderID, err := Render(snap)
	if err != nil {
		if obs.InvoicesRenderedTotal != nil {
			obs.InvoicesRenderedTotal.WithLabelValues("error").Inc()
		}
		common.RenderError(w, err)
		return
	}
	if obs.InvoicesRenderedTotal != nil {
		obs.InvoicesRenderedTotal.WithLabelValues("ok").Inc()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Render-ID", renderID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}
