package tenant

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arkan-dev/backend-pos/internal/common"
)

type checkerFunc func(ctx context.Context, userID, shopID string) (bool, error)

func (f checkerFunc) UserOwnsShop(ctx context.Context, userID, shopID string) (bool, error) {
	return f(ctx, userID, shopID)
}

func TestRequireShop(t *testing.T) {
	resolver := NewResolver("", checkerFunc(func(_ context.Context, userID, shopID string) (bool, error) {
		return userID == "u1" && shopID == "s1", nil
	}))

	var seenShop string
	handler := resolver.RequireShop(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenShop, _ = ShopID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("X-Shop-ID", "s1")
	req = req.WithContext(common.WithUserID(req.Context(), "u1"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if seenShop != "s1" {
		t.Fatalf("shop in context = %q", seenShop)
	}

	// Missing header.
	req = httptest.NewRequest(http.MethodGet, "/products", nil)
	req = req.WithContext(common.WithUserID(req.Context(), "u1"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing header status = %d", rec.Code)
	}

	// Shop owned by someone else.
	req = httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("X-Shop-ID", "s2")
	req = req.WithContext(common.WithUserID(req.Context(), "u1"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign shop status = %d", rec.Code)
	}

	// No authenticated user.
	req = httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("X-Shop-ID", "s1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d", rec.Code)
	}
}
