package tenant

import (
	"context"
	"net/http"
	"strings"

	"github.com/arkan-dev/backend-pos/internal/common"
)

// ShopChecker reports whether the given user may operate on the given shop.
type ShopChecker interface {
	UserOwnsShop(ctx context.Context, userID, shopID string) (bool, error)
}

// Resolver resolves the selected shop from HTTP requests and guards access.
type Resolver struct {
	HeaderName string
	Checker    ShopChecker
}

// NewResolver returns a resolver using the provided header name.
// If headerName is empty, "X-Shop-ID" is used.
func NewResolver(headerName string, checker ShopChecker) *Resolver {
	if headerName == "" {
		headerName = "X-Shop-ID"
	}
	return &Resolver{HeaderName: headerName, Checker: checker}
}

// Resolve returns the shop identifier carried by the request header.
func (r *Resolver) Resolve(req *http.Request) string {
	if r == nil || req == nil {
		return ""
	}
	return strings.TrimSpace(req.Header.Get(r.HeaderName))
}

// RequireShop enforces the presence of a shop the authenticated user may
// access, then injects the shop id into the request context.
func (r *Resolver) RequireShop(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		shopID := r.Resolve(req)
		if shopID == "" {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "shop not selected", nil)
			return
		}
		userID, ok := common.UserID(req.Context())
		if !ok || userID == "" {
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
			return
		}
		if r.Checker != nil {
			owns, err := r.Checker.UserOwnsShop(req.Context(), userID, shopID)
			if err != nil {
				common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "shop lookup failed", nil)
				return
			}
			if !owns {
				common.JSONError(w, http.StatusForbidden, "FORBIDDEN", "shop does not belong to user", nil)
				return
			}
		}
		next.ServeHTTP(w, req.WithContext(WithShop(req.Context(), shopID)))
	})
}
