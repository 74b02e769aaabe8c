package tenant

import "context"

type contextKey string

const shopContextKey contextKey = "shop.id"

// WithShop stores the resolved shop identifier on the context.
func WithShop(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, shopContextKey, id)
}

// ShopID extracts the resolved shop identifier from the context if present.
func ShopID(ctx context.Context) (string, bool) {
	v := ctx.Value(shopContextKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
