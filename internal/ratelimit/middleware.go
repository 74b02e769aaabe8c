package ratelimit

import (
	"net/http"
	"strconv"

	limiter "github.com/ulule/limiter/v3"

	"github.com/arkan-dev/backend-pos/internal/common"
)

// Handler enforces per-client rate limits before delegating to the next handler.
type Handler struct {
	Limiter *limiter.Limiter
	KeyFunc func(*http.Request) string
	OnError func(error)
}

// Middleware implements the http.Handler middleware interface. Store errors
// fail open so a degraded limiter backend never takes the API down with it.
func (h Handler) Middleware(next http.Handler) http.Handler {
	if h.Limiter == nil {
		return next
	}
	keyFunc := h.KeyFunc
	if keyFunc == nil {
		keyFunc = common.ClientIP
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := keyFunc(r)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		limCtx, err := h.Limiter.Get(r.Context(), key)
		if err != nil {
			if h.OnError != nil {
				h.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.FormatInt(limCtx.Limit, 10))
		headers.Set("X-RateLimit-Remaining", strconv.FormatInt(limCtx.Remaining, 10))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(limCtx.Reset, 10))

		if limCtx.Reached {
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}
