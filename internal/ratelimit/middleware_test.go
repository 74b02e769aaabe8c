package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

func TestMiddlewareEnforcesLimit(t *testing.T) {
	rate := limiter.Rate{Period: time.Minute, Limit: 2}
	lim := limiter.New(memory.NewStore(), rate)

	handler := Handler{
		Limiter: lim,
		KeyFunc: func(*http.Request) string { return "client-a" },
	}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "2" {
			t.Fatalf("limit header = %q", rec.Header().Get("X-RateLimit-Limit"))
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", rec.Code)
	}
}

func TestMiddlewarePassesThroughWithoutKey(t *testing.T) {
	rate := limiter.Rate{Period: time.Minute, Limit: 1}
	lim := limiter.New(memory.NewStore(), rate)

	calls := 0
	handler := Handler{
		Limiter: lim,
		KeyFunc: func(*http.Request) string { return "" },
	}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	for i := 0; i < 3; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}
