package obs

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusRecorderCapturesStatusAndBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := NewStatusRecorder(rec)
	sr.WriteHeader(http.StatusTeapot)
	n, err := sr.Write([]byte("short and stout"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if sr.Status() != http.StatusTeapot {
		t.Fatalf("status = %d", sr.Status())
	}
	if sr.BytesWritten() != int64(n) {
		t.Fatalf("bytes = %d, want %d", sr.BytesWritten(), n)
	}
}

func TestRoutePatternContextRoundTrip(t *testing.T) {
	ctx := WithRoutePattern(nil, "/api/v1/orders/{transactionID}")
	if got := RoutePatternFromContext(ctx); got != "/api/v1/orders/{transactionID}" {
		t.Fatalf("pattern = %q", got)
	}
	if got := RoutePatternFromContext(nil); got != "" {
		t.Fatalf("nil ctx pattern = %q", got)
	}
}

func TestParseBucketsCSV(t *testing.T) {
	buckets := ParseBucketsCSV("5, 10, bogus, -1, 250")
	if len(buckets) != 3 || buckets[2] != 250 {
		t.Fatalf("buckets = %v", buckets)
	}
	if got := ParseBucketsCSV("  "); got != nil {
		t.Fatalf("blank csv = %v", got)
	}
}
