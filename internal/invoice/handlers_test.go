package invoice_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/arkan-dev/backend-pos/internal/common"
	"github.com/arkan-dev/backend-pos/internal/invoice"
	"github.com/arkan-dev/backend-pos/internal/pricing"
)

type stubLoader struct {
	snap invoice.Snapshot
	err  error
}

func (s stubLoader) Snapshot(context.Context, string, string) (invoice.Snapshot, error) {
	return s.snap, s.err
}

type stubChecker struct {
	owns bool
	err  error
}

func (s stubChecker) UserOwnsShop(context.Context, string, string) (bool, error) {
	return s.owns, s.err
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newInvoiceRouter(h *invoice.Handler, userID string) http.Handler {
	r := chi.NewRouter()
	if userID != "" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(common.WithUserID(req.Context(), userID)))
			})
		})
	}
	r.Get("/invoice/retrieve/{shopID}/{transactionID}/", h.Retrieve)
	r.Get("/invoice/print/{shopID}/{transactionID}/", h.Print)
	return r
}

func doRequest(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestRetrieveUnknownTransactionReturnsNotFound(t *testing.T) {
	h := &invoice.Handler{
		Svc:     stubLoader{err: common.ErrNotFound("invoice not found")},
		Checker: stubChecker{owns: true},
	}
	rec := doRequest(t, newInvoiceRouter(h, "user-1"), "/invoice/retrieve/shop-1/tx-missing/")

	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeError(t, rec)
	require.Equal(t, "NOT_FOUND", env.Error.Code)
	require.Equal(t, "invoice not found", env.Error.Message)
}

func TestRetrieveForeignShopIsForbidden(t *testing.T) {
	h := &invoice.Handler{
		Svc:     stubLoader{},
		Checker: stubChecker{owns: false},
	}
	rec := doRequest(t, newInvoiceRouter(h, "user-1"), "/invoice/retrieve/shop-other/tx-1/")

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "FORBIDDEN", decodeError(t, rec).Error.Code)
}

func TestRetrieveWithoutUserIsUnauthorized(t *testing.T) {
	h := &invoice.Handler{
		Svc:     stubLoader{},
		Checker: stubChecker{owns: true},
	}
	rec := doRequest(t, newInvoiceRouter(h, ""), "/invoice/retrieve/shop-1/tx-1/")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "UNAUTHORIZED", decodeError(t, rec).Error.Code)
}

func TestPrintFetchFailureReturnsErrorEnvelope(t *testing.T) {
	h := &invoice.Handler{
		Svc:     stubLoader{err: common.ErrNotFound("invoice not found")},
		Checker: stubChecker{owns: true},
	}
	rec := doRequest(t, newInvoiceRouter(h, "user-1"), "/invoice/print/shop-1/tx-missing/")

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "NOT_FOUND", decodeError(t, rec).Error.Code)
}

func TestPrintReturnsRenderedDocument(t *testing.T) {
	h := &invoice.Handler{
		Svc: stubLoader{snap: invoice.Snapshot{
			TransactionID: "tx-1",
			ShopName:      "Mirpur General Store",
			PaymentMethod: "cash",
			PaymentStatus: pricing.StatusPaid,
			Items: []invoice.SnapshotItem{
				{ProductName: "Soap Bar", Quantity: 1, SellPricePerQuantity: 10000, TotalDiscountedAmount: 10000},
			},
			Subtotal:   10000,
			GrandTotal: 10000,
			AmountPaid: 10000,
			CreatedAt:  time.Date(2024, time.March, 9, 14, 30, 0, 0, time.UTC),
		}},
		Checker: stubChecker{owns: true},
	}
	rec := doRequest(t, newInvoiceRouter(h, "user-1"), "/invoice/print/shop-1/tx-1/")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	require.NotEmpty(t, rec.Header().Get("X-Render-ID"))
	require.Contains(t, rec.Body.String(), "Mirpur General Store")
}
