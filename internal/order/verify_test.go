package order

import (
	"testing"

	"github.com/arkan-dev/backend-pos/internal/common"
	"github.com/arkan-dev/backend-pos/internal/pricing"
)

func twoLineCart() ([]pricing.Line, CreateInput) {
	lines := []pricing.Line{
		{ProductRef: "p1", Qty: 2, UnitPrice: 10000},
		{ProductRef: "p2", Qty: 1, UnitPrice: 5000},
	}
	in := CreateInput{
		Items: []ItemInput{
			{ProductStock: "p1", Quantity: 2, DiscountTotal: 2400, TotalDiscountedAmount: 17600},
			{ProductStock: "p2", Quantity: 1, DiscountTotal: 600, TotalDiscountedAmount: 4400},
		},
		Subtotal:      25000,
		Discount:      3000,
		GrandTotal:    22000,
		AmountPaid:    25000,
		AmountChange:  3000,
		Due:           0,
		PaymentMethod: "cash",
	}
	return lines, in
}

func TestVerifyTotalsAcceptsReconcilingPayload(t *testing.T) {
	lines, in := twoLineCart()
	if err := VerifyTotals(lines, in); err != nil {
		t.Fatalf("reconciling payload rejected: %v", err)
	}
}

func TestVerifyTotalsRejectsTamperedGrandTotal(t *testing.T) {
	lines, in := twoLineCart()
	in.GrandTotal = 20000
	in.AmountChange = 5000
	err := VerifyTotals(lines, in)
	if err == nil {
		t.Fatal("expected mismatch to be rejected")
	}
	appErr := common.AsAppError(err)
	if appErr == nil || appErr.Code != "VALIDATION" {
		t.Fatalf("unexpected error: %v", err)
	}
	details := appErr.Details.(map[string]string)
	if _, ok := details["grand_total"]; !ok {
		t.Fatalf("details missing grand_total: %v", details)
	}
	if _, ok := details["amount_change"]; !ok {
		t.Fatalf("details missing amount_change: %v", details)
	}
}

func TestVerifyTotalsRejectsWrongLineShare(t *testing.T) {
	lines, in := twoLineCart()
	// Shift a unit of discount from line 1 to line 0
	in.Items[0].DiscountTotal = 2500
	in.Items[0].TotalDiscountedAmount = 17500
	in.Items[1].DiscountTotal = 500
	in.Items[1].TotalDiscountedAmount = 4500
	err := VerifyTotals(lines, in)
	if err == nil {
		t.Fatal("expected per-line mismatch to be rejected")
	}
	details := common.AsAppError(err).Details.(map[string]string)
	if _, ok := details["items[0].discount_total"]; !ok {
		t.Fatalf("details missing item mismatch: %v", details)
	}
}

func TestVerifyTotalsRejectsDiscountAboveSubtotal(t *testing.T) {
	lines, in := twoLineCart()
	in.Discount = 30000
	err := VerifyTotals(lines, in)
	if err == nil {
		t.Fatal("expected excessive discount to be rejected")
	}
	if common.AsAppError(err).Code != "VALIDATION" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVerifyTotalsPartialPayment(t *testing.T) {
	lines, in := twoLineCart()
	in.AmountPaid = 10000
	in.AmountChange = 0
	in.Due = 12000
	if err := VerifyTotals(lines, in); err != nil {
		t.Fatalf("partial payment rejected: %v", err)
	}
}

func TestVerifyDistinctProductsRejectsRepeatedLine(t *testing.T) {
	// A cart repeating one product would pass the per-line stock check
	// against the original quantity (4 and 4 against a stock of 5) and
	// decrement the row below zero once both lines commit.
	items := []ItemInput{
		{ProductStock: "p1", Quantity: 4},
		{ProductStock: "p2", Quantity: 1},
		{ProductStock: "p1", Quantity: 4},
	}
	err := verifyDistinctProducts(items)
	if err == nil {
		t.Fatal("expected duplicate product lines to be rejected")
	}
	appErr := common.AsAppError(err)
	if appErr.Code != "VALIDATION" {
		t.Fatalf("unexpected error: %v", err)
	}
	details := appErr.Details.(map[string]string)
	if _, ok := details["items[2].product_stock"]; !ok {
		t.Fatalf("details missing duplicate line: %v", details)
	}
}

func TestVerifyDistinctProductsAcceptsUniqueLines(t *testing.T) {
	_, in := twoLineCart()
	if err := verifyDistinctProducts(in.Items); err != nil {
		t.Fatalf("unique lines rejected: %v", err)
	}
}
