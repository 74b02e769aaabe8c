package order

import (
	"fmt"

	"github.com/arkan-dev/backend-pos/internal/common"
	"github.com/arkan-dev/backend-pos/internal/pricing"
)

// VerifyTotals recomputes every derived figure of the submitted order from
// the authoritative unit prices and compares it against the client's numbers.
// The client's arithmetic is never trusted; a till with a stale price list or
// a tampered payload gets a validation error naming each mismatched figure.
func VerifyTotals(lines []pricing.Line, in CreateInput) error {
	mismatches := map[string]string{}

	subtotal := pricing.Subtotal(lines)
	if in.Discount > subtotal {
		return common.ErrValidation("discount exceeds subtotal", map[string]string{
			"discount": fmt.Sprintf("must not exceed subtotal %d", subtotal),
		})
	}
	settlement := pricing.Settle(lines, in.Discount, in.AmountPaid)
	if in.Subtotal != settlement.Subtotal {
		mismatches["subtotal"] = expected(settlement.Subtotal, in.Subtotal)
	}
	if in.GrandTotal != settlement.GrandTotal {
		mismatches["grand_total"] = expected(settlement.GrandTotal, in.GrandTotal)
	}
	if in.AmountChange != settlement.Change {
		mismatches["amount_change"] = expected(settlement.Change, in.AmountChange)
	}
	if in.Due != settlement.Due {
		mismatches["due"] = expected(settlement.Due, in.Due)
	}

	alloc := pricing.Allocate(lines, in.Discount)
	for i, a := range alloc {
		if in.Items[i].DiscountTotal != a.Discount {
			mismatches[fmt.Sprintf("items[%d].discount_total", i)] = expected(a.Discount, in.Items[i].DiscountTotal)
		}
		if in.Items[i].TotalDiscountedAmount != a.DiscountedTotal {
			mismatches[fmt.Sprintf("items[%d].total_discounted_amount", i)] = expected(a.DiscountedTotal, in.Items[i].TotalDiscountedAmount)
		}
	}

	if len(mismatches) > 0 {
		return common.ErrValidation("order totals do not reconcile", mismatches)
	}
	return nil
}

// verifyDistinctProducts rejects carts that name the same product stock
// twice. The stock check locks each product row once, so a repeated line
// could pass the check on the original quantity and drive stock negative.
func verifyDistinctProducts(items []ItemInput) error {
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if _, dup := seen[item.ProductStock]; dup {
			return common.ErrValidation("cart lists the same product more than once", map[string]string{
				fmt.Sprintf("items[%d].product_stock", i): "duplicate product; merge quantities into one line",
			})
		}
		seen[item.ProductStock] = struct{}{}
	}
	return nil
}

func expected(want, got int64) string {
	return fmt.Sprintf("expected %d, got %d", want, got)
}
