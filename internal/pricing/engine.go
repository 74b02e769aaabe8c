package pricing

// Money represents a monetary value stored in minor units.
type Money = int64

// Line describes a single cart line used for order pricing.
type Line struct {
	ProductRef string
	Qty        int
	UnitPrice  Money
}

// Total returns the undiscounted line total. Non-positive quantities
// contribute nothing.
func (l Line) Total() Money {
	if l.Qty <= 0 {
		return 0
	}
	return Money(l.Qty) * l.UnitPrice
}

// Subtotal sums the line totals of the cart. An empty cart yields 0.
func Subtotal(lines []Line) Money {
	var subtotal Money
	for _, l := range lines {
		subtotal += l.Total()
	}
	return subtotal
}

// Allocation carries a line's share of the order discount and the resulting
// discounted total.
type Allocation struct {
	Discount        Money
	DiscountedTotal Money
}

// Allocate distributes an order-level discount across the cart lines
// proportionally to their totals, rounding each share to whole minor units
// (half up). Any rounding remainder is assigned to the last line so the
// shares always sum to the order discount exactly.
//
// A zero subtotal clamps the effective discount to 0: every line gets a zero
// allocation regardless of the requested discount.
func Allocate(lines []Line, discount Money) []Allocation {
	out := make([]Allocation, len(lines))
	if len(lines) == 0 {
		return out
	}
	subtotal := Subtotal(lines)
	for i, l := range lines {
		out[i].DiscountedTotal = l.Total()
	}
	if discount <= 0 || subtotal <= 0 {
		return out
	}
	if discount > subtotal {
		discount = subtotal
	}
	if len(lines) == 1 {
		out[0].Discount = discount
		out[0].DiscountedTotal = lines[0].Total() - discount
		return out
	}
	var allocated Money
	for i, l := range lines {
		share := (discount*l.Total() + subtotal/2) / subtotal
		out[i].Discount = share
		out[i].DiscountedTotal = l.Total() - share
		allocated += share
	}
	// Rounding remainder lands on the last line. Simple, not
	// fairness-neutral; the figures must reconcile with the order header.
	if rem := discount - allocated; rem != 0 {
		last := len(out) - 1
		out[last].Discount += rem
		out[last].DiscountedTotal -= rem
	}
	return out
}

// Settlement aggregates the derived payment figures of an order.
type Settlement struct {
	Subtotal   Money
	Discount   Money
	GrandTotal Money
	AmountPaid Money
	Change     Money
	Due        Money
}

// Settle computes the settlement block for the given cart, discount, and
// amount paid. The discount is clamped to the subtotal so the grand total
// never goes negative. Change and due are complementary: at most one of them
// is non-zero.
func Settle(lines []Line, discount, paid Money) Settlement {
	subtotal := Subtotal(lines)
	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}
	grand := subtotal - discount
	s := Settlement{
		Subtotal:   subtotal,
		Discount:   discount,
		GrandTotal: grand,
		AmountPaid: paid,
	}
	if paid > grand {
		s.Change = paid - grand
	} else {
		s.Due = grand - paid
	}
	return s
}

// Status classifies how much of an order has been paid.
type Status string

const (
	StatusPaid    Status = "Paid"
	StatusPartial Status = "Partial"
	StatusUnpaid  Status = "Unpaid"
	StatusUnknown Status = "Unknown"
)

// PaymentStatus derives the payment status from the grand total and the
// outstanding due. Negative figures are not classifiable and yield
// StatusUnknown.
func PaymentStatus(grandTotal, due Money) Status {
	switch {
	case grandTotal < 0 || due < 0:
		return StatusUnknown
	case due == 0:
		return StatusPaid
	case due >= grandTotal:
		return StatusUnpaid
	default:
		return StatusPartial
	}
}
