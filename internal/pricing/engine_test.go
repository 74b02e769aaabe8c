package pricing

import "testing"

func TestSubtotal(t *testing.T) {
	if got := Subtotal(nil); got != 0 {
		t.Fatalf("empty cart subtotal = %d, want 0", got)
	}
	lines := []Line{
		{Qty: 2, UnitPrice: 10000},
		{Qty: 1, UnitPrice: 5000},
	}
	if got := Subtotal(lines); got != 25000 {
		t.Fatalf("subtotal = %d, want 25000", got)
	}
	withNegative := append(lines, Line{Qty: -3, UnitPrice: 100})
	if got := Subtotal(withNegative); got != 25000 {
		t.Fatalf("subtotal with non-positive qty = %d, want 25000", got)
	}
}

func TestAllocateProportional(t *testing.T) {
	lines := []Line{
		{Qty: 2, UnitPrice: 10000},
		{Qty: 1, UnitPrice: 5000},
	}
	alloc := Allocate(lines, 3000)
	if alloc[0].Discount != 2400 || alloc[1].Discount != 600 {
		t.Fatalf("shares = %d/%d, want 2400/600", alloc[0].Discount, alloc[1].Discount)
	}
	if alloc[0].DiscountedTotal != 17600 || alloc[1].DiscountedTotal != 4400 {
		t.Fatalf("discounted totals = %d/%d, want 17600/4400", alloc[0].DiscountedTotal, alloc[1].DiscountedTotal)
	}
}

func TestAllocateRemainderGoesToLastLine(t *testing.T) {
	cases := [][]Line{
		{{Qty: 1, UnitPrice: 333}, {Qty: 1, UnitPrice: 333}, {Qty: 1, UnitPrice: 334}},
		{{Qty: 3, UnitPrice: 199}, {Qty: 2, UnitPrice: 501}, {Qty: 7, UnitPrice: 73}},
		{{Qty: 1, UnitPrice: 1}, {Qty: 1, UnitPrice: 1}, {Qty: 1, UnitPrice: 1}},
	}
	discounts := []Money{100, 250, 1, 999}
	for _, lines := range cases {
		subtotal := Subtotal(lines)
		for _, d := range discounts {
			alloc := Allocate(lines, d)
			want := d
			if want > subtotal {
				want = subtotal
			}
			var sum Money
			for i, a := range alloc {
				sum += a.Discount
				if a.Discount+a.DiscountedTotal != lines[i].Total() {
					t.Fatalf("line %d: discount %d + discounted %d != total %d", i, a.Discount, a.DiscountedTotal, lines[i].Total())
				}
			}
			if sum != want {
				t.Fatalf("discount %d: allocated sum %d, want %d", d, sum, want)
			}
		}
	}
}

func TestAllocateSingleLineTakesWholeDiscount(t *testing.T) {
	alloc := Allocate([]Line{{Qty: 4, UnitPrice: 750}}, 500)
	if alloc[0].Discount != 500 || alloc[0].DiscountedTotal != 2500 {
		t.Fatalf("single line allocation = %+v", alloc[0])
	}
}

func TestAllocateZeroSubtotalClampsDiscount(t *testing.T) {
	alloc := Allocate([]Line{{Qty: 0, UnitPrice: 100}, {Qty: 2, UnitPrice: 0}}, 300)
	for i, a := range alloc {
		if a.Discount != 0 || a.DiscountedTotal != 0 {
			t.Fatalf("line %d: expected zero allocation, got %+v", i, a)
		}
	}
}

func TestSettle(t *testing.T) {
	lines := []Line{
		{Qty: 2, UnitPrice: 10000},
		{Qty: 1, UnitPrice: 5000},
	}

	s := Settle(lines, 3000, 25000)
	if s.GrandTotal != 22000 {
		t.Fatalf("grand total = %d, want 22000", s.GrandTotal)
	}
	if s.Change != 3000 || s.Due != 0 {
		t.Fatalf("change/due = %d/%d, want 3000/0", s.Change, s.Due)
	}

	s = Settle(lines, 3000, 10000)
	if s.Change != 0 || s.Due != 12000 {
		t.Fatalf("change/due = %d/%d, want 0/12000", s.Change, s.Due)
	}

	// Exact payment settles with neither change nor due.
	s = Settle(lines, 3000, 22000)
	if s.Change != 0 || s.Due != 0 {
		t.Fatalf("exact payment change/due = %d/%d", s.Change, s.Due)
	}
}

func TestSettleNeverBothChangeAndDue(t *testing.T) {
	lines := []Line{{Qty: 3, UnitPrice: 1234}, {Qty: 1, UnitPrice: 567}}
	for paid := Money(0); paid <= 6000; paid += 379 {
		for discount := Money(0); discount <= 5000; discount += 911 {
			s := Settle(lines, discount, paid)
			if s.Change != 0 && s.Due != 0 {
				t.Fatalf("paid=%d discount=%d: change=%d and due=%d both non-zero", paid, discount, s.Change, s.Due)
			}
		}
	}
}

func TestSettleClampsExcessDiscount(t *testing.T) {
	s := Settle([]Line{{Qty: 1, UnitPrice: 1000}}, 5000, 0)
	if s.Discount != 1000 || s.GrandTotal != 0 {
		t.Fatalf("discount/grand = %d/%d, want 1000/0", s.Discount, s.GrandTotal)
	}
}

func TestPaymentStatus(t *testing.T) {
	cases := []struct {
		grand, due Money
		want       Status
	}{
		{22000, 0, StatusPaid},
		{22000, 12000, StatusPartial},
		{22000, 22000, StatusUnpaid},
		{22000, 30000, StatusUnpaid},
		{0, 0, StatusPaid},
		{-100, 0, StatusUnknown},
		{22000, -100, StatusUnknown},
	}
	for _, tc := range cases {
		if got := PaymentStatus(tc.grand, tc.due); got != tc.want {
			t.Fatalf("PaymentStatus(%d, %d) = %s, want %s", tc.grand, tc.due, got, tc.want)
		}
	}
}
