package invoice

import (
	"strings"
	"testing"
	"time"

	"github.com/arkan-dev/backend-pos/internal/pricing"
)

func sampleSnapshot() Snapshot {
	return Snapshot{
		TransactionID: "a1b2c3d4-0000-0000-0000-000000000001",
		ShopName:      "Mirpur General Store",
		CustomerPhone: "+8801711111111",
		CustomerName:  "Rahim",
		PaymentMethod: "cash",
		PaymentStatus: pricing.StatusPartial,
		Note:          "deliver after 6pm",
		Items: []SnapshotItem{
			{ProductName: "Soap Bar", Quantity: 2, SellPricePerQuantity: 10000, DiscountTotal: 2400, TotalDiscountedAmount: 17600},
			{ProductName: "Shampoo <small>", Quantity: 1, SellPricePerQuantity: 5000, DiscountTotal: 600, TotalDiscountedAmount: 4400},
		},
		Subtotal:     25000,
		Discount:     3000,
		GrandTotal:   22000,
		AmountPaid:   20000,
		AmountChange: 0,
		Due:          2000,
		CreatedAt:    time.Date(2024, time.March, 9, 14, 30, 0, 0, time.UTC),
	}
}

func TestRenderDocument(t *testing.T) {
	doc, renderID, err := Render(sampleSnapshot())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if renderID == "" {
		t.Fatal("expected a render id")
	}
	html := string(doc)

	for _, want := range []string{
		"Mirpur General Store",
		"a1b2c3d4-0000-0000-0000-000000000001",
		"Saturday, 9 March 2024 2:30 PM",
		"Payment: cash",
		"Rahim +8801711111111",
		"Soap Bar",
		"220.00", // grand total
		"200.00", // paid
		"20.00",  // due
		"Partial",
		"deliver after 6pm",
		`id="invoice-` + renderID + `"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("document missing %q", want)
		}
	}

	if !strings.Contains(html, "Shampoo &lt;small&gt;") {
		t.Error("product names must be HTML-escaped")
	}
	if !strings.Contains(html, "80mm") {
		t.Error("document should fix the 80mm print width")
	}
}

func TestRenderIDsAreUnique(t *testing.T) {
	snap := sampleSnapshot()
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		_, id, err := Render(snap)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if seen[id] {
			t.Fatalf("render id %q repeated", id)
		}
		seen[id] = true
	}
}

func TestRenderOmitsEmptyCustomerAndNote(t *testing.T) {
	snap := sampleSnapshot()
	snap.CustomerPhone = ""
	snap.CustomerName = ""
	snap.Note = ""
	doc, _, err := Render(snap)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(doc)
	if strings.Contains(html, "Customer:") {
		t.Error("customer line should be omitted when phone is empty")
	}
	if strings.Contains(html, "Note:") {
		t.Error("note line should be omitted when empty")
	}
}
