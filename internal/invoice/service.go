package invoice

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arkan-dev/backend-pos/internal/common"
	"github.com/arkan-dev/backend-pos/internal/pricing"
)

// SnapshotItem is one finalized invoice line.
type SnapshotItem struct {
	ProductName           string `json:"product_name"`
	Quantity              int    `json:"quantity"`
	SellPricePerQuantity  int64  `json:"sell_price_per_quantity"`
	DiscountTotal         int64  `json:"discount_total"`
	TotalDiscountedAmount int64  `json:"total_discounted_amount"`
}

// Snapshot is the immutable record of a completed order, read only for
// display and print.
type Snapshot struct {
	TransactionID string         `json:"transaction_id"`
	ShopName      string         `json:"shop_name"`
	CustomerName  string         `json:"customer_name,omitempty"`
	CustomerPhone string         `json:"customer_phone,omitempty"`
	PaymentMethod string         `json:"payment_method"`
	PaymentStatus pricing.Status `json:"payment_status"`
	Note          string         `json:"note,omitempty"`
	Items         []SnapshotItem `json:"items"`
	Subtotal      int64          `json:"subtotal"`
	Discount      int64          `json:"discount"`
	GrandTotal    int64          `json:"grand_total"`
	AmountPaid    int64          `json:"amount_paid"`
	AmountChange  int64          `json:"amount_change"`
	Due           int64          `json:"due"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Service loads invoice snapshots.
type Service struct {
	Pool *pgxpool.Pool
}

// Snapshot loads one finalized invoice scoped to the shop. The order id
// doubles as the transaction id on the wire.
func (s *Service) Snapshot(ctx context.Context, shopID, transactionID string) (Snapshot, error) {
	var (
		snap     Snapshot
		phone    *string
		note     *string
		custName *string
	)
	err := s.Pool.QueryRow(ctx, `
		SELECT o.id, sh.name, o.customer_phone, c.name, o.payment_method, o.note,
			o.subtotal, o.discount, o.grand_total, o.amount_paid, o.amount_change, o.due,
			o.created_at
		FROM orders o
		JOIN shops sh ON sh.id = o.shop_id
		LEFT JOIN customers c ON c.shop_id = o.shop_id AND c.phone = o.customer_phone
		WHERE o.id = $1 AND o.shop_id = $2`, transactionID, shopID).Scan(
		&snap.TransactionID, &snap.ShopName, &phone, &custName, &snap.PaymentMethod, &note,
		&snap.Subtotal, &snap.Discount, &snap.GrandTotal, &snap.AmountPaid, &snap.AmountChange, &snap.Due,
		&snap.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, common.ErrNotFound("invoice not found")
	}
	if err != nil {
		return Snapshot{}, err
	}
	if phone != nil {
		snap.CustomerPhone = *phone
	}
	if custName != nil {
		snap.CustomerName = *custName
	}
	if note != nil {
		snap.Note = *note
	}
	snap.PaymentStatus = pricing.PaymentStatus(snap.GrandTotal, snap.Due)

	rows, err := s.Pool.Query(ctx, `
		SELECT product_name, quantity, sell_price_per_quantity, discount_total, total_discounted_amount
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at, id`, transactionID)
	if err != nil {
		return Snapshot{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var it SnapshotItem
		if err := rows.Scan(&it.ProductName, &it.Quantity, &it.SellPricePerQuantity,
			&it.DiscountTotal, &it.TotalDiscountedAmount); err != nil {
			return Snapshot{}, err
		}
		snap.Items = append(snap.Items, it)
	}
	return snap, rows.Err()
}
