package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/arkan-dev/backend-pos/internal/common"
	"github.com/arkan-dev/backend-pos/internal/pricing"
	"github.com/arkan-dev/backend-pos/internal/tasks"
)

// ItemInput is one submitted cart line.
type ItemInput struct {
	ProductStock          string `json:"product_stock" validate:"required,uuid4"`
	Quantity              int    `json:"quantity" validate:"required,gt=0"`
	DiscountType          string `json:"discount_type" validate:"omitempty,oneof=flat percent"`
	DiscountTotal         int64  `json:"discount_total" validate:"gte=0"`
	TotalDiscountedAmount int64  `json:"total_discounted_amount" validate:"gte=0"`
}

// CreateInput is the quick-sell order payload.
type CreateInput struct {
	Items               []ItemInput `json:"items" validate:"required,min=1,dive"`
	Subtotal            int64       `json:"subtotal" validate:"gte=0"`
	Discount            int64       `json:"discount" validate:"gte=0"`
	GrandTotal          int64       `json:"grand_total" validate:"gte=0"`
	AmountPaid          int64       `json:"amount_paid" validate:"gte=0"`
	AmountChange        int64       `json:"amount_change" validate:"gte=0"`
	Due                 int64       `json:"due" validate:"gte=0"`
	PaymentMethod       string      `json:"payment_method" validate:"required,oneof=cash card mobile due"`
	Note                string      `json:"note" validate:"max=500"`
	CustomerPhoneNumber string      `json:"customer_phone_number" validate:"omitempty,min=6,max=32"`
}

// Receipt is returned once an order has been persisted.
type Receipt struct {
	TransactionID string    `json:"transaction_id"`
	Subtotal      int64     `json:"subtotal"`
	Discount      int64     `json:"discount"`
	GrandTotal    int64     `json:"grand_total"`
	AmountPaid    int64     `json:"amount_paid"`
	AmountChange  int64     `json:"amount_change"`
	Due           int64     `json:"due"`
	PaymentMethod string    `json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`
}

// Service encapsulates order persistence.
type Service struct {
	Pool  *pgxpool.Pool
	Tasks *asynq.Client
	Log   zerolog.Logger
}

type lockedProduct struct {
	id        string
	name      string
	quantity  int
	threshold int
}

// Create validates, reprices, and persists a quick-sell order in one
// transaction: order header, discounted items, stock decrement, and the
// customer's due when the order is not fully paid.
func (s *Service) Create(ctx context.Context, shopID string, in CreateInput) (Receipt, error) {
	if s == nil || s.Pool == nil {
		return Receipt{}, errors.New("order service not configured")
	}
	if in.Due > 0 && in.PaymentMethod != "due" && in.CustomerPhoneNumber == "" {
		return Receipt{}, common.ErrValidation("a customer phone number is required for orders with an outstanding due", nil)
	}
	if err := verifyDistinctProducts(in.Items); err != nil {
		return Receipt{}, err
	}

	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Receipt{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	lines := make([]pricing.Line, 0, len(in.Items))
	locked := make([]lockedProduct, 0, len(in.Items))
	for _, item := range in.Items {
		var (
			name      string
			sellPrice int64
			quantity  int
			threshold int
		)
		err := tx.QueryRow(ctx, `
			SELECT name, unit_sell_price, quantity, low_stock_threshold
			FROM products
			WHERE id = $1 AND shop_id = $2
			FOR UPDATE`, item.ProductStock, shopID).Scan(&name, &sellPrice, &quantity, &threshold)
		if errors.Is(err, pgx.ErrNoRows) {
			return Receipt{}, common.ErrNotFound("product not found: " + item.ProductStock)
		}
		if err != nil {
			return Receipt{}, err
		}
		if quantity < item.Quantity {
			return Receipt{}, common.ErrConflict("insufficient stock for " + name)
		}
		lines = append(lines, pricing.Line{ProductRef: item.ProductStock, Qty: item.Quantity, UnitPrice: sellPrice})
		locked = append(locked, lockedProduct{id: item.ProductStock, name: name, quantity: quantity, threshold: threshold})
	}

	if err := VerifyTotals(lines, in); err != nil {
		return Receipt{}, err
	}
	settlement := pricing.Settle(lines, in.Discount, in.AmountPaid)
	alloc := pricing.Allocate(lines, in.Discount)

	receipt := Receipt{
		TransactionID: uuid.NewString(),
		Subtotal:      settlement.Subtotal,
		Discount:      settlement.Discount,
		GrandTotal:    settlement.GrandTotal,
		AmountPaid:    settlement.AmountPaid,
		AmountChange:  settlement.Change,
		Due:           settlement.Due,
		PaymentMethod: in.PaymentMethod,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (id, shop_id, customer_phone, payment_method, note,
			subtotal, discount, grand_total, amount_paid, amount_change, due)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`,
		receipt.TransactionID, shopID, nullable(in.CustomerPhoneNumber), in.PaymentMethod, nullable(in.Note),
		settlement.Subtotal, settlement.Discount, settlement.GrandTotal,
		settlement.AmountPaid, settlement.Change, settlement.Due).Scan(&receipt.CreatedAt)
	if err != nil {
		return Receipt{}, err
	}

	lowStock := make([]tasks.LowStockPayload, 0, 1)
	for i, item := range in.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, quantity,
				sell_price_per_quantity, discount_type, discount_total, total_discounted_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			uuid.NewString(), receipt.TransactionID, item.ProductStock, locked[i].name, item.Quantity,
			lines[i].UnitPrice, defaultDiscountType(item.DiscountType), alloc[i].Discount, alloc[i].DiscountedTotal); err != nil {
			return Receipt{}, err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE products SET quantity = quantity - $3, updated_at = now()
			WHERE id = $1 AND shop_id = $2`,
			item.ProductStock, shopID, item.Quantity); err != nil {
			return Receipt{}, err
		}
		if remaining := locked[i].quantity - item.Quantity; remaining <= locked[i].threshold {
			lowStock = append(lowStock, tasks.LowStockPayload{
				ShopID:    shopID,
				ProductID: item.ProductStock,
				Name:      locked[i].name,
				Quantity:  remaining,
				Threshold: locked[i].threshold,
			})
		}
	}

	if settlement.Due > 0 && in.CustomerPhoneNumber != "" {
		if _, err := tx.Exec(ctx, `
			INSERT INTO customers (id, shop_id, phone, name, due_total)
			VALUES ($1, $2, $3, '', $4)
			ON CONFLICT (shop_id, phone)
			DO UPDATE SET due_total = customers.due_total + EXCLUDED.due_total`,
			uuid.NewString(), shopID, in.CustomerPhoneNumber, settlement.Due); err != nil {
			return Receipt{}, err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO customer_dues (id, shop_id, customer_phone, order_id, kind, amount)
			VALUES ($1, $2, $3, $4, 'accrue', $5)`,
			uuid.NewString(), shopID, in.CustomerPhoneNumber, receipt.TransactionID, settlement.Due); err != nil {
			return Receipt{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Receipt{}, err
	}

	for _, payload := range lowStock {
		task, err := tasks.NewLowStockTask(payload)
		if err != nil {
			continue
		}
		if s.Tasks != nil {
			if _, err := s.Tasks.EnqueueContext(ctx, task); err != nil {
				s.Log.Error().Err(err).Str("product_id", payload.ProductID).Msg("enqueue low stock alert")
			}
		}
	}
	return receipt, nil
}

// List returns a page of the shop's orders, newest first.
func (s *Service) List(ctx context.Context, shopID string, page, perPage int) ([]Receipt, int, error) {
	var total int
	if err := s.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE shop_id = $1`, shopID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, subtotal, discount, grand_total, amount_paid, amount_change, due, payment_method, created_at
		FROM orders
		WHERE shop_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, shopID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	orders := make([]Receipt, 0, perPage)
	for rows.Next() {
		var o Receipt
		if err := rows.Scan(&o.TransactionID, &o.Subtotal, &o.Discount, &o.GrandTotal,
			&o.AmountPaid, &o.AmountChange, &o.Due, &o.PaymentMethod, &o.CreatedAt); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

// Get loads one order header scoped to the shop.
func (s *Service) Get(ctx context.Context, shopID, transactionID string) (Receipt, error) {
	var o Receipt
	err := s.Pool.QueryRow(ctx, `
		SELECT id, subtotal, discount, grand_total, amount_paid, amount_change, due, payment_method, created_at
		FROM orders
		WHERE id = $1 AND shop_id = $2`, transactionID, shopID).Scan(
		&o.TransactionID, &o.Subtotal, &o.Discount, &o.GrandTotal,
		&o.AmountPaid, &o.AmountChange, &o.Due, &o.PaymentMethod, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Receipt{}, common.ErrNotFound("order not found")
	}
	return o, err
}

func defaultDiscountType(t string) string {
	if t == "" {
		return "flat"
	}
	return t
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
