package customer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/arkan-dev/backend-pos/internal/common"
	"github.com/arkan-dev/backend-pos/internal/tasks"
)

// Customer is a shop's buyer, keyed by phone number within the shop.
type Customer struct {
	ID             string     `json:"id"`
	Phone          string     `json:"phone"`
	Name           string     `json:"name"`
	Address        string     `json:"address,omitempty"`
	DueTotal       int64      `json:"due_total"`
	LastRemindedAt *time.Time `json:"last_reminded_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// DueEntry is one row of a customer's dues ledger.
type DueEntry struct {
	ID        string    `json:"id"`
	OrderID   *string   `json:"order_id,omitempty"`
	Kind      string    `json:"kind"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateInput carries a new customer record.
type CreateInput struct {
	Phone   string `json:"phone" validate:"required,min=6,max=32"`
	Name    string `json:"name" validate:"required,max=120"`
	Address string `json:"address" validate:"max=250"`
}

// UpdateInput carries a partial customer update.
type UpdateInput struct {
	Name    *string `json:"name" validate:"omitempty,max=120"`
	Address *string `json:"address" validate:"omitempty,max=250"`
}

// CollectInput records a due repayment.
type CollectInput struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// Service manages customers and their dues ledger.
type Service struct {
	Pool  *pgxpool.Pool
	Tasks *asynq.Client
	Log   zerolog.Logger
}

// Create registers a customer for the shop. Phone numbers are unique per
// shop.
func (s *Service) Create(ctx context.Context, shopID string, in CreateInput) (Customer, error) {
	c := Customer{
		ID:      uuid.NewString(),
		Phone:   in.Phone,
		Name:    in.Name,
		Address: in.Address,
	}
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO customers (id, shop_id, phone, name, address, due_total)
		VALUES ($1, $2, $3, $4, $5, 0)
		RETURNING created_at`,
		c.ID, shopID, c.Phone, c.Name, nullableStr(c.Address)).Scan(&c.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Customer{}, common.ErrConflict("a customer with this phone already exists")
	}
	if err != nil {
		return Customer{}, err
	}
	return c, nil
}

// List returns a page of the shop's customers, highest dues first.
func (s *Service) List(ctx context.Context, shopID string, page, perPage int) ([]Customer, int, error) {
	var total int
	if err := s.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE shop_id = $1`, shopID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, phone, COALESCE(name, ''), COALESCE(address, ''), due_total, last_reminded_at, created_at
		FROM customers
		WHERE shop_id = $1
		ORDER BY due_total DESC, created_at DESC
		LIMIT $2 OFFSET $3`, shopID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	customers := make([]Customer, 0, perPage)
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Phone, &c.Name, &c.Address, &c.DueTotal, &c.LastRemindedAt, &c.CreatedAt); err != nil {
			return nil, 0, err
		}
		customers = append(customers, c)
	}
	return customers, total, rows.Err()
}

// Get loads one customer by phone, scoped to the shop.
func (s *Service) Get(ctx context.Context, shopID, phone string) (Customer, error) {
	var c Customer
	err := s.Pool.QueryRow(ctx, `
		SELECT id, phone, COALESCE(name, ''), COALESCE(address, ''), due_total, last_reminded_at, created_at
		FROM customers
		WHERE shop_id = $1 AND phone = $2`, shopID, phone).Scan(
		&c.ID, &c.Phone, &c.Name, &c.Address, &c.DueTotal, &c.LastRemindedAt, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, common.ErrNotFound("customer not found")
	}
	return c, err
}

// Update applies a partial update to the customer record.
func (s *Service) Update(ctx context.Context, shopID, phone string, in UpdateInput) (Customer, error) {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE customers SET
			name = COALESCE($3, name),
			address = COALESCE($4, address)
		WHERE shop_id = $1 AND phone = $2`,
		shopID, phone, in.Name, in.Address)
	if err != nil {
		return Customer{}, err
	}
	if tag.RowsAffected() == 0 {
		return Customer{}, common.ErrNotFound("customer not found")
	}
	return s.Get(ctx, shopID, phone)
}

// Dues returns the customer's ledger, newest first.
func (s *Service) Dues(ctx context.Context, shopID, phone string) ([]DueEntry, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, order_id, kind, amount, created_at
		FROM customer_dues
		WHERE shop_id = $1 AND customer_phone = $2
		ORDER BY created_at DESC`, shopID, phone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]DueEntry, 0, 8)
	for rows.Next() {
		var e DueEntry
		if err := rows.Scan(&e.ID, &e.OrderID, &e.Kind, &e.Amount, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Collect records a repayment against the customer's outstanding due. The
// decrement and the ledger row commit together.
func (s *Service) Collect(ctx context.Context, shopID, phone string, in CollectInput) (Customer, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Customer{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var due int64
	err = tx.QueryRow(ctx, `
		SELECT due_total FROM customers
		WHERE shop_id = $1 AND phone = $2
		FOR UPDATE`, shopID, phone).Scan(&due)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, common.ErrNotFound("customer not found")
	}
	if err != nil {
		return Customer{}, err
	}
	if in.Amount > due {
		return Customer{}, common.ErrConflict("collection exceeds outstanding due")
	}

	if _, err := tx.Exec(ctx, `
		UPDATE customers SET due_total = due_total - $3
		WHERE shop_id = $1 AND phone = $2`, shopID, phone, in.Amount); err != nil {
		return Customer{}, err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO customer_dues (id, shop_id, customer_phone, kind, amount)
		VALUES ($1, $2, $3, 'collect', $4)`,
		uuid.NewString(), shopID, phone, in.Amount); err != nil {
		return Customer{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Customer{}, err
	}
	return s.Get(ctx, shopID, phone)
}

// Remind enqueues a due reminder task for the customer. Nothing to remind is
// a conflict, not a silent no-op.
func (s *Service) Remind(ctx context.Context, shopID, phone string) error {
	c, err := s.Get(ctx, shopID, phone)
	if err != nil {
		return err
	}
	if c.DueTotal <= 0 {
		return common.ErrConflict("customer has no outstanding due")
	}
	task, err := tasks.NewDueReminderTask(tasks.DueReminderPayload{
		ShopID:        shopID,
		CustomerPhone: phone,
		CustomerName:  c.Name,
		Due:           c.DueTotal,
	})
	if err != nil {
		return err
	}
	if s.Tasks == nil {
		return errors.New("task client not configured")
	}
	info, err := s.Tasks.EnqueueContext(ctx, task)
	if err != nil {
		return err
	}
	s.Log.Info().Str("task_id", info.ID).Str("phone", phone).Msg("due reminder enqueued")
	return nil
}

func nullableStr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
