package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/arkan-dev/backend-pos/internal/obs"
)

// Handler processes background tasks against the database.
type Handler struct {
	Pool *pgxpool.Pool
	Log  zerolog.Logger
}

// HandleDueReminder marks the customer as reminded. Actual delivery (SMS or
// push) happens outside this service, so the worker only records the attempt.
func (h *Handler) HandleDueReminder(ctx context.Context, t *asynq.Task) error {
	var p DueReminderPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("due reminder payload: %w", err)
	}

	tag, err := h.Pool.Exec(ctx, `
		UPDATE customers SET last_reminded_at = now()
		WHERE shop_id = $1 AND phone = $2`,
		p.ShopID, p.CustomerPhone,
	)
	if err != nil {
		return fmt.Errorf("mark reminded: %w", err)
	}
	if tag.RowsAffected() == 0 {
		h.Log.Warn().Str("shop_id", p.ShopID).Str("phone", p.CustomerPhone).
			Msg("due reminder for unknown customer")
		return nil
	}

	if obs.DueRemindersTotal != nil {
		obs.DueRemindersTotal.WithLabelValues("ok").Inc()
	}
	h.Log.Info().
		Str("shop_id", p.ShopID).
		Str("phone", p.CustomerPhone).
		Int64("due", p.Due).
		Msg("due reminder recorded")
	return nil
}

// HandleLowStock persists a stock alert row for the shop dashboard.
func (h *Handler) HandleLowStock(ctx context.Context, t *asynq.Task) error {
	var p LowStockPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("low stock payload: %w", err)
	}

	_, err := h.Pool.Exec(ctx, `
		INSERT INTO stock_alerts (shop_id, product_id, product_name, quantity, threshold)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ShopID, p.ProductID, p.Name, p.Quantity, p.Threshold,
	)
	if err != nil {
		return fmt.Errorf("insert stock alert: %w", err)
	}

	if obs.StockAlertsTotal != nil {
		obs.StockAlertsTotal.WithLabelValues("ok").Inc()
	}
	h.Log.Info().
		Str("shop_id", p.ShopID).
		Str("product_id", p.ProductID).
		Int("quantity", p.Quantity).
		Msg("low stock alert recorded")
	return nil
}
