package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// Task type names routed by the asynq mux.
const (
	TypeDueReminder = "due:reminder"
	TypeLowStock    = "stock:low"
)

// DueReminderPayload asks the worker to nudge a customer about an outstanding due.
type DueReminderPayload struct {
	ShopID        string `json:"shop_id"`
	CustomerPhone string `json:"customer_phone"`
	CustomerName  string `json:"customer_name"`
	Due           int64  `json:"due"`
}

// LowStockPayload records a product that fell to or below its threshold.
type LowStockPayload struct {
	ShopID    string `json:"shop_id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Threshold int    `json:"threshold"`
}

// NewDueReminderTask builds an asynq task carrying a due reminder.
func NewDueReminderTask(p DueReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeDueReminder, data, asynq.MaxRetry(5), asynq.Timeout(30*time.Second)), nil
}

// NewLowStockTask builds an asynq task carrying a low-stock alert.
func NewLowStockTask(p LowStockPayload) (*asynq.Task, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeLowStock, data, asynq.MaxRetry(3), asynq.Timeout(30*time.Second)), nil
}
