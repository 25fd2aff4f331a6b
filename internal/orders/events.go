package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type NotificationItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

// OrderNotificationPayload carries everything a delivery channel needs
// without a read-back to the orders store.
type OrderNotificationPayload struct {
	OrderID     string             `json:"order_id"`
	UserID      string             `json:"user_id"`
	Status      string             `json:"status"`
	TotalAmount string             `json:"total_amount"`
	Items       []NotificationItem `json:"items"`
}
