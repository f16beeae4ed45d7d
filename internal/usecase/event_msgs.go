package usecase

import "time"

const (
	EventOrderPlaced    = "order.placed"
	EventOrderPaid      = "order.paid"
	EventOrderCancelled = "order.cancelled"
	EventStatusUpdated  = "order.status_updated"
)

// OrderEventMsg is published on the order events exchange after commit.
type OrderEventMsg struct {
	OrderID  string    `json:"orderId"`
	UserID   string    `json:"userId"`
	Type     string    `json:"type"`
	Status   string    `json:"status"`
	Method   string    `json:"method,omitempty"`
	Total    string    `json:"total,omitempty"`
	Occurred time.Time `json:"occurred"`
}

// FulfillmentStatusMsg arrives on the fulfillment Kafka topic.
type FulfillmentStatusMsg struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"` // SHIPPED or DELIVERED
}
