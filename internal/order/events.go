package order

import (
	"context"
	"time"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderCancelled     = "order.cancelled"
)

// Publisher is the slice of the message broker the order flow needs.
type Publisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

type Event struct {
	EventID   string       `json:"event_id"`
	EventType string       `json:"event_type"`
	Payload   EventPayload `json:"payload"`
	Timestamp time.Time    `json:"timestamp"`
}

type EventPayload struct {
	ID     string      `json:"id"`
	UserID string      `json:"user_id"`
	Status string      `json:"status"`
	Total  string      `json:"total"`
	Items  []EventItem `json:"items"`
}

type EventItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
