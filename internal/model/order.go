package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending          OrderStatus = "PENDING"
	OrderStatusInPreparation    OrderStatus = "IN_PREPARATION"
	OrderStatusReadyForPickup   OrderStatus = "READY_FOR_PICKUP"
	OrderStatusReadyForDelivery OrderStatus = "READY_FOR_DELIVERY"
	OrderStatusDelivered        OrderStatus = "DELIVERED"
	OrderStatusCancelled        OrderStatus = "CANCELLED"
)

// orderTransitions is the authoritative status machine. DELIVERED and
// CANCELLED are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:          {OrderStatusInPreparation, OrderStatusCancelled},
	OrderStatusInPreparation:    {OrderStatusReadyForPickup, OrderStatusReadyForDelivery, OrderStatusCancelled},
	OrderStatusReadyForPickup:   {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusReadyForDelivery: {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:        {},
	OrderStatusCancelled:        {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type OrderType string

const (
	OrderTypeImmediate OrderType = "IMMEDIATE"
	OrderTypeScheduled OrderType = "SCHEDULED"
)

type DeliveryType string

const (
	DeliveryTypePickup   DeliveryType = "PICKUP"
	DeliveryTypeDelivery DeliveryType = "DELIVERY"
)

// Order is immutable after creation except for status and payment fields.
type Order struct {
	BaseModel
	UserID        string               `db:"user_id" json:"user_id"`
	OrderType     OrderType            `db:"order_type" json:"order_type"`
	DeliveryType  DeliveryType         `db:"delivery_type" json:"delivery_type"`
	Status        OrderStatus          `db:"status" json:"status"`
	Subtotal      decimal.Decimal      `db:"subtotal" json:"subtotal"`
	Tax           decimal.Decimal      `db:"tax" json:"tax"`
	Total         decimal.Decimal      `db:"total" json:"total"`
	ScheduledFor  *time.Time           `db:"scheduled_for" json:"scheduled_for"`
	AddressID     *string              `db:"address_id" json:"address_id"`
	Notes         *string              `db:"notes" json:"notes"`
	PaymentMethod *string              `db:"payment_method" json:"payment_method"`
	IsPaid        bool                 `db:"is_paid" json:"is_paid"`
	PaidAt        *time.Time           `db:"paid_at" json:"paid_at"`
	Items         []OrderItem          `db:"-" json:"items,omitempty"`
	StatusHistory []OrderStatusHistory `db:"-" json:"status_history,omitempty"`
}

// OrderItem snapshots the unit price at creation time; it is never recomputed
// from the product afterwards.
type OrderItem struct {
	ID            string                   `db:"id" json:"id"`
	OrderID       string                   `db:"order_id" json:"order_id"`
	ProductID     string                   `db:"product_id" json:"product_id"`
	Quantity      int                      `db:"quantity" json:"quantity"`
	UnitPrice     decimal.Decimal          `db:"unit_price" json:"unit_price"`
	IsFlagship    bool                     `db:"is_flagship" json:"is_flagship"`
	Product       *Product                 `db:"-" json:"product,omitempty"`
	SelectedGifts []OrderItemGiftSelection `db:"-" json:"selected_gifts"`
}

type OrderItemGiftSelection struct {
	ID          string   `db:"id" json:"id"`
	OrderItemID string   `db:"order_item_id" json:"order_item_id"`
	GiftID      string   `db:"gift_id" json:"gift_id"`
	Quantity    int      `db:"quantity" json:"quantity"`
	Gift        *Product `db:"-" json:"gift,omitempty"`
}

// OrderStatusHistory is the append-only transition log, one row per change
// including the initial PENDING entry.
type OrderStatusHistory struct {
	ID        string      `db:"id" json:"id"`
	OrderID   string      `db:"order_id" json:"order_id"`
	Status    OrderStatus `db:"status" json:"status"`
	ChangedBy string      `db:"changed_by" json:"changed_by"`
	Notes     *string     `db:"notes" json:"notes"`
	ChangedAt time.Time   `db:"changed_at" json:"changed_at"`
}
