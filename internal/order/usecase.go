package order

import (
	"context"
	"time"

	"github.com/chickencore/order-service/internal/model"
	"github.com/chickencore/order-service/internal/order/dto"
)

// Locker serializes checkouts per user. Satisfied by cache.RedisClient.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

type UseCase interface {
	// Checkout converts the caller's cart into an order. Stock decrement,
	// order rows and cart clearing commit atomically.
	Checkout(ctx context.Context, userID string, input *dto.CheckoutInput) (*model.Order, error)

	GetOrder(ctx context.Context, callerID, role, orderID string) (*model.Order, error)
	ListOrders(ctx context.Context, callerID, role string, filters *dto.OrderFilters) ([]model.Order, int, error)

	UpdateStatus(ctx context.Context, callerID, orderID string, input *dto.UpdateStatusInput) (*model.Order, error)
	Cancel(ctx context.Context, callerID, role, orderID string, input *dto.CancelInput) (*model.Order, error)

	TodaysOrders(ctx context.Context) ([]model.Order, error)
	ScheduledOrders(ctx context.Context, days int) ([]model.Order, error)
	Stats(ctx context.Context) (*dto.OrderStats, error)
}
