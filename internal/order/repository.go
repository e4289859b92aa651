package order

import (
	"context"
	"time"

	"github.com/chickencore/order-service/internal/model"
	"github.com/chickencore/order-service/internal/order/dto"
)

type Repository interface {
	// CreateFromCart persists the order, decrements stock for every line and
	// gift, writes the opening status history row and empties the cart, all in
	// one transaction. Any stock shortfall aborts the whole checkout.
	CreateFromCart(ctx context.Context, o *model.Order, cartID string) error

	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)

	// UpdateStatus moves the order through the status machine while holding
	// the order row lock, so concurrent transitions serialize.
	UpdateStatus(ctx context.Context, orderID string, next model.OrderStatus, changedBy string, notes *string) (*model.Order, error)

	// Cancel transitions to CANCELLED and restores the stock of every line and
	// gift in the same transaction.
	Cancel(ctx context.Context, orderID, changedBy string, reason *string) (*model.Order, error)

	TodaysOrders(ctx context.Context) ([]model.Order, error)
	ScheduledBetween(ctx context.Context, from, to time.Time) ([]model.Order, error)
	Stats(ctx context.Context) (*dto.OrderStats, error)
}
