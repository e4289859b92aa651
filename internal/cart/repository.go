package cart

import (
	"context"

	"github.com/chickencore/order-service/internal/model"
)

type Repository interface {
	// GetOrCreate returns the user's cart, creating an empty one on first use.
	// Items come back with their products and gift selections loaded.
	GetOrCreate(ctx context.Context, userID string) (*model.Cart, error)

	FindByUserID(ctx context.Context, userID string) (*model.Cart, error)
	FindItem(ctx context.Context, itemID string) (*model.CartItem, error)
	InsertItem(ctx context.Context, item *model.CartItem) error
	UpdateItem(ctx context.Context, item *model.CartItem, replaceGifts bool) error
	DeleteItem(ctx context.Context, itemID string) error
	Clear(ctx context.Context, cartID string) error
}
