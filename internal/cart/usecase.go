package cart

import (
	"context"

	"github.com/chickencore/order-service/internal/cart/dto"
	"github.com/chickencore/order-service/internal/model"
)

type UseCase interface {
	GetCart(ctx context.Context, userID string) (*model.Cart, *dto.CartSummary, error)
	AddItem(ctx context.Context, userID string, input *dto.AddItemInput) (*model.Cart, error)
	UpdateItem(ctx context.Context, userID, itemID string, input *dto.UpdateItemInput) (*model.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID string) error
	ClearCart(ctx context.Context, userID string) error

	// ValidateForCheckout re-checks every line against current stock and
	// product state and returns a priced snapshot. It fails closed: any line
	// that cannot be fulfilled rejects the whole cart.
	ValidateForCheckout(ctx context.Context, userID string) (*dto.CheckoutSnapshot, error)
}
