package inventory

import (
	"context"

	"github.com/chickencore/order-service/internal/inventory/dto"
	"github.com/chickencore/order-service/internal/model"
)

type Repository interface {
	// CheckAvailability reports whether the committed stock of a product
	// covers quantity. Unknown products report false.
	CheckAvailability(ctx context.Context, productID string, quantity int) (bool, error)

	// Adjust applies one stock mutation and writes its movement record in a
	// single transaction.
	Adjust(ctx context.Context, input *dto.AdjustInput) (*model.InventoryMovement, error)

	// Movements / Audit
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
}
