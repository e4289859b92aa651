package inventory

import (
	"context"

	"github.com/chickencore/order-service/internal/inventory/dto"
	"github.com/chickencore/order-service/internal/model"
)

type UseCase interface {
	CheckAvailability(ctx context.Context, productID string, quantity int) (bool, error)
	AdjustInventory(ctx context.Context, input *dto.AdjustInput) (*model.InventoryMovement, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
}
