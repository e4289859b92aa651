package product

import (
	"context"

	"github.com/chickencore/order-service/internal/model"
	"github.com/chickencore/order-service/internal/product/dto"
)

type Repository interface {
	Create(ctx context.Context, p *model.Product, initialStockReason string) error
	Update(ctx context.Context, p *model.Product, replaceGifts bool) error
	Delete(ctx context.Context, id string) error

	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByNamePresentation(ctx context.Context, name, presentation string) (*model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Product, error)
	AvailableGifts(ctx context.Context) ([]model.Product, error)

	// CountActiveReferences counts cart lines plus open-order lines that
	// still point at the product; deletion is refused while it is non-zero.
	CountActiveReferences(ctx context.Context, id string) (int, error)
}
