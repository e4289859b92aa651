package category

import (
	"context"

	"github.com/chickencore/order-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, c *model.Category) error
	Update(ctx context.Context, c *model.Category) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Category, error)
	FindByName(ctx context.Context, name string) (*model.Category, error)
	FindAll(ctx context.Context, activeOnly bool) ([]model.Category, error)
	CountProducts(ctx context.Context, id string) (int, error)
}
