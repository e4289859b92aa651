package auth

import (
	"context"

	"github.com/chickencore/order-service/internal/model"
)

type Repository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}
