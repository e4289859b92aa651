package auth

import (
	"context"

	"github.com/chickencore/order-service/internal/auth/dto"
	"github.com/chickencore/order-service/internal/model"
)

type UseCase interface {
	Login(ctx context.Context, input *dto.LoginInput) (string, *model.User, error)
	Register(ctx context.Context, input *dto.RegisterInput) (*model.User, error)
}
