package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/chickencore/order-service/internal/apperr"
	"github.com/chickencore/order-service/internal/auth"
	"github.com/chickencore/order-service/internal/auth/dto"
	"github.com/chickencore/order-service/internal/model"
	"github.com/chickencore/order-service/pkg/logger"
)

type authUseCase struct {
	repo   auth.Repository
	tokens *auth.TokenManager
	logger logger.ZapLogger
}

func NewAuthUseCase(repo auth.Repository, tokens *auth.TokenManager, log logger.ZapLogger) auth.UseCase {
	return &authUseCase{
		repo:   repo,
		tokens: tokens,
		logger: log,
	}
}

func (uc *authUseCase) Login(ctx context.Context, input *dto.LoginInput) (string, *model.User, error) {
	user, err := uc.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, apperr.New(apperr.Unauthorized, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return "", nil, apperr.New(apperr.Unauthorized, "invalid credentials")
	}

	token, err := uc.tokens.Generate(user.ID, user.Role)
	if err != nil {
		uc.logger.Error("failed to sign token", zap.Error(err))
		return "", nil, err
	}

	return token, user, nil
}

func (uc *authUseCase) Register(ctx context.Context, input *dto.RegisterInput) (*model.User, error) {
	existing, err := uc.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.New(apperr.Conflict, "email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	var phone *string
	if input.PhoneNumber != "" {
		phone = &input.PhoneNumber
	}

	user := &model.User{
		BaseModel:    model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Email:        input.Email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PhoneNumber:  phone,
		Role:         model.RoleCustomer,
	}

	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
