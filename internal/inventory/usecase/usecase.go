package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chickencore/order-service/internal/apperr"
	"github.com/chickencore/order-service/internal/inventory"
	"github.com/chickencore/order-service/internal/inventory/dto"
	"github.com/chickencore/order-service/internal/model"
	"github.com/chickencore/order-service/pkg/cache"
	"github.com/chickencore/order-service/pkg/logger"
)

type inventoryUseCase struct {
	repo   inventory.Repository
	cache  *cache.RedisClient
	logger logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, cache *cache.RedisClient, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

func (uc *inventoryUseCase) CheckAvailability(ctx context.Context, productID string, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, apperr.New(apperr.Validation, "quantity must be positive")
	}
	return uc.repo.CheckAvailability(ctx, productID, quantity)
}

func (uc *inventoryUseCase) AdjustInventory(ctx context.Context, input *dto.AdjustInput) (*model.InventoryMovement, error) {
	switch input.MovementType {
	case model.MovementIn, model.MovementOut:
		if input.Quantity <= 0 {
			return nil, apperr.New(apperr.Validation, "quantity must be positive")
		}
	case model.MovementAdjustment:
		if input.Quantity < 0 {
			return nil, apperr.New(apperr.InsufficientStock, "stock cannot be set below zero")
		}
	default:
		return nil, apperr.Newf(apperr.Validation, "unknown movement type %q", input.MovementType)
	}

	// Serialize manual adjustments per product; the conditional UPDATE already
	// protects the counter, the lock just avoids pointless transaction aborts.
	lockKey := fmt.Sprintf("lock:inventory:%s", input.ProductID)
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire lock redis error", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !acquired {
		return nil, apperr.New(apperr.Conflict, "system busy, please try again later")
	}
	defer uc.cache.ReleaseLock(ctx, lockKey, lockValue)

	movement, err := uc.repo.Adjust(ctx, input)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("stock adjusted",
		zap.String("product_id", input.ProductID),
		zap.String("movement_type", input.MovementType),
		zap.Int("quantity_after", movement.QuantityAfter),
	)
	return movement, nil
}

func (uc *inventoryUseCase) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	return uc.repo.ListMovements(ctx, filters)
}
