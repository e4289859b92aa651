package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/chickencore/order-service/internal/apperr"
	"github.com/chickencore/order-service/internal/category"
	"github.com/chickencore/order-service/internal/category/dto"
	"github.com/chickencore/order-service/internal/model"
	"github.com/chickencore/order-service/pkg/logger"
)

type categoryUseCase struct {
	repo   category.Repository
	logger logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{repo: repo, logger: log}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	existing, err := uc.repo.FindByName(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Newf(apperr.Conflict, "category %q already exists", input.Name)
	}

	now := time.Now()
	c := &model.Category{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:      input.Name,
		SortOrder: input.SortOrder,
		IsActive:  true,
	}
	if input.Description != "" {
		c.Description = &input.Description
	}
	if input.ImageURL != "" {
		c.ImageURL = &input.ImageURL
	}

	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	c, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.Newf(apperr.NotFound, "category %s not found", input.ID)
	}

	if c.Name != input.Name {
		clash, err := uc.repo.FindByName(ctx, input.Name)
		if err != nil {
			return nil, err
		}
		if clash != nil && clash.ID != c.ID {
			return nil, apperr.Newf(apperr.Conflict, "category %q already exists", input.Name)
		}
	}

	c.Name = input.Name
	c.SortOrder = input.SortOrder
	c.IsActive = input.IsActive
	c.Description = nil
	if input.Description != "" {
		desc := input.Description
		c.Description = &desc
	}
	c.ImageURL = nil
	if input.ImageURL != "" {
		img := input.ImageURL
		c.ImageURL = &img
	}
	c.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id string) error {
	c, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return nil
	}

	count, err := uc.repo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Newf(apperr.Conflict, "category %q still has %d products", c.Name, count)
	}

	return uc.repo.Delete(ctx, id)
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	c, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.Newf(apperr.NotFound, "category %s not found", id)
	}
	return c, nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	return uc.repo.FindAll(ctx, activeOnly)
}
