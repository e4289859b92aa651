package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chickencore/order-service/internal/apperr"
	"github.com/chickencore/order-service/internal/model"
	"github.com/chickencore/order-service/internal/product"
	"github.com/chickencore/order-service/internal/product/dto"
	"github.com/chickencore/order-service/pkg/cache"
	"github.com/chickencore/order-service/pkg/logger"
	"github.com/chickencore/order-service/pkg/search"
)

const productIndex = "products"

type productUseCase struct {
	repo   product.Repository
	cache  *cache.RedisClient
	es     *search.Client
	logger logger.ZapLogger
}

func NewProductUseCase(repo product.Repository, cache *cache.RedisClient, es *search.Client, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		cache:  cache,
		es:     es,
		logger: log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	existing, err := uc.repo.FindByNamePresentation(ctx, input.Name, input.Presentation)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Newf(apperr.Conflict,
			"a product named %q with presentation %q already exists", input.Name, input.Presentation)
	}

	id := uuid.New().String()

	gifts, err := uc.validateGifts(ctx, id, input.Gifts)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	var categoryID *string
	if input.CategoryID != "" {
		categoryID = &input.CategoryID
	}
	var description *string
	if input.Description != "" {
		description = &input.Description
	}
	var imageURL *string
	if input.ImageURL != "" {
		imageURL = &input.ImageURL
	}

	p := &model.Product{
		BaseModel:     model.BaseModel{ID: id, CreatedAt: now, UpdatedAt: now},
		CategoryID:    categoryID,
		Name:          input.Name,
		Presentation:  input.Presentation,
		Description:   description,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		MinStock:      input.MinStock,
		HasGifts:      len(gifts) > 0,
		IsFlagship:    input.IsFlagship,
		IsActive:      true,
		ImageURL:      imageURL,
		Gifts:         gifts,
	}

	if err := uc.repo.Create(ctx, p, "Initial stock"); err != nil {
		return nil, err
	}

	go uc.invalidateProductCache(context.Background())
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) validateGifts(ctx context.Context, productID string, inputs []dto.GiftInput) ([]model.GiftAllocation, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	gifts := make([]model.GiftAllocation, 0, len(inputs))
	seen := map[string]bool{}
	for _, g := range inputs {
		if g.GiftID == productID {
			return nil, apperr.New(apperr.Validation, "a product cannot gift itself")
		}
		if seen[g.GiftID] {
			return nil, apperr.Newf(apperr.Validation, "duplicate gift %s", g.GiftID)
		}
		seen[g.GiftID] = true

		target, err := uc.repo.FindByID(ctx, g.GiftID)
		if err != nil {
			return nil, err
		}
		if target == nil {
			return nil, apperr.Newf(apperr.NotFound, "gift product %s not found", g.GiftID)
		}
		if !target.IsActive {
			return nil, apperr.Newf(apperr.Validation,
				"product %s %s is inactive and cannot be a gift target", target.Name, target.Presentation)
		}
		if target.HasGifts {
			return nil, apperr.Newf(apperr.Validation,
				"product %s %s carries gifts itself and cannot be a gift target", target.Name, target.Presentation)
		}

		gifts = append(gifts, model.GiftAllocation{GiftID: g.GiftID, Quantity: g.Quantity})
	}
	return gifts, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.Newf(apperr.NotFound, "product %s not found", id)
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	cacheKey, err := uc.generateCacheKey(filters)
	if err == nil {
		val, err := uc.cache.Client.Get(ctx, cacheKey).Result()
		if err == nil {
			var result struct {
				Products []model.Product
				Count    int
			}
			if err := json.Unmarshal([]byte(val), &result); err == nil {
				return result.Products, result.Count, nil
			}
		}
	}

	if filters.SearchQuery != "" && uc.es != nil {
		q := map[string]interface{}{
			"query": map[string]interface{}{
				"query_string": map[string]interface{}{
					"query":  fmt.Sprintf("*%s*", filters.SearchQuery),
					"fields": []string{"name^3", "presentation^2", "description"},
				},
			},
			"from": (filters.Page - 1) * filters.PageSize,
		}
		if filters.PageSize > 0 {
			q["size"] = filters.PageSize
		}

		res, err := uc.es.Search(ctx, productIndex, q)
		if err == nil {
			var esProducts []model.Product
			for _, hit := range res.Hits.Hits {
				var p model.Product
				if err := json.Unmarshal(hit.Source, &p); err == nil {
					esProducts = append(esProducts, p)
				}
			}
			return esProducts, res.Hits.Total.Value, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	products, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	if cacheKey != "" {
		cacheData := struct {
			Products []model.Product
			Count    int
		}{
			Products: products,
			Count:    count,
		}
		if data, err := json.Marshal(cacheData); err == nil {
			uc.cache.Client.Set(ctx, cacheKey, data, 5*time.Minute)
		}
	}

	return products, count, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.Newf(apperr.NotFound, "product %s not found", input.ID)
	}

	if p.Name != input.Name || p.Presentation != input.Presentation {
		clash, err := uc.repo.FindByNamePresentation(ctx, input.Name, input.Presentation)
		if err != nil {
			return nil, err
		}
		if clash != nil && clash.ID != p.ID {
			return nil, apperr.Newf(apperr.Conflict,
				"a product named %q with presentation %q already exists", input.Name, input.Presentation)
		}
	}

	replaceGifts := input.Gifts != nil
	if replaceGifts {
		gifts, err := uc.validateGifts(ctx, p.ID, *input.Gifts)
		if err != nil {
			return nil, err
		}
		p.Gifts = gifts
		p.HasGifts = len(gifts) > 0
	}

	p.Name = input.Name
	p.Presentation = input.Presentation
	p.Price = input.Price
	p.MinStock = input.MinStock
	p.IsFlagship = input.IsFlagship
	p.IsActive = input.IsActive
	if input.CategoryID != "" {
		catID := input.CategoryID
		p.CategoryID = &catID
	} else {
		p.CategoryID = nil
	}
	if input.Description != "" {
		desc := input.Description
		p.Description = &desc
	} else {
		p.Description = nil
	}
	if input.ImageURL != "" {
		img := input.ImageURL
		p.ImageURL = &img
	} else {
		p.ImageURL = nil
	}
	p.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, p, replaceGifts); err != nil {
		return nil, err
	}

	go uc.invalidateProductCache(context.Background())
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return nil // Already deleted
	}

	refs, err := uc.repo.CountActiveReferences(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return apperr.New(apperr.Conflict,
			"product is referenced by carts, orders, or gift allocations and cannot be deleted; deactivate it instead")
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	go uc.invalidateProductCache(context.Background())
	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), productIndex, id); err != nil {
				uc.logger.Error("failed to delete product from ES", zap.Error(err))
			}
		}()
	}

	return nil
}

func (uc *productUseCase) AvailableGifts(ctx context.Context) ([]model.Product, error) {
	return uc.repo.AvailableGifts(ctx)
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}

	mapping := `{
		"mappings": {
			"properties": {
				"name": { "type": "text" },
				"presentation": { "type": "text" },
				"description": { "type": "text" },
				"price": { "type": "keyword" },
				"is_flagship": { "type": "boolean" },
				"created_at": { "type": "date" }
			}
		}
	}`
	_ = uc.es.CreateIndex(ctx, productIndex, mapping)

	if err := uc.es.Index(ctx, productIndex, p.ID, p); err != nil {
		uc.logger.Error("failed to index product", zap.Error(err))
	}
}

func (uc *productUseCase) generateCacheKey(filters *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("products:list:%x", md5.Sum(data)), nil
}

func (uc *productUseCase) invalidateProductCache(ctx context.Context) {
	keys, err := uc.cache.Client.Keys(ctx, "products:list:*").Result()
	if err == nil && len(keys) > 0 {
		uc.cache.Client.Del(ctx, keys...)
	}
}
