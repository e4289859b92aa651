package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chickencore/order-service/internal/apperr"
	"github.com/chickencore/order-service/internal/cart"
	"github.com/chickencore/order-service/internal/cart/dto"
	"github.com/chickencore/order-service/internal/inventory"
	"github.com/chickencore/order-service/internal/model"
	"github.com/chickencore/order-service/internal/product"
	"github.com/chickencore/order-service/pkg/logger"
)

type cartUseCase struct {
	repo        cart.Repository
	productRepo product.Repository
	invRepo     inventory.Repository
	taxRate     decimal.Decimal
	logger      logger.ZapLogger
}

func NewCartUseCase(
	repo cart.Repository,
	productRepo product.Repository,
	invRepo inventory.Repository,
	taxRate decimal.Decimal,
	log logger.ZapLogger,
) cart.UseCase {
	return &cartUseCase{
		repo:        repo,
		productRepo: productRepo,
		invRepo:     invRepo,
		taxRate:     taxRate,
		logger:      log,
	}
}

func (uc *cartUseCase) GetCart(ctx context.Context, userID string) (*model.Cart, *dto.CartSummary, error) {
	c, err := uc.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	summary := uc.summarize(c)
	return c, &summary, nil
}

func (uc *cartUseCase) AddItem(ctx context.Context, userID string, input *dto.AddItemInput) (*model.Cart, error) {
	p, err := uc.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.Newf(apperr.NotFound, "product %s not found", input.ProductID)
	}
	if !p.IsActive {
		return nil, apperr.Newf(apperr.Validation, "product %s %s is not available", p.Name, p.Presentation)
	}

	c, err := uc.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Same product added twice merges into one line.
	var existing *model.CartItem
	for i := range c.Items {
		if c.Items[i].ProductID == input.ProductID {
			existing = &c.Items[i]
			break
		}
	}

	newQty := input.Quantity
	if existing != nil {
		newQty += existing.Quantity
	}

	ok, err := uc.invRepo.CheckAvailability(ctx, p.ID, newQty)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Newf(apperr.InsufficientStock,
			"not enough stock of %s %s for quantity %d", p.Name, p.Presentation, newQty)
	}

	var selections []model.CartItemGiftSelection
	switch {
	case len(input.Gifts) > 0:
		selections, err = uc.scaleGiftSelections(p, input.Gifts, newQty)
		if err != nil {
			return nil, err
		}
	case existing != nil:
		selections = rescaleGifts(existing.SelectedGifts, existing.Quantity, newQty)
	}

	now := time.Now()
	if existing != nil {
		existing.Quantity = newQty
		existing.UpdatedAt = now
		existing.SelectedGifts = selections
		if err := uc.repo.UpdateItem(ctx, existing, true); err != nil {
			return nil, err
		}
	} else {
		item := &model.CartItem{
			BaseModel:     model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
			CartID:        c.ID,
			ProductID:     p.ID,
			Quantity:      newQty,
			SelectedGifts: selections,
		}
		if err := uc.repo.InsertItem(ctx, item); err != nil {
			return nil, err
		}
	}

	uc.logger.Info("cart item added",
		zap.String("user_id", userID),
		zap.String("product_id", p.ID),
		zap.Int("quantity", newQty))

	return uc.repo.FindByUserID(ctx, userID)
}

func (uc *cartUseCase) UpdateItem(ctx context.Context, userID, itemID string, input *dto.UpdateItemInput) (*model.Cart, error) {
	c, err := uc.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.New(apperr.NotFound, "cart is empty")
	}

	item, err := uc.repo.FindItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.CartID != c.ID {
		return nil, apperr.Newf(apperr.NotFound, "cart item %s not found", itemID)
	}

	p, err := uc.productRepo.FindByID(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.Newf(apperr.NotFound, "product %s not found", item.ProductID)
	}

	ok, err := uc.invRepo.CheckAvailability(ctx, p.ID, input.Quantity)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Newf(apperr.InsufficientStock,
			"not enough stock of %s %s for quantity %d", p.Name, p.Presentation, input.Quantity)
	}

	item.SelectedGifts = rescaleGifts(item.SelectedGifts, item.Quantity, input.Quantity)
	item.Quantity = input.Quantity
	item.UpdatedAt = time.Now()

	if err := uc.repo.UpdateItem(ctx, item, true); err != nil {
		return nil, err
	}

	return uc.repo.FindByUserID(ctx, userID)
}

func (uc *cartUseCase) RemoveItem(ctx context.Context, userID, itemID string) error {
	c, err := uc.repo.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if c == nil {
		return apperr.Newf(apperr.NotFound, "cart item %s not found", itemID)
	}

	item, err := uc.repo.FindItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil || item.CartID != c.ID {
		return apperr.Newf(apperr.NotFound, "cart item %s not found", itemID)
	}

	return uc.repo.DeleteItem(ctx, itemID)
}

func (uc *cartUseCase) ClearCart(ctx context.Context, userID string) error {
	c, err := uc.repo.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if c == nil {
		return nil
	}
	return uc.repo.Clear(ctx, c.ID)
}

func (uc *cartUseCase) ValidateForCheckout(ctx context.Context, userID string) (*dto.CheckoutSnapshot, error) {
	c, err := uc.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil || len(c.Items) == 0 {
		return nil, apperr.New(apperr.Validation, "cart is empty")
	}

	for i := range c.Items {
		item := &c.Items[i]
		p := item.Product
		if p == nil {
			return nil, apperr.Newf(apperr.Validation, "product %s no longer exists", item.ProductID)
		}
		if !p.IsActive {
			return nil, apperr.Newf(apperr.Validation,
				"product %s %s is no longer available", p.Name, p.Presentation)
		}

		ok, err := uc.invRepo.CheckAvailability(ctx, p.ID, item.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.Newf(apperr.InsufficientStock,
				"not enough stock of %s %s for quantity %d", p.Name, p.Presentation, item.Quantity)
		}

		if err := validateStoredSelections(p, item); err != nil {
			return nil, err
		}
	}

	return &dto.CheckoutSnapshot{Cart: c, Summary: uc.summarize(c)}, nil
}

func (uc *cartUseCase) summarize(c *model.Cart) dto.CartSummary {
	summary := dto.CartSummary{
		Subtotal: decimal.Zero,
		Tax:      decimal.Zero,
		Total:    decimal.Zero,
	}
	for i := range c.Items {
		item := &c.Items[i]
		if item.Product == nil {
			continue
		}
		summary.Subtotal = summary.Subtotal.Add(
			item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		summary.ItemCount += item.Quantity
		if item.Product.IsFlagship {
			summary.FlagshipQuantity += item.Quantity
		}
	}
	summary.Tax = summary.Subtotal.Mul(uc.taxRate).Round(2)
	summary.Total = summary.Subtotal.Add(summary.Tax)
	return summary
}

// scaleGiftSelections checks per-unit choices against the product's gift
// allocations and stores the total for the whole line.
func (uc *cartUseCase) scaleGiftSelections(p *model.Product, inputs []dto.GiftSelectionInput, lineQty int) ([]model.CartItemGiftSelection, error) {
	if !p.HasGifts {
		return nil, apperr.Newf(apperr.Validation, "product %s %s has no gifts", p.Name, p.Presentation)
	}

	allocByGift := map[string]int{}
	for _, a := range p.Gifts {
		allocByGift[a.GiftID] = a.Quantity
	}

	selections := make([]model.CartItemGiftSelection, 0, len(inputs))
	seen := map[string]bool{}
	for _, g := range inputs {
		limit, ok := allocByGift[g.GiftID]
		if !ok {
			return nil, apperr.Newf(apperr.Validation,
				"gift %s is not offered with %s %s", g.GiftID, p.Name, p.Presentation)
		}
		if seen[g.GiftID] {
			return nil, apperr.Newf(apperr.Validation, "duplicate gift selection %s", g.GiftID)
		}
		seen[g.GiftID] = true
		if g.Quantity > limit {
			return nil, apperr.Newf(apperr.Validation,
				"gift quantity %d exceeds the allowed %d per unit of %s %s", g.Quantity, limit, p.Name, p.Presentation)
		}

		selections = append(selections, model.CartItemGiftSelection{
			GiftID:   g.GiftID,
			Quantity: g.Quantity * lineQty,
		})
	}
	return selections, nil
}

// rescaleGifts keeps the per-unit ratio when the line quantity changes.
func rescaleGifts(selections []model.CartItemGiftSelection, oldQty, newQty int) []model.CartItemGiftSelection {
	if oldQty <= 0 {
		return nil
	}
	rescaled := make([]model.CartItemGiftSelection, 0, len(selections))
	for _, s := range selections {
		perUnit := s.Quantity / oldQty
		if perUnit == 0 {
			continue
		}
		rescaled = append(rescaled, model.CartItemGiftSelection{
			GiftID:   s.GiftID,
			Quantity: perUnit * newQty,
		})
	}
	return rescaled
}

func validateStoredSelections(p *model.Product, item *model.CartItem) error {
	if len(item.SelectedGifts) == 0 {
		return nil
	}

	allocByGift := map[string]int{}
	for _, a := range p.Gifts {
		allocByGift[a.GiftID] = a.Quantity
	}
	for _, s := range item.SelectedGifts {
		limit, ok := allocByGift[s.GiftID]
		if !ok {
			return apperr.Newf(apperr.Validation,
				"gift %s is no longer offered with %s %s", s.GiftID, p.Name, p.Presentation)
		}
		if s.Quantity > limit*item.Quantity {
			return apperr.Newf(apperr.Validation,
				"gift selection for %s %s exceeds its allocation", p.Name, p.Presentation)
		}
	}
	return nil
}
