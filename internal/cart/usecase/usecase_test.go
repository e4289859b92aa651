package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chickencore/order-service/internal/apperr"
	"github.com/chickencore/order-service/internal/cart/dto"
	invdto "github.com/chickencore/order-service/internal/inventory/dto"
	"github.com/chickencore/order-service/internal/model"
)

// fakeCartRepo hands back one cart the way the Postgres repository would,
// products carrying their gift allocations.
type fakeCartRepo struct {
	cart *model.Cart
}

func (f *fakeCartRepo) GetOrCreate(ctx context.Context, userID string) (*model.Cart, error) {
	return f.cart, nil
}

func (f *fakeCartRepo) FindByUserID(ctx context.Context, userID string) (*model.Cart, error) {
	return f.cart, nil
}

func (f *fakeCartRepo) FindItem(ctx context.Context, itemID string) (*model.CartItem, error) {
	return nil, nil
}

func (f *fakeCartRepo) InsertItem(ctx context.Context, item *model.CartItem) error { return nil }

func (f *fakeCartRepo) UpdateItem(ctx context.Context, item *model.CartItem, replaceGifts bool) error {
	return nil
}

func (f *fakeCartRepo) DeleteItem(ctx context.Context, itemID string) error { return nil }

func (f *fakeCartRepo) Clear(ctx context.Context, cartID string) error { return nil }

type fakeInventoryRepo struct {
	stock map[string]int
}

func (f *fakeInventoryRepo) CheckAvailability(ctx context.Context, productID string, quantity int) (bool, error) {
	return f.stock[productID] >= quantity, nil
}

func (f *fakeInventoryRepo) Adjust(ctx context.Context, input *invdto.AdjustInput) (*model.InventoryMovement, error) {
	return nil, nil
}

func (f *fakeInventoryRepo) ListMovements(ctx context.Context, filters *invdto.MovementFilters) ([]model.InventoryMovement, int, error) {
	return nil, 0, nil
}

func productWithGifts(price string, flagship bool, gifts ...model.GiftAllocation) *model.Product {
	return &model.Product{
		BaseModel:    model.BaseModel{ID: "prod-1"},
		Name:         "Rotisserie Chicken",
		Presentation: "Whole",
		Price:        decimal.RequireFromString(price),
		IsFlagship:   flagship,
		HasGifts:     len(gifts) > 0,
		Gifts:        gifts,
	}
}

func TestRescaleGiftsKeepsPerUnitRatio(t *testing.T) {
	// 2 units with 4 stored gifts means 2 per unit.
	selections := []model.CartItemGiftSelection{{GiftID: "gift-1", Quantity: 4}}

	rescaled := rescaleGifts(selections, 2, 5)
	require.Len(t, rescaled, 1)
	assert.Equal(t, 10, rescaled[0].Quantity)
}

func TestRescaleGiftsFloorsPartialUnits(t *testing.T) {
	// 3 stored over 2 units floors to 1 per unit.
	selections := []model.CartItemGiftSelection{{GiftID: "gift-1", Quantity: 3}}

	rescaled := rescaleGifts(selections, 2, 4)
	require.Len(t, rescaled, 1)
	assert.Equal(t, 4, rescaled[0].Quantity)
}

func TestRescaleGiftsDropsVanishingSelections(t *testing.T) {
	// Less than one gift per unit disappears on rescale.
	selections := []model.CartItemGiftSelection{{GiftID: "gift-1", Quantity: 1}}
	assert.Empty(t, rescaleGifts(selections, 3, 5))
	assert.Nil(t, rescaleGifts(selections, 0, 5))
}

func TestScaleGiftSelections(t *testing.T) {
	uc := &cartUseCase{}
	p := productWithGifts("189.00", true, model.GiftAllocation{GiftID: "gift-1", Quantity: 2})

	selections, err := uc.scaleGiftSelections(p, []dto.GiftSelectionInput{
		{GiftID: "gift-1", Quantity: 2},
	}, 3)
	require.NoError(t, err)
	require.Len(t, selections, 1)
	assert.Equal(t, 6, selections[0].Quantity)
}

func TestScaleGiftSelectionsRejectsOverAllocation(t *testing.T) {
	uc := &cartUseCase{}
	p := productWithGifts("189.00", true, model.GiftAllocation{GiftID: "gift-1", Quantity: 1})

	_, err := uc.scaleGiftSelections(p, []dto.GiftSelectionInput{
		{GiftID: "gift-1", Quantity: 2},
	}, 1)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestScaleGiftSelectionsRejectsUnknownGift(t *testing.T) {
	uc := &cartUseCase{}
	p := productWithGifts("189.00", true, model.GiftAllocation{GiftID: "gift-1", Quantity: 1})

	_, err := uc.scaleGiftSelections(p, []dto.GiftSelectionInput{
		{GiftID: "gift-other", Quantity: 1},
	}, 1)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestScaleGiftSelectionsRejectsGiftlessProduct(t *testing.T) {
	uc := &cartUseCase{}
	p := productWithGifts("59.00", false)

	_, err := uc.scaleGiftSelections(p, []dto.GiftSelectionInput{
		{GiftID: "gift-1", Quantity: 1},
	}, 1)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestValidateStoredSelectionsWithinAllocation(t *testing.T) {
	p := productWithGifts("189.00", true, model.GiftAllocation{GiftID: "gift-1", Quantity: 2})
	item := &model.CartItem{
		Quantity:      3,
		SelectedGifts: []model.CartItemGiftSelection{{GiftID: "gift-1", Quantity: 6}},
	}
	assert.NoError(t, validateStoredSelections(p, item))

	item.SelectedGifts[0].Quantity = 7
	err := validateStoredSelections(p, item)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func cartWithGiftedChicken(selectionQty int) (*model.Cart, *model.Product) {
	chicken := productWithGifts("189.00", true, model.GiftAllocation{GiftID: "gift-1", Quantity: 1})
	chicken.IsActive = true
	c := &model.Cart{
		BaseModel: model.BaseModel{ID: "cart-1"},
		UserID:    "alice",
		Items: []model.CartItem{{
			BaseModel:     model.BaseModel{ID: "item-1"},
			CartID:        "cart-1",
			ProductID:     chicken.ID,
			Quantity:      2,
			Product:       chicken,
			SelectedGifts: []model.CartItemGiftSelection{{GiftID: "gift-1", Quantity: selectionQty}},
		}},
	}
	return c, chicken
}

func TestValidateForCheckoutAcceptsStoredGiftSelections(t *testing.T) {
	c, chicken := cartWithGiftedChicken(2)
	uc := &cartUseCase{
		repo:    &fakeCartRepo{cart: c},
		invRepo: &fakeInventoryRepo{stock: map[string]int{chicken.ID: 5}},
		taxRate: decimal.RequireFromString("0.16"),
	}

	snapshot, err := uc.ValidateForCheckout(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, snapshot.Cart.Items, 1)
	require.Len(t, snapshot.Cart.Items[0].SelectedGifts, 1)
	assert.Equal(t, 2, snapshot.Cart.Items[0].SelectedGifts[0].Quantity)
	assert.Equal(t, "438.48", snapshot.Summary.Total.StringFixed(2))
}

func TestValidateForCheckoutRejectsWithdrawnGift(t *testing.T) {
	c, chicken := cartWithGiftedChicken(2)
	// The allocation was removed from the catalog after the item was added.
	chicken.Gifts = nil
	chicken.HasGifts = false

	uc := &cartUseCase{
		repo:    &fakeCartRepo{cart: c},
		invRepo: &fakeInventoryRepo{stock: map[string]int{chicken.ID: 5}},
		taxRate: decimal.RequireFromString("0.16"),
	}

	_, err := uc.ValidateForCheckout(context.Background(), "alice")
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestValidateForCheckoutRejectsInsufficientStock(t *testing.T) {
	c, chicken := cartWithGiftedChicken(2)
	uc := &cartUseCase{
		repo:    &fakeCartRepo{cart: c},
		invRepo: &fakeInventoryRepo{stock: map[string]int{chicken.ID: 1}},
		taxRate: decimal.RequireFromString("0.16"),
	}

	_, err := uc.ValidateForCheckout(context.Background(), "alice")
	require.Error(t, err)
	assert.Equal(t, apperr.InsufficientStock, apperr.KindOf(err))
}

func TestSummarize(t *testing.T) {
	uc := &cartUseCase{taxRate: decimal.RequireFromString("0.16")}

	chicken := productWithGifts("189.00", true)
	soda := &model.Product{
		BaseModel: model.BaseModel{ID: "prod-2"},
		Name:      "Soda",
		Price:     decimal.RequireFromString("25.50"),
	}

	c := &model.Cart{Items: []model.CartItem{
		{ProductID: chicken.ID, Quantity: 2, Product: chicken},
		{ProductID: soda.ID, Quantity: 3, Product: soda},
	}}

	summary := uc.summarize(c)
	assert.Equal(t, "454.50", summary.Subtotal.StringFixed(2))
	assert.Equal(t, "72.72", summary.Tax.StringFixed(2))
	assert.Equal(t, "527.22", summary.Total.StringFixed(2))
	assert.Equal(t, 5, summary.ItemCount)
	assert.Equal(t, 2, summary.FlagshipQuantity)
}

func TestSummarizeEmptyCart(t *testing.T) {
	uc := &cartUseCase{taxRate: decimal.RequireFromString("0.16")}
	summary := uc.summarize(&model.Cart{})
	assert.True(t, summary.Subtotal.IsZero())
	assert.True(t, summary.Total.IsZero())
	assert.Zero(t, summary.ItemCount)
}
