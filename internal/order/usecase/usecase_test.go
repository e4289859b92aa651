package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chickencore/order-service/config"
	"github.com/chickencore/order-service/internal/apperr"
	cartdto "github.com/chickencore/order-service/internal/cart/dto"
	"github.com/chickencore/order-service/internal/model"
	"github.com/chickencore/order-service/internal/order/dto"
	"github.com/chickencore/order-service/internal/scheduling"
	scheddto "github.com/chickencore/order-service/internal/scheduling/dto"
)

// fakeRepo serves orders from memory and records transition requests.
type fakeRepo struct {
	orders        map[string]*model.Order
	updates       []model.OrderStatus
	cancelled     []string
	lastFilter    *dto.OrderFilters
	createdCartID string
}

func newFakeRepo(orders ...*model.Order) *fakeRepo {
	m := map[string]*model.Order{}
	for _, o := range orders {
		m[o.ID] = o
	}
	return &fakeRepo{orders: m}
}

func (f *fakeRepo) CreateFromCart(ctx context.Context, o *model.Order, cartID string) error {
	f.orders[o.ID] = o
	f.createdCartID = cartID
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id string) (*model.Order, error) {
	return f.orders[id], nil
}

func (f *fakeRepo) FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error) {
	f.lastFilter = filters
	return nil, 0, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, orderID string, next model.OrderStatus, changedBy string, notes *string) (*model.Order, error) {
	o := f.orders[orderID]
	if o == nil {
		return nil, apperr.Newf(apperr.NotFound, "order %s not found", orderID)
	}
	if !o.Status.CanTransitionTo(next) {
		return nil, apperr.Newf(apperr.InvalidTransition, "order cannot move from %s to %s", o.Status, next)
	}
	o.Status = next
	f.updates = append(f.updates, next)
	return o, nil
}

func (f *fakeRepo) Cancel(ctx context.Context, orderID, changedBy string, reason *string) (*model.Order, error) {
	o := f.orders[orderID]
	if o == nil {
		return nil, apperr.Newf(apperr.NotFound, "order %s not found", orderID)
	}
	if !o.Status.CanTransitionTo(model.OrderStatusCancelled) {
		return nil, apperr.Newf(apperr.InvalidTransition, "order cannot move from %s to %s", o.Status, model.OrderStatusCancelled)
	}
	o.Status = model.OrderStatusCancelled
	f.cancelled = append(f.cancelled, orderID)
	return o, nil
}

func (f *fakeRepo) TodaysOrders(ctx context.Context) ([]model.Order, error) { return nil, nil }

func (f *fakeRepo) ScheduledBetween(ctx context.Context, from, to time.Time) ([]model.Order, error) {
	return nil, nil
}

func (f *fakeRepo) Stats(ctx context.Context) (*dto.OrderStats, error) { return nil, nil }

type fakeLocker struct {
	busy bool
}

func (f *fakeLocker) AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return !f.busy, nil
}

func (f *fakeLocker) ReleaseLock(ctx context.Context, key, value string) error { return nil }

type fakeCartUC struct {
	snapshot *cartdto.CheckoutSnapshot
	err      error
}

func (f *fakeCartUC) GetCart(ctx context.Context, userID string) (*model.Cart, *cartdto.CartSummary, error) {
	return nil, nil, nil
}

func (f *fakeCartUC) AddItem(ctx context.Context, userID string, input *cartdto.AddItemInput) (*model.Cart, error) {
	return nil, nil
}

func (f *fakeCartUC) UpdateItem(ctx context.Context, userID, itemID string, input *cartdto.UpdateItemInput) (*model.Cart, error) {
	return nil, nil
}

func (f *fakeCartUC) RemoveItem(ctx context.Context, userID, itemID string) error { return nil }

func (f *fakeCartUC) ClearCart(ctx context.Context, userID string) error { return nil }

func (f *fakeCartUC) ValidateForCheckout(ctx context.Context, userID string) (*cartdto.CheckoutSnapshot, error) {
	return f.snapshot, f.err
}

type fakeSchedUC struct {
	err        error
	lastDemand *scheduling.Demand
}

func (f *fakeSchedUC) CreateRule(ctx context.Context, input *scheddto.CreateRuleInput) (*model.SchedulingRule, error) {
	return nil, nil
}

func (f *fakeSchedUC) UpdateRule(ctx context.Context, input *scheddto.UpdateRuleInput) (*model.SchedulingRule, error) {
	return nil, nil
}

func (f *fakeSchedUC) DeleteRule(ctx context.Context, id string) error { return nil }

func (f *fakeSchedUC) ListRules(ctx context.Context) ([]model.SchedulingRule, error) {
	return nil, nil
}

func (f *fakeSchedUC) WeekInfo(ctx context.Context) ([]scheddto.WeekDayInfo, error) {
	return nil, nil
}

func (f *fakeSchedUC) EvaluateTarget(ctx context.Context, target time.Time, demand scheduling.Demand) error {
	f.lastDemand = &demand
	return f.err
}

func (f *fakeSchedUC) ValidateSchedule(ctx context.Context, userID string, target time.Time) (*scheddto.ValidationResult, error) {
	return nil, nil
}

func newTestUseCase(repo *fakeRepo) *orderUseCase {
	return &orderUseCase{
		repo:   repo,
		cfg:    config.OrdersConfig{MaxScheduleDays: 30},
		logger: zap.NewNop(),
	}
}

func newCheckoutUseCase(repo *fakeRepo, cartUC *fakeCartUC, schedUC *fakeSchedUC, locker *fakeLocker) *orderUseCase {
	return &orderUseCase{
		repo:    repo,
		cartUC:  cartUC,
		schedUC: schedUC,
		locker:  locker,
		cfg:     config.OrdersConfig{MaxScheduleDays: 30, CheckoutLockTTLSec: 10},
		logger:  zap.NewNop(),
	}
}

func giftedSnapshot() *cartdto.CheckoutSnapshot {
	chicken := &model.Product{
		BaseModel:  model.BaseModel{ID: "prod-1"},
		Name:       "Rotisserie Chicken",
		Price:      decimal.RequireFromString("189.00"),
		IsFlagship: true,
		IsActive:   true,
		HasGifts:   true,
	}
	return &cartdto.CheckoutSnapshot{
		Cart: &model.Cart{
			BaseModel: model.BaseModel{ID: "cart-1"},
			UserID:    "alice",
			Items: []model.CartItem{{
				BaseModel:     model.BaseModel{ID: "item-1"},
				CartID:        "cart-1",
				ProductID:     chicken.ID,
				Quantity:      2,
				Product:       chicken,
				SelectedGifts: []model.CartItemGiftSelection{{GiftID: "gift-1", Quantity: 2}},
			}},
		},
		Summary: cartdto.CartSummary{
			Subtotal:         decimal.RequireFromString("378.00"),
			Tax:              decimal.RequireFromString("60.48"),
			Total:            decimal.RequireFromString("438.48"),
			ItemCount:        2,
			FlagshipQuantity: 2,
		},
	}
}

func pendingOrder(id, userID string) *model.Order {
	return &model.Order{
		BaseModel: model.BaseModel{ID: id},
		UserID:    userID,
		Status:    model.OrderStatusPending,
	}
}

func TestCheckoutMaterializesCartSnapshot(t *testing.T) {
	repo := newFakeRepo()
	uc := newCheckoutUseCase(repo, &fakeCartUC{snapshot: giftedSnapshot()}, &fakeSchedUC{}, &fakeLocker{})

	o, err := uc.Checkout(context.Background(), "alice", &dto.CheckoutInput{
		OrderType:    string(model.OrderTypeImmediate),
		DeliveryType: string(model.DeliveryTypePickup),
	})
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusPending, o.Status)
	assert.Equal(t, "alice", o.UserID)
	assert.Equal(t, "378.00", o.Subtotal.StringFixed(2))
	assert.Equal(t, "60.48", o.Tax.StringFixed(2))
	assert.Equal(t, "438.48", o.Total.StringFixed(2))
	assert.Equal(t, "cart-1", repo.createdCartID)

	require.Len(t, o.Items, 1)
	item := o.Items[0]
	assert.Equal(t, "prod-1", item.ProductID)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, "189.00", item.UnitPrice.StringFixed(2))
	assert.True(t, item.IsFlagship)
	require.Len(t, item.SelectedGifts, 1)
	assert.Equal(t, "gift-1", item.SelectedGifts[0].GiftID)
	assert.Equal(t, 2, item.SelectedGifts[0].Quantity)
}

func TestCheckoutInsufficientStockAborts(t *testing.T) {
	repo := newFakeRepo()
	cartUC := &fakeCartUC{err: apperr.New(apperr.InsufficientStock, "not enough stock")}
	uc := newCheckoutUseCase(repo, cartUC, &fakeSchedUC{}, &fakeLocker{})

	_, err := uc.Checkout(context.Background(), "alice", &dto.CheckoutInput{
		OrderType:    string(model.OrderTypeImmediate),
		DeliveryType: string(model.DeliveryTypePickup),
	})
	require.Error(t, err)
	assert.Equal(t, apperr.InsufficientStock, apperr.KindOf(err))
	assert.Empty(t, repo.orders)
}

func TestCheckoutScheduledOrderRules(t *testing.T) {
	ctx := context.Background()

	t.Run("missing scheduled_for rejects", func(t *testing.T) {
		uc := newCheckoutUseCase(newFakeRepo(), &fakeCartUC{snapshot: giftedSnapshot()}, &fakeSchedUC{}, &fakeLocker{})
		_, err := uc.Checkout(ctx, "alice", &dto.CheckoutInput{
			OrderType:    string(model.OrderTypeScheduled),
			DeliveryType: string(model.DeliveryTypePickup),
		})
		assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	})

	t.Run("malformed scheduled_for rejects", func(t *testing.T) {
		uc := newCheckoutUseCase(newFakeRepo(), &fakeCartUC{snapshot: giftedSnapshot()}, &fakeSchedUC{}, &fakeLocker{})
		bad := "next tuesday"
		_, err := uc.Checkout(ctx, "alice", &dto.CheckoutInput{
			OrderType:    string(model.OrderTypeScheduled),
			DeliveryType: string(model.DeliveryTypePickup),
			ScheduledFor: &bad,
		})
		assert.Equal(t, apperr.Validation, apperr.KindOf(err))
	})

	t.Run("scheduling gate sees the priced totals", func(t *testing.T) {
		repo := newFakeRepo()
		sched := &fakeSchedUC{}
		uc := newCheckoutUseCase(repo, &fakeCartUC{snapshot: giftedSnapshot()}, sched, &fakeLocker{})

		when := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
		_, err := uc.Checkout(ctx, "alice", &dto.CheckoutInput{
			OrderType:    string(model.OrderTypeScheduled),
			DeliveryType: string(model.DeliveryTypeDelivery),
			ScheduledFor: &when,
		})
		require.NoError(t, err)
		require.NotNil(t, sched.lastDemand)
		assert.Equal(t, "438.48", sched.lastDemand.Total.StringFixed(2))
		assert.Equal(t, 2, sched.lastDemand.FlagshipQuantity)
	})

	t.Run("scheduling rejection aborts", func(t *testing.T) {
		repo := newFakeRepo()
		sched := &fakeSchedUC{err: apperr.New(apperr.SchedulingRejected, "scheduling is not available on Monday")}
		uc := newCheckoutUseCase(repo, &fakeCartUC{snapshot: giftedSnapshot()}, sched, &fakeLocker{})

		when := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
		_, err := uc.Checkout(ctx, "alice", &dto.CheckoutInput{
			OrderType:    string(model.OrderTypeScheduled),
			DeliveryType: string(model.DeliveryTypePickup),
			ScheduledFor: &when,
		})
		assert.Equal(t, apperr.SchedulingRejected, apperr.KindOf(err))
		assert.Empty(t, repo.orders)
	})
}

func TestCheckoutHeldLockConflicts(t *testing.T) {
	uc := newCheckoutUseCase(newFakeRepo(), &fakeCartUC{snapshot: giftedSnapshot()}, &fakeSchedUC{}, &fakeLocker{busy: true})

	_, err := uc.Checkout(context.Background(), "alice", &dto.CheckoutInput{
		OrderType:    string(model.OrderTypeImmediate),
		DeliveryType: string(model.DeliveryTypePickup),
	})
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestGetOrderAccessControl(t *testing.T) {
	repo := newFakeRepo(pendingOrder("o1", "alice"))
	uc := newTestUseCase(repo)
	ctx := context.Background()

	o, err := uc.GetOrder(ctx, "alice", model.RoleCustomer, "o1")
	require.NoError(t, err)
	assert.Equal(t, "o1", o.ID)

	_, err = uc.GetOrder(ctx, "bob", model.RoleCustomer, "o1")
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	_, err = uc.GetOrder(ctx, "bob", model.RoleAdmin, "o1")
	assert.NoError(t, err)

	_, err = uc.GetOrder(ctx, "alice", model.RoleCustomer, "missing")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestListOrdersScopesCustomersToThemselves(t *testing.T) {
	repo := newFakeRepo()
	uc := newTestUseCase(repo)
	ctx := context.Background()

	_, _, err := uc.ListOrders(ctx, "alice", model.RoleCustomer, &dto.OrderFilters{UserID: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "alice", repo.lastFilter.UserID)

	_, _, err = uc.ListOrders(ctx, "admin-1", model.RoleAdmin, &dto.OrderFilters{UserID: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "bob", repo.lastFilter.UserID)
}

func TestUpdateStatusValidation(t *testing.T) {
	repo := newFakeRepo(pendingOrder("o1", "alice"))
	uc := newTestUseCase(repo)
	ctx := context.Background()

	_, err := uc.UpdateStatus(ctx, "admin-1", "o1", &dto.UpdateStatusInput{Status: "SHIPPED"})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	_, err = uc.UpdateStatus(ctx, "admin-1", "o1", &dto.UpdateStatusInput{Status: "CANCELLED"})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	o, err := uc.UpdateStatus(ctx, "admin-1", "o1", &dto.UpdateStatusInput{Status: "IN_PREPARATION"})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusInPreparation, o.Status)

	// PENDING is behind us now.
	_, err = uc.UpdateStatus(ctx, "admin-1", "o1", &dto.UpdateStatusInput{Status: "DELIVERED"})
	assert.Equal(t, apperr.InvalidTransition, apperr.KindOf(err))
}

func TestCancelCustomerRules(t *testing.T) {
	ctx := context.Background()

	t.Run("own pending order cancels", func(t *testing.T) {
		repo := newFakeRepo(pendingOrder("o1", "alice"))
		uc := newTestUseCase(repo)

		o, err := uc.Cancel(ctx, "alice", model.RoleCustomer, "o1", &dto.CancelInput{})
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusCancelled, o.Status)
	})

	t.Run("someone else's order is forbidden", func(t *testing.T) {
		repo := newFakeRepo(pendingOrder("o1", "alice"))
		uc := newTestUseCase(repo)

		_, err := uc.Cancel(ctx, "bob", model.RoleCustomer, "o1", &dto.CancelInput{})
		assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
	})

	t.Run("customer cannot cancel once preparation started", func(t *testing.T) {
		o := pendingOrder("o1", "alice")
		o.Status = model.OrderStatusInPreparation
		uc := newTestUseCase(newFakeRepo(o))

		_, err := uc.Cancel(ctx, "alice", model.RoleCustomer, "o1", &dto.CancelInput{})
		assert.Equal(t, apperr.InvalidTransition, apperr.KindOf(err))
	})

	t.Run("admin can cancel in preparation", func(t *testing.T) {
		o := pendingOrder("o1", "alice")
		o.Status = model.OrderStatusInPreparation
		uc := newTestUseCase(newFakeRepo(o))

		cancelled, err := uc.Cancel(ctx, "admin-1", model.RoleAdmin, "o1", &dto.CancelInput{})
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
	})

	t.Run("terminal order stays terminal", func(t *testing.T) {
		o := pendingOrder("o1", "alice")
		o.Status = model.OrderStatusCancelled
		uc := newTestUseCase(newFakeRepo(o))

		_, err := uc.Cancel(ctx, "admin-1", model.RoleAdmin, "o1", &dto.CancelInput{})
		assert.Equal(t, apperr.InvalidTransition, apperr.KindOf(err))
	})
}
