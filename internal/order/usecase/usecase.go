package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chickencore/order-service/config"
	"github.com/chickencore/order-service/internal/apperr"
	"github.com/chickencore/order-service/internal/cart"
	"github.com/chickencore/order-service/internal/model"
	"github.com/chickencore/order-service/internal/order"
	"github.com/chickencore/order-service/internal/order/dto"
	"github.com/chickencore/order-service/internal/scheduling"
	"github.com/chickencore/order-service/pkg/logger"
)

const (
	lockRetries    = 3
	lockRetrySleep = 100 * time.Millisecond
)

type orderUseCase struct {
	repo      order.Repository
	cartUC    cart.UseCase
	schedUC   scheduling.UseCase
	locker    order.Locker
	publisher order.Publisher
	cfg       config.OrdersConfig
	logger    logger.ZapLogger
}

func NewOrderUseCase(
	repo order.Repository,
	cartUC cart.UseCase,
	schedUC scheduling.UseCase,
	locker order.Locker,
	publisher order.Publisher,
	cfg config.OrdersConfig,
	log logger.ZapLogger,
) order.UseCase {
	return &orderUseCase{
		repo:      repo,
		cartUC:    cartUC,
		schedUC:   schedUC,
		locker:    locker,
		publisher: publisher,
		cfg:       cfg,
		logger:    log,
	}
}

func (uc *orderUseCase) Checkout(ctx context.Context, userID string, input *dto.CheckoutInput) (*model.Order, error) {
	lockKey := fmt.Sprintf("lock:checkout:%s", userID)
	lockToken := uuid.New().String()
	ttl := time.Duration(uc.cfg.CheckoutLockTTLSec) * time.Second

	acquired := false
	for i := 0; i < lockRetries; i++ {
		ok, err := uc.locker.AcquireLock(ctx, lockKey, lockToken, ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(lockRetrySleep)
	}
	if !acquired {
		return nil, apperr.New(apperr.Conflict, "another checkout is already in progress")
	}
	defer uc.locker.ReleaseLock(context.Background(), lockKey, lockToken)

	var scheduledFor *time.Time
	if input.OrderType == string(model.OrderTypeScheduled) {
		if input.ScheduledFor == nil {
			return nil, apperr.New(apperr.Validation, "scheduled orders require scheduled_for")
		}
		t, err := time.Parse(time.RFC3339, *input.ScheduledFor)
		if err != nil {
			return nil, apperr.Wrap(apperr.Validation, "scheduled_for must be RFC 3339", err)
		}
		scheduledFor = &t
	}

	snapshot, err := uc.cartUC.ValidateForCheckout(ctx, userID)
	if err != nil {
		return nil, err
	}

	if scheduledFor != nil {
		err := uc.schedUC.EvaluateTarget(ctx, *scheduledFor, scheduling.Demand{
			Total:            snapshot.Summary.Total,
			FlagshipQuantity: snapshot.Summary.FlagshipQuantity,
		})
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	o := &model.Order{
		BaseModel:     model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		UserID:        userID,
		OrderType:     model.OrderType(input.OrderType),
		DeliveryType:  model.DeliveryType(input.DeliveryType),
		Status:        model.OrderStatusPending,
		Subtotal:      snapshot.Summary.Subtotal,
		Tax:           snapshot.Summary.Tax,
		Total:         snapshot.Summary.Total,
		ScheduledFor:  scheduledFor,
		AddressID:     input.AddressID,
		Notes:         input.Notes,
		PaymentMethod: input.PaymentMethod,
	}

	for i := range snapshot.Cart.Items {
		item := &snapshot.Cart.Items[i]
		orderItem := model.OrderItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.Product.Price,
			IsFlagship: item.Product.IsFlagship,
		}
		for _, g := range item.SelectedGifts {
			orderItem.SelectedGifts = append(orderItem.SelectedGifts, model.OrderItemGiftSelection{
				GiftID:   g.GiftID,
				Quantity: g.Quantity,
			})
		}
		o.Items = append(o.Items, orderItem)
	}

	if err := uc.repo.CreateFromCart(ctx, o, snapshot.Cart.ID); err != nil {
		return nil, err
	}

	uc.logger.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("user_id", userID),
		zap.String("order_type", string(o.OrderType)),
		zap.String("total", o.Total.String()))

	created, err := uc.repo.FindByID(ctx, o.ID)
	if err != nil {
		return nil, err
	}

	uc.publish(created, order.EventOrderCreated)
	return created, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, callerID, role, orderID string) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.Newf(apperr.NotFound, "order %s not found", orderID)
	}
	if role != model.RoleAdmin && o.UserID != callerID {
		return nil, apperr.New(apperr.Forbidden, "you do not have access to this order")
	}
	return o, nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context, callerID, role string, filters *dto.OrderFilters) ([]model.Order, int, error) {
	// Customers only ever see their own orders.
	if role != model.RoleAdmin {
		filters.UserID = callerID
	}
	return uc.repo.FindAll(ctx, filters)
}

func (uc *orderUseCase) UpdateStatus(ctx context.Context, callerID, orderID string, input *dto.UpdateStatusInput) (*model.Order, error) {
	next := model.OrderStatus(input.Status)
	if !next.Valid() {
		return nil, apperr.Newf(apperr.Validation, "unknown order status %q", input.Status)
	}
	if next == model.OrderStatusCancelled {
		return nil, apperr.New(apperr.Validation, "use the cancel endpoint to cancel an order")
	}

	o, err := uc.repo.UpdateStatus(ctx, orderID, next, callerID, input.Notes)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order status changed",
		zap.String("order_id", orderID),
		zap.String("status", string(next)))

	uc.publish(o, order.EventOrderStatusChanged)
	return o, nil
}

func (uc *orderUseCase) Cancel(ctx context.Context, callerID, role, orderID string, input *dto.CancelInput) (*model.Order, error) {
	existing, err := uc.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperr.Newf(apperr.NotFound, "order %s not found", orderID)
	}

	if role != model.RoleAdmin {
		if existing.UserID != callerID {
			return nil, apperr.New(apperr.Forbidden, "you do not have access to this order")
		}
		// Customers can only back out before the kitchen starts.
		if existing.Status != model.OrderStatusPending {
			return nil, apperr.Newf(apperr.InvalidTransition,
				"order cannot move from %s to %s", existing.Status, model.OrderStatusCancelled)
		}
	}

	var reason *string
	if input != nil {
		reason = input.Reason
	}

	o, err := uc.repo.Cancel(ctx, orderID, callerID, reason)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("order cancelled", zap.String("order_id", orderID))

	uc.publish(o, order.EventOrderCancelled)
	return o, nil
}

func (uc *orderUseCase) TodaysOrders(ctx context.Context) ([]model.Order, error) {
	return uc.repo.TodaysOrders(ctx)
}

func (uc *orderUseCase) ScheduledOrders(ctx context.Context, days int) ([]model.Order, error) {
	if days <= 0 || days > uc.cfg.MaxScheduleDays {
		days = uc.cfg.MaxScheduleDays
	}
	now := time.Now()
	return uc.repo.ScheduledBetween(ctx, now, now.AddDate(0, 0, days))
}

func (uc *orderUseCase) Stats(ctx context.Context) (*dto.OrderStats, error) {
	return uc.repo.Stats(ctx)
}

// publish emits a lifecycle event without blocking the request path. Losing an
// event is acceptable, losing an order is not.
func (uc *orderUseCase) publish(o *model.Order, eventType string) {
	if uc.publisher == nil || o == nil {
		return
	}

	event := order.Event{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
		Payload: order.EventPayload{
			ID:     o.ID,
			UserID: o.UserID,
			Status: string(o.Status),
			Total:  o.Total.String(),
		},
	}
	for _, item := range o.Items {
		event.Payload.Items = append(event.Payload.Items, order.EventItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	go func() {
		data, err := json.Marshal(event)
		if err != nil {
			uc.logger.Error("failed to marshal order event", zap.Error(err))
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := uc.publisher.Publish(ctx, o.ID, data); err != nil {
			uc.logger.Error("failed to publish order event",
				zap.String("event_type", eventType),
				zap.String("order_id", o.ID),
				zap.Error(err))
		}
	}()
}
