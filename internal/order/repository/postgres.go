package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/chickencore/order-service/internal/apperr"
	invdto "github.com/chickencore/order-service/internal/inventory/dto"
	invrepo "github.com/chickencore/order-service/internal/inventory/repository"
	"github.com/chickencore/order-service/internal/model"
	"github.com/chickencore/order-service/internal/order/dto"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const insertOrderQuery = `
    INSERT INTO orders (
        id, user_id, order_type, delivery_type, status, subtotal, tax, total,
        scheduled_for, address_id, notes, payment_method, is_paid, paid_at,
        created_at, updated_at
    )
    VALUES (
        :id, :user_id, :order_type, :delivery_type, :status, :subtotal, :tax, :total,
        :scheduled_for, :address_id, :notes, :payment_method, :is_paid, :paid_at,
        :created_at, :updated_at
    )
`

const insertItemQuery = `
    INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, is_flagship)
    VALUES (:id, :order_id, :product_id, :quantity, :unit_price, :is_flagship)
`

const insertGiftQuery = `
    INSERT INTO order_item_gift_selections (id, order_item_id, gift_id, quantity)
    VALUES (:id, :order_item_id, :gift_id, :quantity)
`

const insertHistoryQuery = `
    INSERT INTO order_status_history (id, order_id, status, changed_by, notes, changed_at)
    VALUES (:id, :order_id, :status, :changed_by, :notes, :changed_at)
`

func (r *PGRepository) CreateFromCart(ctx context.Context, o *model.Order, cartID string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, insertOrderQuery, o); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	outReason := fmt.Sprintf("Order #%s", o.ID)
	giftReason := fmt.Sprintf("Order #%s (gift)", o.ID)

	for i := range o.Items {
		item := &o.Items[i]
		item.ID = uuid.New().String()
		item.OrderID = o.ID

		if _, err := invrepo.ApplyMovement(ctx, tx, &invdto.AdjustInput{
			ProductID:    item.ProductID,
			MovementType: model.MovementOut,
			Quantity:     item.Quantity,
			Reason:       outReason,
			ReferenceID:  &o.ID,
			ActorID:      &o.UserID,
		}); err != nil {
			return err
		}

		if _, err := tx.NamedExecContext(ctx, insertItemQuery, item); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}

		for j := range item.SelectedGifts {
			gift := &item.SelectedGifts[j]
			gift.ID = uuid.New().String()
			gift.OrderItemID = item.ID

			// Gifts leave the shelf too.
			if _, err := invrepo.ApplyMovement(ctx, tx, &invdto.AdjustInput{
				ProductID:    gift.GiftID,
				MovementType: model.MovementOut,
				Quantity:     gift.Quantity,
				Reason:       giftReason,
				ReferenceID:  &o.ID,
				ActorID:      &o.UserID,
			}); err != nil {
				return err
			}

			if _, err := tx.NamedExecContext(ctx, insertGiftQuery, gift); err != nil {
				return fmt.Errorf("failed to insert gift selection: %w", err)
			}
		}
	}

	history := &model.OrderStatusHistory{
		ID:        uuid.New().String(),
		OrderID:   o.ID,
		Status:    model.OrderStatusPending,
		ChangedBy: o.UserID,
		Notes:     strPtr("Order created"),
		ChangedAt: time.Now(),
	}
	if _, err := tx.NamedExecContext(ctx, insertHistoryQuery, history); err != nil {
		return fmt.Errorf("failed to insert status history: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) UpdateStatus(ctx context.Context, orderID string, next model.OrderStatus, changedBy string, notes *string) (*model.Order, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	current, err := lockOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, apperr.Newf(apperr.InvalidTransition,
			"order cannot move from %s to %s", current.Status, next)
	}

	now := time.Now()
	if next == model.OrderStatusDelivered {
		_, err = tx.ExecContext(ctx,
			`UPDATE orders SET status = $2, is_paid = TRUE, paid_at = $3, updated_at = $3 WHERE id = $1`,
			orderID, next, now)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`,
			orderID, next, now)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	history := &model.OrderStatusHistory{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		Status:    next,
		ChangedBy: changedBy,
		Notes:     notes,
		ChangedAt: now,
	}
	if _, err := tx.NamedExecContext(ctx, insertHistoryQuery, history); err != nil {
		return nil, fmt.Errorf("failed to insert status history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, orderID)
}

func (r *PGRepository) Cancel(ctx context.Context, orderID, changedBy string, reason *string) (*model.Order, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	current, err := lockOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(model.OrderStatusCancelled) {
		return nil, apperr.Newf(apperr.InvalidTransition,
			"order cannot move from %s to %s", current.Status, model.OrderStatusCancelled)
	}

	var items []model.OrderItem
	if err := tx.SelectContext(ctx, &items,
		`SELECT * FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return nil, err
	}
	var gifts []model.OrderItemGiftSelection
	if err := tx.SelectContext(ctx, &gifts, `
        SELECT s.* FROM order_item_gift_selections s
        JOIN order_items oi ON oi.id = s.order_item_id
        WHERE oi.order_id = $1`, orderID); err != nil {
		return nil, err
	}

	restoreReason := fmt.Sprintf("Cancellation of order #%s", orderID)
	for _, item := range items {
		if _, err := invrepo.ApplyMovement(ctx, tx, &invdto.AdjustInput{
			ProductID:    item.ProductID,
			MovementType: model.MovementIn,
			Quantity:     item.Quantity,
			Reason:       restoreReason,
			ReferenceID:  &orderID,
			ActorID:      &changedBy,
		}); err != nil {
			return nil, err
		}
	}
	for _, gift := range gifts {
		if _, err := invrepo.ApplyMovement(ctx, tx, &invdto.AdjustInput{
			ProductID:    gift.GiftID,
			MovementType: model.MovementIn,
			Quantity:     gift.Quantity,
			Reason:       restoreReason,
			ReferenceID:  &orderID,
			ActorID:      &changedBy,
		}); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	if _, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`,
		orderID, model.OrderStatusCancelled, now); err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	notes := reason
	if notes == nil {
		notes = strPtr("Order cancelled")
	}
	history := &model.OrderStatusHistory{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		Status:    model.OrderStatusCancelled,
		ChangedBy: changedBy,
		Notes:     notes,
		ChangedAt: now,
	}
	if _, err := tx.NamedExecContext(ctx, insertHistoryQuery, history); err != nil {
		return nil, fmt.Errorf("failed to insert status history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, orderID)
}

func lockOrder(ctx context.Context, tx *sqlx.Tx, orderID string) (*model.Order, error) {
	var o model.Order
	err := tx.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1 FOR UPDATE`, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Newf(apperr.NotFound, "order %s not found", orderID)
		}
		return nil, err
	}
	return &o, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	err := r.DB.GetContext(ctx, &o, `SELECT * FROM orders WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := r.loadDetails(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, int, error) {
	var orders []model.Order
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.UserID != "" {
		conditions = append(conditions, "user_id = :user_id")
		args["user_id"] = f.UserID
	}
	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.OrderType != "" {
		conditions = append(conditions, "order_type = :order_type")
		args["order_type"] = f.OrderType
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM orders" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return nil, 0, err
		}
	}

	query := "SELECT * FROM orders" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &orders, args); err != nil {
		return nil, 0, err
	}

	return orders, count, nil
}

func (r *PGRepository) TodaysOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	query := `
        SELECT * FROM orders
        WHERE status <> 'CANCELLED'
          AND (
                (order_type = 'IMMEDIATE' AND created_at::date = CURRENT_DATE)
             OR (order_type = 'SCHEDULED' AND scheduled_for::date = CURRENT_DATE)
          )
        ORDER BY COALESCE(scheduled_for, created_at) ASC
    `
	err := r.DB.SelectContext(ctx, &orders, query)
	return orders, err
}

func (r *PGRepository) ScheduledBetween(ctx context.Context, from, to time.Time) ([]model.Order, error) {
	var orders []model.Order
	query := `
        SELECT * FROM orders
        WHERE order_type = 'SCHEDULED'
          AND status <> 'CANCELLED'
          AND scheduled_for >= $1 AND scheduled_for <= $2
        ORDER BY scheduled_for ASC
    `
	err := r.DB.SelectContext(ctx, &orders, query, from, to)
	return orders, err
}

func (r *PGRepository) Stats(ctx context.Context) (*dto.OrderStats, error) {
	stats := &dto.OrderStats{ByStatus: map[string]int{}, Revenue: decimal.Zero}

	rows, err := r.DB.QueryxContext(ctx,
		`SELECT status, count(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		stats.ByStatus[status] = n
		stats.TotalOrders += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.DB.GetContext(ctx, &stats.TodayOrders,
		`SELECT count(*) FROM orders WHERE created_at::date = CURRENT_DATE`); err != nil {
		return nil, err
	}

	if err := r.DB.GetContext(ctx, &stats.Revenue,
		`SELECT COALESCE(sum(total), 0) FROM orders WHERE status = 'DELIVERED'`); err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *PGRepository) loadDetails(ctx context.Context, o *model.Order) error {
	o.Items = []model.OrderItem{}
	if err := r.DB.SelectContext(ctx, &o.Items,
		`SELECT * FROM order_items WHERE order_id = $1`, o.ID); err != nil {
		return err
	}

	o.StatusHistory = []model.OrderStatusHistory{}
	if err := r.DB.SelectContext(ctx, &o.StatusHistory,
		`SELECT * FROM order_status_history WHERE order_id = $1 ORDER BY changed_at ASC`, o.ID); err != nil {
		return err
	}

	if len(o.Items) == 0 {
		return nil
	}

	itemIDs := make([]string, len(o.Items))
	productIDs := make([]string, 0, len(o.Items))
	for i := range o.Items {
		itemIDs[i] = o.Items[i].ID
		productIDs = append(productIDs, o.Items[i].ProductID)
	}

	query, args, err := sqlx.In(`SELECT * FROM order_item_gift_selections WHERE order_item_id IN (?)`, itemIDs)
	if err != nil {
		return err
	}
	var selections []model.OrderItemGiftSelection
	if err := r.DB.SelectContext(ctx, &selections, r.DB.Rebind(query), args...); err != nil {
		return err
	}
	for _, s := range selections {
		productIDs = append(productIDs, s.GiftID)
	}

	query, args, err = sqlx.In(`SELECT * FROM products WHERE id IN (?)`, productIDs)
	if err != nil {
		return err
	}
	var products []model.Product
	if err := r.DB.SelectContext(ctx, &products, r.DB.Rebind(query), args...); err != nil {
		return err
	}
	productByID := map[string]*model.Product{}
	for i := range products {
		productByID[products[i].ID] = &products[i]
	}

	selectionsByItem := map[string][]model.OrderItemGiftSelection{}
	for _, s := range selections {
		s.Gift = productByID[s.GiftID]
		selectionsByItem[s.OrderItemID] = append(selectionsByItem[s.OrderItemID], s)
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.Product = productByID[item.ProductID]
		item.SelectedGifts = selectionsByItem[item.ID]
		if item.SelectedGifts == nil {
			item.SelectedGifts = []model.OrderItemGiftSelection{}
		}
	}
	return nil
}

func strPtr(s string) *string { return &s }
