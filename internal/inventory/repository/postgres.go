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

	"github.com/chickencore/order-service/internal/apperr"
	"github.com/chickencore/order-service/internal/inventory/dto"
	"github.com/chickencore/order-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) CheckAvailability(ctx context.Context, productID string, quantity int) (bool, error) {
	var ok bool
	query := `SELECT stock_quantity >= $2 FROM products WHERE id = $1`
	err := r.DB.GetContext(ctx, &ok, query, productID, quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

// ApplyMovement is the single primitive behind every stock mutation: one
// conditional UPDATE that locks the product row, refuses to take the counter
// negative, and one movement insert, both on the caller's executor. The order
// checkout and cancellation transactions reuse it so stock and audit trail
// can never diverge.
func ApplyMovement(ctx context.Context, ext sqlx.ExtContext, input *dto.AdjustInput) (*model.InventoryMovement, error) {
	var expr, guard string
	switch input.MovementType {
	case model.MovementOut:
		expr = "p.stock_quantity - $1"
		guard = "p.stock_quantity >= $1"
	case model.MovementIn:
		expr = "p.stock_quantity + $1"
		guard = "TRUE"
	case model.MovementAdjustment:
		expr = "$1"
		guard = "$1 >= 0"
	default:
		return nil, apperr.Newf(apperr.Validation, "unknown movement type %q", input.MovementType)
	}

	query := fmt.Sprintf(`
        UPDATE products p
        SET stock_quantity = %s, updated_at = now()
        FROM (SELECT id, stock_quantity AS before FROM products WHERE id = $2 FOR UPDATE) prev
        WHERE p.id = prev.id AND %s
        RETURNING prev.before, p.stock_quantity AS after
    `, expr, guard)

	var counters struct {
		Before int `db:"before"`
		After  int `db:"after"`
	}
	err := sqlx.GetContext(ctx, ext, &counters, query, input.Quantity, input.ProductID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if probeErr := sqlx.GetContext(ctx, ext, &exists,
				`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, input.ProductID); probeErr != nil {
				return nil, probeErr
			}
			if !exists {
				return nil, apperr.Newf(apperr.NotFound, "product %s not found", input.ProductID)
			}
			return nil, apperr.New(apperr.InsufficientStock, "insufficient stock")
		}
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	movement := &model.InventoryMovement{
		ID:             uuid.New().String(),
		ProductID:      input.ProductID,
		MovementType:   input.MovementType,
		Quantity:       counters.After - counters.Before,
		QuantityBefore: counters.Before,
		QuantityAfter:  counters.After,
		Reason:         input.Reason,
		ReferenceID:    input.ReferenceID,
		CreatedBy:      input.ActorID,
		CreatedAt:      time.Now(),
	}

	insertQuery := `
        INSERT INTO inventory_movements (
            id, product_id, movement_type, quantity, quantity_before, quantity_after,
            reason, reference_id, created_by, created_at
        )
        VALUES (
            :id, :product_id, :movement_type, :quantity, :quantity_before, :quantity_after,
            :reason, :reference_id, :created_by, :created_at
        )
    `
	if _, err := sqlx.NamedExecContext(ctx, ext, insertQuery, movement); err != nil {
		return nil, fmt.Errorf("failed to log movement: %w", err)
	}

	return movement, nil
}

func (r *PGRepository) Adjust(ctx context.Context, input *dto.AdjustInput) (*model.InventoryMovement, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	movement, err := ApplyMovement(ctx, tx, input)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return movement, nil
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	var items []model.InventoryMovement
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "movement_type = :movement_type")
		args["movement_type"] = f.MovementType
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

	countQuery := "SELECT count(*) FROM inventory_movements" + whereClause
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

	query := "SELECT * FROM inventory_movements" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}
