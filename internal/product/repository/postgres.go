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

	"github.com/chickencore/order-service/internal/model"
	"github.com/chickencore/order-service/internal/product/dto"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product, initialStockReason string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO products (
            id, category_id, name, presentation, description, price,
            stock_quantity, min_stock, has_gifts, is_flagship, is_active,
            image_url, created_at, updated_at
        )
        VALUES (
            :id, :category_id, :name, :presentation, :description, :price,
            :stock_quantity, :min_stock, :has_gifts, :is_flagship, :is_active,
            :image_url, :created_at, :updated_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	if err := insertGifts(ctx, tx, p.ID, p.Gifts); err != nil {
		return err
	}

	// Stock never changes without an audit row, including the opening balance.
	if p.StockQuantity > 0 {
		movement := &model.InventoryMovement{
			ID:             uuid.New().String(),
			ProductID:      p.ID,
			MovementType:   model.MovementAdjustment,
			Quantity:       p.StockQuantity,
			QuantityBefore: 0,
			QuantityAfter:  p.StockQuantity,
			Reason:         initialStockReason,
			CreatedAt:      time.Now(),
		}
		movementQuery := `
            INSERT INTO inventory_movements (
                id, product_id, movement_type, quantity, quantity_before, quantity_after,
                reason, reference_id, created_by, created_at
            )
            VALUES (
                :id, :product_id, :movement_type, :quantity, :quantity_before, :quantity_after,
                :reason, :reference_id, :created_by, :created_at
            )
        `
		if _, err := tx.NamedExecContext(ctx, movementQuery, movement); err != nil {
			return fmt.Errorf("failed to log initial stock movement: %w", err)
		}
	}

	return tx.Commit()
}

// Update deliberately leaves stock_quantity alone: stock only moves through
// the inventory ledger.
func (r *PGRepository) Update(ctx context.Context, p *model.Product, replaceGifts bool) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        UPDATE products SET
            category_id = :category_id,
            name = :name,
            presentation = :presentation,
            description = :description,
            price = :price,
            min_stock = :min_stock,
            has_gifts = :has_gifts,
            is_flagship = :is_flagship,
            is_active = :is_active,
            image_url = :image_url,
            updated_at = :updated_at
        WHERE id = :id
    `
	if _, err := tx.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	if replaceGifts {
		if _, err := tx.ExecContext(ctx, `DELETE FROM gift_allocations WHERE product_id = $1`, p.ID); err != nil {
			return fmt.Errorf("failed to clear gift allocations: %w", err)
		}
		if err := insertGifts(ctx, tx, p.ID, p.Gifts); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertGifts(ctx context.Context, tx *sqlx.Tx, productID string, gifts []model.GiftAllocation) error {
	for i := range gifts {
		gifts[i].ID = uuid.New().String()
		gifts[i].ProductID = productID
		query := `
            INSERT INTO gift_allocations (id, product_id, gift_id, quantity)
            VALUES (:id, :product_id, :gift_id, :quantity)
        `
		if _, err := tx.NamedExecContext(ctx, query, gifts[i]); err != nil {
			return fmt.Errorf("failed to insert gift allocation: %w", err)
		}
	}
	return nil
}

// Delete removes the product together with its own movement ledger. Callers
// must check CountActiveReferences first; rows held by orders or other
// products' gift allocations keep their FK and make the delete fail.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_movements WHERE product_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete product movements: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	query := `SELECT * FROM products WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := r.loadGifts(ctx, []*model.Product{&product}); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *PGRepository) FindByNamePresentation(ctx context.Context, name, presentation string) (*model.Product, error) {
	var product model.Product
	query := `SELECT * FROM products WHERE name = $1 AND presentation = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &product, query, name, presentation)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	var products []model.Product
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.CategoryID != "" {
		conditions = append(conditions, "category_id = :category_id")
		args["category_id"] = f.CategoryID
	}
	if f.IsActive != nil {
		conditions = append(conditions, "is_active = :is_active")
		args["is_active"] = *f.IsActive
	}
	if f.HasGifts != nil {
		conditions = append(conditions, "has_gifts = :has_gifts")
		args["has_gifts"] = *f.HasGifts
	}
	if f.IsFlagship != nil {
		conditions = append(conditions, "is_flagship = :is_flagship")
		args["is_flagship"] = *f.IsFlagship
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(name ILIKE :search OR presentation ILIKE :search OR description ILIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM products" + whereClause
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

	orderBy := "name ASC, presentation ASC"
	if f.SortBy != "" {
		// Whitelist sortable fields
		switch f.SortBy {
		case "name":
			orderBy = "name"
		case "price":
			orderBy = "price"
		case "created_at":
			orderBy = "created_at"
		default:
			orderBy = "name"
		}
		if strings.ToLower(f.SortOrder) == "desc" {
			orderBy += " DESC"
		} else {
			orderBy += " ASC"
		}
	}

	query := fmt.Sprintf("SELECT * FROM products%s ORDER BY %s", whereClause, orderBy)
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &products, args); err != nil {
		return nil, 0, err
	}

	refs := make([]*model.Product, len(products))
	for i := range products {
		refs[i] = &products[i]
	}
	if err := r.loadGifts(ctx, refs); err != nil {
		return nil, 0, err
	}

	return products, count, nil
}

func (r *PGRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	query = r.DB.Rebind(query)

	var products []model.Product
	err = r.DB.SelectContext(ctx, &products, query, args...)
	return products, err
}

func (r *PGRepository) AvailableGifts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	// Only products that do not themselves carry gifts can be gift targets.
	query := `
        SELECT * FROM products
        WHERE is_active = TRUE AND has_gifts = FALSE
        ORDER BY name ASC, presentation ASC
    `
	err := r.DB.SelectContext(ctx, &products, query)
	return products, err
}

func (r *PGRepository) CountActiveReferences(ctx context.Context, id string) (int, error) {
	var count int
	query := `
        SELECT
            (SELECT count(*) FROM cart_items WHERE product_id = $1)
          + (SELECT count(*) FROM order_items WHERE product_id = $1)
          + (SELECT count(*) FROM order_item_gift_selections WHERE gift_id = $1)
          + (SELECT count(*) FROM gift_allocations WHERE gift_id = $1)
    `
	err := r.DB.GetContext(ctx, &count, query, id)
	return count, err
}

func (r *PGRepository) loadGifts(ctx context.Context, products []*model.Product) error {
	ids := []string{}
	byID := map[string]*model.Product{}
	for _, p := range products {
		if p.HasGifts {
			ids = append(ids, p.ID)
		}
		byID[p.ID] = p
	}
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`SELECT * FROM gift_allocations WHERE product_id IN (?)`, ids)
	if err != nil {
		return err
	}
	query = r.DB.Rebind(query)

	var allocations []model.GiftAllocation
	if err := r.DB.SelectContext(ctx, &allocations, query, args...); err != nil {
		return err
	}
	if len(allocations) == 0 {
		return nil
	}

	giftIDs := make([]string, 0, len(allocations))
	for _, a := range allocations {
		giftIDs = append(giftIDs, a.GiftID)
	}
	gifts, err := r.FindByIDs(ctx, giftIDs)
	if err != nil {
		return err
	}
	giftByID := map[string]*model.Product{}
	for i := range gifts {
		giftByID[gifts[i].ID] = &gifts[i]
	}

	for _, a := range allocations {
		parent := byID[a.ProductID]
		if parent == nil {
			continue
		}
		a.Gift = giftByID[a.GiftID]
		parent.Gifts = append(parent.Gifts, a)
	}
	return nil
}
