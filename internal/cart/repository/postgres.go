package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/chickencore/order-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetOrCreate(ctx context.Context, userID string) (*model.Cart, error) {
	cart, err := r.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	now := time.Now()
	cart = &model.Cart{
		BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		UserID:    userID,
		Items:     []model.CartItem{},
	}
	query := `
        INSERT INTO carts (id, user_id, created_at, updated_at)
        VALUES (:id, :user_id, :created_at, :updated_at)
        ON CONFLICT (user_id) DO NOTHING
    `
	if _, err := r.DB.NamedExecContext(ctx, query, cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	// A concurrent request may have won the insert; read back the real row.
	return r.FindByUserID(ctx, userID)
}

func (r *PGRepository) FindByUserID(ctx context.Context, userID string) (*model.Cart, error) {
	var cart model.Cart
	err := r.DB.GetContext(ctx, &cart, `SELECT * FROM carts WHERE user_id = $1 LIMIT 1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := r.loadItems(ctx, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *PGRepository) FindItem(ctx context.Context, itemID string) (*model.CartItem, error) {
	var item model.CartItem
	err := r.DB.GetContext(ctx, &item, `SELECT * FROM cart_items WHERE id = $1 LIMIT 1`, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := r.DB.SelectContext(ctx, &item.SelectedGifts,
		`SELECT * FROM cart_item_gift_selections WHERE cart_item_id = $1`, itemID); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) InsertItem(ctx context.Context, item *model.CartItem) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        INSERT INTO cart_items (id, cart_id, product_id, quantity, created_at, updated_at)
        VALUES (:id, :cart_id, :product_id, :quantity, :created_at, :updated_at)
    `
	if _, err := tx.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("failed to insert cart item: %w", err)
	}

	if err := insertGiftSelections(ctx, tx, item.ID, item.SelectedGifts); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PGRepository) UpdateItem(ctx context.Context, item *model.CartItem, replaceGifts bool) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `UPDATE cart_items SET quantity = :quantity, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	if replaceGifts {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM cart_item_gift_selections WHERE cart_item_id = $1`, item.ID); err != nil {
			return fmt.Errorf("failed to clear gift selections: %w", err)
		}
		if err := insertGiftSelections(ctx, tx, item.ID, item.SelectedGifts); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertGiftSelections(ctx context.Context, tx *sqlx.Tx, itemID string, gifts []model.CartItemGiftSelection) error {
	for i := range gifts {
		gifts[i].ID = uuid.New().String()
		gifts[i].CartItemID = itemID
		query := `
            INSERT INTO cart_item_gift_selections (id, cart_item_id, gift_id, quantity)
            VALUES (:id, :cart_item_id, :gift_id, :quantity)
        `
		if _, err := tx.NamedExecContext(ctx, query, gifts[i]); err != nil {
			return fmt.Errorf("failed to insert gift selection: %w", err)
		}
	}
	return nil
}

func (r *PGRepository) DeleteItem(ctx context.Context, itemID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	return err
}

func (r *PGRepository) Clear(ctx context.Context, cartID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}

func (r *PGRepository) loadItems(ctx context.Context, cart *model.Cart) error {
	cart.Items = []model.CartItem{}
	if err := r.DB.SelectContext(ctx, &cart.Items,
		`SELECT * FROM cart_items WHERE cart_id = $1 ORDER BY created_at ASC`, cart.ID); err != nil {
		return err
	}
	if len(cart.Items) == 0 {
		return nil
	}

	itemIDs := make([]string, len(cart.Items))
	productIDs := make([]string, 0, len(cart.Items))
	for i := range cart.Items {
		itemIDs[i] = cart.Items[i].ID
		productIDs = append(productIDs, cart.Items[i].ProductID)
	}

	query, args, err := sqlx.In(`SELECT * FROM cart_item_gift_selections WHERE cart_item_id IN (?)`, itemIDs)
	if err != nil {
		return err
	}
	var selections []model.CartItemGiftSelection
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
	giftedIDs := []string{}
	for i := range products {
		productByID[products[i].ID] = &products[i]
		if products[i].HasGifts {
			giftedIDs = append(giftedIDs, products[i].ID)
		}
	}

	// Stored gift selections are validated against the product's allocations
	// at checkout, so the allocations must ride along with the cart read.
	if len(giftedIDs) > 0 {
		query, args, err = sqlx.In(`SELECT * FROM gift_allocations WHERE product_id IN (?)`, giftedIDs)
		if err != nil {
			return err
		}
		var allocations []model.GiftAllocation
		if err := r.DB.SelectContext(ctx, &allocations, r.DB.Rebind(query), args...); err != nil {
			return err
		}
		for _, a := range allocations {
			if parent := productByID[a.ProductID]; parent != nil {
				a.Gift = productByID[a.GiftID]
				parent.Gifts = append(parent.Gifts, a)
			}
		}
	}

	selectionsByItem := map[string][]model.CartItemGiftSelection{}
	for _, s := range selections {
		s.Gift = productByID[s.GiftID]
		selectionsByItem[s.CartItemID] = append(selectionsByItem[s.CartItemID], s)
	}

	for i := range cart.Items {
		item := &cart.Items[i]
		item.Product = productByID[item.ProductID]
		item.SelectedGifts = selectionsByItem[item.ID]
		if item.SelectedGifts == nil {
			item.SelectedGifts = []model.CartItemGiftSelection{}
		}
	}
	return nil
}
