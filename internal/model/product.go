package model

import "github.com/shopspring/decimal"

// Product is identified to customers by name plus presentation
// ("Pollo" / "Entero"); the pair is unique. IsFlagship marks the products
// that count toward scheduling quantity thresholds.
type Product struct {
	BaseModel
	CategoryID    *string          `db:"category_id" json:"category_id"`
	Name          string           `db:"name" json:"name"`
	Presentation  string           `db:"presentation" json:"presentation"`
	Description   *string          `db:"description" json:"description"`
	Price         decimal.Decimal  `db:"price" json:"price"`
	StockQuantity int              `db:"stock_quantity" json:"stock_quantity"`
	MinStock      int              `db:"min_stock" json:"min_stock"`
	HasGifts      bool             `db:"has_gifts" json:"has_gifts"`
	IsFlagship    bool             `db:"is_flagship" json:"is_flagship"`
	IsActive      bool             `db:"is_active" json:"is_active"`
	ImageURL      *string          `db:"image_url" json:"image_url"`
	Gifts         []GiftAllocation `db:"-" json:"gifts,omitempty"`
	Category      *Category        `db:"-" json:"category,omitempty"`
}

// GiftAllocation declares that each unit of ProductID entitles the buyer to
// up to Quantity units of GiftID at no charge.
type GiftAllocation struct {
	ID        string   `db:"id" json:"id"`
	ProductID string   `db:"product_id" json:"product_id"`
	GiftID    string   `db:"gift_id" json:"gift_id"`
	Quantity  int      `db:"quantity" json:"quantity"`
	Gift      *Product `db:"-" json:"gift,omitempty"`
}
