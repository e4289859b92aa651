package dto

import "github.com/shopspring/decimal"

type GiftInput struct {
	GiftID   string `json:"gift_id" binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

type CreateProductInput struct {
	CategoryID    string          `json:"category_id"`
	Name          string          `json:"name" binding:"required"`
	Presentation  string          `json:"presentation" binding:"required"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price" binding:"required"`
	StockQuantity int             `json:"stock_quantity" binding:"min=0"`
	MinStock      int             `json:"min_stock" binding:"min=0"`
	IsFlagship    bool            `json:"is_flagship"`
	ImageURL      string          `json:"image_url"`
	Gifts         []GiftInput     `json:"gifts"`
}

type UpdateProductInput struct {
	ID            string
	CategoryID    string          `json:"category_id"`
	Name          string          `json:"name" binding:"required"`
	Presentation  string          `json:"presentation" binding:"required"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price" binding:"required"`
	MinStock      int             `json:"min_stock" binding:"min=0"`
	IsFlagship    bool            `json:"is_flagship"`
	IsActive      bool            `json:"is_active"`
	ImageURL      string          `json:"image_url"`
	Gifts         *[]GiftInput    `json:"gifts"`
}
