package dto

// GiftSelectionInput is a per-unit choice: the stored selection gets scaled by
// the line quantity.
type GiftSelectionInput struct {
	GiftID   string `json:"gift_id" binding:"required,uuid"`
	Quantity int    `json:"quantity" binding:"required,min=1"`
}

type AddItemInput struct {
	ProductID string               `json:"product_id" binding:"required,uuid"`
	Quantity  int                  `json:"quantity" binding:"required,min=1"`
	Gifts     []GiftSelectionInput `json:"gifts"`
}

type UpdateItemInput struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}
