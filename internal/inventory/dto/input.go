package dto

type AdjustStockRequest struct {
	MovementType string `json:"movement_type" binding:"required,oneof=IN OUT ADJUSTMENT"`
	Quantity     int    `json:"quantity" binding:"min=0"`
	Reason       string `json:"reason" binding:"required"`
}
