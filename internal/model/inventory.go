package model

import "time"

const (
	MovementIn         = "IN"
	MovementOut        = "OUT"
	MovementAdjustment = "ADJUSTMENT"
)

// InventoryMovement is the append-only audit record paired 1:1 with every
// stock counter mutation. Quantity is signed: negative for OUT.
type InventoryMovement struct {
	ID             string    `db:"id" json:"id"`
	ProductID      string    `db:"product_id" json:"product_id"`
	MovementType   string    `db:"movement_type" json:"movement_type"`
	Quantity       int       `db:"quantity" json:"quantity"`
	QuantityBefore int       `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  int       `db:"quantity_after" json:"quantity_after"`
	Reason         string    `db:"reason" json:"reason"`
	ReferenceID    *string   `db:"reference_id" json:"reference_id"`
	CreatedBy      *string   `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
