package dto

import "time"

type AdjustInput struct {
	ProductID    string
	MovementType string // model.MovementIn / MovementOut / MovementAdjustment
	Quantity     int    // magnitude for IN/OUT, absolute target for ADJUSTMENT
	Reason       string
	ReferenceID  *string
	ActorID      *string
}

type MovementFilters struct {
	ProductID    string
	MovementType string
	StartDate    *time.Time
	EndDate      *time.Time
	Page         int
	PageSize     int
}
