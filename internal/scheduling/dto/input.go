package dto

import "github.com/shopspring/decimal"

type CreateRuleInput struct {
	DayOfWeek           int              `json:"day_of_week" binding:"min=0,max=6"`
	MinAmount           *decimal.Decimal `json:"min_amount"`
	MinFlagshipQuantity *int             `json:"min_flagship_quantity"`
	StartTime           *string          `json:"start_time"`
	EndTime             *string          `json:"end_time"`
	Description         string           `json:"description"`
}

type UpdateRuleInput struct {
	ID                  string
	IsActive            bool             `json:"is_active"`
	MinAmount           *decimal.Decimal `json:"min_amount"`
	MinFlagshipQuantity *int             `json:"min_flagship_quantity"`
	StartTime           *string          `json:"start_time"`
	EndTime             *string          `json:"end_time"`
	Description         string           `json:"description"`
}

type ValidateScheduleInput struct {
	ScheduledFor string `json:"scheduled_for" binding:"required"` // RFC 3339
}
