package dto

import "github.com/chickencore/order-service/internal/model"

type WeekDayInfo struct {
	DayOfWeek int                   `json:"day_of_week"`
	DayName   string                `json:"day_name"`
	Open      bool                  `json:"open"`
	Rule      *model.SchedulingRule `json:"rule,omitempty"`
}

type ValidationResult struct {
	Allowed bool     `json:"allowed"`
	Reasons []string `json:"reasons,omitempty"`
}
