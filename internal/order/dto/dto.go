package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderFilters struct {
	UserID    string
	Status    string
	OrderType string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

type OrderStats struct {
	TotalOrders int             `json:"total_orders"`
	ByStatus    map[string]int  `json:"by_status"`
	TodayOrders int             `json:"today_orders"`
	Revenue     decimal.Decimal `json:"revenue"`
}
