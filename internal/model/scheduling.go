package model

import "github.com/shopspring/decimal"

// SchedulingRule gates future-dated orders for one day of the week
// (0=Sunday .. 6=Saturday). At most one rule exists per day. StartTime and
// EndTime are zero-padded 24h "HH:MM" strings, so lexicographic comparison
// orders them correctly. MinAmount and MinFlagshipQuantity are alternative
// thresholds: satisfying either one passes.
type SchedulingRule struct {
	BaseModel
	DayOfWeek           int              `db:"day_of_week" json:"day_of_week"`
	IsActive            bool             `db:"is_active" json:"is_active"`
	MinAmount           *decimal.Decimal `db:"min_amount" json:"min_amount"`
	MinFlagshipQuantity *int             `db:"min_flagship_quantity" json:"min_flagship_quantity"`
	StartTime           *string          `db:"start_time" json:"start_time"`
	EndTime             *string          `db:"end_time" json:"end_time"`
	Description         *string          `db:"description" json:"description"`
}

var dayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

func DayName(dayOfWeek int) string {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return "unknown"
	}
	return dayNames[dayOfWeek]
}
