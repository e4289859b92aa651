package scheduling

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chickencore/order-service/internal/model"
)

// Demand captures what the evaluator needs to know about a cart.
type Demand struct {
	Total            decimal.Decimal
	FlagshipQuantity int
}

// Evaluate checks a requested delivery time against the rule for its weekday
// and returns every rejection reason found, empty meaning allowed.
//
// A nil or inactive rule closes the day entirely. When a rule sets both a
// minimum amount and a minimum flagship quantity, meeting either one passes.
func Evaluate(rule *model.SchedulingRule, target, now time.Time, maxDays int, demand Demand) []string {
	var reasons []string

	if target.Before(now) {
		reasons = append(reasons, "the requested time is in the past")
	}
	if maxDays > 0 && target.After(now.AddDate(0, 0, maxDays)) {
		reasons = append(reasons, fmt.Sprintf("orders can be scheduled at most %d days ahead", maxDays))
	}

	dayName := model.DayName(int(target.Weekday()))
	if rule == nil || !rule.IsActive {
		reasons = append(reasons, fmt.Sprintf("scheduling is not available on %s", dayName))
		return reasons
	}

	// Zero-padded HH:MM strings compare correctly as text.
	if rule.StartTime != nil && rule.EndTime != nil {
		hhmm := target.Format("15:04")
		if hhmm < *rule.StartTime || hhmm > *rule.EndTime {
			reasons = append(reasons, fmt.Sprintf(
				"on %s orders are accepted between %s and %s", dayName, *rule.StartTime, *rule.EndTime))
		}
	}

	hasAmount := rule.MinAmount != nil
	hasFlagship := rule.MinFlagshipQuantity != nil
	if hasAmount || hasFlagship {
		amountOK := hasAmount && demand.Total.GreaterThanOrEqual(*rule.MinAmount)
		flagshipOK := hasFlagship && demand.FlagshipQuantity >= *rule.MinFlagshipQuantity
		if !amountOK && !flagshipOK {
			switch {
			case hasAmount && hasFlagship:
				reasons = append(reasons, fmt.Sprintf(
					"on %s the order must reach %s or include at least %d flagship products",
					dayName, rule.MinAmount.StringFixed(2), *rule.MinFlagshipQuantity))
			case hasAmount:
				reasons = append(reasons, fmt.Sprintf(
					"on %s the order must reach %s", dayName, rule.MinAmount.StringFixed(2)))
			default:
				reasons = append(reasons, fmt.Sprintf(
					"on %s the order must include at least %d flagship products",
					dayName, *rule.MinFlagshipQuantity))
			}
		}
	}

	return reasons
}
