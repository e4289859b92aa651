package scheduling

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chickencore/order-service/internal/model"
)

var (
	// A fixed Tuesday noon so weekday math stays deterministic.
	now = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	// The following Monday at 13:00.
	monday = time.Date(2026, 9, 7, 13, 0, 0, 0, time.UTC)
)

func mondayRule(mutate func(*model.SchedulingRule)) *model.SchedulingRule {
	rule := &model.SchedulingRule{
		DayOfWeek: 1,
		IsActive:  true,
	}
	if mutate != nil {
		mutate(rule)
	}
	return rule
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

func TestEvaluateOpenDayNoThresholds(t *testing.T) {
	reasons := Evaluate(mondayRule(nil), monday, now, 30, Demand{Total: decimal.Zero})
	assert.Empty(t, reasons)
}

func TestEvaluateNoRuleClosesDay(t *testing.T) {
	reasons := Evaluate(nil, monday, now, 30, Demand{})
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "Monday")
}

func TestEvaluateInactiveRuleClosesDay(t *testing.T) {
	rule := mondayRule(func(r *model.SchedulingRule) { r.IsActive = false })
	reasons := Evaluate(rule, monday, now, 30, Demand{})
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "not available")
}

func TestEvaluateRejectsPastTarget(t *testing.T) {
	past := now.Add(-time.Hour)
	reasons := Evaluate(mondayRule(nil), past, now, 30, Demand{})
	assert.Contains(t, reasons, "the requested time is in the past")
}

func TestEvaluateAcceptsTargetExactlyNow(t *testing.T) {
	reasons := Evaluate(mondayRule(nil), now, now, 30, Demand{})
	assert.Empty(t, reasons)
}

func TestEvaluateRejectsBeyondHorizon(t *testing.T) {
	farOut := now.AddDate(0, 0, 31)
	reasons := Evaluate(mondayRule(nil), farOut, now, 30, Demand{})
	require.NotEmpty(t, reasons)
	assert.Contains(t, reasons[0], "30 days")
}

func TestEvaluateTimeWindow(t *testing.T) {
	rule := mondayRule(func(r *model.SchedulingRule) {
		r.StartTime = strPtr("09:00")
		r.EndTime = strPtr("12:00")
	})

	// 13:00 falls outside 09:00-12:00.
	reasons := Evaluate(rule, monday, now, 30, Demand{})
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "between 09:00 and 12:00")

	inside := time.Date(2026, 9, 7, 10, 30, 0, 0, time.UTC)
	assert.Empty(t, Evaluate(rule, inside, now, 30, Demand{}))
}

func TestEvaluateThresholdsEitherOnePasses(t *testing.T) {
	rule := mondayRule(func(r *model.SchedulingRule) {
		r.MinAmount = amount("500.00")
		r.MinFlagshipQuantity = intPtr(5)
	})

	t.Run("amount alone passes", func(t *testing.T) {
		demand := Demand{Total: decimal.RequireFromString("600.00"), FlagshipQuantity: 0}
		assert.Empty(t, Evaluate(rule, monday, now, 30, demand))
	})

	t.Run("flagship quantity alone passes", func(t *testing.T) {
		demand := Demand{Total: decimal.RequireFromString("50.00"), FlagshipQuantity: 5}
		assert.Empty(t, Evaluate(rule, monday, now, 30, demand))
	})

	t.Run("neither met rejects", func(t *testing.T) {
		demand := Demand{Total: decimal.RequireFromString("50.00"), FlagshipQuantity: 2}
		reasons := Evaluate(rule, monday, now, 30, demand)
		require.Len(t, reasons, 1)
		assert.Contains(t, reasons[0], "500.00")
		assert.Contains(t, reasons[0], "5 flagship")
	})

	t.Run("exact amount boundary passes", func(t *testing.T) {
		demand := Demand{Total: decimal.RequireFromString("500.00")}
		assert.Empty(t, Evaluate(rule, monday, now, 30, demand))
	})
}

func TestEvaluateOnlyAmountConfigured(t *testing.T) {
	rule := mondayRule(func(r *model.SchedulingRule) {
		r.MinAmount = amount("300.00")
	})

	// A flagship-heavy cart cannot satisfy a threshold that was never set.
	demand := Demand{Total: decimal.RequireFromString("100.00"), FlagshipQuantity: 50}
	reasons := Evaluate(rule, monday, now, 30, demand)
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "300.00")
}

func TestEvaluateCollectsMultipleReasons(t *testing.T) {
	rule := mondayRule(func(r *model.SchedulingRule) {
		r.StartTime = strPtr("09:00")
		r.EndTime = strPtr("12:00")
		r.MinAmount = amount("500.00")
	})

	demand := Demand{Total: decimal.RequireFromString("10.00")}
	reasons := Evaluate(rule, monday, now, 30, demand)
	assert.Len(t, reasons, 2)
}
