package scheduling

import (
	"context"
	"time"

	"github.com/chickencore/order-service/internal/model"
	"github.com/chickencore/order-service/internal/scheduling/dto"
)

type UseCase interface {
	CreateRule(ctx context.Context, input *dto.CreateRuleInput) (*model.SchedulingRule, error)
	UpdateRule(ctx context.Context, input *dto.UpdateRuleInput) (*model.SchedulingRule, error)
	DeleteRule(ctx context.Context, id string) error
	ListRules(ctx context.Context) ([]model.SchedulingRule, error)
	WeekInfo(ctx context.Context) ([]dto.WeekDayInfo, error)

	// EvaluateTarget applies the weekday's rule to a demand and returns a
	// SchedulingRejected error carrying every reason when it fails.
	EvaluateTarget(ctx context.Context, target time.Time, demand Demand) error

	// ValidateSchedule runs the full pre-checkout gate against the user's
	// current cart without creating anything.
	ValidateSchedule(ctx context.Context, userID string, target time.Time) (*dto.ValidationResult, error)
}
