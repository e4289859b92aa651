package scheduling

import (
	"context"

	"github.com/chickencore/order-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, rule *model.SchedulingRule) error
	Update(ctx context.Context, rule *model.SchedulingRule) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.SchedulingRule, error)
	FindByDay(ctx context.Context, dayOfWeek int) (*model.SchedulingRule, error)
	FindAll(ctx context.Context) ([]model.SchedulingRule, error)
}
