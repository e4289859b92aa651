package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chickencore/order-service/internal/apperr"
	"github.com/chickencore/order-service/internal/cart"
	"github.com/chickencore/order-service/internal/model"
	"github.com/chickencore/order-service/internal/scheduling"
	"github.com/chickencore/order-service/internal/scheduling/dto"
	"github.com/chickencore/order-service/pkg/cache"
	"github.com/chickencore/order-service/pkg/logger"
)

const rulesCacheKey = "scheduling:rules"

type schedulingUseCase struct {
	repo            scheduling.Repository
	cartUC          cart.UseCase
	cache           *cache.RedisClient
	maxScheduleDays int
	logger          logger.ZapLogger
}

func NewSchedulingUseCase(
	repo scheduling.Repository,
	cartUC cart.UseCase,
	cache *cache.RedisClient,
	maxScheduleDays int,
	log logger.ZapLogger,
) scheduling.UseCase {
	return &schedulingUseCase{
		repo:            repo,
		cartUC:          cartUC,
		cache:           cache,
		maxScheduleDays: maxScheduleDays,
		logger:          log,
	}
}

func (uc *schedulingUseCase) CreateRule(ctx context.Context, input *dto.CreateRuleInput) (*model.SchedulingRule, error) {
	if err := validateWindow(input.StartTime, input.EndTime); err != nil {
		return nil, err
	}

	existing, err := uc.repo.FindByDay(ctx, input.DayOfWeek)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Newf(apperr.Conflict,
			"a rule for %s already exists", model.DayName(input.DayOfWeek))
	}

	now := time.Now()
	rule := &model.SchedulingRule{
		BaseModel:           model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		DayOfWeek:           input.DayOfWeek,
		IsActive:            true,
		MinAmount:           input.MinAmount,
		MinFlagshipQuantity: input.MinFlagshipQuantity,
		StartTime:           input.StartTime,
		EndTime:             input.EndTime,
	}
	if input.Description != "" {
		rule.Description = &input.Description
	}

	if err := uc.repo.Create(ctx, rule); err != nil {
		return nil, err
	}
	uc.invalidateRuleCache(ctx)

	uc.logger.Info("scheduling rule created",
		zap.Int("day_of_week", rule.DayOfWeek),
		zap.String("id", rule.ID))

	return rule, nil
}

func (uc *schedulingUseCase) UpdateRule(ctx context.Context, input *dto.UpdateRuleInput) (*model.SchedulingRule, error) {
	if err := validateWindow(input.StartTime, input.EndTime); err != nil {
		return nil, err
	}

	rule, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, apperr.Newf(apperr.NotFound, "scheduling rule %s not found", input.ID)
	}

	rule.IsActive = input.IsActive
	rule.MinAmount = input.MinAmount
	rule.MinFlagshipQuantity = input.MinFlagshipQuantity
	rule.StartTime = input.StartTime
	rule.EndTime = input.EndTime
	rule.Description = nil
	if input.Description != "" {
		desc := input.Description
		rule.Description = &desc
	}
	rule.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, rule); err != nil {
		return nil, err
	}
	uc.invalidateRuleCache(ctx)

	return rule, nil
}

func (uc *schedulingUseCase) DeleteRule(ctx context.Context, id string) error {
	rule, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if rule == nil {
		return nil
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.invalidateRuleCache(ctx)
	return nil
}

func (uc *schedulingUseCase) ListRules(ctx context.Context) ([]model.SchedulingRule, error) {
	return uc.loadRules(ctx)
}

func (uc *schedulingUseCase) WeekInfo(ctx context.Context) ([]dto.WeekDayInfo, error) {
	rules, err := uc.loadRules(ctx)
	if err != nil {
		return nil, err
	}

	byDay := map[int]*model.SchedulingRule{}
	for i := range rules {
		byDay[rules[i].DayOfWeek] = &rules[i]
	}

	week := make([]dto.WeekDayInfo, 7)
	for day := 0; day < 7; day++ {
		rule := byDay[day]
		week[day] = dto.WeekDayInfo{
			DayOfWeek: day,
			DayName:   model.DayName(day),
			Open:      rule != nil && rule.IsActive,
			Rule:      rule,
		}
	}
	return week, nil
}

func (uc *schedulingUseCase) EvaluateTarget(ctx context.Context, target time.Time, demand scheduling.Demand) error {
	rules, err := uc.loadRules(ctx)
	if err != nil {
		return err
	}

	var rule *model.SchedulingRule
	day := int(target.Weekday())
	for i := range rules {
		if rules[i].DayOfWeek == day {
			rule = &rules[i]
			break
		}
	}

	reasons := scheduling.Evaluate(rule, target, time.Now(), uc.maxScheduleDays, demand)
	if len(reasons) > 0 {
		return apperr.New(apperr.SchedulingRejected, strings.Join(reasons, "; "))
	}
	return nil
}

func (uc *schedulingUseCase) ValidateSchedule(ctx context.Context, userID string, target time.Time) (*dto.ValidationResult, error) {
	snapshot, err := uc.cartUC.ValidateForCheckout(ctx, userID)
	if err != nil {
		if kind := apperr.KindOf(err); kind == apperr.Validation || kind == apperr.InsufficientStock {
			return &dto.ValidationResult{Allowed: false, Reasons: []string{apperr.MessageOf(err)}}, nil
		}
		return nil, err
	}

	err = uc.EvaluateTarget(ctx, target, scheduling.Demand{
		Total:            snapshot.Summary.Total,
		FlagshipQuantity: snapshot.Summary.FlagshipQuantity,
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.SchedulingRejected {
			return &dto.ValidationResult{
				Allowed: false,
				Reasons: strings.Split(apperr.MessageOf(err), "; "),
			}, nil
		}
		return nil, err
	}

	return &dto.ValidationResult{Allowed: true}, nil
}

func (uc *schedulingUseCase) loadRules(ctx context.Context) ([]model.SchedulingRule, error) {
	if val, err := uc.cache.Client.Get(ctx, rulesCacheKey).Result(); err == nil {
		var rules []model.SchedulingRule
		if err := json.Unmarshal([]byte(val), &rules); err == nil {
			return rules, nil
		}
	}

	rules, err := uc.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(rules); err == nil {
		uc.cache.Client.Set(ctx, rulesCacheKey, data, 10*time.Minute)
	}
	return rules, nil
}

func (uc *schedulingUseCase) invalidateRuleCache(ctx context.Context) {
	uc.cache.Client.Del(ctx, rulesCacheKey)
}

func validateWindow(start, end *string) error {
	if (start == nil) != (end == nil) {
		return apperr.New(apperr.Validation, "start_time and end_time must be set together")
	}
	if start == nil {
		return nil
	}
	for _, v := range []string{*start, *end} {
		if _, err := time.Parse("15:04", v); err != nil {
			return apperr.Newf(apperr.Validation, "invalid time %q, expected HH:MM", v)
		}
	}
	if *start >= *end {
		return apperr.New(apperr.Validation, "start_time must be before end_time")
	}
	return nil
}
