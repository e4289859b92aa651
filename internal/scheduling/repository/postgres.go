package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/chickencore/order-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, rule *model.SchedulingRule) error {
	query := `
        INSERT INTO scheduling_rules (
            id, day_of_week, is_active, min_amount, min_flagship_quantity,
            start_time, end_time, description, created_at, updated_at
        )
        VALUES (
            :id, :day_of_week, :is_active, :min_amount, :min_flagship_quantity,
            :start_time, :end_time, :description, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, rule)
	return err
}

func (r *PGRepository) Update(ctx context.Context, rule *model.SchedulingRule) error {
	query := `
        UPDATE scheduling_rules SET
            day_of_week = :day_of_week,
            is_active = :is_active,
            min_amount = :min_amount,
            min_flagship_quantity = :min_flagship_quantity,
            start_time = :start_time,
            end_time = :end_time,
            description = :description,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.DB.NamedExecContext(ctx, query, rule)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM scheduling_rules WHERE id = $1`, id)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.SchedulingRule, error) {
	var rule model.SchedulingRule
	err := r.DB.GetContext(ctx, &rule, `SELECT * FROM scheduling_rules WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *PGRepository) FindByDay(ctx context.Context, dayOfWeek int) (*model.SchedulingRule, error) {
	var rule model.SchedulingRule
	err := r.DB.GetContext(ctx, &rule, `SELECT * FROM scheduling_rules WHERE day_of_week = $1 LIMIT 1`, dayOfWeek)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

func (r *PGRepository) FindAll(ctx context.Context) ([]model.SchedulingRule, error) {
	var rules []model.SchedulingRule
	err := r.DB.SelectContext(ctx, &rules, `SELECT * FROM scheduling_rules ORDER BY day_of_week ASC`)
	return rules, err
}
