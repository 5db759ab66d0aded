package policy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

const table = "practice_policies"

// Repository репозиторий политик бронирования практик
type Repository struct {
	db dbmetrics.DBExecutor
}

func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByPracticeID получает политику практики
func (r *Repository) GetByPracticeID(ctx context.Context, practiceID int64) (*domain.PracticePolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"practice_id",
		"timezone",
		"min_notice_hours",
		"max_future_booking_days",
		"default_duration_minutes",
		"created_at",
		"updated_at",
	).
		From(table).
		Where(squirrel.Eq{"practice_id": practiceID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByPracticeID - build select query: %v", ErrBuildQuery, err)
	}

	var (
		p                    domain.PracticePolicy
		createdAt, updatedAt sql.NullTime
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&p.PracticeID,
		&p.Timezone,
		&p.MinNoticeHours,
		&p.MaxFutureBookingDays,
		&p.DefaultDurationMinutes,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByPracticeID - scan policy: %w", ErrScanRow, err)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return &p, nil
}

// Upsert создаёт или полностью заменяет политику практики
func (r *Repository) Upsert(ctx context.Context, p *domain.PracticePolicy) (*domain.PracticePolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := upsertQuery(p).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %w", ErrExecQuery, err)
	}

	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time

	return p, nil
}

func upsertQuery(p *domain.PracticePolicy) squirrel.InsertBuilder {
	return psqlbuilder.Insert(table).
		Columns(
			"practice_id",
			"timezone",
			"min_notice_hours",
			"max_future_booking_days",
			"default_duration_minutes",
		).
		Values(
			p.PracticeID,
			p.Timezone,
			p.MinNoticeHours,
			p.MaxFutureBookingDays,
			p.DefaultDurationMinutes,
		).
		Suffix(`ON CONFLICT (practice_id) DO UPDATE SET
			timezone = EXCLUDED.timezone,
			min_notice_hours = EXCLUDED.min_notice_hours,
			max_future_booking_days = EXCLUDED.max_future_booking_days,
			default_duration_minutes = EXCLUDED.default_duration_minutes,
			updated_at = NOW()
		RETURNING created_at, updated_at`)
}
