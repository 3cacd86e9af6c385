package policy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/psqlbuilder"
)

const (
	tableName = "reservation_policy"

	// singletonID единственная строка таблицы политики
	singletonID = 1
)

// Repository хранилище политики бронирования (одна строка).
// Значение читается из БД при каждом вызове Get, кэширования нет.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория политики
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get возвращает текущую политику
func (r *Repository) Get(ctx context.Context) (*domain.ReservationPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"max_hours_per_reservation",
		"max_reservations_per_user_per_day",
		"min_hours_in_advance",
		"allowed_start_time",
		"allowed_end_time",
		"requires_approval_for_all_day",
		"allow_consecutive_reservations",
		"min_time_between_reservations",
		"updated_at",
		"updated_by",
	).
		From(tableName).
		Where(squirrel.Eq{"id": singletonID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	var policy domain.ReservationPolicy
	var updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&policy.MaxHoursPerReservation,
		&policy.MaxReservationsPerUserPerDay,
		&policy.MinHoursInAdvance,
		&policy.AllowedStartTime,
		&policy.AllowedEndTime,
		&policy.RequiresApprovalForAllDay,
		&policy.AllowConsecutiveReservations,
		&policy.MinTimeBetweenReservations,
		&updatedAt,
		&policy.UpdatedBy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan policy: %w", ErrScanRow, err)
	}

	policy.UpdatedAt = updatedAt.Time

	return &policy, nil
}

// Save сохраняет политику целиком (insert или update единственной строки)
func (r *Repository) Save(ctx context.Context, policy *domain.ReservationPolicy) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"id",
			"max_hours_per_reservation",
			"max_reservations_per_user_per_day",
			"min_hours_in_advance",
			"allowed_start_time",
			"allowed_end_time",
			"requires_approval_for_all_day",
			"allow_consecutive_reservations",
			"min_time_between_reservations",
			"updated_by",
		).
		Values(
			singletonID,
			policy.MaxHoursPerReservation,
			policy.MaxReservationsPerUserPerDay,
			policy.MinHoursInAdvance,
			policy.AllowedStartTime,
			policy.AllowedEndTime,
			policy.RequiresApprovalForAllDay,
			policy.AllowConsecutiveReservations,
			policy.MinTimeBetweenReservations,
			policy.UpdatedBy,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			max_hours_per_reservation = EXCLUDED.max_hours_per_reservation,
			max_reservations_per_user_per_day = EXCLUDED.max_reservations_per_user_per_day,
			min_hours_in_advance = EXCLUDED.min_hours_in_advance,
			allowed_start_time = EXCLUDED.allowed_start_time,
			allowed_end_time = EXCLUDED.allowed_end_time,
			requires_approval_for_all_day = EXCLUDED.requires_approval_for_all_day,
			allow_consecutive_reservations = EXCLUDED.allow_consecutive_reservations,
			min_time_between_reservations = EXCLUDED.min_time_between_reservations,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
			RETURNING updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Save - build upsert query: %v", ErrBuildQuery, err)
	}

	var updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&updatedAt); err != nil {
		return fmt.Errorf("%w: Save - execute upsert: %w", ErrExecQuery, err)
	}

	policy.UpdatedAt = updatedAt.Time

	return nil
}
