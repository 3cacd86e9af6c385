package reservation

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

const tableName = "reservations"

var columns = []string{
	"id",
	"resource_id",
	"user_id",
	"start_time",
	"end_time",
	"num_members",
	"num_guests",
	"all_day",
	"reason",
	"status",
	"approved",
	"approved_by",
	"rejection_reason",
	"reviewed_at",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий бронирований в PostgreSQL
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Если в контексте передана активная транзакция, использует её.
func (r *Repository) Create(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"resource_id",
			"user_id",
			"start_time",
			"end_time",
			"num_members",
			"num_guests",
			"all_day",
			"reason",
			"status",
			"approved",
		).
		Values(
			reservation.ResourceID,
			reservation.UserID,
			reservation.StartTime,
			reservation.EndTime,
			reservation.NumMembers,
			reservation.NumGuests,
			reservation.AllDay,
			reservation.Reason,
			reservation.Status,
			reservation.Approved,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&reservation.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	reservation.CreatedAt = createdAt.Time
	reservation.UpdatedAt = updatedAt.Time

	return reservation, nil
}

// GetByID получает бронирование по ID.
// Внутри транзакции строка блокируется (FOR UPDATE).
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	reservation, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %w", ErrScanRow, err)
	}

	return reservation, nil
}

// List получает бронирования по фильтру, упорядоченные по времени начала.
// Внутри транзакции выбранные строки блокируются (FOR UPDATE), чтобы проверка
// пересечений и вставка выполнялись атомарно.
func (r *Repository) List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).From(tableName)

	if filter.ResourceID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"resource_id": *filter.ResourceID})
	}
	if filter.UserID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"user_id": *filter.UserID})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statuses})
	}

	// Пересечение с окном [From, To)
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.Gt{"end_time": *filter.From})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_time": *filter.To})
	}
	if filter.EndsBefore != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"end_time": *filter.EndsBefore})
	}

	if filter.AfterID != nil {
		selectBuilder = selectBuilder.
			Where(squirrel.Gt{"id": *filter.AfterID}).
			OrderBy("id ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("start_time ASC", "id ASC")
	}

	if filter.Limit > 0 {
		selectBuilder = selectBuilder.Limit(uint64(filter.Limit))
	}

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	reservations := make([]*domain.Reservation, 0)
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %w", ErrScanRow, err)
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %w", ErrScanRow, err)
	}

	return reservations, nil
}

// Update перезаписывает изменяемые поля бронирования, только если текущий
// статус равен expected. Иначе ErrStatusConflict или ErrReservationNotFound.
func (r *Repository) Update(ctx context.Context, reservation *domain.Reservation, expected domain.ReservationStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("resource_id", reservation.ResourceID).
		Set("start_time", reservation.StartTime).
		Set("end_time", reservation.EndTime).
		Set("num_members", reservation.NumMembers).
		Set("num_guests", reservation.NumGuests).
		Set("all_day", reservation.AllDay).
		Set("reason", reservation.Reason).
		Set("status", reservation.Status).
		Set("approved", reservation.Approved).
		Set("approved_by", reservation.ApprovedBy).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": reservation.ID, "status": expected}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected > 0 {
		return nil
	}

	return r.explainMissedWrite(ctx, executor, reservation.ID)
}

// Transition меняет статус, только если текущий статус равен t.From.
// Возвращает ErrReservationNotFound, если записи нет, и ErrStatusConflict,
// если статус уже изменился.
func (r *Repository) Transition(ctx context.Context, t domain.StatusTransition) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update(tableName).
		Set("status", t.To).
		Set("updated_at", squirrel.Expr("NOW()"))

	if t.Approved != nil {
		updateBuilder = updateBuilder.Set("approved", *t.Approved)
	}
	if t.ApprovedBy != nil {
		updateBuilder = updateBuilder.Set("approved_by", *t.ApprovedBy)
	}
	if t.RejectionReason != nil {
		updateBuilder = updateBuilder.Set("rejection_reason", *t.RejectionReason)
	}

	switch t.To {
	case domain.StatusCancelled:
		updateBuilder = updateBuilder.Set("cancelled_at", t.At)
	case domain.StatusActive, domain.StatusRejected:
		if t.From == domain.StatusPending {
			updateBuilder = updateBuilder.Set("reviewed_at", t.At)
		}
	}

	query, args, err := updateBuilder.
		Where(squirrel.Eq{"id": t.ReservationID, "status": t.From}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Transition - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Transition - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Transition - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected > 0 {
		return nil
	}

	return r.explainMissedWrite(ctx, executor, t.ReservationID)
}

// explainMissedWrite отличает отсутствующую запись от изменившегося статуса
func (r *Repository) explainMissedWrite(ctx context.Context, executor DBExecutor, id int64) error {
	query, args, err := psqlbuilder.Select("status").
		From(tableName).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: build status query: %v", ErrBuildQuery, err)
	}

	var status domain.ReservationStatus
	err = executor.QueryRowContext(ctx, query, args...).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrReservationNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: scan status: %w", ErrScanRow, err)
	}

	return fmt.Errorf("%w: current status %q", ErrStatusConflict, status)
}

// Delete физически удаляет бронирование
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableName).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrReservationNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var reservation domain.Reservation
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&reservation.ID,
		&reservation.ResourceID,
		&reservation.UserID,
		&reservation.StartTime,
		&reservation.EndTime,
		&reservation.NumMembers,
		&reservation.NumGuests,
		&reservation.AllDay,
		&reservation.Reason,
		&reservation.Status,
		&reservation.Approved,
		&reservation.ApprovedBy,
		&reservation.RejectionReason,
		&reservation.ReviewedAt,
		&reservation.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	reservation.CreatedAt = createdAt.Time
	reservation.UpdatedAt = updatedAt.Time

	return &reservation, nil
}
