package policy

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

func TestRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	updated := time.Date(2025, time.October, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT (.+) FROM reservation_policy WHERE id = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{
			"max_hours_per_reservation", "max_reservations_per_user_per_day", "min_hours_in_advance",
			"allowed_start_time", "allowed_end_time", "requires_approval_for_all_day",
			"allow_consecutive_reservations", "min_time_between_reservations", "updated_at", "updated_by",
		}).AddRow(4, 1, 0, "09:00:00", "22:00:00", true, false, 30, updated, int64(1)))

	policy, err := NewRepository(db).Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, policy.MaxHoursPerReservation)
	assert.Equal(t, types.TimeString("09:00"), policy.AllowedStartTime)
	assert.Equal(t, types.TimeString("22:00"), policy.AllowedEndTime)
	assert.False(t, policy.AllowConsecutiveReservations)
	assert.Equal(t, 30, policy.MinTimeBetweenReservations)
	require.NotNil(t, policy.UpdatedBy)
	assert.Equal(t, int64(1), *policy.UpdatedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM reservation_policy`).WillReturnError(sql.ErrNoRows)

	_, err = NewRepository(db).Get(context.Background())
	assert.ErrorIs(t, err, ErrPolicyNotFound)
}

func TestRepository_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	updated := time.Date(2025, time.October, 2, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO reservation_policy (.+) ON CONFLICT \(id\) DO UPDATE SET`).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(updated))

	policy := domain.DefaultPolicy()
	require.NoError(t, NewRepository(db).Save(context.Background(), &policy))

	assert.Equal(t, updated, policy.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
