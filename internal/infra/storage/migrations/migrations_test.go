package migrations

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/pkg/logger"
)

func TestList_Sorted(t *testing.T) {
	names, err := list()
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_tables.sql", "0002_reservation_policy.sql", "0003_reservations.sql"}, names)
}

func TestApply_SkipsApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	exists := regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectQuery(exists).WithArgs("0001_tables.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectQuery(exists).WithArgs("0002_reservation_policy.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS reservation_policy`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO schema_migrations`).WithArgs("0002_reservation_policy.sql").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(exists).WithArgs("0003_reservations.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS reservations`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO schema_migrations`).WithArgs("0003_reservations.sql").
		WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := Apply(context.Background(), db, logger.Nop())

	require.NoError(t, err)
	assert.Equal(t, []string{"0002_reservation_policy.sql", "0003_reservations.sql"}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApply_StopsOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs("0001_tables.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS tables`).WillReturnError(errors.New("permission denied"))

	applied, err := Apply(context.Background(), db, logger.Nop())

	assert.ErrorIs(t, err, ErrApply)
	assert.Empty(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
