package table

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

func TestRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2025, time.October, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, name, description, capacity, created_at FROM tables ORDER BY id ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "capacity", "created_at"}).
			AddRow(int64(1), "Table 1", "by the window", 6, created).
			AddRow(int64(2), "Table 2", nil, 0, created))

	tables, err := NewRepository(db).List(context.Background())

	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "by the window", tables[0].Description)
	assert.Equal(t, "", tables[1].Description)
	assert.Equal(t, 0, tables[1].Capacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM tables WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err = NewRepository(db).GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestRepository_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO tables \(id,name,description,capacity\) VALUES \(\$1,\$2,\$3,\$4\) ON CONFLICT`).
		WithArgs(int64(1), "Table 1", "", 4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewRepository(db).Upsert(context.Background(), &domain.Table{ID: 1, Name: "Table 1", Capacity: 4})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
