package get_table

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

type TableService interface {
	GetByID(ctx context.Context, id int64) (*domain.Table, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
