package list_tables

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

type TableService interface {
	List(ctx context.Context) ([]*domain.Table, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
