package get_table_availability

import (
	"context"

	getTableAvailability "github.com/m04kA/SMC-ReservationService/internal/usecase/get_table_availability"
)

type GetTableAvailabilityUseCase interface {
	Execute(ctx context.Context, req *getTableAvailability.Request) (*getTableAvailability.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
