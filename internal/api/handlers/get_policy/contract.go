package get_policy

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

type PolicyService interface {
	Get(ctx context.Context) (*domain.ReservationPolicy, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
