package policy

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// PolicyRepository интерфейс хранилища политики бронирования
type PolicyRepository interface {
	Get(ctx context.Context) (*domain.ReservationPolicy, error)
	Save(ctx context.Context, policy *domain.ReservationPolicy) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
