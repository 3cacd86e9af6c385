package events

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Publisher доставляет события смены статуса подписчикам (аудит, внешние сервисы)
type Publisher interface {
	Publish(ctx context.Context, change domain.StatusChange) error
}

// Notifier приёмник пользовательских уведомлений
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
