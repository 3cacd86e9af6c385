package events

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// LogSink пишет события и уведомления в лог; используется без Redis
type LogSink struct {
	logger Logger
}

// NewLogSink создает новый LogSink
func NewLogSink(logger Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(_ context.Context, change domain.StatusChange) error {
	s.logger.Info("Events: [%s] reservation=%d user=%d table=%d %q -> %q at %s",
		change.EventID, change.ReservationID, change.UserID, change.ResourceID, change.From, change.To, change.At)
	return nil
}

func (s *LogSink) Notify(_ context.Context, notification Notification) error {
	s.logger.Info("Events: notify user=%d kind=%s reservation=%d",
		notification.UserID, notification.Kind, notification.ReservationID)
	return nil
}
