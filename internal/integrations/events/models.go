package events

import (
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Notification сообщение для пользователя о его бронировании
type Notification struct {
	EventID       string                  `json:"eventId"`
	UserID        int64                   `json:"userId"`
	Kind          domain.NotificationKind `json:"kind"`
	ReservationID int64                   `json:"reservationId"`
	ResourceID    int64                   `json:"resourceId"`
	At            types.LocalDateTime     `json:"at"`
}

// notificationFor строит уведомление по событию; ok=false, если событие не адресовано пользователю
func notificationFor(change domain.StatusChange) (Notification, bool) {
	kind, ok := domain.NotificationKindFor(change)
	if !ok {
		return Notification{}, false
	}
	return Notification{
		EventID:       change.EventID,
		UserID:        change.UserID,
		Kind:          kind,
		ReservationID: change.ReservationID,
		ResourceID:    change.ResourceID,
		At:            change.At,
	}, true
}
