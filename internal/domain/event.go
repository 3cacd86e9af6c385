package domain

import "github.com/m04kA/SMC-ReservationService/pkg/types"

// StatusChange is emitted on every reservation state transition.
// From is empty for creation; To is TransitionDeleted for administrative removal.
type StatusChange struct {
	EventID       string              `json:"eventId"`
	ReservationID int64               `json:"reservationId"`
	UserID        int64               `json:"userId"`
	ResourceID    int64               `json:"resourceId"`
	From          ReservationStatus   `json:"fromStatus"`
	To            ReservationStatus   `json:"toStatus"`
	At            types.LocalDateTime `json:"at"`
}

// NotificationKind describes a message for the notification sink
type NotificationKind string

const (
	NotificationCreated         NotificationKind = "reservation.created"
	NotificationPendingApproval NotificationKind = "reservation.pending_approval"
	NotificationApproved        NotificationKind = "reservation.approved"
	NotificationRejected        NotificationKind = "reservation.rejected"
	NotificationCancelled       NotificationKind = "reservation.cancelled"
	NotificationCompleted       NotificationKind = "reservation.completed"
)

// NotificationKindFor maps a transition to the user notification; ok is false when
// the transition is not user-facing.
func NotificationKindFor(change StatusChange) (NotificationKind, bool) {
	switch {
	case change.From == "" && change.To == StatusPending:
		return NotificationPendingApproval, true
	case change.From == "" && change.To == StatusActive:
		return NotificationCreated, true
	case change.From == StatusPending && change.To == StatusActive:
		return NotificationApproved, true
	case change.To == StatusRejected:
		return NotificationRejected, true
	case change.To == StatusCancelled:
		return NotificationCancelled, true
	case change.To == StatusCompleted:
		return NotificationCompleted, true
	case change.From == StatusActive && change.To == StatusPending:
		return NotificationPendingApproval, true
	default:
		return "", false
	}
}
