package domain

// Default policy values
const (
	DefaultMaxHoursPerReservation       = 4
	DefaultMaxReservationsPerUserPerDay = 1
	DefaultMinHoursInAdvance            = 0
	DefaultAllowedStartTime             = "09:00"
	DefaultAllowedEndTime               = "22:00"
)

// Business validation constants
const (
	MaxReasonLength          = 500
	MaxRejectionReasonLength = 500
)

// OccupyingStatuses statuses that hold a slot and count towards quotas
var OccupyingStatuses = []ReservationStatus{
	StatusActive,
	StatusPending,
}

// TerminalStatuses statuses with no further transitions except administrative deletion
var TerminalStatuses = []ReservationStatus{
	StatusCancelled,
	StatusCompleted,
	StatusRejected,
}
