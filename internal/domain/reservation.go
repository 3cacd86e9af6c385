package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// ReservationStatus represents the lifecycle state of a reservation
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusActive    ReservationStatus = "active"
	StatusCancelled ReservationStatus = "cancelled"
	StatusCompleted ReservationStatus = "completed"
	StatusRejected  ReservationStatus = "rejected"
)

// TransitionDeleted marks administrative removal in status-change events.
// It is never stored as a reservation status.
const TransitionDeleted ReservationStatus = "deleted"

// IsValid returns true for the five stored statuses
func (s ReservationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusCancelled, StatusCompleted, StatusRejected:
		return true
	default:
		return false
	}
}

// IsTerminal returns true for cancelled, completed and rejected
func (s ReservationStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted || s == StatusRejected
}

// IsOccupying returns true if a reservation in this status holds its slot
func (s ReservationStatus) IsOccupying() bool {
	return s == StatusActive || s == StatusPending
}

// ParseStatus converts a string into a stored status
func ParseStatus(s string) (ReservationStatus, error) {
	status := ReservationStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrMalformedRequest, s)
	}
	return status, nil
}

// Reservation is a booking of one table by one member for a time range
type Reservation struct {
	ID         int64
	ResourceID int64
	UserID     int64

	// [StartTime, EndTime) in local wall-clock time
	StartTime types.LocalDateTime
	EndTime   types.LocalDateTime

	NumMembers int
	NumGuests  int
	AllDay     bool
	Reason     *string // required iff AllDay

	Status          ReservationStatus
	Approved        bool
	ApprovedBy      *int64
	RejectionReason *string
	ReviewedAt      *types.LocalDateTime
	CancelledAt     *types.LocalDateTime

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOccupying returns true if the reservation holds its slot (active or pending)
func (r *Reservation) IsOccupying() bool {
	return r.Status.IsOccupying()
}

// CanBeCancelled returns true if the reservation can move to cancelled
func (r *Reservation) CanBeCancelled() bool {
	return r.Status == StatusActive || r.Status == StatusPending
}

// CanBeUpdated returns true if the reservation fields can still be edited
func (r *Reservation) CanBeUpdated() bool {
	return r.Status == StatusActive || r.Status == StatusPending
}

// CanBeDeleted returns true if an administrator may permanently remove the record
func (r *Reservation) CanBeDeleted() bool {
	return r.Status == StatusCancelled || r.Status == StatusRejected
}

// OwnedBy returns true if the reservation belongs to the user
func (r *Reservation) OwnedBy(userID int64) bool {
	return r.UserID == userID
}

// Overlaps reports whether [start, end) intersects the reservation's half-open range
func (r *Reservation) Overlaps(start, end types.LocalDateTime) bool {
	return r.StartTime.Before(end) && start.Before(r.EndTime)
}

// Duration returns EndTime - StartTime
func (r *Reservation) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}

// Clone returns a deep copy
func (r *Reservation) Clone() *Reservation {
	if r == nil {
		return nil
	}
	c := *r
	c.Reason = cloneString(r.Reason)
	c.RejectionReason = cloneString(r.RejectionReason)
	if r.ApprovedBy != nil {
		v := *r.ApprovedBy
		c.ApprovedBy = &v
	}
	if r.ReviewedAt != nil {
		v := *r.ReviewedAt
		c.ReviewedAt = &v
	}
	if r.CancelledAt != nil {
		v := *r.CancelledAt
		c.CancelledAt = &v
	}
	return &c
}

// ReservationFilter narrows reservation listings. Nil/empty fields do not filter.
type ReservationFilter struct {
	ResourceID *int64
	UserID     *int64
	Statuses   []ReservationStatus

	// Overlap window: EndTime > From and StartTime < To
	From *types.LocalDateTime
	To   *types.LocalDateTime

	// EndTime < EndsBefore
	EndsBefore *types.LocalDateTime

	// ID > AfterID; when set, results are ordered by id (keyset paging)
	AfterID *int64

	Limit int // 0 = unlimited
}

// Matches reports whether a reservation satisfies the filter
func (f ReservationFilter) Matches(r *Reservation) bool {
	if f.ResourceID != nil && r.ResourceID != *f.ResourceID {
		return false
	}
	if f.UserID != nil && r.UserID != *f.UserID {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, r.Status) {
		return false
	}
	if f.From != nil && !r.EndTime.After(*f.From) {
		return false
	}
	if f.To != nil && !r.StartTime.Before(*f.To) {
		return false
	}
	if f.EndsBefore != nil && !r.EndTime.Before(*f.EndsBefore) {
		return false
	}
	if f.AfterID != nil && r.ID <= *f.AfterID {
		return false
	}
	return true
}

// StatusTransition is a compare-and-set status change applied by the repository:
// it succeeds only if the stored status still equals From.
type StatusTransition struct {
	ReservationID   int64
	From            ReservationStatus
	To              ReservationStatus
	Approved        *bool
	ApprovedBy      *int64
	RejectionReason *string
	At              types.LocalDateTime
}

func containsStatus(statuses []ReservationStatus, s ReservationStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
