package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// ReservationPolicy is the administrator-editable rule set applied to every booking.
// It is read fresh for every validation.
type ReservationPolicy struct {
	MaxHoursPerReservation       int
	MaxReservationsPerUserPerDay int // 0 = unlimited
	MinHoursInAdvance            int
	AllowedStartTime             types.TimeString // daily window used by all-day reservations
	AllowedEndTime               types.TimeString
	RequiresApprovalForAllDay    bool
	AllowConsecutiveReservations bool
	MinTimeBetweenReservations   int // minutes, only when consecutive reservations are not allowed

	UpdatedAt time.Time
	UpdatedBy *int64
}

// DefaultPolicy returns the policy used before an administrator edits it
func DefaultPolicy() ReservationPolicy {
	return ReservationPolicy{
		MaxHoursPerReservation:       DefaultMaxHoursPerReservation,
		MaxReservationsPerUserPerDay: DefaultMaxReservationsPerUserPerDay,
		MinHoursInAdvance:            DefaultMinHoursInAdvance,
		AllowedStartTime:             DefaultAllowedStartTime,
		AllowedEndTime:               DefaultAllowedEndTime,
		RequiresApprovalForAllDay:    true,
		AllowConsecutiveReservations: true,
		MinTimeBetweenReservations:   0,
	}
}

// Validate checks the policy invariants
func (p ReservationPolicy) Validate() error {
	if p.MaxHoursPerReservation < 0 || p.MaxReservationsPerUserPerDay < 0 ||
		p.MinHoursInAdvance < 0 || p.MinTimeBetweenReservations < 0 {
		return fmt.Errorf("%w: numeric fields must be non-negative", ErrInvalidPolicy)
	}
	if err := p.AllowedStartTime.Validate(); err != nil {
		return fmt.Errorf("%w: allowedStartTime: %v", ErrInvalidPolicy, err)
	}
	if err := p.AllowedEndTime.Validate(); err != nil {
		return fmt.Errorf("%w: allowedEndTime: %v", ErrInvalidPolicy, err)
	}
	if !p.AllowedStartTime.IsBefore(p.AllowedEndTime) {
		return fmt.Errorf("%w: allowedStartTime must be before allowedEndTime", ErrInvalidPolicy)
	}
	return nil
}

// HasDailyLimit returns true if the per-user daily quota is enforced
func (p ReservationPolicy) HasDailyLimit() bool {
	return p.MaxReservationsPerUserPerDay > 0
}

// RequiresApproval returns true if a reservation must wait for an administrator
func (p ReservationPolicy) RequiresApproval(allDay bool) bool {
	return allDay && p.RequiresApprovalForAllDay
}

// PolicyPatch is a partial policy update; nil fields are left unchanged
type PolicyPatch struct {
	MaxHoursPerReservation       *int
	MaxReservationsPerUserPerDay *int
	MinHoursInAdvance            *int
	AllowedStartTime             *types.TimeString
	AllowedEndTime               *types.TimeString
	RequiresApprovalForAllDay    *bool
	AllowConsecutiveReservations *bool
	MinTimeBetweenReservations   *int
}

// Apply returns a copy of the policy with the patch applied
func (p ReservationPolicy) Apply(patch PolicyPatch) ReservationPolicy {
	if patch.MaxHoursPerReservation != nil {
		p.MaxHoursPerReservation = *patch.MaxHoursPerReservation
	}
	if patch.MaxReservationsPerUserPerDay != nil {
		p.MaxReservationsPerUserPerDay = *patch.MaxReservationsPerUserPerDay
	}
	if patch.MinHoursInAdvance != nil {
		p.MinHoursInAdvance = *patch.MinHoursInAdvance
	}
	if patch.AllowedStartTime != nil {
		p.AllowedStartTime = *patch.AllowedStartTime
	}
	if patch.AllowedEndTime != nil {
		p.AllowedEndTime = *patch.AllowedEndTime
	}
	if patch.RequiresApprovalForAllDay != nil {
		p.RequiresApprovalForAllDay = *patch.RequiresApprovalForAllDay
	}
	if patch.AllowConsecutiveReservations != nil {
		p.AllowConsecutiveReservations = *patch.AllowConsecutiveReservations
	}
	if patch.MinTimeBetweenReservations != nil {
		p.MinTimeBetweenReservations = *patch.MinTimeBetweenReservations
	}
	return p
}
