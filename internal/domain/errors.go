package domain

import (
	"errors"
	"fmt"
)

// ErrorKind closed set of error kinds surfaced to callers
type ErrorKind string

const (
	KindMalformedRequest           ErrorKind = "MalformedRequest"
	KindInsufficientAdvanceNotice  ErrorKind = "InsufficientAdvanceNotice"
	KindDurationExceeded           ErrorKind = "DurationExceeded"
	KindDailyQuotaExceeded         ErrorKind = "DailyQuotaExceeded"
	KindSlotConflict               ErrorKind = "SlotConflict"
	KindConsecutiveBookingTooClose ErrorKind = "ConsecutiveBookingTooClose"
	KindNotFound                   ErrorKind = "NotFound"
	KindForbidden                  ErrorKind = "Forbidden"
	KindInvalidStateTransition     ErrorKind = "InvalidStateTransition"
	KindUnavailable                ErrorKind = "Unavailable"
	KindInternal                   ErrorKind = "Internal"
)

// Sentinels, one per kind. Typed errors below match them through errors.Is.
var (
	ErrMalformedRequest           = errors.New("malformed request")
	ErrInsufficientAdvanceNotice  = errors.New("insufficient advance notice")
	ErrDurationExceeded           = errors.New("duration exceeded")
	ErrDailyQuotaExceeded         = errors.New("daily quota exceeded")
	ErrSlotConflict               = errors.New("slot conflict")
	ErrConsecutiveBookingTooClose = errors.New("consecutive booking too close")
	ErrNotFound                   = errors.New("not found")
	ErrForbidden                  = errors.New("forbidden")
	ErrInvalidStateTransition     = errors.New("invalid state transition")
	ErrUnavailable                = errors.New("service unavailable")

	// ErrInvalidPolicy нарушение инвариантов политики; вид MalformedRequest
	ErrInvalidPolicy = fmt.Errorf("%w: invalid policy", ErrMalformedRequest)
)

// KindedError error with a kind and structured context
type KindedError interface {
	error
	Kind() ErrorKind
	Details() map[string]any
}

// MalformedRequestError request failed well-formedness checks
type MalformedRequestError struct {
	Reason string
}

func NewMalformedRequest(format string, args ...any) *MalformedRequestError {
	return &MalformedRequestError{Reason: fmt.Sprintf(format, args...)}
}

func (e *MalformedRequestError) Error() string {
	return fmt.Sprintf("malformed request: %s", e.Reason)
}

func (e *MalformedRequestError) Is(target error) bool { return target == ErrMalformedRequest }
func (e *MalformedRequestError) Kind() ErrorKind      { return KindMalformedRequest }
func (e *MalformedRequestError) Details() map[string]any {
	return map[string]any{"reason": e.Reason}
}

// InsufficientAdvanceNoticeError start is closer to now than the policy allows
type InsufficientAdvanceNoticeError struct {
	RequiredHours int
	ActualHours   float64
}

func (e *InsufficientAdvanceNoticeError) Error() string {
	return fmt.Sprintf("reservation must be made at least %d hours in advance (actual %.2f)", e.RequiredHours, e.ActualHours)
}

func (e *InsufficientAdvanceNoticeError) Is(target error) bool {
	return target == ErrInsufficientAdvanceNotice
}
func (e *InsufficientAdvanceNoticeError) Kind() ErrorKind { return KindInsufficientAdvanceNotice }
func (e *InsufficientAdvanceNoticeError) Details() map[string]any {
	return map[string]any{"requiredHours": e.RequiredHours, "actualHours": e.ActualHours}
}

// DurationExceededError reservation is longer than the policy allows
type DurationExceededError struct {
	MaxHours       int
	RequestedHours float64
}

func (e *DurationExceededError) Error() string {
	return fmt.Sprintf("reservation cannot exceed %d hours (requested %.2f)", e.MaxHours, e.RequestedHours)
}

func (e *DurationExceededError) Is(target error) bool { return target == ErrDurationExceeded }
func (e *DurationExceededError) Kind() ErrorKind      { return KindDurationExceeded }
func (e *DurationExceededError) Details() map[string]any {
	return map[string]any{"maxHours": e.MaxHours, "requestedHours": e.RequestedHours}
}

// DailyQuotaExceededError user already has the maximum number of reservations for the day
type DailyQuotaExceededError struct {
	Limit        int
	CurrentCount int
}

func (e *DailyQuotaExceededError) Error() string {
	return fmt.Sprintf("daily reservation limit reached (%d of %d)", e.CurrentCount, e.Limit)
}

func (e *DailyQuotaExceededError) Is(target error) bool { return target == ErrDailyQuotaExceeded }
func (e *DailyQuotaExceededError) Kind() ErrorKind      { return KindDailyQuotaExceeded }
func (e *DailyQuotaExceededError) Details() map[string]any {
	return map[string]any{"limit": e.Limit, "currentCount": e.CurrentCount}
}

// SlotConflictError range overlaps an occupying reservation on the same table
type SlotConflictError struct {
	ConflictingReservationID int64
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("time slot conflicts with reservation %d", e.ConflictingReservationID)
}

func (e *SlotConflictError) Is(target error) bool { return target == ErrSlotConflict }
func (e *SlotConflictError) Kind() ErrorKind      { return KindSlotConflict }
func (e *SlotConflictError) Details() map[string]any {
	return map[string]any{"conflictingReservationId": e.ConflictingReservationID}
}

// ConsecutiveBookingTooCloseError gap to the user's neighbouring reservation is too small
type ConsecutiveBookingTooCloseError struct {
	MinGapMinutes    int
	ActualGapMinutes int
}

func (e *ConsecutiveBookingTooCloseError) Error() string {
	return fmt.Sprintf("at least %d minutes required between reservations (actual %d)", e.MinGapMinutes, e.ActualGapMinutes)
}

func (e *ConsecutiveBookingTooCloseError) Is(target error) bool {
	return target == ErrConsecutiveBookingTooClose
}
func (e *ConsecutiveBookingTooCloseError) Kind() ErrorKind { return KindConsecutiveBookingTooClose }
func (e *ConsecutiveBookingTooCloseError) Details() map[string]any {
	return map[string]any{"minGapMinutes": e.MinGapMinutes, "actualGapMinutes": e.ActualGapMinutes}
}

// InvalidStateTransitionError requested transition is not allowed from the current status
type InvalidStateTransitionError struct {
	From ReservationStatus
	To   ReservationStatus
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition from %q to %q", e.From, e.To)
}

func (e *InvalidStateTransitionError) Is(target error) bool {
	return target == ErrInvalidStateTransition
}
func (e *InvalidStateTransitionError) Kind() ErrorKind { return KindInvalidStateTransition }
func (e *InvalidStateTransitionError) Details() map[string]any {
	return map[string]any{"from": string(e.From), "to": string(e.To)}
}

// KindOf returns the kind of err. Unknown errors are Internal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var kinded KindedError
	if errors.As(err, &kinded) {
		return kinded.Kind()
	}
	switch {
	case errors.Is(err, ErrMalformedRequest):
		return KindMalformedRequest
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	case errors.Is(err, ErrInsufficientAdvanceNotice):
		return KindInsufficientAdvanceNotice
	case errors.Is(err, ErrDurationExceeded):
		return KindDurationExceeded
	case errors.Is(err, ErrDailyQuotaExceeded):
		return KindDailyQuotaExceeded
	case errors.Is(err, ErrSlotConflict):
		return KindSlotConflict
	case errors.Is(err, ErrConsecutiveBookingTooClose):
		return KindConsecutiveBookingTooClose
	case errors.Is(err, ErrInvalidStateTransition):
		return KindInvalidStateTransition
	default:
		return KindInternal
	}
}

// DetailsOf returns the structured context of err, or nil
func DetailsOf(err error) map[string]any {
	var kinded KindedError
	if errors.As(err, &kinded) {
		return kinded.Details()
	}
	return nil
}

// ResultLabel метка результата операции для метрик: "ok" или вид ошибки
func ResultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return string(KindOf(err))
}
