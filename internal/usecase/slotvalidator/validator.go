package slotvalidator

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Validate проверяет черновик по политике и существующим бронированиям.
// nil означает, что бронирование принято; иначе возвращается типизированная ошибка
// из domain первой не пройденной проверки.
//
// Порядок проверок:
//  1. корректность запроса (причина для бронирования на весь день проверяется до всего остального)
//  2. заблаговременность
//  3. длительность (кроме бронирования на весь день)
//  4. дневная квота пользователя
//  5. пересечение с бронированиями стола
//  6. интервал между бронированиями пользователя на том же столе
func Validate(d Draft, policy domain.ReservationPolicy, existing []*domain.Reservation, now types.LocalDateTime) error {
	if err := CheckReason(d); err != nil {
		return err
	}

	d, err := Expand(d, policy)
	if err != nil {
		return err
	}

	if err := checkWellFormed(d); err != nil {
		return err
	}
	if err := checkAdvanceNotice(d, policy, now); err != nil {
		return err
	}
	if err := checkDuration(d, policy); err != nil {
		return err
	}

	candidates := occupyingOthers(d, existing)

	if err := checkDailyQuota(d, policy, candidates); err != nil {
		return err
	}
	if err := checkOverlap(d, candidates); err != nil {
		return err
	}
	return checkConsecutive(d, policy, candidates)
}

// CheckReason бронирование на весь день требует непустой причины.
// Проверка выполняется раньше всех остальных.
func CheckReason(d Draft) error {
	if d.AllDay && (d.Reason == nil || strings.TrimSpace(*d.Reason) == "") {
		return domain.NewMalformedRequest("reason is required for all-day reservations")
	}
	return nil
}

func checkWellFormed(d Draft) error {
	if d.StartTime.IsZero() || d.EndTime.IsZero() {
		return domain.NewMalformedRequest("startTime and endTime are required")
	}
	if !d.EndTime.After(d.StartTime) {
		return domain.NewMalformedRequest("endTime must be after startTime")
	}
	if d.NumMembers < 1 {
		return domain.NewMalformedRequest("numMembers must be at least 1")
	}
	if d.NumGuests < 0 {
		return domain.NewMalformedRequest("numGuests must not be negative")
	}
	if d.Reason != nil && len(*d.Reason) > domain.MaxReasonLength {
		return domain.NewMalformedRequest("reason must not exceed %d characters", domain.MaxReasonLength)
	}
	return nil
}

func checkAdvanceNotice(d Draft, policy domain.ReservationPolicy, now types.LocalDateTime) error {
	if policy.MinHoursInAdvance == 0 {
		return nil
	}
	lead := d.StartTime.Sub(now)
	if lead < time.Duration(policy.MinHoursInAdvance)*time.Hour {
		return &domain.InsufficientAdvanceNoticeError{
			RequiredHours: policy.MinHoursInAdvance,
			ActualHours:   roundHours(lead),
		}
	}
	return nil
}

// checkDuration maxHoursPerReservation = 0 отключает ограничение
func checkDuration(d Draft, policy domain.ReservationPolicy) error {
	if d.AllDay || policy.MaxHoursPerReservation == 0 {
		return nil
	}
	duration := d.EndTime.Sub(d.StartTime)
	if duration > time.Duration(policy.MaxHoursPerReservation)*time.Hour {
		return &domain.DurationExceededError{
			MaxHours:       policy.MaxHoursPerReservation,
			RequestedHours: roundHours(duration),
		}
	}
	return nil
}

func checkDailyQuota(d Draft, policy domain.ReservationPolicy, candidates []*domain.Reservation) error {
	if !policy.HasDailyLimit() {
		return nil
	}
	count := 0
	for _, r := range candidates {
		if r.UserID == d.UserID && r.StartTime.SameDate(d.StartTime) {
			count++
		}
	}
	if count >= policy.MaxReservationsPerUserPerDay {
		return &domain.DailyQuotaExceededError{
			Limit:        policy.MaxReservationsPerUserPerDay,
			CurrentCount: count,
		}
	}
	return nil
}

// checkOverlap полуоткрытые интервалы: касание границ не является пересечением
func checkOverlap(d Draft, candidates []*domain.Reservation) error {
	for _, r := range candidates {
		if r.ResourceID == d.ResourceID && r.Overlaps(d.StartTime, d.EndTime) {
			return &domain.SlotConflictError{ConflictingReservationID: r.ID}
		}
	}
	return nil
}

// checkConsecutive при запрете последовательных бронирований и нулевом минимальном интервале
// отклоняются только вплотную примыкающие бронирования
func checkConsecutive(d Draft, policy domain.ReservationPolicy, candidates []*domain.Reservation) error {
	if policy.AllowConsecutiveReservations {
		return nil
	}
	minGap := time.Duration(policy.MinTimeBetweenReservations) * time.Minute

	for _, r := range candidates {
		if r.UserID != d.UserID || r.ResourceID != d.ResourceID {
			continue
		}

		var gap time.Duration
		switch {
		case !r.EndTime.After(d.StartTime):
			gap = d.StartTime.Sub(r.EndTime)
		case !d.EndTime.After(r.StartTime):
			gap = r.StartTime.Sub(d.EndTime)
		default:
			continue
		}

		if gap < minGap || (minGap == 0 && gap == 0) {
			return &domain.ConsecutiveBookingTooCloseError{
				MinGapMinutes:    policy.MinTimeBetweenReservations,
				ActualGapMinutes: int(gap / time.Minute),
			}
		}
	}
	return nil
}

// occupyingOthers занимающие слот бронирования кроме редактируемого, отсортированные по началу
func occupyingOthers(d Draft, existing []*domain.Reservation) []*domain.Reservation {
	result := make([]*domain.Reservation, 0, len(existing))
	for _, r := range existing {
		if r == nil || !r.IsOccupying() {
			continue
		}
		if d.ReservationID != 0 && r.ID == d.ReservationID {
			continue
		}
		result = append(result, r)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].StartTime.Equal(result[j].StartTime) {
			return result[i].ID < result[j].ID
		}
		return result[i].StartTime.Before(result[j].StartTime)
	})
	return result
}

func roundHours(d time.Duration) float64 {
	return math.Round(d.Hours()*100) / 100
}
