package slotvalidator

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Expand нормализует черновик:
// для бронирования на весь день интервал заменяется на [дата@allowedStartTime, дата@allowedEndTime),
// дата берётся из StartTime; для обычного бронирования причина очищается.
// Повторный вызов не меняет результат.
func Expand(d Draft, policy domain.ReservationPolicy) (Draft, error) {
	if !d.AllDay {
		d.Reason = nil
		return d, nil
	}

	if d.Reason != nil {
		reason := strings.TrimSpace(*d.Reason)
		d.Reason = &reason
	}

	if d.StartTime.IsZero() {
		return d, domain.NewMalformedRequest("startTime is required")
	}

	start, err := d.StartTime.At(policy.AllowedStartTime)
	if err != nil {
		return d, fmt.Errorf("%w: allowedStartTime: %v", domain.ErrInvalidPolicy, err)
	}
	end, err := d.StartTime.At(policy.AllowedEndTime)
	if err != nil {
		return d, fmt.Errorf("%w: allowedEndTime: %v", domain.ErrInvalidPolicy, err)
	}

	d.StartTime = start
	d.EndTime = end
	return d, nil
}

// CandidateFilters возвращает фильтры, покрывающие все бронирования, которые могут
// повлиять на проверку черновика: бронирования пользователя за день и соседние
// бронирования того же стола с учётом минимального интервала.
// Черновик должен быть уже раскрыт через Expand.
func CandidateFilters(d Draft, policy domain.ReservationPolicy) []domain.ReservationFilter {
	dayStart := d.StartTime.Midnight()
	dayEnd := dayStart.AddDays(1)

	margin := time.Duration(policy.MinTimeBetweenReservations)*time.Minute + time.Minute
	windowStart := d.StartTime.Add(-margin)
	windowEnd := d.EndTime.Add(margin)

	userID := d.UserID
	resourceID := d.ResourceID

	return []domain.ReservationFilter{
		{
			UserID:   &userID,
			Statuses: domain.OccupyingStatuses,
			From:     &dayStart,
			To:       &dayEnd,
		},
		{
			ResourceID: &resourceID,
			Statuses:   domain.OccupyingStatuses,
			From:       &windowStart,
			To:         &windowEnd,
		},
	}
}

// Merge объединяет списки бронирований без повторов по ID
func Merge(lists ...[]*domain.Reservation) []*domain.Reservation {
	seen := make(map[int64]struct{})
	result := make([]*domain.Reservation, 0)
	for _, list := range lists {
		for _, r := range list {
			if _, ok := seen[r.ID]; ok {
				continue
			}
			seen[r.ID] = struct{}{}
			result = append(result, r)
		}
	}
	return result
}
