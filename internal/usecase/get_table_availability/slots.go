package get_table_availability

import (
	"sort"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// busyIntervals обрезает занимающие бронирования по окну и сортирует по началу
func busyIntervals(reservations []*domain.Reservation, window Interval) []BusyInterval {
	busy := make([]BusyInterval, 0, len(reservations))
	for _, r := range reservations {
		if !r.Status.IsOccupying() || !r.Overlaps(window.Start, window.End) {
			continue
		}
		busy = append(busy, BusyInterval{
			Interval: Interval{
				Start: maxTime(r.StartTime, window.Start),
				End:   minTime(r.EndTime, window.End),
			},
			ReservationID: r.ID,
			Status:        r.Status,
		})
	}

	sort.Slice(busy, func(i, j int) bool {
		if busy[i].Start.Equal(busy[j].Start) {
			return busy[i].ReservationID < busy[j].ReservationID
		}
		return busy[i].Start.Before(busy[j].Start)
	})

	return busy
}

// freeIntervals промежутки окна, не покрытые занятыми интервалами.
// Касание границ не считается пересечением: после брони 10:00-12:00 свободно с 12:00.
// Промежутки до earliest отбрасываются или укорачиваются.
func freeIntervals(window Interval, busy []BusyInterval, earliest types.LocalDateTime) []Interval {
	free := make([]Interval, 0, len(busy)+1)

	cursor := maxTime(window.Start, earliest)
	for _, b := range busy {
		if b.Start.After(cursor) {
			free = append(free, Interval{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if window.End.After(cursor) {
		free = append(free, Interval{Start: cursor, End: window.End})
	}

	return free
}

func maxTime(a, b types.LocalDateTime) types.LocalDateTime {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b types.LocalDateTime) types.LocalDateTime {
	if a.Before(b) {
		return a
	}
	return b
}
