package slotvalidator

import (
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Draft предлагаемое бронирование (новое или изменённое)
type Draft struct {
	ReservationID int64 // 0 для нового бронирования; иначе исключается из проверок квоты и пересечений
	ResourceID    int64
	UserID        int64
	StartTime     types.LocalDateTime
	EndTime       types.LocalDateTime
	NumMembers    int
	NumGuests     int
	AllDay        bool
	Reason        *string
}

// People общее число людей за столом
func (d Draft) People() int {
	return d.NumMembers + d.NumGuests
}

// FromReservation строит черновик из существующего бронирования
func FromReservation(r *domain.Reservation) Draft {
	return Draft{
		ReservationID: r.ID,
		ResourceID:    r.ResourceID,
		UserID:        r.UserID,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		NumMembers:    r.NumMembers,
		NumGuests:     r.NumGuests,
		AllDay:        r.AllDay,
		Reason:        r.Reason,
	}
}
