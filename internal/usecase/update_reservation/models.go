package update_reservation

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/usecase/slotvalidator"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Request модель запроса на изменение бронирования.
// Поля заменяют текущие значения целиком; владелец бронирования не меняется.
type Request struct {
	Principal     domain.Principal // Текущий пользователь (владелец или администратор)
	ReservationID int64
	ResourceID    int64
	StartTime     types.LocalDateTime
	EndTime       types.LocalDateTime
	NumMembers    int
	NumGuests     int
	AllDay        bool
	Reason        *string
}

func (r *Request) draft(ownerID int64) slotvalidator.Draft {
	return slotvalidator.Draft{
		ReservationID: r.ReservationID,
		ResourceID:    r.ResourceID,
		UserID:        ownerID,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		NumMembers:    r.NumMembers,
		NumGuests:     r.NumGuests,
		AllDay:        r.AllDay,
		Reason:        r.Reason,
	}
}

// Response модель ответа с изменённым бронированием
type Response struct {
	Reservation    *domain.Reservation
	PreviousStatus domain.ReservationStatus
	Attempts       int
}

// Config параметры записи
type Config struct {
	MaxWriteAttempts int
	RetryBackoff     time.Duration
	LockTimeout      time.Duration
}

// DefaultConfig параметры по умолчанию
func DefaultConfig() Config {
	return Config{
		MaxWriteAttempts: 3,
		RetryBackoff:     20 * time.Millisecond,
		LockTimeout:      2 * time.Second,
	}
}
