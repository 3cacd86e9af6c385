package create_reservation

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/usecase/slotvalidator"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Request модель запроса на создание бронирования
type Request struct {
	Principal  domain.Principal    // Текущий пользователь
	ResourceID int64               // ID стола
	StartTime  types.LocalDateTime // Начало (для бронирования на весь день важна только дата)
	EndTime    types.LocalDateTime // Конец (не используется для бронирования на весь день)
	NumMembers int
	NumGuests  int
	AllDay     bool
	Reason     *string // Обязательна для бронирования на весь день
}

func (r *Request) draft() slotvalidator.Draft {
	return slotvalidator.Draft{
		ResourceID: r.ResourceID,
		UserID:     r.Principal.UserID,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		NumMembers: r.NumMembers,
		NumGuests:  r.NumGuests,
		AllDay:     r.AllDay,
		Reason:     r.Reason,
	}
}

// Response модель ответа с созданным бронированием
type Response struct {
	Reservation *domain.Reservation
	Attempts    int // Количество попыток записи
}

// Config параметры записи
type Config struct {
	MaxWriteAttempts int           // Попыток при конфликте записи, затем Unavailable
	RetryBackoff     time.Duration // Пауза между попытками (растёт линейно)
	LockTimeout      time.Duration // Ожидание блокировки стола в одной попытке
}

// DefaultConfig параметры по умолчанию
func DefaultConfig() Config {
	return Config{
		MaxWriteAttempts: 3,
		RetryBackoff:     20 * time.Millisecond,
		LockTimeout:      2 * time.Second,
	}
}
