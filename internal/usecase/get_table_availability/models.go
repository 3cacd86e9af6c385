package get_table_availability

import (
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Request модель запроса занятости стола на дату
type Request struct {
	ResourceID int64
	Date       types.LocalDateTime // Учитывается только дата
}

// Response занятые и свободные интервалы внутри окна работы клуба
type Response struct {
	ResourceID  int64
	Date        types.LocalDateTime
	WindowStart types.LocalDateTime
	WindowEnd   types.LocalDateTime
	Busy        []BusyInterval
	Free        []Interval
}

// Interval полуинтервал [Start, End)
type Interval struct {
	Start types.LocalDateTime
	End   types.LocalDateTime
}

// BusyInterval интервал, занятый бронированием
type BusyInterval struct {
	Interval
	ReservationID int64
	Status        domain.ReservationStatus
}
