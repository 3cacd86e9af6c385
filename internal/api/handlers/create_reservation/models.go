package create_reservation

import (
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	createReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// CreateReservationRequest HTTP request model.
// Для allDay время окончания можно не передавать: диапазон берётся из политики.
type CreateReservationRequest struct {
	ResourceID int64               `json:"resourceId" validate:"gt=0"`
	StartTime  types.LocalDateTime `json:"startTime"` // "2025-10-15T10:00"
	EndTime    types.LocalDateTime `json:"endTime"`
	NumMembers int                 `json:"numMembers" validate:"gte=1"`
	NumGuests  int                 `json:"numGuests" validate:"gte=0"`
	AllDay     bool                `json:"allDay"`
	Reason     *string             `json:"reason,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest(principal domain.Principal) *createReservation.Request {
	return &createReservation.Request{
		Principal:  principal,
		ResourceID: r.ResourceID,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		NumMembers: r.NumMembers,
		NumGuests:  r.NumGuests,
		AllDay:     r.AllDay,
		Reason:     r.Reason,
	}
}
