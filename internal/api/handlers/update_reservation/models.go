package update_reservation

import (
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	updateReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/update_reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// UpdateReservationRequest HTTP request model: новые значения всех изменяемых полей
type UpdateReservationRequest struct {
	ResourceID int64               `json:"resourceId" validate:"gt=0"`
	StartTime  types.LocalDateTime `json:"startTime"`
	EndTime    types.LocalDateTime `json:"endTime"`
	NumMembers int                 `json:"numMembers" validate:"gte=1"`
	NumGuests  int                 `json:"numGuests" validate:"gte=0"`
	AllDay     bool                `json:"allDay"`
	Reason     *string             `json:"reason,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *UpdateReservationRequest) ToUseCaseRequest(principal domain.Principal, reservationID int64) *updateReservation.Request {
	return &updateReservation.Request{
		Principal:     principal,
		ReservationID: reservationID,
		ResourceID:    r.ResourceID,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		NumMembers:    r.NumMembers,
		NumGuests:     r.NumGuests,
		AllDay:        r.AllDay,
		Reason:        r.Reason,
	}
}
