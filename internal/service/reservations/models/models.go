package models

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Request модели

// ListRequest фильтр списка бронирований.
// Участники клуба видят общий календарь, поэтому UserID необязателен.
type ListRequest struct {
	ResourceID *int64
	UserID     *int64
	From       *types.LocalDateTime
	To         *types.LocalDateTime
	Statuses   []domain.ReservationStatus
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListRequest) ToDomainFilter() (domain.ReservationFilter, error) {
	if r.From != nil && r.To != nil && !r.From.Before(*r.To) {
		return domain.ReservationFilter{}, domain.NewMalformedRequest("from must be before to")
	}
	return domain.ReservationFilter{
		ResourceID: r.ResourceID,
		UserID:     r.UserID,
		Statuses:   r.Statuses,
		From:       r.From,
		To:         r.To,
	}, nil
}

// Response модели

// ReservationResponse ответ с данными бронирования
type ReservationResponse struct {
	ID         int64               `json:"id"`
	ResourceID int64               `json:"resourceId"`
	UserID     int64               `json:"userId"`
	StartTime  types.LocalDateTime `json:"startTime"` // "2025-10-15T10:00:00", без часового пояса
	EndTime    types.LocalDateTime `json:"endTime"`
	NumMembers int                 `json:"numMembers"`
	NumGuests  int                 `json:"numGuests"`
	AllDay     bool                `json:"allDay"`
	Reason     *string             `json:"reason,omitempty"`
	Status     string              `json:"status"`
	Approved   bool                `json:"approved"`

	ApprovedBy      *int64               `json:"approvedBy,omitempty"`
	RejectionReason *string              `json:"rejectionReason,omitempty"`
	ReviewedAt      *types.LocalDateTime `json:"reviewedAt,omitempty"`
	CancelledAt     *types.LocalDateTime `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReservationListResponse ответ со списком бронирований
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// Методы конвертации

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	return &ReservationResponse{
		ID:              r.ID,
		ResourceID:      r.ResourceID,
		UserID:          r.UserID,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		NumMembers:      r.NumMembers,
		NumGuests:       r.NumGuests,
		AllDay:          r.AllDay,
		Reason:          r.Reason,
		Status:          string(r.Status),
		Approved:        r.Approved,
		ApprovedBy:      r.ApprovedBy,
		RejectionReason: r.RejectionReason,
		ReviewedAt:      r.ReviewedAt,
		CancelledAt:     r.CancelledAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// FromDomainReservationList конвертирует список domain моделей в DTO
func FromDomainReservationList(reservations []*domain.Reservation) *ReservationListResponse {
	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(reservations)),
	}
	for _, r := range reservations {
		resp.Reservations = append(resp.Reservations, *FromDomainReservation(r))
	}
	return resp
}
