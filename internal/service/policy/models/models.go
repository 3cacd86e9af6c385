package models

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Request модели

// UpdatePolicyRequest частичное изменение политики.
// Все поля опциональны - обновляются только переданные значения.
type UpdatePolicyRequest struct {
	MaxHoursPerReservation       *int    `json:"maxHoursPerReservation,omitempty" validate:"omitempty,gte=0,lte=8760"`
	MaxReservationsPerUserPerDay *int    `json:"maxReservationsPerUserPerDay,omitempty" validate:"omitempty,gte=0"`
	MinHoursInAdvance            *int    `json:"minHoursInAdvance,omitempty" validate:"omitempty,gte=0,lte=8760"`
	AllowedStartTime             *string `json:"allowedStartTime,omitempty" validate:"omitempty,datetime=15:04"`
	AllowedEndTime               *string `json:"allowedEndTime,omitempty" validate:"omitempty,datetime=15:04"`
	RequiresApprovalForAllDay    *bool   `json:"requiresApprovalForAllDay,omitempty"`
	AllowConsecutiveReservations *bool   `json:"allowConsecutiveReservations,omitempty"`
	MinTimeBetweenReservations   *int    `json:"minTimeBetweenReservations,omitempty" validate:"omitempty,gte=0,lte=1440"`
}

// ToDomainPatch конвертирует request в domain патч
func (r *UpdatePolicyRequest) ToDomainPatch() domain.PolicyPatch {
	patch := domain.PolicyPatch{
		MaxHoursPerReservation:       r.MaxHoursPerReservation,
		MaxReservationsPerUserPerDay: r.MaxReservationsPerUserPerDay,
		MinHoursInAdvance:            r.MinHoursInAdvance,
		RequiresApprovalForAllDay:    r.RequiresApprovalForAllDay,
		AllowConsecutiveReservations: r.AllowConsecutiveReservations,
		MinTimeBetweenReservations:   r.MinTimeBetweenReservations,
	}
	if r.AllowedStartTime != nil {
		start := types.TimeString(*r.AllowedStartTime)
		patch.AllowedStartTime = &start
	}
	if r.AllowedEndTime != nil {
		end := types.TimeString(*r.AllowedEndTime)
		patch.AllowedEndTime = &end
	}
	return patch
}

// Response модели

// PolicyResponse текущая политика бронирования
type PolicyResponse struct {
	MaxHoursPerReservation       int        `json:"maxHoursPerReservation"`
	MaxReservationsPerUserPerDay int        `json:"maxReservationsPerUserPerDay"`
	MinHoursInAdvance            int        `json:"minHoursInAdvance"`
	AllowedStartTime             string     `json:"allowedStartTime"` // "09:00"
	AllowedEndTime               string     `json:"allowedEndTime"`   // "22:00"
	RequiresApprovalForAllDay    bool       `json:"requiresApprovalForAllDay"`
	AllowConsecutiveReservations bool       `json:"allowConsecutiveReservations"`
	MinTimeBetweenReservations   int        `json:"minTimeBetweenReservations"`
	UpdatedAt                    *time.Time `json:"updatedAt,omitempty"`
	UpdatedBy                    *int64     `json:"updatedBy,omitempty"`
}

// FromDomainPolicy конвертирует domain модель в DTO
func FromDomainPolicy(p *domain.ReservationPolicy) *PolicyResponse {
	if p == nil {
		return nil
	}

	resp := &PolicyResponse{
		MaxHoursPerReservation:       p.MaxHoursPerReservation,
		MaxReservationsPerUserPerDay: p.MaxReservationsPerUserPerDay,
		MinHoursInAdvance:            p.MinHoursInAdvance,
		AllowedStartTime:             string(p.AllowedStartTime),
		AllowedEndTime:               string(p.AllowedEndTime),
		RequiresApprovalForAllDay:    p.RequiresApprovalForAllDay,
		AllowConsecutiveReservations: p.AllowConsecutiveReservations,
		MinTimeBetweenReservations:   p.MinTimeBetweenReservations,
		UpdatedBy:                    p.UpdatedBy,
	}
	if !p.UpdatedAt.IsZero() {
		updatedAt := p.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}
