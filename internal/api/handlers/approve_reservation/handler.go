package approve_reservation

import (
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
)

const (
	msgInvalidReservationID = "некорректный ID бронирования"
	msgUnauthorized         = "пользователь не определен"
	msgNotFound             = "бронирование не найдено"
	msgForbidden            = "одобрение доступно только администратору"
)

type Handler struct {
	service ApprovalService
	logger  Logger
}

func NewHandler(service ApprovalService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/reservations/{reservationId}/approve
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	reservationID, err := handlers.PathID(r, "reservationId")
	if err != nil {
		h.logger.Warn("PATCH /reservations/{id}/approve - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	reservation, err := h.service.Approve(r.Context(), principal, reservationID)
	if err != nil {
		message := msgNotFound
		if domain.KindOf(err) == domain.KindForbidden {
			message = msgForbidden
		}
		h.logger.Warn("PATCH /reservations/{id}/approve - Failed: reservation_id=%d, error=%v", reservationID, err)
		handlers.RespondDomainError(w, err, message)
		return
	}

	h.logger.Info("PATCH /reservations/{id}/approve - Reservation approved: reservation_id=%d, admin_id=%d",
		reservationID, principal.UserID)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainReservation(reservation))
}
