package update_policy

import (
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/policy/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgUnauthorized       = "пользователь не определен"
	msgForbidden          = "изменение политики доступно только администратору"
)

type Handler struct {
	service PolicyService
	logger  Logger
}

func NewHandler(service PolicyService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/policy
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req models.UpdatePolicyRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /policy - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	policy, err := h.service.Update(r.Context(), principal, &req)
	if err != nil {
		switch domain.KindOf(err) {
		case domain.KindForbidden:
			handlers.RespondForbidden(w, msgForbidden)
		case domain.KindInternal:
			h.logger.Error("PUT /policy - Failed to update policy: %v", err)
			handlers.RespondInternalError(w)
		default:
			h.logger.Warn("PUT /policy - Rejected: %v", err)
			handlers.RespondDomainError(w, err, msgInvalidRequestBody)
		}
		return
	}

	h.logger.Info("PUT /policy - Policy updated by admin_id=%d", principal.UserID)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainPolicy(policy))
}
