package get_table_availability

import (
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

const (
	msgInvalidTableID = "некорректный ID стола"
	msgMissingDate    = "дата обязательна"
	msgInvalidDate    = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgTableNotFound  = "стол не найден"
)

type Handler struct {
	useCase GetTableAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetTableAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/tables/{tableId}/availability
// Query params: date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tableID, err := handlers.PathID(r, "tableId")
	if err != nil {
		h.logger.Warn("GET /tables/{id}/availability - Invalid table ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTableID)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /tables/{id}/availability - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	useCaseReq, err := ToUseCaseRequest(tableID, dateStr)
	if err != nil {
		h.logger.Warn("GET /tables/{id}/availability - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch domain.KindOf(err) {
		case domain.KindNotFound:
			h.logger.Warn("GET /tables/{id}/availability - Table not found: table_id=%d", tableID)
			handlers.RespondNotFound(w, msgTableNotFound)
		case domain.KindInternal:
			h.logger.Error("GET /tables/{id}/availability - Failed to get availability: table_id=%d, error=%v", tableID, err)
			handlers.RespondInternalError(w)
		default:
			handlers.RespondDomainError(w, err, msgInvalidDate)
		}
		return
	}

	h.logger.Info("GET /tables/{id}/availability - Availability retrieved: table_id=%d, date=%s, free=%d",
		tableID, dateStr, len(result.Free))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
