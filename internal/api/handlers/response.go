package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

const (
	msgInternalError = "внутренняя ошибка сервера"
	msgUnavailable   = "сервис временно недоступен, повторите запрос"

	maxBodyBytes = 1 << 20
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody вид ошибки, сообщение и структурированный контекст
type ErrorBody struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// DecodeJSON читает JSON тело запроса; пустое тело и лишние поля - ошибка
func DecodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// PathID парсит положительный int64 из переменной пути
func PathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%s must be positive", name)
	}
	return id, nil
}

// RespondJSON пишет ответ с кодом status
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondError пишет ошибку с видом, выведенным из кода ответа
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Error: ErrorBody{Kind: kindForStatus(status), Message: message}})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusUnauthorized, ErrorResponse{Error: ErrorBody{Kind: "Unauthorized", Message: message}})
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

// RespondDomainError пишет ошибку домена: код по виду, детали из типизированной ошибки.
// message используется для ошибок без собственного текста (NotFound, Forbidden).
func RespondDomainError(w http.ResponseWriter, err error, message string) {
	kind := domain.KindOf(err)
	status := StatusForKind(kind)

	if kind == domain.KindInternal {
		RespondInternalError(w)
		return
	}

	body := ErrorBody{Kind: string(kind), Message: message, Details: domain.DetailsOf(err)}

	var kinded domain.KindedError
	if errors.As(err, &kinded) {
		body.Message = kinded.Error()
	}
	if kind == domain.KindUnavailable {
		body.Message = msgUnavailable
		w.Header().Set("Retry-After", "1")
	}

	RespondJSON(w, status, ErrorResponse{Error: body})
}

// StatusForKind HTTP-код для вида ошибки
func StatusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindMalformedRequest:
		return http.StatusBadRequest
	case domain.KindInsufficientAdvanceNotice,
		domain.KindDurationExceeded,
		domain.KindDailyQuotaExceeded,
		domain.KindConsecutiveBookingTooClose:
		return http.StatusUnprocessableEntity
	case domain.KindSlotConflict, domain.KindInvalidStateTransition:
		return http.StatusConflict
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func kindForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return string(domain.KindMalformedRequest)
	case http.StatusNotFound:
		return string(domain.KindNotFound)
	case http.StatusForbidden:
		return string(domain.KindForbidden)
	case http.StatusServiceUnavailable:
		return string(domain.KindUnavailable)
	default:
		return string(domain.KindInternal)
	}
}
