package create_reservation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	createReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
)

type stubUseCase struct {
	got  *createReservation.Request
	resp *createReservation.Response
	err  error
}

func (s *stubUseCase) Execute(_ context.Context, req *createReservation.Request) (*createReservation.Response, error) {
	s.got = req
	return s.resp, s.err
}

func serve(t *testing.T, uc *stubUseCase, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
	req = req.WithContext(middleware.WithPrincipal(req.Context(), domain.Principal{UserID: 7, Role: domain.RoleMember}))
	rec := httptest.NewRecorder()
	NewHandler(uc, logger.Nop()).Handle(rec, req)
	return rec
}

func TestHandle_Created(t *testing.T) {
	uc := &stubUseCase{resp: &createReservation.Response{Reservation: &domain.Reservation{
		ID: 11, ResourceID: 1, UserID: 7, Status: domain.StatusActive, Approved: true,
	}}}

	rec := serve(t, uc, `{"resourceId":1,"startTime":"2025-10-15T10:00","endTime":"2025-10-15T12:00","numMembers":2}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, uc.got)
	assert.Equal(t, int64(7), uc.got.Principal.UserID)
	assert.Equal(t, "2025-10-15T10:00:00", uc.got.StartTime.String())
	assert.Equal(t, 2, uc.got.NumMembers)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(11), body["id"])
	assert.Equal(t, "active", body["status"])
}

func TestHandle_RuleViolation(t *testing.T) {
	uc := &stubUseCase{err: &domain.DailyQuotaExceededError{Limit: 1, CurrentCount: 1}}

	rec := serve(t, uc, `{"resourceId":2,"startTime":"2025-10-15T14:00","endTime":"2025-10-15T15:00","numMembers":1}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "DailyQuotaExceeded", body.Error.Kind)
	assert.Equal(t, float64(1), body.Error.Details["limit"])
	assert.Equal(t, float64(1), body.Error.Details["currentCount"])
}

func TestHandle_AllDayWithoutReasonNeverReachesUseCase(t *testing.T) {
	uc := &stubUseCase{}

	rec := serve(t, uc, `{"resourceId":0,"startTime":"2025-10-15T00:00","allDay":true,"reason":""}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, uc.got)
	var body handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "MalformedRequest", body.Error.Kind)
	assert.Contains(t, body.Error.Message, "reason")
}

func TestHandle_BadBody(t *testing.T) {
	uc := &stubUseCase{}

	rec := serve(t, uc, `{"resourceId":1,"startTime":"tomorrow"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, uc, `{"resourceId":1,"startTime":"2025-10-15T10:00","endTime":"2025-10-15T11:00","numMembers":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, uc.got)
}

func TestHandle_Unauthenticated(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	NewHandler(&stubUseCase{}, logger.Nop()).Handle(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
