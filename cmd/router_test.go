package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/config"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/lock"
	"github.com/m04kA/SMC-ReservationService/internal/infra/memory"
	"github.com/m04kA/SMC-ReservationService/internal/integrations/events"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
)

func newTestApp(t *testing.T) *app {
	t.Helper()

	cfg := config.Default()
	cfg.Storage.Driver = config.StorageDriverMemory
	cfg.Metrics.Enabled = false

	log := logger.Nop()
	sink := events.NewLogSink(log)
	bus := events.NewBus(sink, sink, log)
	t.Cleanup(bus.Wait)

	return &app{
		cfg:          cfg,
		log:          log,
		reservations: memory.NewReservationRepository(),
		policies:     memory.NewPolicyStore(domain.DefaultPolicy()),
		tables:       memory.NewTableCatalog(domain.Table{ID: 1, Name: "Table 1", Capacity: 8}),
		txManager:    memory.NewTxManager(),
		locker:       lock.NewKeyedMutex(),
		events:       bus,
	}
}

func call(t *testing.T, h http.Handler, method, path, userID, role, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if role != "" {
		req.Header.Set("X-User-Role", role)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	router := newRouter(newTestApp(t))

	rec := call(t, router, http.MethodGet, "/health", "", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RequiresUser(t *testing.T) {
	router := newRouter(newTestApp(t))

	rec := call(t, router, http.MethodGet, "/api/v1/reservations", "", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_AllDayApprovalFlow(t *testing.T) {
	router := newRouter(newTestApp(t))
	day := time.Now().AddDate(0, 0, 2).Format("2006-01-02")

	body := fmt.Sprintf(`{"resourceId":1,"startTime":"%sT09:00","allDay":true,"reason":"club anniversary","numMembers":3}`, day)
	rec := call(t, router, http.MethodPost, "/api/v1/reservations", "7", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "pending", created["status"])
	id := int64(created["id"].(float64))

	// Слот занят, пока бронирование ждёт согласования
	body = fmt.Sprintf(`{"resourceId":1,"startTime":"%sT12:00","endTime":"%sT13:00","numMembers":1}`, day, day)
	rec = call(t, router, http.MethodPost, "/api/v1/reservations", "8", "", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	path := fmt.Sprintf("/api/v1/reservations/%d/approve", id)
	rec = call(t, router, http.MethodPatch, path, "7", "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, router, http.MethodPatch, path, "1", "admin", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"active"`)

	rec = call(t, router, http.MethodPatch, path, "1", "admin", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(t, router, http.MethodPatch, fmt.Sprintf("/api/v1/reservations/%d/cancel", id), "7", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"cancelled"`)

	rec = call(t, router, http.MethodGet, "/api/v1/reservations?status=active,pending", "7", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Reservations []map[string]any `json:"reservations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Empty(t, listed.Reservations)
}

func TestRouter_TablesAndPolicy(t *testing.T) {
	router := newRouter(newTestApp(t))

	rec := call(t, router, http.MethodGet, "/api/v1/tables/1", "7", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"capacity":8`)

	rec = call(t, router, http.MethodGet, "/api/v1/tables/5", "7", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	day := time.Now().AddDate(0, 0, 3).Format("2006-01-02")
	rec = call(t, router, http.MethodGet, "/api/v1/tables/1/availability?date="+day, "7", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"windowStart":"`+day+`T09:00:00"`)

	rec = call(t, router, http.MethodGet, "/api/v1/tables/1/availability?date=soon", "7", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, router, http.MethodPut, "/api/v1/policy", "1", "admin", `{"minTimeBetweenReservations":15}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, router, http.MethodGet, "/api/v1/policy", "7", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"minTimeBetweenReservations":15`)
}

func TestRouter_UpdateAndDelete(t *testing.T) {
	router := newRouter(newTestApp(t))
	day := time.Now().AddDate(0, 0, 2).Format("2006-01-02")

	body := fmt.Sprintf(`{"resourceId":1,"startTime":"%sT10:00","endTime":"%sT11:00","numMembers":2}`, day, day)
	rec := call(t, router, http.MethodPost, "/api/v1/reservations", "7", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	path := fmt.Sprintf("/api/v1/reservations/%d", int64(created["id"].(float64)))

	tests := []struct {
		name   string
		userID string
		role   string
		body   string
		code   int
		kind   string
	}{
		{name: "not json", userID: "7", body: `{"resourceId":`, code: http.StatusBadRequest},
		{
			name:   "no members",
			userID: "7",
			body:   fmt.Sprintf(`{"resourceId":1,"startTime":"%sT11:00","endTime":"%sT12:00","numMembers":0}`, day, day),
			code:   http.StatusBadRequest,
			kind:   "MalformedRequest",
		},
		{
			name:   "all day without reason",
			userID: "7",
			body:   fmt.Sprintf(`{"resourceId":1,"startTime":"%sT09:00","allDay":true,"numMembers":1}`, day),
			code:   http.StatusBadRequest,
			kind:   "MalformedRequest",
		},
		{
			name:   "other member",
			userID: "8",
			body:   fmt.Sprintf(`{"resourceId":1,"startTime":"%sT11:00","endTime":"%sT12:00","numMembers":1}`, day, day),
			code:   http.StatusForbidden,
		},
		{
			name:   "too long",
			userID: "7",
			body:   fmt.Sprintf(`{"resourceId":1,"startTime":"%sT10:00","endTime":"%sT15:00","numMembers":1}`, day, day),
			code:   http.StatusUnprocessableEntity,
			kind:   "DurationExceeded",
		},
		{
			name:   "unknown table",
			userID: "7",
			body:   fmt.Sprintf(`{"resourceId":9,"startTime":"%sT11:00","endTime":"%sT12:00","numMembers":1}`, day, day),
			code:   http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(t, router, http.MethodPut, path, tt.userID, tt.role, tt.body)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
			if tt.kind != "" {
				assert.Contains(t, rec.Body.String(), `"kind":"`+tt.kind+`"`)
			}
		})
	}

	body = fmt.Sprintf(`{"resourceId":1,"startTime":"%sT11:00","endTime":"%sT13:00","numMembers":2,"numGuests":2}`, day, day)
	rec = call(t, router, http.MethodPut, path, "7", "", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"endTime":"`+day+`T13:00:00"`)
	assert.Contains(t, rec.Body.String(), `"numGuests":2`)
	assert.Contains(t, rec.Body.String(), `"status":"active"`)

	rec = call(t, router, http.MethodDelete, path, "7", "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, router, http.MethodDelete, path, "1", "admin", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"InvalidStateTransition"`)

	rec = call(t, router, http.MethodPatch, path+"/cancel", "7", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, router, http.MethodPut, path, "7", "", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(t, router, http.MethodDelete, path, "1", "admin", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = call(t, router, http.MethodGet, path, "1", "admin", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, router, http.MethodDelete, "/api/v1/reservations/abc", "1", "admin", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_RejectFlow(t *testing.T) {
	router := newRouter(newTestApp(t))
	day := time.Now().AddDate(0, 0, 3).Format("2006-01-02")

	body := fmt.Sprintf(`{"resourceId":1,"startTime":"%sT09:00","allDay":true,"reason":"chess tournament","numMembers":4}`, day)
	rec := call(t, router, http.MethodPost, "/api/v1/reservations", "9", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := int64(created["id"].(float64))
	path := fmt.Sprintf("/api/v1/reservations/%d/reject", id)

	rec = call(t, router, http.MethodPatch, path, "1", "admin", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, router, http.MethodPatch, path, "1", "admin", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, router, http.MethodPatch, path, "9", "", `{"rejectionReason":"hall is closed"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, router, http.MethodPatch, "/api/v1/reservations/404/reject", "1", "admin", `{"rejectionReason":"hall is closed"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, router, http.MethodPatch, path, "1", "admin", `{"rejectionReason":"hall is closed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"status":"rejected"`)
	assert.Contains(t, rec.Body.String(), `"rejectionReason":"hall is closed"`)

	rec = call(t, router, http.MethodPatch, path, "1", "admin", `{"rejectionReason":"again"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Отклонённое бронирование не занимает стол
	body = fmt.Sprintf(`{"resourceId":1,"startTime":"%sT12:00","endTime":"%sT13:00","numMembers":1}`, day, day)
	rec = call(t, router, http.MethodPost, "/api/v1/reservations", "8", "", body)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = call(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/reservations/%d", id), "1", "admin", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
