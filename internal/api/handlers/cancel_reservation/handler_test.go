package cancel_reservation

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
)

type stubService struct {
	err error
}

func (s *stubService) Cancel(_ context.Context, _ domain.Principal, id int64) (*domain.Reservation, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Reservation{ID: id, Status: domain.StatusCancelled}, nil
}

func serve(svc *stubService, id string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/reservations/"+id+"/cancel", nil)
	req = mux.SetURLVars(req, map[string]string{"reservationId": id})
	req = req.WithContext(middleware.WithPrincipal(req.Context(), domain.Principal{UserID: 7}))
	rec := httptest.NewRecorder()
	NewHandler(svc, logger.Nop()).Handle(rec, req)
	return rec
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		err        error
		wantStatus int
	}{
		{"ok", "3", nil, http.StatusOK},
		{"bad id", "x", nil, http.StatusBadRequest},
		{"forbidden", "3", domain.ErrForbidden, http.StatusForbidden},
		{"not found", "3", fmt.Errorf("%w: reservation id=3", domain.ErrNotFound), http.StatusNotFound},
		{"completed", "3", &domain.InvalidStateTransitionError{From: domain.StatusCompleted, To: domain.StatusCancelled}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&stubService{err: tt.err}, tt.id)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
