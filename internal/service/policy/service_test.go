package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/memory"
	"github.com/m04kA/SMC-ReservationService/internal/service/policy/models"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/ptr"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

var admin = domain.Principal{UserID: 1, Role: domain.RoleAdmin}

func newService() (*Service, *memory.PolicyStore) {
	store := memory.NewPolicyStore(domain.DefaultPolicy())
	return NewService(store, memory.NewTxManager(), logger.Nop()), store
}

func TestGet_Defaults(t *testing.T) {
	svc, _ := newService()

	policy, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, policy.MaxHoursPerReservation)
	assert.Equal(t, 1, policy.MaxReservationsPerUserPerDay)
	assert.Equal(t, types.TimeString("09:00"), policy.AllowedStartTime)
	assert.Equal(t, types.TimeString("22:00"), policy.AllowedEndTime)
	assert.True(t, policy.RequiresApprovalForAllDay)
	assert.True(t, policy.AllowConsecutiveReservations)
}

func TestUpdate_PartialPatch(t *testing.T) {
	svc, store := newService()

	updated, err := svc.Update(context.Background(), admin, &models.UpdatePolicyRequest{
		MaxReservationsPerUserPerDay: ptr.Ptr(3),
		AllowConsecutiveReservations: ptr.Ptr(false),
		MinTimeBetweenReservations:   ptr.Ptr(30),
		AllowedEndTime:               ptr.Ptr("23:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.MaxReservationsPerUserPerDay)
	assert.Equal(t, 4, updated.MaxHoursPerReservation)
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, int64(1), *updated.UpdatedBy)

	stored, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, stored.AllowConsecutiveReservations)
	assert.Equal(t, 30, stored.MinTimeBetweenReservations)
	assert.Equal(t, types.TimeString("23:00"), stored.AllowedEndTime)
	assert.Equal(t, types.TimeString("09:00"), stored.AllowedStartTime)
}

func TestUpdate_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		req  *models.UpdatePolicyRequest
	}{
		{name: "negative hours", req: &models.UpdatePolicyRequest{MaxHoursPerReservation: ptr.Ptr(-1)}},
		{name: "negative quota", req: &models.UpdatePolicyRequest{MaxReservationsPerUserPerDay: ptr.Ptr(-2)}},
		{name: "bad time format", req: &models.UpdatePolicyRequest{AllowedStartTime: ptr.Ptr("9am")}},
		{name: "window inverted", req: &models.UpdatePolicyRequest{AllowedStartTime: ptr.Ptr("23:00")}},
		{name: "empty window", req: &models.UpdatePolicyRequest{
			AllowedStartTime: ptr.Ptr("12:00"),
			AllowedEndTime:   ptr.Ptr("12:00"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newService()

			_, err := svc.Update(context.Background(), admin, tt.req)
			assert.ErrorIs(t, err, domain.ErrMalformedRequest)

			stored, err := store.Get(context.Background())
			require.NoError(t, err)
			assert.Equal(t, domain.DefaultPolicy().AllowedStartTime, stored.AllowedStartTime)
			assert.Equal(t, domain.DefaultPolicy().MaxHoursPerReservation, stored.MaxHoursPerReservation)
		})
	}
}

func TestUpdate_RequiresAdmin(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Update(context.Background(), domain.Principal{UserID: 7, Role: domain.RoleMember},
		&models.UpdatePolicyRequest{MaxHoursPerReservation: ptr.Ptr(2)})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
