package get_table_availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/memory"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

var day = types.NewLocalDateTime(2025, time.October, 15, 0, 0)

func at(hour, minute int) types.LocalDateTime {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type failingRepository struct{}

func (failingRepository) List(context.Context, domain.ReservationFilter) ([]*domain.Reservation, error) {
	return nil, errors.New("connection reset")
}

func newUseCase(t *testing.T, now time.Time, policy domain.ReservationPolicy, existing ...*domain.Reservation) *UseCase {
	t.Helper()
	repo := memory.NewReservationRepository()
	for _, r := range existing {
		_, err := repo.Create(context.Background(), r)
		require.NoError(t, err)
	}
	uc := NewUseCase(
		repo,
		memory.NewPolicyStore(policy),
		memory.NewTableCatalog(domain.Table{ID: 1, Name: "Table 1"}),
		logger.Nop(),
	)
	uc.timeProvider = &fixedClock{now: now}
	return uc
}

func reservation(start, end types.LocalDateTime, status domain.ReservationStatus) *domain.Reservation {
	return &domain.Reservation{ResourceID: 1, UserID: 7, StartTime: start, EndTime: end, NumMembers: 1, Status: status}
}

func TestExecute_FreeGapsAroundReservations(t *testing.T) {
	uc := newUseCase(t, time.Date(2025, time.October, 14, 12, 0, 0, 0, time.UTC), domain.DefaultPolicy(),
		reservation(at(10, 0), at(12, 0), domain.StatusActive),
		reservation(at(12, 0), at(13, 0), domain.StatusPending),
		reservation(at(15, 0), at(16, 0), domain.StatusCancelled),
		reservation(at(20, 0), at(23, 0), domain.StatusActive),
	)

	resp, err := uc.Execute(context.Background(), &Request{ResourceID: 1, Date: at(17, 30)})
	require.NoError(t, err)

	assert.True(t, day.Equal(resp.Date))
	assert.True(t, at(9, 0).Equal(resp.WindowStart))
	assert.True(t, at(22, 0).Equal(resp.WindowEnd))

	require.Len(t, resp.Busy, 3)
	assert.Equal(t, domain.StatusPending, resp.Busy[1].Status)
	assert.True(t, at(22, 0).Equal(resp.Busy[2].End))

	require.Len(t, resp.Free, 2)
	assert.True(t, at(9, 0).Equal(resp.Free[0].Start))
	assert.True(t, at(10, 0).Equal(resp.Free[0].End))
	assert.True(t, at(13, 0).Equal(resp.Free[1].Start))
	assert.True(t, at(20, 0).Equal(resp.Free[1].End))
}

func TestExecute_TodayRespectsAdvanceNotice(t *testing.T) {
	policy := domain.DefaultPolicy()
	policy.MinHoursInAdvance = 2
	uc := newUseCase(t, time.Date(2025, time.October, 15, 14, 30, 0, 0, time.UTC), policy)

	resp, err := uc.Execute(context.Background(), &Request{ResourceID: 1, Date: day})
	require.NoError(t, err)

	require.Len(t, resp.Free, 1)
	assert.True(t, at(16, 30).Equal(resp.Free[0].Start))
	assert.True(t, at(22, 0).Equal(resp.Free[0].End))
}

func TestExecute_PastDayHasNoFreeTime(t *testing.T) {
	uc := newUseCase(t, time.Date(2025, time.October, 20, 8, 0, 0, 0, time.UTC), domain.DefaultPolicy())

	resp, err := uc.Execute(context.Background(), &Request{ResourceID: 1, Date: day})
	require.NoError(t, err)
	assert.Empty(t, resp.Free)
}

func TestExecute_Errors(t *testing.T) {
	uc := newUseCase(t, time.Date(2025, time.October, 14, 8, 0, 0, 0, time.UTC), domain.DefaultPolicy())

	_, err := uc.Execute(context.Background(), &Request{ResourceID: 0, Date: day})
	assert.ErrorIs(t, err, domain.ErrMalformedRequest)

	_, err = uc.Execute(context.Background(), &Request{ResourceID: 1})
	assert.ErrorIs(t, err, domain.ErrMalformedRequest)

	_, err = uc.Execute(context.Background(), &Request{ResourceID: 9, Date: day})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	uc.reservationRepo = failingRepository{}
	_, err = uc.Execute(context.Background(), &Request{ResourceID: 1, Date: day})
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}

func TestFreeIntervals_OverlappingBusy(t *testing.T) {
	window := Interval{Start: at(9, 0), End: at(22, 0)}
	busy := []BusyInterval{
		{Interval: Interval{Start: at(9, 0), End: at(11, 0)}},
		{Interval: Interval{Start: at(10, 0), End: at(10, 30)}},
		{Interval: Interval{Start: at(21, 0), End: at(22, 0)}},
	}

	free := freeIntervals(window, busy, at(0, 0))

	require.Len(t, free, 1)
	assert.True(t, at(11, 0).Equal(free[0].Start))
	assert.True(t, at(21, 0).Equal(free[0].End))
}
