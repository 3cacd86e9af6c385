package slotvalidator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/ptr"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

var day = types.NewLocalDateTime(2025, time.October, 15, 0, 0)

func at(hour, minute int) types.LocalDateTime {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func draft(resourceID, userID int64, start, end types.LocalDateTime) Draft {
	return Draft{
		ResourceID: resourceID,
		UserID:     userID,
		StartTime:  start,
		EndTime:    end,
		NumMembers: 1,
	}
}

func existing(id, resourceID, userID int64, start, end types.LocalDateTime, status domain.ReservationStatus) *domain.Reservation {
	return &domain.Reservation{
		ID:         id,
		ResourceID: resourceID,
		UserID:     userID,
		StartTime:  start,
		EndTime:    end,
		NumMembers: 1,
		Status:     status,
	}
}

func scenarioPolicy() domain.ReservationPolicy {
	p := domain.DefaultPolicy()
	p.MaxHoursPerReservation = 4
	p.MaxReservationsPerUserPerDay = 1
	p.MinHoursInAdvance = 0
	return p
}

func TestValidate_DailyQuotaAcrossTables(t *testing.T) {
	policy := scenarioPolicy()
	now := at(8, 0)

	first := draft(1, 7, at(10, 0), at(12, 0))
	require.NoError(t, Validate(first, policy, nil, now))

	booked := []*domain.Reservation{existing(1, 1, 7, at(10, 0), at(12, 0), domain.StatusActive)}
	err := Validate(draft(2, 7, at(14, 0), at(15, 0)), policy, booked, now)

	require.ErrorIs(t, err, domain.ErrDailyQuotaExceeded)
	var quotaErr *domain.DailyQuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, 1, quotaErr.Limit)
	assert.Equal(t, 1, quotaErr.CurrentCount)
}

func TestValidate_DailyQuotaIgnoresInactiveAndOtherDays(t *testing.T) {
	policy := scenarioPolicy()
	now := at(8, 0)

	booked := []*domain.Reservation{
		existing(1, 1, 7, at(10, 0), at(11, 0), domain.StatusCancelled),
		existing(2, 1, 7, at(11, 0), at(12, 0), domain.StatusRejected),
		existing(3, 1, 7, day.AddDays(1).Add(10*time.Hour), day.AddDays(1).Add(11*time.Hour), domain.StatusActive),
		existing(4, 1, 8, at(12, 0), at(13, 0), domain.StatusActive),
	}

	assert.NoError(t, Validate(draft(2, 7, at(14, 0), at(15, 0)), policy, booked, now))
}

func TestValidate_DailyQuotaCountsPending(t *testing.T) {
	policy := scenarioPolicy()
	booked := []*domain.Reservation{existing(1, 1, 7, at(10, 0), at(11, 0), domain.StatusPending)}

	err := Validate(draft(2, 7, at(14, 0), at(15, 0)), policy, booked, at(8, 0))
	assert.ErrorIs(t, err, domain.ErrDailyQuotaExceeded)
}

func TestValidate_UnlimitedQuota(t *testing.T) {
	policy := scenarioPolicy()
	policy.MaxReservationsPerUserPerDay = 0
	booked := []*domain.Reservation{
		existing(1, 1, 7, at(10, 0), at(11, 0), domain.StatusActive),
		existing(2, 2, 7, at(11, 0), at(12, 0), domain.StatusActive),
	}

	assert.NoError(t, Validate(draft(3, 7, at(14, 0), at(15, 0)), policy, booked, at(8, 0)))
}

func TestValidate_OverlapIsHalfOpen(t *testing.T) {
	policy := scenarioPolicy()
	policy.MaxReservationsPerUserPerDay = 0
	booked := []*domain.Reservation{existing(5, 1, 7, at(10, 0), at(12, 0), domain.StatusActive)}
	now := at(8, 0)

	err := Validate(draft(1, 9, at(11, 0), at(13, 0)), policy, booked, now)
	require.ErrorIs(t, err, domain.ErrSlotConflict)
	var conflict *domain.SlotConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(5), conflict.ConflictingReservationID)

	assert.NoError(t, Validate(draft(1, 9, at(12, 0), at(13, 0)), policy, booked, now))
	assert.NoError(t, Validate(draft(1, 9, at(9, 0), at(10, 0)), policy, booked, now))
	assert.NoError(t, Validate(draft(2, 9, at(11, 0), at(13, 0)), policy, booked, now))
}

func TestValidate_OverlapIgnoresCancelled(t *testing.T) {
	policy := scenarioPolicy()
	booked := []*domain.Reservation{existing(5, 1, 7, at(10, 0), at(12, 0), domain.StatusCancelled)}

	assert.NoError(t, Validate(draft(1, 9, at(11, 0), at(13, 0)), policy, booked, at(8, 0)))
}

func TestValidate_MissingReasonForAllDayWinsOverEverything(t *testing.T) {
	policy := scenarioPolicy()
	policy.MinHoursInAdvance = 48

	d := draft(1, 7, at(10, 0), at(9, 0))
	d.AllDay = true
	d.Reason = ptr.Ptr("   ")
	d.NumMembers = 0
	booked := []*domain.Reservation{existing(1, 1, 7, at(10, 0), at(12, 0), domain.StatusActive)}

	err := Validate(d, policy, booked, at(8, 0))
	require.ErrorIs(t, err, domain.ErrMalformedRequest)
	assert.Equal(t, domain.KindMalformedRequest, domain.KindOf(err))
}

func TestValidate_ConsecutiveGap(t *testing.T) {
	policy := scenarioPolicy()
	policy.MaxReservationsPerUserPerDay = 0
	policy.AllowConsecutiveReservations = false
	policy.MinTimeBetweenReservations = 30
	booked := []*domain.Reservation{existing(1, 1, 7, at(9, 0), at(10, 0), domain.StatusActive)}
	now := at(8, 0)

	err := Validate(draft(1, 7, at(10, 15), at(11, 0)), policy, booked, now)
	require.ErrorIs(t, err, domain.ErrConsecutiveBookingTooClose)
	var gapErr *domain.ConsecutiveBookingTooCloseError
	require.ErrorAs(t, err, &gapErr)
	assert.Equal(t, 30, gapErr.MinGapMinutes)
	assert.Equal(t, 15, gapErr.ActualGapMinutes)

	assert.NoError(t, Validate(draft(1, 7, at(10, 30), at(11, 0)), policy, booked, now))
}

func TestValidate_ConsecutiveGapBeforeExisting(t *testing.T) {
	policy := scenarioPolicy()
	policy.MaxReservationsPerUserPerDay = 0
	policy.AllowConsecutiveReservations = false
	policy.MinTimeBetweenReservations = 30
	booked := []*domain.Reservation{existing(1, 1, 7, at(12, 0), at(13, 0), domain.StatusActive)}

	err := Validate(draft(1, 7, at(11, 0), at(11, 50)), policy, booked, at(8, 0))
	var gapErr *domain.ConsecutiveBookingTooCloseError
	require.ErrorAs(t, err, &gapErr)
	assert.Equal(t, 10, gapErr.ActualGapMinutes)
}

func TestValidate_ConsecutiveScope(t *testing.T) {
	policy := scenarioPolicy()
	policy.MaxReservationsPerUserPerDay = 0
	policy.AllowConsecutiveReservations = false
	policy.MinTimeBetweenReservations = 30
	now := at(8, 0)

	otherTable := []*domain.Reservation{existing(1, 2, 7, at(9, 0), at(10, 0), domain.StatusActive)}
	assert.NoError(t, Validate(draft(1, 7, at(10, 0), at(11, 0)), policy, otherTable, now))

	otherUser := []*domain.Reservation{existing(1, 1, 8, at(9, 0), at(10, 0), domain.StatusActive)}
	assert.NoError(t, Validate(draft(1, 7, at(10, 0), at(11, 0)), policy, otherUser, now))

	policy.AllowConsecutiveReservations = true
	sameUser := []*domain.Reservation{existing(1, 1, 7, at(9, 0), at(10, 0), domain.StatusActive)}
	assert.NoError(t, Validate(draft(1, 7, at(10, 0), at(11, 0)), policy, sameUser, now))
}

func TestValidate_ConsecutiveZeroGapRejectsTouching(t *testing.T) {
	policy := scenarioPolicy()
	policy.MaxReservationsPerUserPerDay = 0
	policy.AllowConsecutiveReservations = false
	policy.MinTimeBetweenReservations = 0
	booked := []*domain.Reservation{existing(1, 1, 7, at(9, 0), at(10, 0), domain.StatusActive)}
	now := at(8, 0)

	assert.ErrorIs(t, Validate(draft(1, 7, at(10, 0), at(11, 0)), policy, booked, now), domain.ErrConsecutiveBookingTooClose)
	assert.NoError(t, Validate(draft(1, 7, at(10, 1), at(11, 0)), policy, booked, now))
}

func TestValidate_AdvanceNotice(t *testing.T) {
	policy := scenarioPolicy()
	policy.MinHoursInAdvance = 2
	policy.MaxHoursPerReservation = 1

	// длительность тоже нарушена, но заблаговременность проверяется раньше
	err := Validate(draft(1, 7, at(10, 0), at(14, 0)), policy, nil, at(9, 0))
	require.ErrorIs(t, err, domain.ErrInsufficientAdvanceNotice)
	var noticeErr *domain.InsufficientAdvanceNoticeError
	require.ErrorAs(t, err, &noticeErr)
	assert.Equal(t, 2, noticeErr.RequiredHours)
	assert.InDelta(t, 1.0, noticeErr.ActualHours, 0.001)

	assert.NoError(t, Validate(draft(1, 7, at(11, 0), at(12, 0)), policy, nil, at(9, 0)))
}

func TestValidate_ZeroAdvanceNoticeAlwaysPasses(t *testing.T) {
	policy := scenarioPolicy()
	assert.NoError(t, Validate(draft(1, 7, at(10, 0), at(11, 0)), policy, nil, at(12, 0)))
}

func TestValidate_Duration(t *testing.T) {
	policy := scenarioPolicy()

	err := Validate(draft(1, 7, at(10, 0), at(14, 30)), policy, nil, at(8, 0))
	var durationErr *domain.DurationExceededError
	require.ErrorAs(t, err, &durationErr)
	assert.Equal(t, 4, durationErr.MaxHours)
	assert.InDelta(t, 4.5, durationErr.RequestedHours, 0.001)

	assert.NoError(t, Validate(draft(1, 7, at(10, 0), at(14, 0)), policy, nil, at(8, 0)))
}

func TestValidate_WellFormedness(t *testing.T) {
	policy := scenarioPolicy()
	now := at(8, 0)

	cases := map[string]Draft{
		"end equals start": draft(1, 7, at(10, 0), at(10, 0)),
		"end before start": draft(1, 7, at(11, 0), at(10, 0)),
		"no members":       {ResourceID: 1, UserID: 7, StartTime: at(10, 0), EndTime: at(11, 0)},
		"negative guests":  {ResourceID: 1, UserID: 7, StartTime: at(10, 0), EndTime: at(11, 0), NumMembers: 1, NumGuests: -1},
		"missing times":    {ResourceID: 1, UserID: 7, NumMembers: 1},
	}
	for name, d := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, Validate(d, policy, nil, now), domain.ErrMalformedRequest)
		})
	}
}

func TestValidate_AllDayUsesPolicyWindowAndSkipsDuration(t *testing.T) {
	policy := scenarioPolicy()
	policy.MaxReservationsPerUserPerDay = 0
	now := at(8, 0)

	d := draft(1, 7, at(15, 0), at(15, 30))
	d.AllDay = true
	d.Reason = ptr.Ptr("birthday")

	assert.NoError(t, Validate(d, policy, nil, now))

	// 21:30-23:00 пересекается с окном 09:00-22:00
	booked := []*domain.Reservation{existing(3, 1, 8, at(21, 30), at(23, 0), domain.StatusActive)}
	assert.ErrorIs(t, Validate(d, policy, booked, now), domain.ErrSlotConflict)

	// 22:00-23:00 касается конца окна
	booked = []*domain.Reservation{existing(3, 1, 8, at(22, 0), at(23, 0), domain.StatusActive)}
	assert.NoError(t, Validate(d, policy, booked, now))
}

func TestValidate_ExcludesReservationBeingEdited(t *testing.T) {
	policy := scenarioPolicy()
	booked := []*domain.Reservation{existing(1, 1, 7, at(10, 0), at(12, 0), domain.StatusActive)}

	d := draft(1, 7, at(11, 0), at(13, 0))
	d.ReservationID = 1

	assert.NoError(t, Validate(d, policy, booked, at(8, 0)))
}

func TestExpand(t *testing.T) {
	policy := scenarioPolicy()

	d := draft(1, 7, at(15, 45), types.LocalDateTime{})
	d.AllDay = true
	d.Reason = ptr.Ptr("  party  ")

	expanded, err := Expand(d, policy)
	require.NoError(t, err)
	assert.True(t, at(9, 0).Equal(expanded.StartTime))
	assert.True(t, at(22, 0).Equal(expanded.EndTime))
	assert.Equal(t, "party", *expanded.Reason)

	again, err := Expand(expanded, policy)
	require.NoError(t, err)
	assert.True(t, expanded.StartTime.Equal(again.StartTime))
	assert.True(t, expanded.EndTime.Equal(again.EndTime))

	plain := draft(1, 7, at(10, 0), at(11, 0))
	plain.Reason = ptr.Ptr("ignored")
	normalized, err := Expand(plain, policy)
	require.NoError(t, err)
	assert.Nil(t, normalized.Reason)
}

func TestCandidateFiltersCoverNeighbours(t *testing.T) {
	policy := scenarioPolicy()
	policy.AllowConsecutiveReservations = false
	policy.MinTimeBetweenReservations = 30

	d := draft(1, 7, at(10, 0), at(11, 0))
	filters := CandidateFilters(d, policy)
	require.Len(t, filters, 2)

	touching := existing(1, 1, 7, at(9, 0), at(10, 0), domain.StatusActive)
	near := existing(2, 1, 8, at(11, 20), at(12, 0), domain.StatusActive)
	far := existing(3, 1, 8, at(13, 0), at(14, 0), domain.StatusActive)
	sameDay := existing(4, 2, 7, at(20, 0), at(21, 0), domain.StatusPending)

	assert.True(t, filters[1].Matches(touching))
	assert.True(t, filters[1].Matches(near))
	assert.False(t, filters[1].Matches(far))
	assert.True(t, filters[0].Matches(sameDay))
}

func TestMergeDeduplicates(t *testing.T) {
	a := existing(1, 1, 7, at(9, 0), at(10, 0), domain.StatusActive)
	b := existing(2, 1, 7, at(11, 0), at(12, 0), domain.StatusActive)

	merged := Merge([]*domain.Reservation{a, b}, []*domain.Reservation{b})
	assert.Len(t, merged, 2)
}
