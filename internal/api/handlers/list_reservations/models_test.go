package list_reservations

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

func TestParseQuery(t *testing.T) {
	q, err := url.ParseQuery("resourceId=2&userId=7&from=2025-10-15&to=2025-10-16T00:00&status=active,pending")
	require.NoError(t, err)

	req, err := parseQuery(q)
	require.NoError(t, err)

	require.NotNil(t, req.ResourceID)
	assert.Equal(t, int64(2), *req.ResourceID)
	require.NotNil(t, req.UserID)
	assert.Equal(t, int64(7), *req.UserID)
	require.NotNil(t, req.From)
	assert.Equal(t, "2025-10-15T00:00:00", req.From.String())
	require.NotNil(t, req.To)
	assert.Equal(t, "2025-10-16T00:00:00", req.To.String())
	assert.Equal(t, []domain.ReservationStatus{domain.StatusActive, domain.StatusPending}, req.Statuses)
}

func TestParseQuery_Empty(t *testing.T) {
	req, err := parseQuery(url.Values{})
	require.NoError(t, err)
	assert.Nil(t, req.ResourceID)
	assert.Nil(t, req.UserID)
	assert.Empty(t, req.Statuses)
}

func TestParseQuery_Invalid(t *testing.T) {
	for _, raw := range []string{"resourceId=abc", "userId=-1", "from=yesterday", "status=deleted"} {
		t.Run(raw, func(t *testing.T) {
			q, err := url.ParseQuery(raw)
			require.NoError(t, err)

			_, err = parseQuery(q)
			assert.ErrorIs(t, err, domain.ErrMalformedRequest)
		})
	}
}
