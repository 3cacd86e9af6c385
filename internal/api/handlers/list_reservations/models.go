package list_reservations

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// parseQuery разбирает ?resourceId=&userId=&from=&to=&status=active,pending
func parseQuery(q url.Values) (*models.ListRequest, error) {
	req := &models.ListRequest{}

	var err error
	if req.ResourceID, err = optionalID(q, "resourceId"); err != nil {
		return nil, err
	}
	if req.UserID, err = optionalID(q, "userId"); err != nil {
		return nil, err
	}
	if req.From, err = optionalDateTime(q, "from"); err != nil {
		return nil, err
	}
	if req.To, err = optionalDateTime(q, "to"); err != nil {
		return nil, err
	}

	for _, raw := range q["status"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			status, err := domain.ParseStatus(part)
			if err != nil {
				return nil, err
			}
			req.Statuses = append(req.Statuses, status)
		}
	}

	return req, nil
}

func optionalID(q url.Values, name string) (*int64, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: %s must be a positive integer", domain.ErrMalformedRequest, name)
	}
	return &id, nil
}

func optionalDateTime(q url.Values, name string) (*types.LocalDateTime, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := types.ParseLocalDateTime(raw)
	if err != nil {
		// Дата без времени означает начало дня
		date, dateErr := types.ParseLocalDateTime(raw + "T00:00")
		if dateErr != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedRequest, name, err)
		}
		value = date
	}
	return &value, nil
}
