package get_table_availability

import (
	getTableAvailability "github.com/m04kA/SMC-ReservationService/internal/usecase/get_table_availability"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	TableID     int64               `json:"tableId"`
	Date        string              `json:"date"`
	WindowStart types.LocalDateTime `json:"windowStart"`
	WindowEnd   types.LocalDateTime `json:"windowEnd"`
	Busy        []BusyInterval      `json:"busy"`
	Free        []Interval          `json:"free"`
}

type Interval struct {
	StartTime types.LocalDateTime `json:"startTime"`
	EndTime   types.LocalDateTime `json:"endTime"`
}

type BusyInterval struct {
	Interval
	ReservationID int64  `json:"reservationId"`
	Status        string `json:"status"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getTableAvailability.Response) *AvailabilityResponse {
	busy := make([]BusyInterval, len(resp.Busy))
	for i, b := range resp.Busy {
		busy[i] = BusyInterval{
			Interval:      Interval{StartTime: b.Start, EndTime: b.End},
			ReservationID: b.ReservationID,
			Status:        string(b.Status),
		}
	}

	free := make([]Interval, len(resp.Free))
	for i, f := range resp.Free {
		free[i] = Interval{StartTime: f.Start, EndTime: f.End}
	}

	return &AvailabilityResponse{
		TableID:     resp.ResourceID,
		Date:        resp.Date.DateString(),
		WindowStart: resp.WindowStart,
		WindowEnd:   resp.WindowEnd,
		Busy:        busy,
		Free:        free,
	}
}

// ToUseCaseRequest создает запрос use case; дата в формате YYYY-MM-DD
func ToUseCaseRequest(tableID int64, dateStr string) (*getTableAvailability.Request, error) {
	date, err := types.ParseLocalDateTime(dateStr + "T00:00")
	if err != nil {
		return nil, err
	}

	return &getTableAvailability.Request{
		ResourceID: tableID,
		Date:       date,
	}, nil
}
