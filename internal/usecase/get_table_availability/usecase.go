package get_table_availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	policyRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/policy"
	tableRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/table"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// UseCase use case для получения занятости стола на дату
type UseCase struct {
	reservationRepo ReservationRepository
	policyRepo      PolicyRepository
	tableRepo       TableRepository
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	policyRepo PolicyRepository,
	tableRepo TableRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		policyRepo:      policyRepo,
		tableRepo:       tableRepo,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения занятости стола.
// Свободные интервалы подсказывают клиенту, что можно забронировать; окончательное
// решение всё равно принимает проверка при создании.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetTableAvailability: table=%d, date=%s", req.ResourceID, req.Date.DateString())

	// 1. Валидация входных данных
	if req.ResourceID <= 0 {
		return nil, domain.NewMalformedRequest("tableId must be positive")
	}
	if req.Date.IsZero() {
		return nil, domain.NewMalformedRequest("date is required")
	}
	date := req.Date.Midnight()

	// 2. Проверяем существование стола
	if _, err := uc.tableRepo.GetByID(ctx, req.ResourceID); err != nil {
		if errors.Is(err, tableRepo.ErrTableNotFound) {
			uc.logger.Warn("GetTableAvailability: table id=%d not found", req.ResourceID)
			return nil, fmt.Errorf("%w: table id=%d", domain.ErrNotFound, req.ResourceID)
		}
		uc.logger.Error("GetTableAvailability: failed to get table id=%d: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: failed to get table: %v", ErrInternal, err)
	}

	// 3. Окно работы из текущей политики
	policy, err := uc.policyRepo.Get(ctx)
	if errors.Is(err, policyRepo.ErrPolicyNotFound) {
		defaults := domain.DefaultPolicy()
		policy, err = &defaults, nil
	}
	if err != nil {
		uc.logger.Error("GetTableAvailability: failed to get policy: %v", err)
		return nil, fmt.Errorf("%w: failed to get policy: %v", ErrInternal, err)
	}

	window, err := dayWindow(date, *policy)
	if err != nil {
		uc.logger.Error("GetTableAvailability: invalid policy window: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// 4. Занимающие бронирования стола, пересекающиеся с окном
	reservations, err := uc.reservationRepo.List(ctx, domain.ReservationFilter{
		ResourceID: &req.ResourceID,
		Statuses:   domain.OccupyingStatuses,
		From:       &window.Start,
		To:         &window.End,
	})
	if err != nil {
		uc.logger.Error("GetTableAvailability: failed to list reservations: %v", err)
		return nil, fmt.Errorf("%w: failed to list reservations: %v", ErrInternal, err)
	}

	// 5. Свободные промежутки с учётом минимального срока бронирования
	now := types.FromWallClock(uc.timeProvider.Now())
	earliest := now.Add(time.Duration(policy.MinHoursInAdvance) * time.Hour)

	busy := busyIntervals(reservations, window)
	free := freeIntervals(window, busy, earliest)

	uc.logger.Info("GetTableAvailability: table=%d, date=%s, busy=%d, free=%d",
		req.ResourceID, date.DateString(), len(busy), len(free))

	return &Response{
		ResourceID:  req.ResourceID,
		Date:        date,
		WindowStart: window.Start,
		WindowEnd:   window.End,
		Busy:        busy,
		Free:        free,
	}, nil
}

func dayWindow(date types.LocalDateTime, policy domain.ReservationPolicy) (Interval, error) {
	start, err := date.At(policy.AllowedStartTime)
	if err != nil {
		return Interval{}, err
	}
	end, err := date.At(policy.AllowedEndTime)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: start, End: end}, nil
}
