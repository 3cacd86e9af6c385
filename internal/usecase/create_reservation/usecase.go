package create_reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/lock"
	policyRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/policy"
	tableRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/table"
	"github.com/m04kA/SMC-ReservationService/internal/usecase/slotvalidator"
	"github.com/m04kA/SMC-ReservationService/pkg/retry"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

const operationName = "create"

// UseCase use case для создания бронирования
type UseCase struct {
	reservationRepo ReservationRepository
	policyRepo      PolicyRepository
	tableRepo       TableRepository
	locker          Locker
	txManager       TransactionManager
	events          EventEmitter
	metrics         Metrics
	config          Config
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	policyRepo PolicyRepository,
	tableRepo TableRepository,
	locker Locker,
	txManager TransactionManager,
	events EventEmitter,
	metrics Metrics,
	config Config,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		policyRepo:      policyRepo,
		tableRepo:       tableRepo,
		locker:          locker,
		txManager:       txManager,
		events:          events,
		metrics:         metrics,
		config:          config,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания бронирования.
// Проверка и запись выполняются под блокировкой стола в сериализуемой транзакции;
// при конфликте записи попытка повторяется, после исчерпания попыток возвращается Unavailable.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateReservation: user=%d, table=%d, start=%s, end=%s, allDay=%t",
		req.Principal.UserID, req.ResourceID, req.StartTime, req.EndTime, req.AllDay)

	resp, err := uc.execute(ctx, req)
	uc.metrics.ReservationOperation(operationName, domain.ResultLabel(err))
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем стол и его вместимость
	table, err := uc.tableRepo.GetByID(ctx, req.ResourceID)
	if err != nil {
		if errors.Is(err, tableRepo.ErrTableNotFound) {
			uc.logger.Warn("CreateReservation: table id=%d not found", req.ResourceID)
			return nil, fmt.Errorf("%w: table id=%d", domain.ErrNotFound, req.ResourceID)
		}
		uc.logger.Error("CreateReservation: failed to get table id=%d: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: failed to get table: %v", ErrInternal, err)
	}

	if err := validateCapacity(table, req.NumMembers+req.NumGuests); err != nil {
		uc.logger.Warn("CreateReservation: %v", err)
		return nil, err
	}

	// 3. Проверка и запись с повтором при конфликте
	var created *domain.Reservation
	attempts, err := retry.Do(ctx, uc.config.MaxWriteAttempts, uc.config.RetryBackoff, isRetryable,
		func(ctx context.Context) error {
			reservation, err := uc.attempt(ctx, req)
			if err != nil {
				return err
			}
			created = reservation
			return nil
		})
	if err != nil {
		if isRetryable(err) {
			uc.logger.Warn("CreateReservation: giving up after %d attempts: %v", attempts, err)
			return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
		}
		if domain.KindOf(err) == domain.KindInternal {
			uc.logger.Error("CreateReservation: failed: %v", err)
		} else {
			uc.logger.Warn("CreateReservation: rejected: %v", err)
		}
		return nil, err
	}

	uc.logger.Info("CreateReservation: created reservation id=%d with status %s (attempts=%d)",
		created.ID, created.Status, attempts)

	// 4. Событие о создании
	uc.events.Emit(ctx, domain.StatusChange{
		ReservationID: created.ID,
		UserID:        created.UserID,
		ResourceID:    created.ResourceID,
		From:          "",
		To:            created.Status,
		At:            types.FromWallClock(uc.timeProvider.Now()),
	})

	return &Response{Reservation: created, Attempts: attempts}, nil
}

// attempt одна попытка: блокировка стола, чтение политики и занятых слотов, проверка и вставка
func (uc *UseCase) attempt(ctx context.Context, req *Request) (*domain.Reservation, error) {
	lockCtx, cancel := context.WithTimeout(ctx, uc.config.LockTimeout)
	unlock, err := uc.locker.Lock(lockCtx, lock.ResourceKey(req.ResourceID))
	cancel()
	if err != nil {
		uc.logger.Warn("CreateReservation: failed to lock table id=%d: %v", req.ResourceID, err)
		return nil, err
	}
	defer unlock()

	var result *domain.Reservation

	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Политика читается заново при каждой проверке
		policy, err := uc.loadPolicy(txCtx)
		if err != nil {
			return err
		}

		now := types.FromWallClock(uc.timeProvider.Now())

		draft, err := slotvalidator.Expand(req.draft(), *policy)
		if err != nil {
			return err
		}

		existing, err := uc.loadCandidates(txCtx, draft, *policy)
		if err != nil {
			return err
		}

		if err := slotvalidator.Validate(draft, *policy, existing, now); err != nil {
			return err
		}

		reservation := &domain.Reservation{
			ResourceID: draft.ResourceID,
			UserID:     draft.UserID,
			StartTime:  draft.StartTime,
			EndTime:    draft.EndTime,
			NumMembers: draft.NumMembers,
			NumGuests:  draft.NumGuests,
			AllDay:     draft.AllDay,
			Reason:     draft.Reason,
			Status:     domain.StatusActive,
			Approved:   true,
		}
		if policy.RequiresApproval(draft.AllDay) {
			reservation.Status = domain.StatusPending
			reservation.Approved = false
		}

		created, err := uc.reservationRepo.Create(txCtx, reservation)
		if err != nil {
			return fmt.Errorf("%w: failed to create reservation: %w", ErrInternal, err)
		}

		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (uc *UseCase) loadPolicy(ctx context.Context) (*domain.ReservationPolicy, error) {
	policy, err := uc.policyRepo.Get(ctx)
	if errors.Is(err, policyRepo.ErrPolicyNotFound) {
		defaults := domain.DefaultPolicy()
		return &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get policy: %w", ErrInternal, err)
	}
	return policy, nil
}

func (uc *UseCase) loadCandidates(ctx context.Context, draft slotvalidator.Draft, policy domain.ReservationPolicy) ([]*domain.Reservation, error) {
	filters := slotvalidator.CandidateFilters(draft, policy)
	lists := make([][]*domain.Reservation, 0, len(filters))
	for _, filter := range filters {
		reservations, err := uc.reservationRepo.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to list reservations: %w", ErrInternal, err)
		}
		lists = append(lists, reservations)
	}
	return slotvalidator.Merge(lists...), nil
}
