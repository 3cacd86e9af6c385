package update_reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/lock"
	policyRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/policy"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	tableRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/table"
	"github.com/m04kA/SMC-ReservationService/internal/usecase/slotvalidator"
	"github.com/m04kA/SMC-ReservationService/pkg/retry"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

const operationName = "update"

// UseCase use case для изменения бронирования
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

// Execute выполняет use case изменения бронирования.
// Изменённое бронирование проверяется как новое, но без учёта его самого
// в дневной квоте и пересечениях.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("UpdateReservation: id=%d, actor=%d, table=%d, start=%s, end=%s, allDay=%t",
		req.ReservationID, req.Principal.UserID, req.ResourceID, req.StartTime, req.EndTime, req.AllDay)

	resp, err := uc.execute(ctx, req)
	uc.metrics.ReservationOperation(operationName, domain.ResultLabel(err))
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("UpdateReservation: validation failed: %v", err)
		return nil, err
	}

	// 2. Текущее состояние бронирования, права и статус
	existing, err := uc.getReservation(ctx, req.ReservationID)
	if err != nil {
		return nil, err
	}

	if err := validateAccess(req.Principal, existing); err != nil {
		uc.logger.Warn("UpdateReservation: id=%d: %v", req.ReservationID, err)
		return nil, err
	}

	// 3. Стол и вместимость
	table, err := uc.tableRepo.GetByID(ctx, req.ResourceID)
	if err != nil {
		if errors.Is(err, tableRepo.ErrTableNotFound) {
			uc.logger.Warn("UpdateReservation: table id=%d not found", req.ResourceID)
			return nil, fmt.Errorf("%w: table id=%d", domain.ErrNotFound, req.ResourceID)
		}
		uc.logger.Error("UpdateReservation: failed to get table id=%d: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: failed to get table: %v", ErrInternal, err)
	}

	if err := validateCapacity(table, req.NumMembers+req.NumGuests); err != nil {
		uc.logger.Warn("UpdateReservation: %v", err)
		return nil, err
	}

	// 4. Проверка и запись с повтором при конфликте.
	// Блокируются и старый, и новый стол, если бронирование переносится.
	keys := lockKeys(existing.ResourceID, req.ResourceID)

	var updated, previous *domain.Reservation
	attempts, err := retry.Do(ctx, uc.config.MaxWriteAttempts, uc.config.RetryBackoff, isRetryable,
		func(ctx context.Context) error {
			before, after, err := uc.attempt(ctx, req, keys)
			if err != nil {
				return err
			}
			previous, updated = before, after
			return nil
		})
	if err != nil {
		if isRetryable(err) {
			uc.logger.Warn("UpdateReservation: giving up after %d attempts: %v", attempts, err)
			return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
		}
		if domain.KindOf(err) == domain.KindInternal {
			uc.logger.Error("UpdateReservation: failed: %v", err)
		} else {
			uc.logger.Warn("UpdateReservation: rejected: %v", err)
		}
		return nil, err
	}

	uc.logger.Info("UpdateReservation: updated reservation id=%d, status %s -> %s (attempts=%d)",
		updated.ID, previous.Status, updated.Status, attempts)

	// 5. Событие, если изменился статус
	if previous.Status != updated.Status {
		uc.events.Emit(ctx, domain.StatusChange{
			ReservationID: updated.ID,
			UserID:        updated.UserID,
			ResourceID:    updated.ResourceID,
			From:          previous.Status,
			To:            updated.Status,
			At:            types.FromWallClock(uc.timeProvider.Now()),
		})
	}

	return &Response{Reservation: updated, PreviousStatus: previous.Status, Attempts: attempts}, nil
}

// attempt одна попытка: блокировки, повторное чтение записи, проверка и обновление
func (uc *UseCase) attempt(ctx context.Context, req *Request, keys []string) (*domain.Reservation, *domain.Reservation, error) {
	unlocks := make([]lock.Unlock, 0, len(keys))
	defer func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}()

	lockCtx, cancel := context.WithTimeout(ctx, uc.config.LockTimeout)
	defer cancel()
	for _, key := range keys {
		unlock, err := uc.locker.Lock(lockCtx, key)
		if err != nil {
			uc.logger.Warn("UpdateReservation: failed to lock %s: %v", key, err)
			return nil, nil, err
		}
		unlocks = append(unlocks, unlock)
	}

	var before, after *domain.Reservation

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Статус мог измениться, пока ждали блокировку
		existing, err := uc.getReservation(txCtx, req.ReservationID)
		if err != nil {
			return err
		}
		if err := validateAccess(req.Principal, existing); err != nil {
			return err
		}

		policy, err := uc.loadPolicy(txCtx)
		if err != nil {
			return err
		}

		now := types.FromWallClock(uc.timeProvider.Now())

		draft, err := slotvalidator.Expand(req.draft(existing.UserID), *policy)
		if err != nil {
			return err
		}

		candidates, err := uc.loadCandidates(txCtx, draft, *policy)
		if err != nil {
			return err
		}

		if err := slotvalidator.Validate(draft, *policy, candidates, now); err != nil {
			return err
		}

		updated := existing.Clone()
		updated.ResourceID = draft.ResourceID
		updated.StartTime = draft.StartTime
		updated.EndTime = draft.EndTime
		updated.NumMembers = draft.NumMembers
		updated.NumGuests = draft.NumGuests
		updated.AllDay = draft.AllDay
		updated.Reason = draft.Reason
		updated.Status, updated.Approved = resolveStatus(existing, policy.RequiresApproval(draft.AllDay))
		if !updated.Approved {
			updated.ApprovedBy = nil
		}

		// Запись только при неизменном статусе: отмена, одобрение или завершение
		// не берут блокировку стола и могли успеть раньше
		if err := uc.reservationRepo.Update(txCtx, updated, existing.Status); err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return fmt.Errorf("%w: reservation id=%d", domain.ErrNotFound, req.ReservationID)
			}
			if errors.Is(err, reservationRepo.ErrStatusConflict) {
				uc.logger.Warn("UpdateReservation: id=%d status changed concurrently, retrying", req.ReservationID)
				return err
			}
			return fmt.Errorf("%w: failed to update reservation: %w", ErrInternal, err)
		}

		before, after = existing, updated
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return before, after, nil
}

func (uc *UseCase) getReservation(ctx context.Context, id int64) (*domain.Reservation, error) {
	reservation, err := uc.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			uc.logger.Warn("UpdateReservation: reservation id=%d not found", id)
			return nil, fmt.Errorf("%w: reservation id=%d", domain.ErrNotFound, id)
		}
		uc.logger.Error("UpdateReservation: failed to get reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get reservation: %w", ErrInternal, err)
	}
	return reservation, nil
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
