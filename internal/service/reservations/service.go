package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Service сервис чтения, отмены и удаления бронирований
type Service struct {
	reservationRepo ReservationRepository
	events          EventEmitter
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	reservationRepo ReservationRepository,
	events EventEmitter,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		events:          events,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// GetByID получает бронирование по ID.
// Видеть отдельную запись может владелец или администратор.
func (s *Service) GetByID(ctx context.Context, principal domain.Principal, id int64) (*domain.Reservation, error) {
	s.logger.Info("GetByID: fetching reservation id=%d for user=%d", id, principal.UserID)

	reservation, err := s.get(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}

	if !principal.CanManage(reservation.UserID) {
		s.logger.Warn("GetByID: access denied for user=%d to reservation id=%d", principal.UserID, id)
		return nil, domain.ErrForbidden
	}

	return reservation, nil
}

// List возвращает бронирования по фильтру, отсортированные по началу
func (s *Service) List(ctx context.Context, req *models.ListRequest) ([]*domain.Reservation, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("List: invalid filter: %v", err)
		return nil, err
	}

	reservations, err := s.reservationRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d reservations", len(reservations))
	return reservations, nil
}

// Cancel отменяет бронирование владельцем или администратором.
// Повторная отмена уже отменённого бронирования успешна и ничего не меняет.
func (s *Service) Cancel(ctx context.Context, principal domain.Principal, id int64) (*domain.Reservation, error) {
	s.logger.Info("Cancel: cancelling reservation id=%d by user=%d", id, principal.UserID)

	reservation, err := s.cancel(ctx, principal, id)
	s.metrics.ReservationOperation("cancel", domain.ResultLabel(err))
	return reservation, err
}

func (s *Service) cancel(ctx context.Context, principal domain.Principal, id int64) (*domain.Reservation, error) {
	for attempt := 1; ; attempt++ {
		reservation, err := s.get(ctx, "Cancel", id)
		if err != nil {
			return nil, err
		}

		if !principal.CanManage(reservation.UserID) {
			s.logger.Warn("Cancel: access denied for user=%d to reservation id=%d", principal.UserID, id)
			return nil, domain.ErrForbidden
		}

		if reservation.Status == domain.StatusCancelled {
			s.logger.Info("Cancel: reservation id=%d already cancelled", id)
			return reservation, nil
		}

		if !reservation.CanBeCancelled() {
			s.logger.Warn("Cancel: reservation id=%d cannot be cancelled, status=%s", id, reservation.Status)
			return nil, &domain.InvalidStateTransitionError{From: reservation.Status, To: domain.StatusCancelled}
		}

		now := types.FromWallClock(s.timeProvider.Now())
		err = s.reservationRepo.Transition(ctx, domain.StatusTransition{
			ReservationID: id,
			From:          reservation.Status,
			To:            domain.StatusCancelled,
			At:            now,
		})
		if errors.Is(err, reservationRepo.ErrStatusConflict) && attempt < maxTransitionAttempts {
			// Статус изменился между чтением и записью: перечитываем
			s.logger.Warn("Cancel: status of reservation id=%d changed concurrently, retrying", id)
			continue
		}
		if err != nil {
			return nil, s.mapTransitionError("Cancel", id, err)
		}

		previous := reservation.Status
		reservation.Status = domain.StatusCancelled
		reservation.CancelledAt = &now

		s.logger.Info("Cancel: reservation id=%d cancelled (was %s)", id, previous)
		s.emit(ctx, reservation, previous, domain.StatusCancelled, now)
		return reservation, nil
	}
}

// Delete окончательно удаляет отменённое или отклонённое бронирование.
// Доступно только администратору.
func (s *Service) Delete(ctx context.Context, principal domain.Principal, id int64) error {
	s.logger.Info("Delete: deleting reservation id=%d by user=%d", id, principal.UserID)

	err := s.delete(ctx, principal, id)
	s.metrics.ReservationOperation("delete", domain.ResultLabel(err))
	return err
}

func (s *Service) delete(ctx context.Context, principal domain.Principal, id int64) error {
	if !principal.IsAdmin() {
		s.logger.Warn("Delete: user=%d is not an administrator", principal.UserID)
		return domain.ErrForbidden
	}

	reservation, err := s.get(ctx, "Delete", id)
	if err != nil {
		return err
	}

	if !reservation.CanBeDeleted() {
		s.logger.Warn("Delete: reservation id=%d cannot be deleted, status=%s", id, reservation.Status)
		return &domain.InvalidStateTransitionError{From: reservation.Status, To: domain.TransitionDeleted}
	}

	if err := s.reservationRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			return fmt.Errorf("%w: reservation id=%d", domain.ErrNotFound, id)
		}
		s.logger.Error("Delete: repository error for reservation id=%d: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Delete: reservation id=%d deleted", id)
	s.emit(ctx, reservation, reservation.Status, domain.TransitionDeleted, types.FromWallClock(s.timeProvider.Now()))
	return nil
}

func (s *Service) get(ctx context.Context, op string, id int64) (*domain.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("%s: reservation id=%d not found", op, id)
			return nil, fmt.Errorf("%w: reservation id=%d", domain.ErrNotFound, id)
		}
		s.logger.Error("%s: repository error for reservation id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return reservation, nil
}

func (s *Service) mapTransitionError(op string, id int64, err error) error {
	switch {
	case errors.Is(err, reservationRepo.ErrReservationNotFound):
		return fmt.Errorf("%w: reservation id=%d", domain.ErrNotFound, id)
	case errors.Is(err, reservationRepo.ErrStatusConflict):
		s.logger.Warn("%s: reservation id=%d keeps changing status", op, id)
		return fmt.Errorf("%w: reservation id=%d: %v", domain.ErrUnavailable, id, err)
	default:
		s.logger.Error("%s: repository error for reservation id=%d: %v", op, id, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
}

func (s *Service) emit(ctx context.Context, r *domain.Reservation, from, to domain.ReservationStatus, at types.LocalDateTime) {
	s.events.Emit(ctx, domain.StatusChange{
		ReservationID: r.ID,
		UserID:        r.UserID,
		ResourceID:    r.ResourceID,
		From:          from,
		To:            to,
		At:            at,
	})
}
