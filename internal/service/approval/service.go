package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Service одобрение и отклонение бронирований на весь день.
// pending -> active (approve), pending -> rejected (reject).
type Service struct {
	reservationRepo ReservationRepository
	events          EventEmitter
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса
func NewService(reservationRepo ReservationRepository, events EventEmitter, metrics Metrics, logger Logger) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		events:          events,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Approve одобряет ожидающее бронирование
func (s *Service) Approve(ctx context.Context, principal domain.Principal, id int64) (*domain.Reservation, error) {
	s.logger.Info("Approve: reservation id=%d by user=%d", id, principal.UserID)

	approved := true
	reservation, err := s.review(ctx, "Approve", principal, domain.StatusTransition{
		ReservationID: id,
		From:          domain.StatusPending,
		To:            domain.StatusActive,
		Approved:      &approved,
		ApprovedBy:    &principal.UserID,
	})
	s.metrics.ReservationOperation("approve", domain.ResultLabel(err))
	return reservation, err
}

// Reject отклоняет ожидающее бронирование с обязательной причиной
func (s *Service) Reject(ctx context.Context, principal domain.Principal, id int64, reason string) (*domain.Reservation, error) {
	s.logger.Info("Reject: reservation id=%d by user=%d", id, principal.UserID)

	reservation, err := s.reject(ctx, principal, id, reason)
	s.metrics.ReservationOperation("reject", domain.ResultLabel(err))
	return reservation, err
}

func (s *Service) reject(ctx context.Context, principal domain.Principal, id int64, reason string) (*domain.Reservation, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		s.logger.Warn("Reject: empty rejection reason for reservation id=%d", id)
		return nil, domain.NewMalformedRequest("rejectionReason is required")
	}
	if utf8.RuneCountInString(reason) > domain.MaxRejectionReasonLength {
		return nil, domain.NewMalformedRequest("rejectionReason must be at most %d characters", domain.MaxRejectionReasonLength)
	}

	approved := false
	return s.review(ctx, "Reject", principal, domain.StatusTransition{
		ReservationID:   id,
		From:            domain.StatusPending,
		To:              domain.StatusRejected,
		Approved:        &approved,
		RejectionReason: &reason,
	})
}

func (s *Service) review(ctx context.Context, op string, principal domain.Principal, t domain.StatusTransition) (*domain.Reservation, error) {
	// 1. Только администратор
	if !principal.IsAdmin() {
		s.logger.Warn("%s: user=%d is not an administrator", op, principal.UserID)
		return nil, domain.ErrForbidden
	}

	// 2. Бронирование должно ожидать решения
	reservation, err := s.get(ctx, op, t.ReservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Status != domain.StatusPending {
		s.logger.Warn("%s: reservation id=%d is %s, not pending", op, t.ReservationID, reservation.Status)
		return nil, &domain.InvalidStateTransitionError{From: reservation.Status, To: t.To}
	}

	// 3. Смена статуса, только если запись всё ещё pending
	t.At = types.FromWallClock(s.timeProvider.Now())
	if err := s.reservationRepo.Transition(ctx, t); err != nil {
		switch {
		case errors.Is(err, reservationRepo.ErrReservationNotFound):
			return nil, fmt.Errorf("%w: reservation id=%d", domain.ErrNotFound, t.ReservationID)
		case errors.Is(err, reservationRepo.ErrStatusConflict):
			current, getErr := s.get(ctx, op, t.ReservationID)
			if getErr != nil {
				return nil, getErr
			}
			s.logger.Warn("%s: reservation id=%d changed to %s concurrently", op, t.ReservationID, current.Status)
			return nil, &domain.InvalidStateTransitionError{From: current.Status, To: t.To}
		default:
			s.logger.Error("%s: repository error for reservation id=%d: %v", op, t.ReservationID, err)
			return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
		}
	}

	reservation.Status = t.To
	reservation.Approved = *t.Approved
	reservation.ReviewedAt = &t.At
	if t.ApprovedBy != nil {
		approvedBy := *t.ApprovedBy
		reservation.ApprovedBy = &approvedBy
	}
	reservation.RejectionReason = t.RejectionReason

	s.logger.Info("%s: reservation id=%d is now %s", op, reservation.ID, reservation.Status)

	s.events.Emit(ctx, domain.StatusChange{
		ReservationID: reservation.ID,
		UserID:        reservation.UserID,
		ResourceID:    reservation.ResourceID,
		From:          domain.StatusPending,
		To:            t.To,
		At:            t.At,
	})

	return reservation, nil
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
