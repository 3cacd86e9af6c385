package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
)

// ReservationRepository хранилище бронирований в памяти процесса.
// Возвращает те же ошибки, что и PostgreSQL-репозиторий; наружу отдаются копии записей.
type ReservationRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]*domain.Reservation
	now    func() time.Time
}

// NewReservationRepository создает пустое хранилище
func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{
		items: make(map[int64]*domain.Reservation),
		now:   time.Now,
	}
}

func (r *ReservationRepository) Create(_ context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	stored := reservation.Clone()
	stored.ID = r.nextID
	stored.CreatedAt = r.now()
	stored.UpdatedAt = stored.CreatedAt
	r.items[stored.ID] = stored

	reservation.ID = stored.ID
	reservation.CreatedAt = stored.CreatedAt
	reservation.UpdatedAt = stored.UpdatedAt

	return reservation, nil
}

func (r *ReservationRepository) GetByID(_ context.Context, id int64) (*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.items[id]
	if !ok {
		return nil, reservationRepo.ErrReservationNotFound
	}
	return stored.Clone(), nil
}

func (r *ReservationRepository) List(_ context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Reservation, 0)
	for _, stored := range r.items {
		if filter.Matches(stored) {
			result = append(result, stored.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if filter.AfterID != nil || result[i].StartTime.Equal(result[j].StartTime) {
			return result[i].ID < result[j].ID
		}
		return result[i].StartTime.Before(result[j].StartTime)
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}

	return result, nil
}

func (r *ReservationRepository) Update(_ context.Context, reservation *domain.Reservation, expected domain.ReservationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[reservation.ID]
	if !ok {
		return reservationRepo.ErrReservationNotFound
	}
	if stored.Status != expected {
		return reservationRepo.ErrStatusConflict
	}

	stored.ResourceID = reservation.ResourceID
	stored.StartTime = reservation.StartTime
	stored.EndTime = reservation.EndTime
	stored.NumMembers = reservation.NumMembers
	stored.NumGuests = reservation.NumGuests
	stored.AllDay = reservation.AllDay
	stored.Reason = reservation.Clone().Reason
	stored.Status = reservation.Status
	stored.Approved = reservation.Approved
	stored.ApprovedBy = reservation.Clone().ApprovedBy
	stored.UpdatedAt = r.now()

	return nil
}

func (r *ReservationRepository) Transition(_ context.Context, t domain.StatusTransition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[t.ReservationID]
	if !ok {
		return reservationRepo.ErrReservationNotFound
	}
	if stored.Status != t.From {
		return reservationRepo.ErrStatusConflict
	}

	stored.Status = t.To
	if t.Approved != nil {
		stored.Approved = *t.Approved
	}
	if t.ApprovedBy != nil {
		approvedBy := *t.ApprovedBy
		stored.ApprovedBy = &approvedBy
	}
	if t.RejectionReason != nil {
		reason := *t.RejectionReason
		stored.RejectionReason = &reason
	}

	at := t.At
	switch t.To {
	case domain.StatusCancelled:
		stored.CancelledAt = &at
	case domain.StatusActive, domain.StatusRejected:
		if t.From == domain.StatusPending {
			stored.ReviewedAt = &at
		}
	}
	stored.UpdatedAt = r.now()

	return nil
}

func (r *ReservationRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return reservationRepo.ErrReservationNotFound
	}
	delete(r.items, id)

	return nil
}
