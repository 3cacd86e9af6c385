package update_reservation

import (
	"errors"
	"sort"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/lock"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/internal/usecase/slotvalidator"
	"github.com/m04kA/SMC-ReservationService/pkg/txmanager"
)

// validateRequest валидирует входные данные запроса до обращения к хранилищу
func validateRequest(req *Request) error {
	if err := slotvalidator.CheckReason(req.draft(req.Principal.UserID)); err != nil {
		return err
	}

	if req.ReservationID <= 0 {
		return domain.NewMalformedRequest("reservationID must be positive")
	}

	if req.ResourceID <= 0 {
		return domain.NewMalformedRequest("resourceID must be positive")
	}

	if req.StartTime.IsZero() {
		return domain.NewMalformedRequest("startTime is required")
	}

	if !req.AllDay && req.EndTime.IsZero() {
		return domain.NewMalformedRequest("endTime is required")
	}

	return nil
}

// validateAccess владелец или администратор, бронирование активно или ожидает одобрения
func validateAccess(principal domain.Principal, reservation *domain.Reservation) error {
	if !principal.CanManage(reservation.UserID) {
		return domain.ErrForbidden
	}
	if !reservation.CanBeUpdated() {
		return &domain.InvalidStateTransitionError{From: reservation.Status, To: reservation.Status}
	}
	return nil
}

// validateCapacity проверяет, что компания помещается за столом
func validateCapacity(table *domain.Table, people int) error {
	if !table.Fits(people) {
		return domain.NewMalformedRequest("party of %d exceeds table capacity %d", people, table.Capacity)
	}
	return nil
}

// resolveStatus статус после изменения.
// Бронирование на весь день, требующее одобрения, снова ждёт администратора,
// если только это не уже одобренное бронирование на весь день.
func resolveStatus(existing *domain.Reservation, needsApproval bool) (domain.ReservationStatus, bool) {
	if !needsApproval {
		return domain.StatusActive, true
	}
	if existing.AllDay && existing.Approved && existing.Status == domain.StatusActive {
		return domain.StatusActive, true
	}
	return domain.StatusPending, false
}

// lockKeys ключи блокировки в фиксированном порядке
func lockKeys(resourceIDs ...int64) []string {
	seen := make(map[int64]struct{}, len(resourceIDs))
	ids := make([]int64, 0, len(resourceIDs))
	for _, id := range resourceIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = lock.ResourceKey(id)
	}
	return keys
}

// isRetryable конфликт записи, изменившийся статус или занятая блокировка:
// попытку можно повторить, она заново прочитает запись
func isRetryable(err error) bool {
	return txmanager.IsRetryable(err) ||
		errors.Is(err, reservationRepo.ErrStatusConflict) ||
		errors.Is(err, lock.ErrLockTimeout) ||
		errors.Is(err, lock.ErrLockBackend)
}
