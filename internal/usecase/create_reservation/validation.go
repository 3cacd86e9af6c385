package create_reservation

import (
	"errors"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/lock"
	"github.com/m04kA/SMC-ReservationService/internal/usecase/slotvalidator"
	"github.com/m04kA/SMC-ReservationService/pkg/txmanager"
)

// validateRequest валидирует входные данные запроса до обращения к хранилищу
func validateRequest(req *Request) error {
	if err := slotvalidator.CheckReason(req.draft()); err != nil {
		return err
	}

	if req.Principal.UserID <= 0 {
		return domain.NewMalformedRequest("userID must be positive")
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

// validateCapacity проверяет, что компания помещается за столом
func validateCapacity(table *domain.Table, people int) error {
	if !table.Fits(people) {
		return domain.NewMalformedRequest("party of %d exceeds table capacity %d", people, table.Capacity)
	}
	return nil
}

// isRetryable конфликт записи или занятая блокировка: попытку можно повторить
func isRetryable(err error) bool {
	return txmanager.IsRetryable(err) ||
		errors.Is(err, lock.ErrLockTimeout) ||
		errors.Is(err, lock.ErrLockBackend)
}
