package sweeper

import "errors"

var (
	// ErrList не удалось получить завершившиеся бронирования
	ErrList = errors.New("sweeper: failed to list finished reservations")

	// ErrScheduler ошибка планировщика
	ErrScheduler = errors.New("sweeper: scheduler error")
)
