package lock

import "errors"

var (
	// ErrLockTimeout возвращается, когда блокировку не удалось взять до отмены контекста
	ErrLockTimeout = errors.New("lock: timed out waiting for lock")

	// ErrLockBackend возвращается при ошибке хранилища блокировок
	ErrLockBackend = errors.New("lock: backend error")
)
