package reservations

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("reservations: internal error")
)

// maxTransitionAttempts сколько раз перечитывать запись при конкурентной смене статуса
const maxTransitionAttempts = 3
