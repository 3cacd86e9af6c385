package retry

import (
	"context"
	"time"
)

// Do вызывает fn до attempts раз, пока fn возвращает ошибку, для которой retryable == true.
// Между попытками ждёт backoff * номер попытки. Возвращает последнюю ошибку.
func Do(ctx context.Context, attempts int, backoff time.Duration, retryable func(error) bool, fn func(ctx context.Context) error) (int, error) {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil || !retryable(err) {
			return attempt, err
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return attempt, ctx.Err()
		case <-time.After(backoff * time.Duration(attempt)):
		}
	}

	return attempts, err
}
