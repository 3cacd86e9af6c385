package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultRedisTTL           = 30 * time.Second
	DefaultRedisRetryInterval = 25 * time.Millisecond
	defaultKeyPrefix          = "reservations:lock:"
	releaseTimeout            = 2 * time.Second
)

// releaseScript удаляет ключ, только если он всё ещё принадлежит владельцу токена
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// RedisLocker блокировка по ключу между экземплярами сервиса (SET NX PX + снятие по токену)
type RedisLocker struct {
	client        redis.Cmdable
	logger        Logger
	ttl           time.Duration
	retryInterval time.Duration
	prefix        string
	newToken      func() string
}

// Option настройка RedisLocker
type Option func(*RedisLocker)

// WithTTL время жизни ключа блокировки
func WithTTL(ttl time.Duration) Option {
	return func(l *RedisLocker) { l.ttl = ttl }
}

// WithRetryInterval пауза между попытками взять занятую блокировку
func WithRetryInterval(interval time.Duration) Option {
	return func(l *RedisLocker) { l.retryInterval = interval }
}

// WithPrefix префикс ключей
func WithPrefix(prefix string) Option {
	return func(l *RedisLocker) { l.prefix = prefix }
}

// WithTokenGenerator генератор токенов владельца
func WithTokenGenerator(gen func() string) Option {
	return func(l *RedisLocker) { l.newToken = gen }
}

// NewRedisLocker создает новый RedisLocker
func NewRedisLocker(client redis.Cmdable, logger Logger, opts ...Option) *RedisLocker {
	l := &RedisLocker{
		client:        client,
		logger:        logger,
		ttl:           DefaultRedisTTL,
		retryInterval: DefaultRedisRetryInterval,
		prefix:        defaultKeyPrefix,
		newToken:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock ждёт блокировку ключа до отмены ctx
func (l *RedisLocker) Lock(ctx context.Context, key string) (Unlock, error) {
	redisKey := l.prefix + key
	token := l.newToken()

	for {
		acquired, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrLockTimeout, key, ctx.Err())
			}
			return nil, fmt.Errorf("%w: setnx %s: %v", ErrLockBackend, redisKey, err)
		}
		if acquired {
			return l.unlockFunc(redisKey, token), nil
		}

		timer := time.NewTimer(l.retryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %s: %v", ErrLockTimeout, key, ctx.Err())
		case <-timer.C:
		}
	}
}

func (l *RedisLocker) unlockFunc(redisKey, token string) Unlock {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()

		if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
			// ключ истечёт сам по TTL
			l.logger.Warn("RedisLocker: failed to release %s: %v", redisKey, err)
		}
	}
}
