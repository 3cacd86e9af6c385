package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/pkg/logger"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	m := NewKeyedMutex()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := m.Lock(ctx, ResourceKey(1))
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			current := atomic.AddInt32(&inside, 1)
			for {
				seen := atomic.LoadInt32(&maxInside)
				if current <= seen || atomic.CompareAndSwapInt32(&maxInside, seen, current) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, m.size())
}

func TestKeyedMutex_DifferentKeysDoNotContend(t *testing.T) {
	m := NewKeyedMutex()
	ctx := context.Background()

	unlock1, err := m.Lock(ctx, ResourceKey(1))
	require.NoError(t, err)
	defer unlock1()

	timeoutCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()

	unlock2, err := m.Lock(timeoutCtx, ResourceKey(2))
	require.NoError(t, err)
	unlock2()
}

func TestKeyedMutex_TimesOut(t *testing.T) {
	m := NewKeyedMutex()

	unlock, err := m.Lock(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = m.Lock(ctx, "k")
	assert.ErrorIs(t, err, ErrLockTimeout)

	unlock()
	unlock()
	assert.Equal(t, 0, m.size())
}

func TestRedisLocker_AcquireAndRelease(t *testing.T) {
	client, mock := redismock.NewClientMock()
	locker := NewRedisLocker(client, logger.Nop(), WithTokenGenerator(func() string { return "token-1" }))

	key := defaultKeyPrefix + ResourceKey(7)
	mock.ExpectSetNX(key, "token-1", DefaultRedisTTL).SetVal(true)
	mock.ExpectEvalSha(releaseScript.Hash(), []string{key}, "token-1").SetVal(int64(1))

	unlock, err := locker.Lock(context.Background(), ResourceKey(7))
	require.NoError(t, err)
	unlock()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLocker_RetriesWhileBusy(t *testing.T) {
	client, mock := redismock.NewClientMock()
	locker := NewRedisLocker(client, logger.Nop(),
		WithTokenGenerator(func() string { return "token-2" }),
		WithRetryInterval(time.Millisecond),
	)

	key := defaultKeyPrefix + "k"
	mock.ExpectSetNX(key, "token-2", DefaultRedisTTL).SetVal(false)
	mock.ExpectSetNX(key, "token-2", DefaultRedisTTL).SetVal(true)

	_, err := locker.Lock(context.Background(), "k")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLocker_TimesOutWhileBusy(t *testing.T) {
	client, mock := redismock.NewClientMock()
	locker := NewRedisLocker(client, logger.Nop(),
		WithTokenGenerator(func() string { return "token-3" }),
		WithRetryInterval(time.Second),
	)

	key := defaultKeyPrefix + "k"
	mock.ExpectSetNX(key, "token-3", DefaultRedisTTL).SetVal(false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := locker.Lock(ctx, "k")
	assert.ErrorIs(t, err, ErrLockTimeout)
}

func TestRedisLocker_BackendError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	locker := NewRedisLocker(client, logger.Nop(), WithTokenGenerator(func() string { return "token-4" }))

	mock.ExpectSetNX(defaultKeyPrefix+"k", "token-4", DefaultRedisTTL).SetErr(errors.New("connection refused"))

	_, err := locker.Lock(context.Background(), "k")
	assert.ErrorIs(t, err, ErrLockBackend)
}
