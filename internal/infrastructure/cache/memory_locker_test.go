package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryAggregateLocker_Lock(t *testing.T) {
	ctx := context.Background()

	t.Run("acquires a free key", func(t *testing.T) {
		locker := NewInMemoryAggregateLocker(0)

		release, err := locker.Lock(ctx, "showroom:1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 1, locker.Size())

		release()
		assert.Equal(t, 0, locker.Size())
	})

	t.Run("refuses a held key once the wait budget is spent", func(t *testing.T) {
		locker := NewInMemoryAggregateLocker(20 * time.Millisecond)

		release, err := locker.Lock(ctx, "showroom:1", time.Minute)
		require.NoError(t, err)
		defer release()

		_, err = locker.Lock(ctx, "showroom:1", time.Minute)
		assert.ErrorIs(t, err, shared.ErrLockNotAcquired)
	})

	t.Run("different keys do not block each other", func(t *testing.T) {
		locker := NewInMemoryAggregateLocker(0)

		r1, err := locker.Lock(ctx, "showroom:1", time.Minute)
		require.NoError(t, err)
		defer r1()
		r2, err := locker.Lock(ctx, "customer:1", time.Minute)
		require.NoError(t, err)
		defer r2()

		assert.Equal(t, 2, locker.Size())
	})

	t.Run("waits for a release", func(t *testing.T) {
		locker := NewInMemoryAggregateLocker(time.Second)

		release, err := locker.Lock(ctx, "showroom:1", time.Minute)
		require.NoError(t, err)
		time.AfterFunc(30*time.Millisecond, release)

		second, err := locker.Lock(ctx, "showroom:1", time.Minute)
		require.NoError(t, err)
		second()
	})

	t.Run("expired lease can be taken over", func(t *testing.T) {
		locker := NewInMemoryAggregateLocker(0)

		stale, err := locker.Lock(ctx, "showroom:1", 10*time.Millisecond)
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond)

		fresh, err := locker.Lock(ctx, "showroom:1", time.Minute)
		require.NoError(t, err)

		// the stale holder must not drop the new lease
		stale()
		assert.Equal(t, 1, locker.Size())
		fresh()
		assert.Equal(t, 0, locker.Size())
	})

	t.Run("cancelled context stops waiting", func(t *testing.T) {
		locker := NewInMemoryAggregateLocker(time.Minute)

		release, err := locker.Lock(ctx, "showroom:1", time.Minute)
		require.NoError(t, err)
		defer release()

		cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(cctx, "showroom:1", time.Minute)
		assert.ErrorIs(t, err, shared.ErrLockNotAcquired)
		assert.Contains(t, err.Error(), context.DeadlineExceeded.Error())
	})

	t.Run("cancellation is told apart from a spent budget", func(t *testing.T) {
		locker := NewInMemoryAggregateLocker(time.Minute)

		release, err := locker.Lock(ctx, "showroom:1", time.Minute)
		require.NoError(t, err)
		defer release()

		cctx, cancel := context.WithCancel(ctx)
		time.AfterFunc(20*time.Millisecond, cancel)
		_, err = locker.Lock(cctx, "showroom:1", time.Minute)
		require.ErrorIs(t, err, shared.ErrLockNotAcquired)
		assert.Contains(t, err.Error(), context.Canceled.Error())
	})
}

func TestInMemoryAggregateLocker_MutualExclusion(t *testing.T) {
	locker := NewInMemoryAggregateLocker(5 * time.Second)
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Lock(ctx, "showroom:1", time.Minute)
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
}

func TestLockerFactory_CreateLocker(t *testing.T) {
	t.Run("redis disabled yields in-memory locker", func(t *testing.T) {
		f := NewLockerFactory(config.RedisConfig{Enabled: false}, time.Second)

		locker, err := f.CreateLocker()
		require.NoError(t, err)
		assert.IsType(t, &InMemoryAggregateLocker{}, locker)
	})

	t.Run("unreachable redis fails without fallback", func(t *testing.T) {
		f := NewLockerFactory(config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}, time.Second)

		_, err := f.CreateLocker()
		assert.Error(t, err)
	})

	t.Run("unreachable redis falls back when allowed", func(t *testing.T) {
		f := NewLockerFactory(
			config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1},
			time.Second,
			WithInMemoryFallback(true),
		)

		locker, err := f.CreateLocker()
		require.NoError(t, err)
		assert.IsType(t, &InMemoryAggregateLocker{}, locker)
	})
}
