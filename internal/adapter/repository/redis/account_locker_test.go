package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountLocker_LockAndUnlock(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	locker := NewAccountLocker(client, WithLockTTL(time.Minute))
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, 7)
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:account:7"))

	unlock()
	assert.False(t, mr.Exists("lock:account:7"))
}

func TestAccountLocker_TimesOutWhileHeld(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	locker := NewAccountLocker(client, WithLockWait(100*time.Millisecond))
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, 7)
	require.NoError(t, err)
	defer unlock()

	_, err = locker.Lock(ctx, 7)
	assert.ErrorIs(t, err, ErrLockTimeout)

	// Other accounts are independent.
	unlockOther, err := locker.Lock(ctx, 8)
	require.NoError(t, err)
	unlockOther()
}

func TestAccountLocker_UnlockKeepsForeignLock(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	locker := NewAccountLocker(client, WithLockTTL(time.Second))
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, 3)
	require.NoError(t, err)

	// Our lock expires and somebody else takes it.
	mr.FastForward(2 * time.Second)
	require.NoError(t, mr.Set("lock:account:3", "someone-else"))

	unlock()

	val, err := mr.Get("lock:account:3")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", val)
}

func TestAccountLocker_SerializesHolders(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	locker := NewAccountLocker(client, WithLockWait(5*time.Second))
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		inside  atomic.Int32
		overlap atomic.Bool
	)

	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			unlock, err := locker.Lock(ctx, 1)
			if err != nil {
				t.Errorf("lock failed: %v", err)
				return
			}

			if inside.Add(1) > 1 {
				overlap.Store(true)
			}
			time.Sleep(5 * time.Millisecond)
			inside.Add(-1)

			unlock()
		}()
	}

	wg.Wait()
	assert.False(t, overlap.Load(), "two holders were inside the lock at once")
}

func TestAccountLocker_RespectsContextCancellation(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	locker := NewAccountLocker(client, WithLockWait(time.Minute))

	unlock, err := locker.Lock(context.Background(), 4)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = locker.Lock(ctx, 4)
	assert.Error(t, err)
}
