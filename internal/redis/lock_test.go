package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSlotLocker(client, 5*time.Second), mr
}

func TestWithSlotLock_RunsAndReleases(t *testing.T) {
	locker, mr := newTestLocker(t)
	staffID := uuid.New()
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	ran := false
	err := locker.WithSlotLock(context.Background(), staffID, start, func(ctx context.Context) error {
		ran = true
		assert.NotEmpty(t, mr.Keys(), "lock key held during the critical section")
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Empty(t, mr.Keys(), "lock released afterwards")
}

func TestWithSlotLock_ContendedSlot(t *testing.T) {
	locker, _ := newTestLocker(t)
	staffID := uuid.New()
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	err := locker.WithSlotLock(context.Background(), staffID, start, func(ctx context.Context) error {
		// A second acquisition of the same staff/start pair must fail while
		// the first is held.
		inner := locker.WithSlotLock(ctx, staffID, start, func(context.Context) error { return nil })
		assert.ErrorIs(t, inner, ErrLockNotAcquired)
		return nil
	})
	require.NoError(t, err)
}

func TestWithSlotLock_DistinctSlotsDoNotContend(t *testing.T) {
	locker, _ := newTestLocker(t)
	staffID := uuid.New()
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)

	err := locker.WithSlotLock(context.Background(), staffID, start, func(ctx context.Context) error {
		return locker.WithSlotLock(ctx, staffID, start.Add(15*time.Minute), func(context.Context) error { return nil })
	})
	assert.NoError(t, err)
}

func TestWithSlotLock_PropagatesCallbackError(t *testing.T) {
	locker, mr := newTestLocker(t)

	wantErr := assert.AnError
	err := locker.WithSlotLock(context.Background(), uuid.New(), time.Now(), func(context.Context) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Empty(t, mr.Keys(), "lock released even when the callback fails")
}
