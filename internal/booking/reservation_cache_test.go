package booking

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

func newTestCache(t *testing.T) (*RedisReservationCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisReservationCache(client), mr
}

func sampleReservation() TempReservation {
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	return TempReservation{
		TransactionID: uuid.NewString(),
		CustomerID:    uuid.New(),
		ServiceID:     uuid.New(),
		StaffID:       uuid.New(),
		Date:          start.Truncate(24 * time.Hour),
		StartTime:     start,
		EndTime:       start.Add(30 * time.Minute),
		TotalCents:    4500,
		AdvanceCents:  450,
		Method:        "card",
		CreatedAt:     start.Add(-time.Hour),
	}
}

func TestReservationCache_RoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	res := sampleReservation()
	require.NoError(t, cache.Set(ctx, res, 20*time.Minute))

	got, err := cache.Get(ctx, res.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, res.TransactionID, got.TransactionID)
	assert.Equal(t, res.StaffID, got.StaffID)
	assert.Equal(t, res.AdvanceCents, got.AdvanceCents)
	assert.True(t, got.StartTime.Equal(res.StartTime))
}

func TestReservationCache_TTLExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	res := sampleReservation()
	require.NoError(t, cache.Set(ctx, res, 20*time.Minute))

	mr.FastForward(19 * time.Minute)
	_, err := cache.Get(ctx, res.TransactionID)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = cache.Get(ctx, res.TransactionID)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestReservationCache_Delete(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	res := sampleReservation()
	require.NoError(t, cache.Set(ctx, res, 20*time.Minute))
	require.NoError(t, cache.Delete(ctx, res.TransactionID))

	_, err := cache.Get(ctx, res.TransactionID)
	assert.ErrorIs(t, err, ErrReservationNotFound)

	// Deleting an absent key is not an error.
	assert.NoError(t, cache.Delete(ctx, res.TransactionID))
}

func TestReservationCache_GetUnknown(t *testing.T) {
	cache, _ := newTestCache(t)
	_, err := cache.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrReservationNotFound)
}
