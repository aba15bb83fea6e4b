package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistoryRepo struct {
	histories map[uuid.UUID]*UserBookingHistory
	getErr    error
	upsertErr error
	upserts   int
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{histories: make(map[uuid.UUID]*UserBookingHistory)}
}

func (f *fakeHistoryRepo) GetHistory(_ context.Context, customerID uuid.UUID) (*UserBookingHistory, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	h, ok := f.histories[customerID]
	if !ok {
		return nil, ErrHistoryNotFound
	}
	cp := *h
	return &cp, nil
}

func (f *fakeHistoryRepo) UpsertHistory(_ context.Context, h UserBookingHistory) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts++
	cp := h
	f.histories[h.CustomerID] = &cp
	return nil
}

func TestTracker_FirstBookingCreatesHistory(t *testing.T) {
	repo := newFakeHistoryRepo()
	tracker := NewTracker(repo)
	customerID := uuid.New()

	tracker.RecordBooking(context.Background(), customerID, time.Date(2026, 9, 14, 11, 0, 0, 0, time.UTC))

	h := repo.histories[customerID]
	require.NotNil(t, h)
	assert.Equal(t, 1, h.MorningCount)
	assert.Equal(t, 1, h.TotalBookings)
	assert.InDelta(t, 660, h.AvgBookingMinute, 0.001)
}

func TestTracker_IncrementalMean(t *testing.T) {
	repo := newFakeHistoryRepo()
	tracker := NewTracker(repo)
	customerID := uuid.New()
	day := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	tracker.RecordBooking(context.Background(), customerID, day.Add(10*time.Hour)) // 600
	tracker.RecordBooking(context.Background(), customerID, day.Add(14*time.Hour)) // 840
	tracker.RecordBooking(context.Background(), customerID, day.Add(18*time.Hour)) // 1080

	h := repo.histories[customerID]
	require.NotNil(t, h)
	assert.Equal(t, 3, h.TotalBookings)
	assert.InDelta(t, 840, h.AvgBookingMinute, 0.001)
	assert.Equal(t, 1, h.MorningCount)
	assert.Equal(t, 1, h.AfternoonCount)
	assert.Equal(t, 1, h.EveningCount)
}

func TestTracker_BucketBoundaries(t *testing.T) {
	// The tracker's morning bucket opens at 10:00, later than the scorer's.
	tests := []struct {
		hour, minute int
		wantBucket   int
	}{
		{9, 59, bucketEvening},
		{10, 0, bucketMorning},
		{11, 59, bucketMorning},
		{12, 0, bucketAfternoon},
		{16, 59, bucketAfternoon},
		{17, 0, bucketEvening},
	}

	for _, tt := range tests {
		repo := newFakeHistoryRepo()
		tracker := NewTracker(repo)
		customerID := uuid.New()

		start := time.Date(2026, 9, 14, tt.hour, tt.minute, 0, 0, time.UTC)
		tracker.RecordBooking(context.Background(), customerID, start)

		h := repo.histories[customerID]
		require.NotNil(t, h)
		got := bucketEvening
		switch {
		case h.MorningCount == 1:
			got = bucketMorning
		case h.AfternoonCount == 1:
			got = bucketAfternoon
		}
		assert.Equal(t, tt.wantBucket, got, "%02d:%02d", tt.hour, tt.minute)
	}
}

func TestTracker_SwallowsLoadErrors(t *testing.T) {
	repo := newFakeHistoryRepo()
	repo.getErr = errors.New("connection refused")
	tracker := NewTracker(repo)

	// Must not panic and must not write anything.
	tracker.RecordBooking(context.Background(), uuid.New(), time.Now())
	assert.Zero(t, repo.upserts)
}

func TestTracker_SwallowsUpsertErrors(t *testing.T) {
	repo := newFakeHistoryRepo()
	repo.upsertErr = errors.New("connection refused")
	tracker := NewTracker(repo)

	tracker.RecordBooking(context.Background(), uuid.New(), time.Now())
	assert.Empty(t, repo.histories)
}
