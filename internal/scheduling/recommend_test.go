package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommender_RanksAcrossDays(t *testing.T) {
	cat, sched, serviceID, _ := newTestFixture(30, 9*60, 11*60)
	calc := NewCalculator(cat, sched, 15*time.Minute, 30*time.Minute)

	repo := newFakeHistoryRepo()
	customerID := uuid.New()
	repo.histories[customerID] = &UserBookingHistory{
		CustomerID:       customerID,
		MorningCount:     5,
		AvgBookingMinute: 9 * 60,
		TotalBookings:    5,
	}

	rec := NewRecommender(calc, NewScorer(12), repo, 10)

	from := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	now := from.AddDate(0, 0, -1)

	recs, err := rec.Recommend(context.Background(), customerID, serviceID, nil, from, to, now)
	require.NoError(t, err)
	require.Len(t, recs, 10)

	// The 09:00 slots sit exactly on the customer's average time and win.
	assert.Equal(t, 9, recs[0].Slot.Start.Hour())
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].Score.Composite, recs[i].Score.Composite)
	}
	assert.NotEmpty(t, recs[0].Label)
}

func TestRecommender_FirstTimeCustomer(t *testing.T) {
	cat, sched, serviceID, _ := newTestFixture(30, 9*60, 10*60)
	calc := NewCalculator(cat, sched, 15*time.Minute, 30*time.Minute)
	rec := NewRecommender(calc, NewScorer(12), newFakeHistoryRepo(), 10)

	from := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	recs, err := rec.Recommend(context.Background(), uuid.New(), serviceID, nil, from, from, from.AddDate(0, 0, -1))
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	// Without history every slot gets the neutral time-fit component.
	assert.InDelta(t, 50, recs[0].Score.TimeFit, 0.001)
}

func TestRecommender_RangeTooWide(t *testing.T) {
	cat, sched, serviceID, _ := newTestFixture(30, 9*60, 10*60)
	calc := NewCalculator(cat, sched, 15*time.Minute, 30*time.Minute)
	rec := NewRecommender(calc, NewScorer(12), newFakeHistoryRepo(), 10)

	from := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 45)

	_, err := rec.Recommend(context.Background(), uuid.New(), serviceID, nil, from, to, from)
	assert.ErrorIs(t, err, ErrDateRangeTooWide)
}

func TestRecommender_SwappedRange(t *testing.T) {
	cat, sched, serviceID, _ := newTestFixture(30, 9*60, 10*60)
	calc := NewCalculator(cat, sched, 15*time.Minute, 30*time.Minute)
	rec := NewRecommender(calc, NewScorer(12), newFakeHistoryRepo(), 10)

	from := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	now := from.AddDate(0, 0, -1)

	recs, err := rec.Recommend(context.Background(), uuid.New(), serviceID, nil, to, from, now)
	require.NoError(t, err)
	assert.NotEmpty(t, recs)
}
