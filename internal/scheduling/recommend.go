package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const maxRecommendationRangeDays = 31

var ErrDateRangeTooWide = errors.New("recommendation date range too wide")

// Recommender runs the availability -> score -> rank pipeline.
type Recommender struct {
	calc    *Calculator
	scorer  Scorer
	history HistoryRepository
	topN    int
}

func NewRecommender(calc *Calculator, scorer Scorer, history HistoryRepository, topN int) *Recommender {
	if topN <= 0 {
		topN = 10
	}
	return &Recommender{
		calc:    calc,
		scorer:  scorer,
		history: history,
		topN:    topN,
	}
}

// Recommend scores every feasible slot in [from, to] (whole dates, inclusive)
// against the customer's booking history and returns the ranked top picks.
func (r *Recommender) Recommend(ctx context.Context, customerID, serviceID uuid.UUID, staffID *uuid.UUID, from, to time.Time, now time.Time) ([]Recommendation, error) {
	first := startOfDay(from)
	last := startOfDay(to)
	if last.Before(first) {
		first, last = last, first
	}
	if last.Sub(first) > maxRecommendationRangeDays*24*time.Hour {
		return nil, ErrDateRangeTooWide
	}

	hist, err := r.history.GetHistory(ctx, customerID)
	if err != nil {
		if !errors.Is(err, ErrHistoryNotFound) {
			return nil, fmt.Errorf("load booking history: %w", err)
		}
		hist = nil
	}

	var scored []ScoredSlot
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		avail, err := r.calc.ForDate(ctx, serviceID, day, staffID, now)
		if err != nil {
			return nil, err
		}
		for _, slot := range avail.Slots {
			scored = append(scored, ScoredSlot{
				Slot:  slot,
				Score: r.scorer.Score(slot.Start, hist, avail.ActiveCounts[slot.Staff.ID]),
			})
		}
	}

	return Rank(scored, r.topN), nil
}
