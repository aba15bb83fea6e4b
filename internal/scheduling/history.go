package scheduling

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
)

// History tracker bucket boundaries, minutes from midnight. Morning here
// starts at 10:00, not the scorer's 06:00; the asymmetry is deliberate and
// kept so existing preference data stays comparable.
const (
	historyMorningStart   = 10 * 60
	historyAfternoonStart = 12 * 60
	historyEveningStart   = 17 * 60
)

var ErrHistoryNotFound = errors.New("booking history not found")

// UserBookingHistory aggregates a customer's past booking times: per-bucket
// counts and a running average booking minute-of-day.
type UserBookingHistory struct {
	CustomerID       uuid.UUID
	MorningCount     int
	AfternoonCount   int
	EveningCount     int
	AvgBookingMinute float64
	TotalBookings    int
	UpdatedAt        time.Time
}

type HistoryRepository interface {
	GetHistory(ctx context.Context, customerID uuid.UUID) (*UserBookingHistory, error)
	UpsertHistory(ctx context.Context, h UserBookingHistory) error
}

// Tracker updates booking-time preference statistics after confirmed
// bookings. It runs on the background lane and must never fail the booking
// that triggered it, so every error is logged and swallowed.
type Tracker struct {
	repo HistoryRepository
}

func NewTracker(repo HistoryRepository) *Tracker {
	return &Tracker{repo: repo}
}

// RecordBooking folds one confirmed booking start time into the customer's
// history, creating the row lazily on first booking.
func (t *Tracker) RecordBooking(ctx context.Context, customerID uuid.UUID, start time.Time) {
	hist, err := t.repo.GetHistory(ctx, customerID)
	if err != nil {
		if !errors.Is(err, ErrHistoryNotFound) {
			log.Printf("history: load for customer %s: %v", customerID, err)
			return
		}
		hist = &UserBookingHistory{CustomerID: customerID}
	}

	minute := minuteOfDay(start)

	switch historyBucket(minute) {
	case bucketMorning:
		hist.MorningCount++
	case bucketAfternoon:
		hist.AfternoonCount++
	default:
		hist.EveningCount++
	}

	n := hist.TotalBookings + 1
	hist.AvgBookingMinute = (hist.AvgBookingMinute*float64(n-1) + float64(minute)) / float64(n)
	hist.TotalBookings = n
	hist.UpdatedAt = time.Now()

	if err := t.repo.UpsertHistory(ctx, *hist); err != nil {
		log.Printf("history: upsert for customer %s: %v", customerID, err)
	}
}

func historyBucket(minute int) int {
	switch {
	case minute >= historyMorningStart && minute < historyAfternoonStart:
		return bucketMorning
	case minute >= historyAfternoonStart && minute < historyEveningStart:
		return bucketAfternoon
	default:
		return bucketEvening
	}
}
