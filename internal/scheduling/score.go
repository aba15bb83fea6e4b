package scheduling

import (
	"math"
	"time"
)

// Slot bucket boundaries, minutes from midnight. Morning starts at 06:00 for
// scoring; the history tracker intentionally uses a different morning cutoff
// (see history.go).
const (
	scoreMorningStart   = 6 * 60
	scoreAfternoonStart = 12 * 60
	scoreEveningStart   = 17 * 60
)

const (
	bucketMorning = iota
	bucketAfternoon
	bucketEvening
)

// Weights blend the three score components. They must sum to 1.
type Weights struct {
	Preference float64
	Workload   float64
	TimeFit    float64
}

var DefaultWeights = Weights{Preference: 0.4, Workload: 0.3, TimeFit: 0.3}

// Score carries the composite recommendation score and its components, all on
// a 0-100 display scale.
type Score struct {
	Composite  float64
	Preference float64
	Workload   float64
	TimeFit    float64
}

type Scorer struct {
	Weights     Weights
	MaxDailyCap int
	Lambda      float64 // time-fit decay rate per minute of distance
}

func NewScorer(maxDailyCap int) Scorer {
	if maxDailyCap <= 0 {
		maxDailyCap = 12
	}
	return Scorer{
		Weights:     DefaultWeights,
		MaxDailyCap: maxDailyCap,
		Lambda:      0.05,
	}
}

// Score rates a slot for a customer. history may be nil for first-time
// customers; activeCount is the staff member's existing appointment count on
// the slot's date.
func (s Scorer) Score(slotStart time.Time, history *UserBookingHistory, activeCount int) Score {
	pref := s.preference(slotStart, history)
	work := s.workload(activeCount)
	fit := s.timeFit(slotStart, history)

	composite := s.Weights.Preference*pref + s.Weights.Workload*work + s.Weights.TimeFit*fit

	return Score{
		Composite:  composite * 100,
		Preference: pref * 100,
		Workload:   work * 100,
		TimeFit:    fit * 100,
	}
}

// preference is the cosine similarity between the customer's normalized
// time-of-day counts and the slot's one-hot bucket vector.
func (s Scorer) preference(slotStart time.Time, history *UserBookingHistory) float64 {
	counts := [3]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}
	if history != nil {
		counts = [3]float64{
			float64(history.MorningCount),
			float64(history.AfternoonCount),
			float64(history.EveningCount),
		}
		sum := counts[0] + counts[1] + counts[2]
		if sum == 0 {
			counts = [3]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}
		} else {
			for i := range counts {
				counts[i] /= sum
			}
		}
	}

	var slot [3]float64
	slot[scoreBucket(minuteOfDay(slotStart))] = 1

	return cosine(counts[:], slot[:])
}

// workload steers recommendations away from already-busy staff.
func (s Scorer) workload(activeCount int) float64 {
	w := 1 - float64(activeCount)/float64(s.MaxDailyCap)
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}

// timeFit decays exponentially with distance from the customer's average
// booking time.
func (s Scorer) timeFit(slotStart time.Time, history *UserBookingHistory) float64 {
	if history == nil || history.TotalBookings == 0 {
		return 0.5
	}
	dist := math.Abs(float64(minuteOfDay(slotStart)) - history.AvgBookingMinute)
	return math.Exp(-s.Lambda * dist)
}

func scoreBucket(minute int) int {
	switch {
	case minute >= scoreMorningStart && minute < scoreAfternoonStart:
		return bucketMorning
	case minute >= scoreAfternoonStart && minute < scoreEveningStart:
		return bucketAfternoon
	default:
		return bucketEvening
	}
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func cosine(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0.5
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
