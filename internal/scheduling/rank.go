package scheduling

import "sort"

const topPickThreshold = 85

// ScoredSlot pairs a slot with its recommendation score.
type ScoredSlot struct {
	Slot  Slot
	Score Score
}

// Recommendation is the caller-facing representation of a ranked slot.
type Recommendation struct {
	Slot    Slot
	Score   Score
	Label   string
	TopPick bool
}

// Rank sorts scored slots descending by composite score and truncates to
// topN. The sort is stable, so ties keep generation order: staff iteration
// order first, then slot start time.
func Rank(scored []ScoredSlot, topN int) []Recommendation {
	if topN <= 0 {
		topN = 10
	}

	ranked := make([]ScoredSlot, len(scored))
	copy(ranked, scored)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score.Composite > ranked[j].Score.Composite
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	result := make([]Recommendation, len(ranked))
	for i, s := range ranked {
		result[i] = Recommendation{
			Slot:    s.Slot,
			Score:   s.Score,
			Label:   MatchLabel(s.Score.Composite),
			TopPick: s.Score.Composite >= topPickThreshold,
		}
	}

	return result
}

// MatchLabel maps a composite score to its qualitative label.
func MatchLabel(composite float64) string {
	switch {
	case composite >= 90:
		return "Best Match"
	case composite >= 80:
		return "Great"
	case composite >= 70:
		return "Good"
	case composite >= 60:
		return "Fair"
	default:
		return "Available"
	}
}
