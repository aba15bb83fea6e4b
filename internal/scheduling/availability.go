package scheduling

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/glowdesk/salon-scheduling/internal/catalog"
)

// Interval is a half-open [Start, End) time window.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Slot is a bookable window of exactly the service's duration, offered by a
// specific staff member.
type Slot struct {
	Staff catalog.Staff
	Start time.Time
	End   time.Time
}

// Window is a staff-agnostic slot view, deduplicated across staff.
type Window struct {
	Start time.Time
	End   time.Time
}

// ScheduleReader exposes the existing-appointment reads availability needs.
// Both calls are grouped per date so the read path stays at a fixed number of
// queries regardless of roster size.
type ScheduleReader interface {
	// BusyIntervals returns the [start, end) windows of every non-cancelled,
	// non-no-show appointment per staff member on the given date.
	BusyIntervals(ctx context.Context, staffIDs []uuid.UUID, date time.Time) (map[uuid.UUID][]Interval, error)
}

// DayAvailability is the availability result for one date. ActiveCounts
// carries each candidate's existing appointment count so scoring can reuse
// the same batched read.
type DayAvailability struct {
	Slots        []Slot
	ActiveCounts map[uuid.UUID]int
}

type Calculator struct {
	catalog  catalog.Repository
	schedule ScheduleReader

	granularity   time.Duration
	sameDayBuffer time.Duration
}

func NewCalculator(cat catalog.Repository, schedule ScheduleReader, granularity, sameDayBuffer time.Duration) *Calculator {
	if granularity <= 0 {
		granularity = 15 * time.Minute
	}
	return &Calculator{
		catalog:       cat,
		schedule:      schedule,
		granularity:   granularity,
		sameDayBuffer: sameDayBuffer,
	}
}

// ForDate computes every feasible slot for the service on the given date.
// When staffID is non-nil only that staff member is considered, and they must
// be assigned to the service. A date with no eligible staff yields an empty
// result, not an error.
func (c *Calculator) ForDate(ctx context.Context, serviceID uuid.UUID, date time.Time, staffID *uuid.UUID, now time.Time) (*DayAvailability, error) {
	svc, err := c.catalog.GetService(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("load service: %w", err)
	}
	if !svc.Active {
		return nil, catalog.ErrServiceNotFound
	}
	duration := time.Duration(svc.DurationMinutes) * time.Minute

	assigned, err := c.catalog.StaffForService(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("load staff for service: %w", err)
	}

	candidates := assigned
	if staffID != nil {
		candidates = nil
		for _, st := range assigned {
			if st.ID == *staffID {
				candidates = []catalog.Staff{st}
				break
			}
		}
	}
	if len(candidates) == 0 {
		return &DayAvailability{ActiveCounts: map[uuid.UUID]int{}}, nil
	}

	day := startOfDay(date)
	ids := make([]uuid.UUID, len(candidates))
	for i, st := range candidates {
		ids[i] = st.ID
	}

	hours, err := c.catalog.WorkingHoursForStaff(ctx, ids, day.Weekday())
	if err != nil {
		return nil, fmt.Errorf("load working hours: %w", err)
	}
	leaves, err := c.catalog.LeavesForStaff(ctx, ids, day)
	if err != nil {
		return nil, fmt.Errorf("load leaves: %w", err)
	}
	busy, err := c.schedule.BusyIntervals(ctx, ids, day)
	if err != nil {
		return nil, fmt.Errorf("load busy intervals: %w", err)
	}

	result := &DayAvailability{ActiveCounts: make(map[uuid.UUID]int, len(candidates))}

	for _, st := range candidates {
		result.ActiveCounts[st.ID] = len(busy[st.ID])

		wh, ok := hours[st.ID]
		if !ok || !wh.IsWorkingDay {
			continue
		}

		var leaveInterval *Interval
		if l, ok := leaves[st.ID]; ok {
			if l.FullDay() {
				continue
			}
			leaveInterval = &Interval{
				Start: day.Add(time.Duration(*l.StartMinute) * time.Minute),
				End:   day.Add(time.Duration(*l.EndMinute) * time.Minute),
			}
		}

		workStart := day.Add(time.Duration(wh.StartMinute) * time.Minute)
		workEnd := day.Add(time.Duration(wh.EndMinute) * time.Minute)

		result.Slots = append(result.Slots, c.staffSlots(st, workStart, workEnd, duration, leaveInterval, busy[st.ID], day, now)...)
	}

	return result, nil
}

// staffSlots generates candidate starts at the configured granularity from
// workStart through workEnd-duration inclusive and keeps the feasible ones.
func (c *Calculator) staffSlots(st catalog.Staff, workStart, workEnd time.Time, duration time.Duration, leave *Interval, busy []Interval, day time.Time, now time.Time) []Slot {
	var slots []Slot

	sameDay := startOfDay(now).Equal(day)
	cutoff := now.Add(c.sameDayBuffer)

	for t := workStart; !t.Add(duration).After(workEnd); t = t.Add(c.granularity) {
		candidate := Interval{Start: t, End: t.Add(duration)}

		if sameDay && candidate.Start.Before(cutoff) {
			continue
		}
		if leave != nil && candidate.Overlaps(*leave) {
			continue
		}
		if overlapsAny(candidate, busy) {
			continue
		}

		slots = append(slots, Slot{Staff: st, Start: candidate.Start, End: candidate.End})
	}

	return slots
}

func overlapsAny(candidate Interval, busy []Interval) bool {
	for _, b := range busy {
		if candidate.Overlaps(b) {
			return true
		}
	}
	return false
}

// DedupeWindows collapses slots from multiple staff into distinct (start, end)
// windows, sorted chronologically.
func DedupeWindows(slots []Slot) []Window {
	seen := make(map[Window]struct{}, len(slots))
	var windows []Window
	for _, s := range slots {
		w := Window{Start: s.Start, End: s.End}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		windows = append(windows, w)
	}

	sort.Slice(windows, func(i, j int) bool {
		if !windows[i].Start.Equal(windows[j].Start) {
			return windows[i].Start.Before(windows[j].Start)
		}
		return windows[i].End.Before(windows[j].End)
	})

	return windows
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
