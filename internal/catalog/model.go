package catalog

import (
	"time"

	"github.com/google/uuid"
)

type Service struct {
	ID              uuid.UUID
	Name            string
	PriceCents      int64
	DurationMinutes int
	Category        string
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Staff struct {
	ID        uuid.UUID
	Name      string
	Role      *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Customer struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkingHours is the weekly schedule row for one staff member and weekday.
// Start and end are minutes from midnight in the salon's local timezone.
type WorkingHours struct {
	StaffID      uuid.UUID
	Weekday      time.Weekday
	IsWorkingDay bool
	StartMinute  int
	EndMinute    int
}

// Leave blocks out a calendar date for a staff member. Nil minutes denote a
// full-day leave; otherwise only [StartMinute, EndMinute) is blacked out.
type Leave struct {
	StaffID     uuid.UUID
	Date        time.Time
	StartMinute *int
	EndMinute   *int
}

func (l Leave) FullDay() bool {
	return l.StartMinute == nil || l.EndMinute == nil
}
