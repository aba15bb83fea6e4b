package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/glowdesk/salon-scheduling/internal/scheduling"
)

var (
	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrDuplicateTransaction = errors.New("transaction id already used")
	ErrSlotTaken            = errors.New("slot already taken for this staff")
)

// Repository contains all DB interactions needed by the coordinator and the
// availability read path.
type Repository interface {
	// BusyIntervals feeds the availability calculator; it returns the busy
	// windows of every active appointment per staff member on a date.
	BusyIntervals(ctx context.Context, staffIDs []uuid.UUID, date time.Time) (map[uuid.UUID][]scheduling.Interval, error)

	// HasOverlappingAppointment runs the half-open overlap existence check
	// against active appointments for one staff member.
	HasOverlappingAppointment(ctx context.Context, staffID uuid.UUID, date, start, end time.Time) (bool, error)

	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	GetAppointmentDetail(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error)
	GetPaymentByTransactionID(ctx context.Context, transactionID string) (*Payment, error)

	// CreateAppointmentWithPayment inserts both rows in one transaction.
	// Unique violations surface as ErrDuplicateTransaction or ErrSlotTaken.
	CreateAppointmentWithPayment(ctx context.Context, appt *Appointment, pay *Payment) error

	// UpdateAppointmentStatus is a compare-and-set transition.
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error)

	// CompleteAppointment is the booked -> completed transition with the
	// settled total written in the same statement, so a failure cannot leave
	// a completed appointment carrying the pre-settlement amount.
	CompleteAppointment(ctx context.Context, id uuid.UUID, totalCents int64) (*Appointment, error)
}
