package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/glowdesk/salon-scheduling/internal/catalog"
)

type AppointmentStatus string

const (
	StatusBooked    AppointmentStatus = "booked"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no_show"
	StatusPending   AppointmentStatus = "pending"
)

// Active reports whether the status occupies its slot for conflict purposes.
func (s AppointmentStatus) Active() bool {
	return s != StatusCancelled && s != StatusNoShow
}

type Appointment struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	StaffID    uuid.UUID
	ServiceID  uuid.UUID
	Date       time.Time
	StartTime  time.Time
	EndTime    time.Time
	Status     AppointmentStatus
	TotalCents int64
	PaymentID  *uuid.UUID
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type PaymentStatus string

const (
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

type Payment struct {
	ID            uuid.UUID
	AmountCents   int64
	TransactionID string
	Method        string
	Status        PaymentStatus
	CreatedAt     time.Time
}

// TempReservation is the ephemeral hold bridging slot choice and payment
// confirmation. It lives only in the reservation cache, keyed by transaction
// id, until confirmation or TTL expiry.
type TempReservation struct {
	TransactionID string    `json:"transaction_id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	ServiceID     uuid.UUID `json:"service_id"`
	StaffID       uuid.UUID `json:"staff_id"`
	Date          time.Time `json:"date"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	TotalCents    int64     `json:"total_cents"`
	AdvanceCents  int64     `json:"advance_cents"`
	Method        string    `json:"method"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}

// AppointmentDetail is the fully hydrated read model for one appointment.
type AppointmentDetail struct {
	Appointment
	Customer *catalog.Customer
	Staff    *catalog.Staff
	Service  *catalog.Service
}
