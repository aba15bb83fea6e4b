package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/glowdesk/salon-scheduling/internal/catalog"
	"github.com/glowdesk/salon-scheduling/internal/config"
	"github.com/glowdesk/salon-scheduling/internal/metrics"
	"github.com/glowdesk/salon-scheduling/internal/notify"
	"github.com/glowdesk/salon-scheduling/internal/payment"
	redisclient "github.com/glowdesk/salon-scheduling/internal/redis"
	"github.com/glowdesk/salon-scheduling/internal/scheduling"
	"github.com/glowdesk/salon-scheduling/internal/tasks"
)

var (
	ErrServiceInactive       = errors.New("service is not active")
	ErrStartTooSoon          = errors.New("booking start is too soon")
	ErrStaffBusy             = errors.New("staff already booked for this slot")
	ErrNoStaffAvailable      = errors.New("no staff available for this slot")
	ErrSlotBeingBooked       = errors.New("slot is currently being booked, please retry")
	ErrDuplicateConfirmation = errors.New("transaction already confirmed")
	ErrReservationExpired    = errors.New("reservation expired or unknown")
	ErrPaymentFailed         = errors.New("payment was not successful")
	ErrAmountMismatch        = errors.New("invalid payment amount")
	ErrNotYourAppointment    = errors.New("appointment cannot be cancelled")
	ErrAlreadyFinalized      = errors.New("appointment is already finalized")
	ErrCancelWindowClosed    = errors.New("too close to the appointment to cancel")
	ErrInvalidTransition     = errors.New("invalid status transition")
)

// Service coordinates the reserve -> pay -> confirm saga and the status
// transitions of confirmed appointments.
type Service struct {
	repo      Repository
	catalog   catalog.Repository
	cache     ReservationCache
	locker    redisclient.Locker
	gateway   payment.Gateway
	publisher notify.Publisher
	tracker   *scheduling.Tracker
	pool      *tasks.Pool
	metrics   *metrics.BookingMetrics
	cfg       config.Config

	now func() time.Time
}

func NewService(repo Repository, cat catalog.Repository, cache ReservationCache, locker redisclient.Locker, gateway payment.Gateway, publisher notify.Publisher, tracker *scheduling.Tracker, pool *tasks.Pool, m *metrics.BookingMetrics, cfg config.Config) *Service {
	return &Service{
		repo:      repo,
		catalog:   cat,
		cache:     cache,
		locker:    locker,
		gateway:   gateway,
		publisher: publisher,
		tracker:   tracker,
		pool:      pool,
		metrics:   m,
		cfg:       cfg,
		now:       time.Now,
	}
}

// BookingRequest is a customer's slot choice.
type BookingRequest struct {
	ServiceID uuid.UUID
	StaffID   *uuid.UUID
	Start     time.Time
	Method    string
	Notes     string
}

// CreateBooking holds a slot for the customer and starts the payment round
// trip. The only write is the TTL-bounded reservation cache entry; nothing
// durable exists until the gateway confirms.
func (s *Service) CreateBooking(ctx context.Context, customerID uuid.UUID, req BookingRequest) (*payment.RedirectPayload, error) {
	svc, err := s.catalog.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.Active {
		return nil, ErrServiceInactive
	}

	now := s.now()
	if req.Start.Before(now.Add(s.cfg.MinBookingLead)) {
		return nil, ErrStartTooSoon
	}

	end := req.Start.Add(time.Duration(svc.DurationMinutes) * time.Minute)
	date := startOfDay(req.Start)

	staffID, err := s.resolveStaff(ctx, req, date, end)
	if err != nil {
		return nil, err
	}

	total := svc.PriceCents
	advance := advanceCents(total, s.cfg.AdvancePercent)
	transactionID := uuid.NewString()

	res := TempReservation{
		TransactionID: transactionID,
		CustomerID:    customerID,
		ServiceID:     req.ServiceID,
		StaffID:       staffID,
		Date:          date,
		StartTime:     req.Start,
		EndTime:       end,
		TotalCents:    total,
		AdvanceCents:  advance,
		Method:        req.Method,
		Notes:         req.Notes,
		CreatedAt:     now,
	}

	// The lock serializes the overlap re-check and the hold for this
	// staff/start pair; the partial unique index is the backstop at confirm
	// time.
	err = s.locker.WithSlotLock(ctx, staffID, req.Start, func(lockCtx context.Context) error {
		busy, err := s.repo.HasOverlappingAppointment(lockCtx, staffID, date, req.Start, end)
		if err != nil {
			return fmt.Errorf("check overlap: %w", err)
		}
		if busy {
			return ErrStaffBusy
		}

		if err := s.cache.Set(lockCtx, res, s.cfg.ReservationTTL); err != nil {
			return fmt.Errorf("hold reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBeingBooked
		}
		return nil, err
	}

	payload, err := s.gateway.Initiate(ctx, advance, transactionID)
	if err != nil {
		if delErr := s.cache.Delete(ctx, transactionID); delErr != nil {
			log.Printf("booking: release reservation %s after failed initiate: %v", transactionID, delErr)
		}
		return nil, fmt.Errorf("initiate payment: %w", err)
	}

	s.metrics.ObserveCreated()
	return payload, nil
}

// resolveStaff picks the staff member who will serve the booking: the
// requested one if free, otherwise the first assigned staff with no
// overlapping appointment.
func (s *Service) resolveStaff(ctx context.Context, req BookingRequest, date, end time.Time) (uuid.UUID, error) {
	if req.StaffID != nil {
		if _, err := s.catalog.GetStaff(ctx, *req.StaffID); err != nil {
			return uuid.Nil, err
		}
		busy, err := s.repo.HasOverlappingAppointment(ctx, *req.StaffID, date, req.Start, end)
		if err != nil {
			return uuid.Nil, fmt.Errorf("check overlap: %w", err)
		}
		if busy {
			return uuid.Nil, ErrStaffBusy
		}
		return *req.StaffID, nil
	}

	assigned, err := s.catalog.StaffForService(ctx, req.ServiceID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("load staff for service: %w", err)
	}
	for _, st := range assigned {
		busy, err := s.repo.HasOverlappingAppointment(ctx, st.ID, date, req.Start, end)
		if err != nil {
			return uuid.Nil, fmt.Errorf("check overlap: %w", err)
		}
		if !busy {
			return st.ID, nil
		}
	}

	return uuid.Nil, ErrNoStaffAvailable
}

// ConfirmBooking turns a held reservation into a durable appointment once the
// gateway reports the outcome. The reservation cache entry is deleted
// unconditionally after the attempt, success or failure.
func (s *Service) ConfirmBooking(ctx context.Context, result payment.CallbackResult) (*Appointment, error) {
	// Idempotency guard against duplicate gateway callbacks.
	if _, err := s.repo.GetPaymentByTransactionID(ctx, result.Reference); err == nil {
		s.metrics.ObserveConfirmed("duplicate")
		return nil, ErrDuplicateConfirmation
	} else if !errors.Is(err, ErrPaymentNotFound) {
		return nil, fmt.Errorf("check payment: %w", err)
	}

	res, err := s.cache.Get(ctx, result.Reference)
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			s.metrics.ObserveConfirmed("expired")
			return nil, ErrReservationExpired
		}
		return nil, fmt.Errorf("load reservation: %w", err)
	}

	defer func() {
		if err := s.cache.Delete(ctx, result.Reference); err != nil {
			log.Printf("booking: delete reservation %s: %v", result.Reference, err)
		}
	}()

	if result.Status != payment.StatusSucceeded {
		s.metrics.ObserveConfirmed("payment_failed")
		return nil, ErrPaymentFailed
	}

	if result.AmountCents != res.AdvanceCents {
		s.metrics.ObserveConfirmed("amount_mismatch")
		return nil, ErrAmountMismatch
	}

	customer, err := s.catalog.GetCustomer(ctx, res.CustomerID)
	if err != nil {
		return nil, err
	}
	if _, err := s.catalog.GetStaff(ctx, res.StaffID); err != nil {
		return nil, err
	}
	svc, err := s.catalog.GetService(ctx, res.ServiceID)
	if err != nil {
		return nil, err
	}

	appt := &Appointment{
		ID:         uuid.New(),
		CustomerID: customer.ID,
		StaffID:    res.StaffID,
		ServiceID:  svc.ID,
		Date:       res.Date,
		StartTime:  res.StartTime,
		EndTime:    res.EndTime,
		Status:     StatusBooked,
		TotalCents: res.TotalCents,
		Notes:      res.Notes,
	}
	pay := &Payment{
		ID:            uuid.New(),
		AmountCents:   res.AdvanceCents,
		TransactionID: res.TransactionID,
		Method:        res.Method,
		Status:        PaymentSucceeded,
	}

	if err := s.repo.CreateAppointmentWithPayment(ctx, appt, pay); err != nil {
		if errors.Is(err, ErrDuplicateTransaction) {
			s.metrics.ObserveConfirmed("duplicate")
			return nil, ErrDuplicateConfirmation
		}
		return nil, fmt.Errorf("persist appointment: %w", err)
	}

	s.metrics.ObserveConfirmed("confirmed")

	customerID := appt.CustomerID
	start := appt.StartTime
	s.pool.Submit("booking-history", func(taskCtx context.Context) {
		s.tracker.RecordBooking(taskCtx, customerID, start)
	})
	s.publishAsync(notify.EventBookingConfirmed, customerID, map[string]any{
		"appointment_id": appt.ID.String(),
		"staff_id":       appt.StaffID.String(),
		"start_time":     appt.StartTime,
	})

	return appt, nil
}

// CancelAppointment is the customer-initiated booked -> cancelled transition,
// allowed up to and including the cancellation window boundary before start.
func (s *Service) CancelAppointment(ctx context.Context, appointmentID, customerID uuid.UUID) error {
	appt, err := s.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return err
	}

	// Deliberately the same vague error for a wrong owner, so callers
	// cannot probe other customers' appointments.
	if appt.CustomerID != customerID {
		return ErrNotYourAppointment
	}

	if appt.Status == StatusCompleted || appt.Status == StatusCancelled {
		return ErrAlreadyFinalized
	}

	if s.now().After(appt.StartTime.Add(-s.cfg.CancelWindow)) {
		return ErrCancelWindowClosed
	}

	if _, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, appt.Status, StatusCancelled); err != nil {
		return fmt.Errorf("cancel appointment: %w", err)
	}

	s.metrics.ObserveCancelled()
	s.publishAsync(notify.EventBookingCancelled, appt.CustomerID, map[string]any{
		"appointment_id": appt.ID.String(),
		"start_time":     appt.StartTime,
	})

	return nil
}

// UpdateAppointmentStatus is the privileged transition for booked
// appointments: completed, cancelled, or no-show, all terminal. Completion
// settles the total from the service's current price.
func (s *Service) UpdateAppointmentStatus(ctx context.Context, appointmentID uuid.UUID, newStatus AppointmentStatus) error {
	detail, err := s.repo.GetAppointmentDetail(ctx, appointmentID)
	if err != nil {
		return err
	}

	if detail.Status != StatusBooked {
		return ErrInvalidTransition
	}

	var event notify.EventType
	switch newStatus {
	case StatusCompleted:
		event = notify.EventAppointmentCompleted
	case StatusCancelled:
		event = notify.EventBookingCancelled
	case StatusNoShow:
		event = notify.EventAppointmentNoShow
	default:
		return ErrInvalidTransition
	}

	// Completion writes the settled total and the status change in one
	// statement so the appointment can never read completed with the
	// pre-settlement amount still on it.
	if newStatus == StatusCompleted {
		if _, err := s.repo.CompleteAppointment(ctx, detail.ID, detail.Service.PriceCents); err != nil {
			return fmt.Errorf("complete appointment: %w", err)
		}
	} else {
		if _, err := s.repo.UpdateAppointmentStatus(ctx, detail.ID, StatusBooked, newStatus); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
	}

	s.publishAsync(event, detail.CustomerID, map[string]any{
		"appointment_id": detail.ID.String(),
		"status":         string(newStatus),
		"start_time":     detail.StartTime,
	})

	return nil
}

// GetAppointment retrieves a fully hydrated appointment by ID
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	detail, err := s.repo.GetAppointmentDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return detail, nil
}

func (s *Service) publishAsync(event notify.EventType, recipientID uuid.UUID, payload map[string]any) {
	s.pool.Submit("notify", func(taskCtx context.Context) {
		if err := s.publisher.Publish(taskCtx, event, recipientID, payload); err != nil {
			log.Printf("booking: publish %s for %s: %v", event, recipientID, err)
		}
	})
}

// advanceCents computes the advance share of the total, rounded half-up to
// the nearest cent.
func advanceCents(totalCents int64, percent int) int64 {
	return (totalCents*int64(percent) + 50) / 100
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
