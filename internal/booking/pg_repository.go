package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/glowdesk/salon-scheduling/internal/catalog"
	"github.com/glowdesk/salon-scheduling/internal/scheduling"
)

const uniqueViolation = "23505"

// DB is the subset of pgxpool.Pool the repository uses. Declared as an
// interface so tests can substitute a mock pool.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type PgRepository struct {
	db DB
}

func NewPgRepository(db DB) *PgRepository {
	return &PgRepository{db: db}
}

// Helpers

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var paymentID *uuid.UUID

	err := row.Scan(
		&a.ID,
		&a.CustomerID,
		&a.StaffID,
		&a.ServiceID,
		&a.Date,
		&a.StartTime,
		&a.EndTime,
		&a.Status,
		&a.TotalCents,
		&paymentID,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.PaymentID = paymentID
	return &a, nil
}

const appointmentColumns = `
	id, customer_id, staff_id, service_id, date, start_time, end_time,
	status, total_cents, payment_id, notes, created_at, updated_at`

// Interface methods

func (r *PgRepository) BusyIntervals(ctx context.Context, staffIDs []uuid.UUID, date time.Time) (map[uuid.UUID][]scheduling.Interval, error) {
	rows, err := r.db.Query(ctx, `
		SELECT staff_id, start_time, end_time
		FROM appointments
		WHERE staff_id = ANY($1)
		  AND date = $2
		  AND status NOT IN ('cancelled', 'no_show')
		ORDER BY staff_id, start_time
	`, staffIDs, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]scheduling.Interval)
	for rows.Next() {
		var staffID uuid.UUID
		var iv scheduling.Interval
		if err := rows.Scan(&staffID, &iv.Start, &iv.End); err != nil {
			return nil, err
		}
		result[staffID] = append(result[staffID], iv)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) HasOverlappingAppointment(ctx context.Context, staffID uuid.UUID, date, start, end time.Time) (bool, error) {
	var exists bool

	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM appointments
			WHERE staff_id = $1
			  AND date = $2
			  AND status NOT IN ('cancelled', 'no_show')
			  AND start_time < $4
			  AND $3 < end_time
		)
	`, staffID, date, start, end).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) GetAppointmentDetail(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	row := r.db.QueryRow(ctx, `
		SELECT a.id, a.customer_id, a.staff_id, a.service_id, a.date,
		       a.start_time, a.end_time, a.status, a.total_cents, a.payment_id,
		       a.notes, a.created_at, a.updated_at,
		       c.id, c.name, c.email, c.created_at, c.updated_at,
		       st.id, st.name, st.role, st.created_at, st.updated_at,
		       sv.id, sv.name, sv.price_cents, sv.duration_minutes, sv.category,
		       sv.active, sv.created_at, sv.updated_at
		FROM appointments a
		JOIN customers c ON c.id = a.customer_id
		JOIN staff st ON st.id = a.staff_id
		JOIN services sv ON sv.id = a.service_id
		WHERE a.id = $1
	`, id)

	var d AppointmentDetail
	var cust catalog.Customer
	var st catalog.Staff
	var svc catalog.Service

	err := row.Scan(
		&d.ID, &d.CustomerID, &d.StaffID, &d.ServiceID, &d.Date,
		&d.StartTime, &d.EndTime, &d.Status, &d.TotalCents, &d.PaymentID,
		&d.Notes, &d.CreatedAt, &d.UpdatedAt,
		&cust.ID, &cust.Name, &cust.Email, &cust.CreatedAt, &cust.UpdatedAt,
		&st.ID, &st.Name, &st.Role, &st.CreatedAt, &st.UpdatedAt,
		&svc.ID, &svc.Name, &svc.PriceCents, &svc.DurationMinutes, &svc.Category,
		&svc.Active, &svc.CreatedAt, &svc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	d.Customer = &cust
	d.Staff = &st
	d.Service = &svc
	return &d, nil
}

func (r *PgRepository) GetPaymentByTransactionID(ctx context.Context, transactionID string) (*Payment, error) {
	var p Payment

	err := r.db.QueryRow(ctx, `
		SELECT id, amount_cents, transaction_id, method, status, created_at
		FROM payments
		WHERE transaction_id = $1
	`, transactionID).Scan(&p.ID, &p.AmountCents, &p.TransactionID, &p.Method, &p.Status, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *PgRepository) CreateAppointmentWithPayment(ctx context.Context, appt *Appointment, pay *Payment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO payments (id, amount_cents, transaction_id, method, status, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`, pay.ID, pay.AmountCents, pay.TransactionID, pay.Method, pay.Status)
	if err != nil {
		return mapUniqueViolation(err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO appointments
			(id, customer_id, staff_id, service_id, date, start_time, end_time,
			 status, total_cents, payment_id, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
	`, appt.ID, appt.CustomerID, appt.StaffID, appt.ServiceID, appt.Date,
		appt.StartTime, appt.EndTime, appt.Status, appt.TotalCents, pay.ID, appt.Notes)
	if err != nil {
		return mapUniqueViolation(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	paymentID := pay.ID
	appt.PaymentID = &paymentID
	return nil
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+appointmentColumns+`
	`, id, to, from)

	return scanAppointment(row)
}

func (r *PgRepository) CompleteAppointment(ctx context.Context, id uuid.UUID, totalCents int64) (*Appointment, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'completed',
		    total_cents = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = 'booked'
		RETURNING `+appointmentColumns+`
	`, id, totalCents)

	return scanAppointment(row)
}

// mapUniqueViolation translates the integrity backstops into domain errors:
// a reused transaction id or a concurrently-taken staff slot.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "payments_transaction_id_key":
			return ErrDuplicateTransaction
		case "appointments_staff_slot_key":
			return ErrSlotTaken
		}
	}
	return err
}
