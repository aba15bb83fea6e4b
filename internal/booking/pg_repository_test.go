package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*PgRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPgRepository(mock), mock
}

func TestPgRepository_GetPaymentByTransactionID(t *testing.T) {
	repo, mock := newMockRepo(t)
	txID := uuid.NewString()

	rows := pgxmock.NewRows([]string{"id", "amount_cents", "transaction_id", "method", "status", "created_at"}).
		AddRow(uuid.New(), int64(450), txID, "card", PaymentSucceeded, time.Now())
	mock.ExpectQuery("SELECT id, amount_cents").WithArgs(txID).WillReturnRows(rows)

	p, err := repo.GetPaymentByTransactionID(context.Background(), txID)
	require.NoError(t, err)
	assert.Equal(t, txID, p.TransactionID)
	assert.Equal(t, int64(450), p.AmountCents)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepository_GetPaymentByTransactionID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	txID := uuid.NewString()

	mock.ExpectQuery("SELECT id, amount_cents").WithArgs(txID).WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetPaymentByTransactionID(context.Background(), txID)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestPgRepository_HasOverlappingAppointment(t *testing.T) {
	repo, mock := newMockRepo(t)
	staffID := uuid.New()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
	start := date.Add(10 * time.Hour)
	end := start.Add(30 * time.Minute)

	mock.ExpectQuery("SELECT EXISTS").WithArgs(staffID, date, start, end).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	busy, err := repo.HasOverlappingAppointment(context.Background(), staffID, date, start, end)
	require.NoError(t, err)
	assert.True(t, busy)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepository_BusyIntervals(t *testing.T) {
	repo, mock := newMockRepo(t)
	staffA := uuid.New()
	staffB := uuid.New()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"staff_id", "start_time", "end_time"}).
		AddRow(staffA, date.Add(10*time.Hour), date.Add(10*time.Hour+30*time.Minute)).
		AddRow(staffA, date.Add(14*time.Hour), date.Add(15*time.Hour)).
		AddRow(staffB, date.Add(9*time.Hour), date.Add(9*time.Hour+45*time.Minute))
	mock.ExpectQuery("SELECT staff_id, start_time, end_time").
		WithArgs([]uuid.UUID{staffA, staffB}, date).
		WillReturnRows(rows)

	busy, err := repo.BusyIntervals(context.Background(), []uuid.UUID{staffA, staffB}, date)
	require.NoError(t, err)
	assert.Len(t, busy[staffA], 2)
	assert.Len(t, busy[staffB], 1)
	assert.Equal(t, date.Add(10*time.Hour), busy[staffA][0].Start)
}

func TestPgRepository_CreateAppointmentWithPayment(t *testing.T) {
	repo, mock := newMockRepo(t)
	appt, pay := sampleApptAndPayment()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(pay.ID, pay.AmountCents, pay.TransactionID, pay.Method, pay.Status).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO appointments").
		WithArgs(appt.ID, appt.CustomerID, appt.StaffID, appt.ServiceID, appt.Date,
			appt.StartTime, appt.EndTime, appt.Status, appt.TotalCents, pay.ID, appt.Notes).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateAppointmentWithPayment(context.Background(), appt, pay))
	require.NotNil(t, appt.PaymentID)
	assert.Equal(t, pay.ID, *appt.PaymentID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepository_CreateAppointmentWithPayment_DuplicateTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)
	appt, pay := sampleApptAndPayment()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(pay.ID, pay.AmountCents, pay.TransactionID, pay.Method, pay.Status).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "payments_transaction_id_key"})
	mock.ExpectRollback()

	err := repo.CreateAppointmentWithPayment(context.Background(), appt, pay)
	assert.ErrorIs(t, err, ErrDuplicateTransaction)
}

func TestPgRepository_CreateAppointmentWithPayment_SlotTaken(t *testing.T) {
	repo, mock := newMockRepo(t)
	appt, pay := sampleApptAndPayment()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(pay.ID, pay.AmountCents, pay.TransactionID, pay.Method, pay.Status).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO appointments").
		WithArgs(appt.ID, appt.CustomerID, appt.StaffID, appt.ServiceID, appt.Date,
			appt.StartTime, appt.EndTime, appt.Status, appt.TotalCents, pay.ID, appt.Notes).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "appointments_staff_slot_key"})
	mock.ExpectRollback()

	err := repo.CreateAppointmentWithPayment(context.Background(), appt, pay)
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestPgRepository_UpdateAppointmentStatus_NoMatch(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery("UPDATE appointments").
		WithArgs(id, StatusCancelled, StatusBooked).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.UpdateAppointmentStatus(context.Background(), id, StatusBooked, StatusCancelled)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestPgRepository_CompleteAppointment(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	now := time.Now()
	date := time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

	// Status and settled total land in a single guarded UPDATE.
	rows := pgxmock.NewRows([]string{
		"id", "customer_id", "staff_id", "service_id", "date", "start_time",
		"end_time", "status", "total_cents", "payment_id", "notes", "created_at", "updated_at",
	}).AddRow(id, uuid.New(), uuid.New(), uuid.New(), date, date.Add(10*time.Hour),
		date.Add(10*time.Hour+30*time.Minute), StatusCompleted, int64(5999), nil, "", now, now)
	mock.ExpectQuery("UPDATE appointments").
		WithArgs(id, int64(5999)).
		WillReturnRows(rows)

	appt, err := repo.CompleteAppointment(context.Background(), id, 5999)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, appt.Status)
	assert.Equal(t, int64(5999), appt.TotalCents)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRepository_CompleteAppointment_NotBooked(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery("UPDATE appointments").
		WithArgs(id, int64(5999)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.CompleteAppointment(context.Background(), id, 5999)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func sampleApptAndPayment() (*Appointment, *Payment) {
	start := time.Date(2026, 9, 14, 10, 0, 0, 0, time.UTC)
	appt := &Appointment{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		StaffID:    uuid.New(),
		ServiceID:  uuid.New(),
		Date:       time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		StartTime:  start,
		EndTime:    start.Add(30 * time.Minute),
		Status:     StatusBooked,
		TotalCents: 4999,
	}
	pay := &Payment{
		ID:            uuid.New(),
		AmountCents:   500,
		TransactionID: uuid.NewString(),
		Method:        "card",
		Status:        PaymentSucceeded,
	}
	return appt, pay
}
