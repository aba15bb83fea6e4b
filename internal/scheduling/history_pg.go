package scheduling

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// HistoryDB is the subset of pgxpool.Pool the history repository uses.
type HistoryDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PgHistoryRepository struct {
	db HistoryDB
}

func NewPgHistoryRepository(db HistoryDB) *PgHistoryRepository {
	return &PgHistoryRepository{db: db}
}

func (r *PgHistoryRepository) GetHistory(ctx context.Context, customerID uuid.UUID) (*UserBookingHistory, error) {
	var h UserBookingHistory

	err := r.db.QueryRow(ctx, `
		SELECT customer_id, morning_count, afternoon_count, evening_count,
		       avg_booking_minute, total_bookings, updated_at
		FROM user_booking_history
		WHERE customer_id = $1
	`, customerID).Scan(
		&h.CustomerID,
		&h.MorningCount,
		&h.AfternoonCount,
		&h.EveningCount,
		&h.AvgBookingMinute,
		&h.TotalBookings,
		&h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHistoryNotFound
		}
		return nil, err
	}

	return &h, nil
}

func (r *PgHistoryRepository) UpsertHistory(ctx context.Context, h UserBookingHistory) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_booking_history
			(customer_id, morning_count, afternoon_count, evening_count,
			 avg_booking_minute, total_bookings, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (customer_id) DO UPDATE SET
			morning_count = EXCLUDED.morning_count,
			afternoon_count = EXCLUDED.afternoon_count,
			evening_count = EXCLUDED.evening_count,
			avg_booking_minute = EXCLUDED.avg_booking_minute,
			total_bookings = EXCLUDED.total_bookings,
			updated_at = now()
	`, h.CustomerID, h.MorningCount, h.AfternoonCount, h.EveningCount, h.AvgBookingMinute, h.TotalBookings)

	return err
}
