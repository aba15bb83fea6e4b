package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DB is the subset of pgxpool.Pool the repository uses. Declared as an
// interface so tests can substitute a mock pool.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgRepository struct {
	db DB
}

func NewPgRepository(db DB) *PgRepository {
	return &PgRepository{db: db}
}

// Helpers

func scanService(row pgx.Row) (*Service, error) {
	var s Service

	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.PriceCents,
		&s.DurationMinutes,
		&s.Category,
		&s.Active,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	return &s, nil
}

func scanStaff(row pgx.Row) (*Staff, error) {
	var st Staff
	var role *string

	err := row.Scan(
		&st.ID,
		&st.Name,
		&role,
		&st.CreatedAt,
		&st.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}

	st.Role = role
	return &st, nil
}

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	var email *string

	err := row.Scan(
		&c.ID,
		&c.Name,
		&email,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	c.Email = email
	return &c, nil
}

// Interface methods

func (r *PgRepository) GetService(ctx context.Context, id uuid.UUID) (*Service, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, price_cents, duration_minutes, category, active, created_at, updated_at
		FROM services
		WHERE id = $1
	`, id)
	return scanService(row)
}

func (r *PgRepository) GetStaff(ctx context.Context, id uuid.UUID) (*Staff, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, role, created_at, updated_at
		FROM staff
		WHERE id = $1
	`, id)
	return scanStaff(row)
}

func (r *PgRepository) GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, email, created_at, updated_at
		FROM customers
		WHERE id = $1
	`, id)
	return scanCustomer(row)
}

func (r *PgRepository) StaffForService(ctx context.Context, serviceID uuid.UUID) ([]Staff, error) {
	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.name, s.role, s.created_at, s.updated_at
		FROM staff s
		JOIN staff_services ss ON ss.staff_id = s.id
		WHERE ss.service_id = $1
		ORDER BY s.created_at, s.id
	`, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Staff
	for rows.Next() {
		st, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *st)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) WorkingHoursForStaff(ctx context.Context, staffIDs []uuid.UUID, weekday time.Weekday) (map[uuid.UUID]WorkingHours, error) {
	rows, err := r.db.Query(ctx, `
		SELECT staff_id, weekday, is_working_day, start_minute, end_minute
		FROM working_hours
		WHERE staff_id = ANY($1) AND weekday = $2
	`, staffIDs, int(weekday))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[uuid.UUID]WorkingHours, len(staffIDs))
	for rows.Next() {
		var wh WorkingHours
		var wd int
		if err := rows.Scan(&wh.StaffID, &wd, &wh.IsWorkingDay, &wh.StartMinute, &wh.EndMinute); err != nil {
			return nil, err
		}
		wh.Weekday = time.Weekday(wd)
		result[wh.StaffID] = wh
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) LeavesForStaff(ctx context.Context, staffIDs []uuid.UUID, date time.Time) (map[uuid.UUID]Leave, error) {
	rows, err := r.db.Query(ctx, `
		SELECT staff_id, leave_date, start_minute, end_minute
		FROM leaves
		WHERE staff_id = ANY($1) AND leave_date = $2
	`, staffIDs, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[uuid.UUID]Leave)
	for rows.Next() {
		var l Leave
		if err := rows.Scan(&l.StaffID, &l.Date, &l.StartMinute, &l.EndMinute); err != nil {
			return nil, err
		}
		result[l.StaffID] = l
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
