package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrServiceNotFound  = errors.New("service not found")
	ErrStaffNotFound    = errors.New("staff not found")
	ErrCustomerNotFound = errors.New("customer not found")
)

// Repository contains the catalog reads the scheduler needs. The per-date
// lookups are grouped so availability computation issues one query per
// concern, not one per staff member.
type Repository interface {
	GetService(ctx context.Context, id uuid.UUID) (*Service, error)
	GetStaff(ctx context.Context, id uuid.UUID) (*Staff, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error)

	// StaffForService returns every staff member assigned to the service,
	// in a stable order.
	StaffForService(ctx context.Context, serviceID uuid.UUID) ([]Staff, error)

	WorkingHoursForStaff(ctx context.Context, staffIDs []uuid.UUID, weekday time.Weekday) (map[uuid.UUID]WorkingHours, error)
	LeavesForStaff(ctx context.Context, staffIDs []uuid.UUID, date time.Time) (map[uuid.UUID]Leave, error)
}
