package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glowdesk/salon-scheduling/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	serviceIDs, err := seedServices(context.Background(), pool)
	if err != nil {
		log.Fatalf("seed services: %v", err)
	}
	staffIDs, err := seedStaff(context.Background(), pool, 20, serviceIDs)
	if err != nil {
		log.Fatalf("seed staff: %v", err)
	}
	if err := seedWorkingHours(context.Background(), pool, staffIDs); err != nil {
		log.Fatalf("seed working hours: %v", err)
	}
	if err := seedCustomers(context.Background(), pool, 500); err != nil {
		log.Fatalf("seed customers: %v", err)
	}

	log.Println("seed complete")
}

type seedService struct {
	name     string
	cents    int64
	duration int
	category string
}

func seedServices(ctx context.Context, pool *pgxpool.Pool) ([]uuid.UUID, error) {
	services := []seedService{
		{"Classic Haircut", 4500, 30, "Hair"},
		{"Cut & Blow Dry", 7500, 45, "Hair"},
		{"Full Colour", 12000, 90, "Hair"},
		{"Highlights", 14000, 120, "Hair"},
		{"Beard Trim", 2500, 15, "Barber"},
		{"Hot Towel Shave", 4000, 30, "Barber"},
		{"Classic Manicure", 3500, 30, "Nails"},
		{"Gel Pedicure", 5500, 45, "Nails"},
		{"Deep Cleanse Facial", 8500, 60, "Skin"},
		{"Relaxing Massage", 9500, 60, "Body"},
	}

	log.Printf("seeding %d services", len(services))

	ids := make([]uuid.UUID, 0, len(services))
	for _, svc := range services {
		id := uuid.New()
		_, err := pool.Exec(ctx, `
			INSERT INTO services (id, name, price_cents, duration_minutes, category, active)
			VALUES ($1, $2, $3, $4, $5, true)
		`, id, svc.name, svc.cents, svc.duration, svc.category)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func seedStaff(ctx context.Context, pool *pgxpool.Pool, count int, serviceIDs []uuid.UUID) ([]uuid.UUID, error) {
	log.Printf("seeding %d staff", count)

	roles := []string{"Stylist", "Senior Stylist", "Barber", "Nail Technician", "Beautician"}

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		role := roles[gofakeit.Number(0, len(roles)-1)]

		_, err := pool.Exec(ctx, `
			INSERT INTO staff (id, name, role) VALUES ($1, $2, $3)
		`, id, gofakeit.Name(), role)
		if err != nil {
			return nil, err
		}

		// Each staff member covers a random handful of services.
		assigned := gofakeit.Number(2, 5)
		if assigned > len(serviceIDs) {
			assigned = len(serviceIDs)
		}
		perm := indexes(len(serviceIDs))
		gofakeit.ShuffleInts(perm)
		for _, svcIdx := range perm[:assigned] {
			_, err := pool.Exec(ctx, `
				INSERT INTO staff_services (staff_id, service_id) VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, id, serviceIDs[svcIdx])
			if err != nil {
				return nil, err
			}
		}

		ids = append(ids, id)
	}

	return ids, nil
}

func seedWorkingHours(ctx context.Context, pool *pgxpool.Pool, staffIDs []uuid.UUID) error {
	log.Printf("seeding working hours for %d staff", len(staffIDs))

	for _, id := range staffIDs {
		dayOff := gofakeit.Number(0, 6)
		for weekday := 0; weekday < 7; weekday++ {
			working := weekday != dayOff
			start := 9 * 60
			end := 18 * 60
			if weekday == 0 || weekday == 6 {
				start = 10 * 60
				end = 16 * 60
			}

			_, err := pool.Exec(ctx, `
				INSERT INTO working_hours (staff_id, weekday, is_working_day, start_minute, end_minute)
				VALUES ($1, $2, $3, $4, $5)
			`, id, weekday, working, start, end)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func seedCustomers(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d customers", count)

	for i := 0; i < count; i++ {
		email := gofakeit.Email()
		_, err := pool.Exec(ctx, `
			INSERT INTO customers (id, name, email) VALUES ($1, $2, $3)
		`, uuid.New(), gofakeit.Name(), email)
		if err != nil {
			return err
		}
	}

	return nil
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
