package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/glowdesk/salon-scheduling/internal/booking"
	"github.com/glowdesk/salon-scheduling/internal/metrics"
	"github.com/glowdesk/salon-scheduling/internal/payment"
	"github.com/glowdesk/salon-scheduling/internal/scheduling"
)

type RouterConfig struct {
	Booking     *booking.Service
	Calculator  *scheduling.Calculator
	Recommender *scheduling.Recommender
	Stripe      *payment.StripeGateway
	Metrics     *metrics.BookingMetrics
	Registry    *prometheus.Registry
	PgPool      *pgxpool.Pool
	Redis       *redis.Client
	Env         string
	Version     string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	if cfg.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))
	}

	r.Get("/availability", availabilityHandler(cfg.Calculator, cfg.Metrics))
	r.Get("/recommendations", recommendationsHandler(cfg.Recommender))

	r.Post("/bookings", createBookingHandler(cfg.Booking))
	r.Post("/bookings/confirm", confirmBookingHandler(cfg.Booking))
	if cfg.Stripe != nil {
		r.Post("/payments/stripe/webhook", stripeWebhookHandler(cfg.Stripe, cfg.Booking))
	}

	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Booking))
	r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Booking))
	r.Post("/appointments/{id}/status", updateStatusHandler(cfg.Booking))

	return r
}
