package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/glowdesk/salon-scheduling/internal/api"
	"github.com/glowdesk/salon-scheduling/internal/booking"
	"github.com/glowdesk/salon-scheduling/internal/catalog"
	"github.com/glowdesk/salon-scheduling/internal/config"
	"github.com/glowdesk/salon-scheduling/internal/db"
	"github.com/glowdesk/salon-scheduling/internal/metrics"
	"github.com/glowdesk/salon-scheduling/internal/notify"
	"github.com/glowdesk/salon-scheduling/internal/payment"
	redisclient "github.com/glowdesk/salon-scheduling/internal/redis"
	"github.com/glowdesk/salon-scheduling/internal/scheduling"
	"github.com/glowdesk/salon-scheduling/internal/tasks"
)

const version = "0.3.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s", cfg.Env, cfg.HTTPPort)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connection error: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
	}()
	log.Println("connected to Redis")

	catalogRepo := catalog.NewPgRepository(pgPool)
	bookingRepo := booking.NewPgRepository(pgPool)
	historyRepo := scheduling.NewPgHistoryRepository(pgPool)

	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)

	calculator := scheduling.NewCalculator(catalogRepo, bookingRepo, cfg.SlotGranularity, cfg.SameDayLeadBuffer)
	scorer := scheduling.NewScorer(cfg.MaxDailyCap)
	recommender := scheduling.NewRecommender(calculator, scorer, historyRepo, cfg.TopRecommendations)
	tracker := scheduling.NewTracker(historyRepo)

	pool := tasks.NewPool(2, 128, 10*time.Second)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := pool.Close(closeCtx); err != nil {
			log.Printf("task pool drain: %v", err)
		}
	}()

	var publisher notify.Publisher = notify.NewRedisPublisher(rdb)

	var gateway payment.Gateway
	var stripeGateway *payment.StripeGateway
	if cfg.StripeSecretKey != "" {
		stripeGateway = payment.NewStripeGateway(payment.StripeConfig{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			SuccessURL:    cfg.CheckoutSuccessURL,
			CancelURL:     cfg.CheckoutCancelURL,
		})
		gateway = stripeGateway
		log.Println("stripe gateway enabled")
	} else if cfg.Env == "dev" {
		gateway = payment.NewFakeGateway("http://localhost:" + cfg.HTTPPort)
		log.Println("no stripe key configured, using fake gateway")
	} else {
		log.Fatal("STRIPE_SECRET_KEY is required outside dev")
	}

	cache := booking.NewRedisReservationCache(rdb)
	locker := redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL)
	bookingSvc := booking.NewService(bookingRepo, catalogRepo, cache, locker, gateway, publisher, tracker, pool, bookingMetrics, cfg)

	handler := api.NewRouter(api.RouterConfig{
		Booking:     bookingSvc,
		Calculator:  calculator,
		Recommender: recommender,
		Stripe:      stripeGateway,
		Metrics:     bookingMetrics,
		Registry:    registry,
		PgPool:      pgPool,
		Redis:       rdb,
		Env:         cfg.Env,
		Version:     version,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()

	log.Println("shutting down api-server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
}
