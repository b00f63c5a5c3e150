package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"tessera/internal/api"
	"tessera/internal/auth"
	"tessera/internal/checkout"
	"tessera/internal/config"
	"tessera/internal/kafka"
	"tessera/internal/logger"
	"tessera/internal/models"
	"tessera/internal/sales"
	"tessera/internal/seating"
	seatredis "tessera/internal/seating/redis"
	"tessera/internal/sse"
	"tessera/internal/tickets"
)

func openDatabase(ctx context.Context, path string, appLogger *logger.Logger) *bun.DB {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		appLogger.Fatal("DATABASE", fmt.Sprintf("Failed to open SQLite at %s: %v", path, err))
	}
	if err := sqldb.PingContext(ctx); err != nil {
		appLogger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to SQLite: %v", err))
	}
	appLogger.LogDatabase("CONNECT", "sqlite", fmt.Sprintf("ready at %s", path))

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	if err := sales.Migrate(ctx, bunDB); err != nil {
		appLogger.Fatal("DATABASE", fmt.Sprintf("Migration failed: %v", err))
	}
	return bunDB
}

func main() {
	_ = godotenv.Load() // Loads .env file if present

	cfg := config.Load()
	appLogger := logger.New("seating-service")
	defer appLogger.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Database Setup ---
	bunDB := openDatabase(ctx, cfg.Database.Path, appLogger)
	defer bunDB.Close()
	salesDB := &sales.DB{Bun: bunDB}

	// --- Redis Setup (hold mirror) ---
	var mirror seating.HoldMirror
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			appLogger.Warn("REDIS", fmt.Sprintf("Redis unreachable at %s, running without hold mirror: %v", cfg.Redis.Addr, err))
		} else {
			appLogger.Info("REDIS", fmt.Sprintf("Connected to %s", cfg.Redis.Addr))
			mirror = seatredis.NewMirror(redisClient, appLogger)
		}
		defer redisClient.Close()
	}

	// --- Kafka Setup ---
	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		topics := kafka.Topics{
			SeatStatus:     cfg.Kafka.Topics.SeatStatus,
			Sales:          cfg.Kafka.Topics.Sales,
			Reconciliation: cfg.Kafka.Topics.Reconciliation,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{topics.SeatStatus, topics.Sales, topics.Reconciliation}); err != nil {
			appLogger.Warn("KAFKA", fmt.Sprintf("Could not ensure topics: %v", err))
		}
		producer = kafka.NewProducer(cfg.Kafka.Brokers, topics, appLogger)
		defer producer.Close()
	}

	// --- Seating Core ---
	emitter := sse.NewSeatEventEmitter()
	publishers := []seating.EventPublisher{emitter}
	if producer != nil {
		publishers = append(publishers, producer)
	}

	registry := seating.NewRegistry(cfg.Seating.HoldTTL, mirror, appLogger, publishers...)
	if _, err := registry.CreateEvent(cfg.Seating.EventID, models.VenueSpec{
		Rows:              cfg.Venue.Rows,
		SeatsPerRow:       cfg.Venue.SeatsPerRow,
		PremiumRows:       cfg.Venue.PremiumRows,
		DefaultPriceCents: cfg.Venue.DefaultPriceCents,
		PremiumPriceCents: cfg.Venue.PremiumPriceCents,
	}); err != nil {
		appLogger.Fatal("REGISTRY", fmt.Sprintf("Failed to seed event %s: %v", cfg.Seating.EventID, err))
	}

	sweeper := seating.NewSweeper(registry, cfg.Seating.SweepInterval, appLogger)
	go sweeper.Run(ctx)

	// --- Checkout ---
	checkout.InitStripe()
	gateway := checkout.NewStripeGateway(cfg.Payment.Currency, appLogger)
	issuer := tickets.NewIssuer(tickets.NewQRGenerator(cfg.Auth.JWTSecret))

	var salePublisher checkout.SalePublisher
	if producer != nil {
		salePublisher = producer
	}
	coordinator := checkout.NewCoordinator(gateway, salesDB, issuer, salePublisher, appLogger)

	// --- Router ---
	handler := &api.Handler{
		Registry:    registry,
		Coordinator: coordinator,
		Emitter:     emitter,
		Logger:      appLogger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Route("/api/v1", func(r chi.Router) {
		handler.RegisterRoutes(r, auth.Middleware(cfg.Auth.JWTSecret))
	})

	server := &http.Server{
		Addr:        cfg.Server.Port,
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.IdleTimeout,
		// No WriteTimeout: the SSE stream endpoint holds its response open.
	}

	go func() {
		appLogger.Info("SERVER", fmt.Sprintf("Seating service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	appLogger.Info("SERVER", "Shutdown signal received")

	cancel() // stops the sweeper

	ctxShutdown, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(ctxShutdown)
	appLogger.Info("SERVER", "Seating service shutdown complete")
}
