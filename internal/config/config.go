package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Seating  SeatingConfig
	Venue    VenueConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Database DatabaseConfig
	Payment  PaymentConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type SeatingConfig struct {
	// EventID is the event instance this deployment serves by default.
	// Additional events can be created through the admin API.
	EventID       string
	HoldTTL       time.Duration
	SweepInterval time.Duration
}

type VenueConfig struct {
	Rows              int
	SeatsPerRow       int
	PremiumRows       []string
	DefaultPriceCents int64
	PremiumPriceCents int64
}

type RedisConfig struct {
	Addr    string
	Enabled bool
}

type KafkaConfig struct {
	Brokers []string
	Enabled bool
	Topics  TopicConfig
}

type TopicConfig struct {
	SeatStatus     string
	Sales          string
	Reconciliation string
}

type DatabaseConfig struct {
	Path string
}

type PaymentConfig struct {
	StripeSecretKey string
	Currency        string
}

type AuthConfig struct {
	JWTSecret string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Seating: SeatingConfig{
			EventID:       getEnv("EVENT_ID", "event-1"),
			HoldTTL:       time.Duration(getEnvInt("HOLD_TTL_MINUTES", 5)) * time.Minute,
			SweepInterval: time.Duration(getEnvInt("SWEEP_INTERVAL_SECONDS", 20)) * time.Second,
		},
		Venue: VenueConfig{
			Rows:              getEnvInt("VENUE_ROWS", 10),
			SeatsPerRow:       getEnvInt("VENUE_SEATS_PER_ROW", 12),
			PremiumRows:       splitList(getEnv("VENUE_PREMIUM_ROWS", "A,B")),
			DefaultPriceCents: int64(getEnvInt("VENUE_DEFAULT_PRICE_CENTS", 2500)),
			PremiumPriceCents: int64(getEnvInt("VENUE_PREMIUM_PRICE_CENTS", 5000)),
		},
		Redis: RedisConfig{
			Addr:    getEnv("REDIS_ADDR", "localhost:6379"),
			Enabled: getEnvBool("REDIS_ENABLED", true),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Enabled: getEnvBool("KAFKA_ENABLED", true),
			Topics: TopicConfig{
				SeatStatus:     getEnv("KAFKA_TOPIC_SEATS", "seat-status-events"),
				Sales:          getEnv("KAFKA_TOPIC_SALES", "sale-events"),
				Reconciliation: getEnv("KAFKA_TOPIC_RECONCILIATION", "reconciliation-needed"),
			},
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "tessera.db"),
		},
		Payment: PaymentConfig{
			StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			Currency:        getEnv("PAYMENT_CURRENCY", "usd"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}
