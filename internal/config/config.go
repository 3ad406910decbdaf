// Package config loads service settings from the environment. A .env file
// is honored when present (local development), then envconfig populates the
// Config struct and go-playground/validator enforces the declared
// constraints plus a few domain rules envconfig tags cannot express.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`

	// DatabaseURL points at the Postgres instance holding daily observations
	// and analysis runs.
	DatabaseURL string `envconfig:"DATABASE_URL" validate:"required"`

	// Kafka publishing is feature-flagged: without KAFKA_ENABLED the service
	// runs analysis and persistence only.
	KafkaEnabled     bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaBrokers     []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaEventsTopic string   `envconfig:"KAFKA_EVENTS_TOPIC" default:"climate-wave-events"`

	// Detection defaults, used when a request leaves them unset.
	DefaultWindowSize int `envconfig:"DEFAULT_WINDOW_SIZE" default:"15" validate:"gte=1"`
}

// Load reads configuration from the environment, applying defaults where
// unset. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if cfg.DefaultWindowSize%2 == 0 {
		return nil, fmt.Errorf("DEFAULT_WINDOW_SIZE must be odd, got %d", cfg.DefaultWindowSize)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaEventsTopic == "" {
		return nil, fmt.Errorf("KAFKA_ENABLED is true but KAFKA_EVENTS_TOPIC is empty")
	}

	return &cfg, nil
}
