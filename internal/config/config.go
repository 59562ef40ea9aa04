package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ryanbastic/padboard/internal/board"
	"github.com/ryanbastic/padboard/internal/model"
)

type Config struct {
	Port         string `validate:"required,numeric"`
	LogLevel     string `validate:"oneof=debug info warn error"`
	StoreBackend string `validate:"oneof=postgres memory"`
	DatabaseURL  string `validate:"required_if=StoreBackend postgres"`

	// Postgres transactions
	QueryTimeout      time.Duration `validate:"gte=0"`
	StoreRetryMax     int           `validate:"gte=0,lte=10"`
	StoreRetryBackoff time.Duration `validate:"gte=0"`

	// Store circuit breaker
	BreakerMaxFailures  int           `validate:"gte=1"`
	BreakerResetTimeout time.Duration `validate:"gt=0"`

	// Domain policies
	ReferencePolicy string `validate:"oneof=refuse cascade"`
	ShapePolicy     string `validate:"oneof=enforce warn"`
	FieldMode       string `validate:"oneof=strict relaxed"`
}

func Load() Config {
	return Config{
		Port:                getEnv("PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		StoreBackend:        getEnv("STORE_BACKEND", "postgres"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		QueryTimeout:        getEnvDuration("QUERY_TIMEOUT", 5*time.Second),
		StoreRetryMax:       getEnvInt("STORE_RETRY_MAX", 3),
		StoreRetryBackoff:   getEnvDuration("STORE_RETRY_BACKOFF", 20*time.Millisecond),
		BreakerMaxFailures:  getEnvInt("BREAKER_MAX_FAILURES", 5),
		BreakerResetTimeout: getEnvDuration("BREAKER_RESET_TIMEOUT", 10*time.Second),
		ReferencePolicy:     getEnv("REFERENCE_POLICY", "refuse"),
		ShapePolicy:         getEnv("SHAPE_POLICY", "enforce"),
		FieldMode:           getEnv("FIELD_MODE", "strict"),
	}
}

// Validate checks every field against its validate tag.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// BoardOptions converts the policy settings into service options.
func (c Config) BoardOptions() (board.Options, error) {
	var (
		opts board.Options
		err  error
	)
	if opts.References, err = board.ParseReferencePolicy(c.ReferencePolicy); err != nil {
		return opts, err
	}
	if opts.Shapes, err = board.ParseShapePolicy(c.ShapePolicy); err != nil {
		return opts, err
	}
	if opts.Fields, err = model.ParseFieldMode(c.FieldMode); err != nil {
		return opts, err
	}
	return opts, nil
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "error", err)
			return fallback
		}
		return n
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "error", err)
			return fallback
		}
		return d
	}
	return fallback
}
