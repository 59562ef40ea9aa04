package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/ryanbastic/padboard/internal/board"
	"github.com/ryanbastic/padboard/internal/model"
)

var configKeys = []string{
	"PORT", "LOG_LEVEL", "STORE_BACKEND", "DATABASE_URL", "QUERY_TIMEOUT",
	"STORE_RETRY_MAX", "STORE_RETRY_BACKOFF", "BREAKER_MAX_FAILURES",
	"BREAKER_RESET_TIMEOUT", "REFERENCE_POLICY", "SHAPE_POLICY", "FIELD_MODE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port: got %q, want %q", cfg.Port, "8080")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel: got %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.StoreBackend != "postgres" {
		t.Errorf("StoreBackend: got %q", cfg.StoreBackend)
	}
	if cfg.QueryTimeout != 5*time.Second {
		t.Errorf("QueryTimeout: got %v", cfg.QueryTimeout)
	}
	if cfg.StoreRetryMax != 3 {
		t.Errorf("StoreRetryMax: got %d", cfg.StoreRetryMax)
	}
	if cfg.ReferencePolicy != "refuse" || cfg.ShapePolicy != "enforce" || cfg.FieldMode != "strict" {
		t.Errorf("policies: got %q %q %q", cfg.ReferencePolicy, cfg.ShapePolicy, cfg.FieldMode)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("STORE_RETRY_BACKOFF", "50ms")
	t.Setenv("BREAKER_MAX_FAILURES", "2")
	t.Setenv("REFERENCE_POLICY", "cascade")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port: got %q", cfg.Port)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel: got %v", cfg.SlogLevel())
	}
	if cfg.StoreRetryBackoff != 50*time.Millisecond {
		t.Errorf("StoreRetryBackoff: got %v", cfg.StoreRetryBackoff)
	}
	if cfg.BreakerMaxFailures != 2 {
		t.Errorf("BreakerMaxFailures: got %d", cfg.BreakerMaxFailures)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate_PostgresNeedsDatabaseURL(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for postgres backend without DATABASE_URL")
	}

	cfg.DatabaseURL = "postgres://localhost/padboard"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate_RejectsUnknownValues(t *testing.T) {
	clearEnv(t)
	base := Load()
	base.StoreBackend = "memory"

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"backend", func(c *Config) { c.StoreBackend = "sqlite" }},
		{"reference policy", func(c *Config) { c.ReferencePolicy = "ignore" }},
		{"shape policy", func(c *Config) { c.ShapePolicy = "maybe" }},
		{"field mode", func(c *Config) { c.FieldMode = "lenient" }},
		{"port", func(c *Config) { c.Port = "http" }},
		{"breaker failures", func(c *Config) { c.BreakerMaxFailures = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestBoardOptions(t *testing.T) {
	cfg := Config{ReferencePolicy: "cascade", ShapePolicy: "warn", FieldMode: "relaxed"}
	opts, err := cfg.BoardOptions()
	if err != nil {
		t.Fatalf("BoardOptions: %v", err)
	}
	want := board.Options{References: board.CascadeUnassign, Shapes: board.WarnDuplicateShapes, Fields: model.RelaxedFields}
	if opts != want {
		t.Errorf("got %+v, want %+v", opts, want)
	}
	if opts.StoreOptions().UniqueCustomShapes {
		t.Error("warn policy should not enforce unique shapes in storage")
	}
}

func TestGetEnvInt_Invalid_ReturnsFallback(t *testing.T) {
	t.Setenv("TEST_INT_INVALID", "not_a_number")

	if got := getEnvInt("TEST_INT_INVALID", 7); got != 7 {
		t.Errorf("got %d, want fallback %d", got, 7)
	}
}

func TestGetEnvDuration_Invalid_ReturnsFallback(t *testing.T) {
	t.Setenv("TEST_DUR_INVALID", "not_a_duration")

	if got := getEnvDuration("TEST_DUR_INVALID", 10*time.Millisecond); got != 10*time.Millisecond {
		t.Errorf("got %v, want fallback %v", got, 10*time.Millisecond)
	}
}
