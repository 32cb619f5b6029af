// Package logger provides structured logging built on zerolog. It sets up
// a JSON logger with service-level context and propagates a per-evaluation
// run ID through context.Context.
package logger

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ctxKey string

const runIDKey ctxKey = "run_id"

// Init creates and returns a structured logger for the given service.
// The logger outputs JSON to stdout with the service name embedded.
func Init(service string, level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", service).
		Logger()

	// Default context logger so zerolog's Ctx helper resolves too.
	zerolog.DefaultContextLogger = &logger

	return logger
}

// ParseLevel maps a config string to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// WithRunID stores an evaluation run ID in the context for downstream
// propagation.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunID extracts the run ID from context. Returns "" if not set.
func RunID(ctx context.Context) string {
	if v, ok := ctx.Value(runIDKey).(string); ok {
		return v
	}
	return ""
}

// NewRunID creates a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// FromContext returns a logger carrying the context's run ID, falling back
// to base when none is set.
func FromContext(ctx context.Context, base zerolog.Logger) zerolog.Logger {
	if rid := RunID(ctx); rid != "" {
		return base.With().Str("run_id", rid).Logger()
	}
	return base
}
