package logger

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	log := Init("test-service", zerolog.InfoLevel)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	// Unknown or empty strings fall back to info.
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("chatty"))
}

func TestRunID_RoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RunID(ctx))

	ctx = WithRunID(ctx, "run-123")
	assert.Equal(t, "run-123", RunID(ctx))
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestFromContext(t *testing.T) {
	base := Init("test-service", zerolog.InfoLevel)

	// Without a run ID the base logger comes back unchanged.
	got := FromContext(context.Background(), base)
	assert.Equal(t, base.GetLevel(), got.GetLevel())

	ctx := WithRunID(context.Background(), "run-abc")
	got = FromContext(ctx, base)
	assert.Equal(t, base.GetLevel(), got.GetLevel())
}
