package observability_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/svelte-expert/internal/observability"
)

func TestLoggerFromContextAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	observability.Configure("debug", "json", &buf)

	ctx := observability.WithRequestID(context.Background(), "req-42")
	observability.LoggerFromContext(ctx).Info("hello")

	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
	assert.Equal(t, "req-42", observability.RequestIDFromContext(ctx))
}

func TestConfigureTextLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	observability.Configure("warn", "text", &buf)

	observability.Logger().Info("dropped")
	observability.Logger().Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestLoggerFromContextAddsSessionID(t *testing.T) {
	var buf bytes.Buffer
	observability.Configure("info", "json", &buf)

	ctx := observability.WithSessionID(context.Background(), "s-1")
	observability.LoggerFromContext(ctx).Info("hello")

	assert.Contains(t, buf.String(), `"session_id":"s-1"`)
	assert.NotContains(t, buf.String(), "request_id")
}
