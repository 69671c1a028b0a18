package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLogging(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	InitLoggerWithWriter(Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "test-service",
		Version:     "1.0.0",
		Environment: "test",
	}, &buf)

	ctx := WithSessionID(WithRequestID(context.Background(), "req-1"), "sess-1")
	FromContext(ctx).Info("pack opened", "pulls", 10)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "test-service", entry["service"])
	assert.Equal(t, "test", entry["environment"])
	assert.Equal(t, "pack opened", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "sess-1", entry["session_id"])
	assert.Equal(t, float64(10), entry["pulls"])
}

func TestLevelFiltering(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	InitLoggerWithWriter(Config{Level: "warn", Format: "text"}, &buf)
	slog.Info("hidden")
	assert.Empty(t, buf.String())
	slog.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, Config{Level: in}.LogLevel(), in)
	}
}

func TestRequestIDContext(t *testing.T) {
	assert.Equal(t, "", GetRequestID(context.Background()))
	id := GenerateRequestID()
	assert.Len(t, id, 36)
	assert.Equal(t, id, GetRequestID(WithRequestID(context.Background(), id)))
	assert.NotNil(t, FromContext(nil)) //nolint:staticcheck // nil context is tolerated
}
