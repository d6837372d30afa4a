package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return NewWithHandler(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestGetLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, getLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, getLogLevel("warning"))
	assert.Equal(t, slog.LevelError, getLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, getLogLevel(""))
}

func TestLogSweepCompleted(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	l.LogSweepCompleted(context.Background(), []int64{4, 9}, 20*time.Millisecond)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Expiry Sweep Completed", entry["msg"])
	assert.EqualValues(t, 2, entry["cancelled_count"])
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf).WithRequestID("req-1").WithError(errors.New("smtp down"))

	l.LogNotificationFailed(context.Background(), "a@b.c", "Booking cancelled", errors.New("timeout"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "a@b.c", entry["recipient"])
	assert.Equal(t, "WARN", entry["level"])
}
