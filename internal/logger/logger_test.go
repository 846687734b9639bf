package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}

func TestJSONOutsideDev(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod", "info")
	log.Debug("hidden")
	log.Info("booking created", slog.Uint64("booking_id", 7))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "booking created", rec["msg"])
	assert.Equal(t, float64(7), rec["booking_id"])
	assert.Equal(t, "yacht-charter", rec["service"])
}

func TestTextInDev(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "dev", "debug").Debug("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
