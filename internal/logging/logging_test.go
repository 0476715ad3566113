package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/settings/internal/logging"
)

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	logger := logging.New()
	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(t.Context(), slog.LevelDebug), "Default level should be info")
	assert.True(t, logger.Enabled(t.Context(), slog.LevelInfo))
}

func TestNew_JSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.New(
		logging.WithFormat(logging.FormatJSON),
		logging.WithOutput(&buf),
	)

	logger.Info("benchmark started", "runs", 5)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record), "JSON format should emit one JSON object per record")
	assert.Equal(t, "benchmark started", record["msg"])
	assert.Equal(t, float64(5), record["runs"])
}

func TestNew_UnknownFormatKeepsText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.New(
		logging.WithFormat("yaml"),
		logging.WithOutput(&buf),
	)

	logger.Info("hello")
	assert.False(t, json.Valid(buf.Bytes()), "Unknown formats fall back to the text handler")
	assert.Contains(t, buf.String(), "hello")
}

func TestNew_LevelFilters(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.New(
		logging.WithLevel(slog.LevelError),
		logging.WithOutput(&buf),
	)

	logger.Info("dropped")
	assert.Empty(t, buf.String(), "Records below the configured level should be dropped")

	logger.Error("kept")
	assert.Contains(t, buf.String(), "kept")
}
