package log_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/reglet-dev/skillguard/internal/testutil"
	"github.com/reglet-dev/skillguard/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := log.ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := log.New(log.Config{Level: "warn", Format: "json", Output: &buf},
		log.WithAttrs(slog.String("service", "skillguard")))
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", "skill", "weather")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	testutil.AssertMapContains(t, map[string]any{
		"msg":     "kept",
		"level":   "WARN",
		"skill":   "weather",
		"service": "skillguard",
	}, rec)
}

func TestNew_TextDefault(t *testing.T) {
	var buf bytes.Buffer
	logger, err := log.New(log.Config{Output: &buf})
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("shown", "n", 1)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "n=1")
}

func TestNew_Errors(t *testing.T) {
	_, err := log.New(log.Config{Format: "xml"})
	assert.ErrorContains(t, err, `unknown log format "xml"`)

	_, err = log.New(log.Config{Level: "loud"})
	assert.ErrorContains(t, err, `unknown log level "loud"`)
}
