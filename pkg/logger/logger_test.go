package logger

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestNew_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, closeFn, err := New(Options{Level: "warn", Format: "json", Output: path})
	require.NoError(t, err)

	log.Info("不应该输出")
	log.Warn("库存偏低", slog.Uint64("product_id", 3), slog.Int("stock", 2))
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry), "应该只有一行JSON日志")
	assert.Equal(t, "库存偏低", entry["msg"])
	assert.Equal(t, float64(2), entry["stock"])
}

func TestNew_UnknownFormat(t *testing.T) {
	_, _, err := New(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	log := Discard()
	assert.True(t, log.Enabled(context.Background(), slog.LevelInfo))
	assert.NotPanics(t, func() { log.Error("忽略", slog.String("k", "v")) })
}
