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
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "warn", Format: "text"}, &buf)
	require.NoError(t, err)

	log.Info("downloaded", "key", "ATB1_001/cad/model.stl")
	log.Warn("object not found", "object", "ATB1_999")

	out := buf.String()
	assert.NotContains(t, out, "downloaded")
	assert.Contains(t, out, "object not found")
	assert.Contains(t, out, "object=ATB1_999")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)

	log.Debug("mirror planned", "download", 3)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "mirror planned", record["msg"])
	assert.Equal(t, "DEBUG", record["level"])
	assert.EqualValues(t, 3, record["download"])
}

func TestNew_InvalidFormat(t *testing.T) {
	_, err := New(Config{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = New(Config{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard().Error("dropped") })
}
