package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "line %q", line)
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_Log(t *testing.T) {
	tests := []struct {
		name    string
		level   Level
		message string
		fields  Fields
		err     error
		want    bool // should log
	}{
		{
			name:    "info message",
			level:   LevelInfo,
			message: "test message",
			fields:  Fields{"key": "value"},
			want:    true,
		},
		{
			name:    "debug below threshold",
			level:   LevelDebug,
			message: "debug message",
			want:    false,
		},
		{
			name:    "warn message",
			level:   LevelWarn,
			message: "section missing",
			want:    true,
		},
		{
			name:    "error with err",
			level:   LevelError,
			message: "error occurred",
			err:     errors.New("test error"),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(LevelInfo, &buf)

			l.log(tt.level, tt.message, tt.fields, tt.err)

			entries := decodeLines(t, &buf)
			if !tt.want {
				assert.Empty(t, entries)
				return
			}

			require.Len(t, entries, 1)
			entry := entries[0]
			assert.Equal(t, tt.message, entry["message"])
			assert.Equal(t, strings.ToLower(string(tt.level)), entry["level"])
			assert.NotEmpty(t, entry["time"])

			for k, v := range tt.fields {
				assert.Equal(t, v, entry[k])
			}
			if tt.err != nil {
				assert.Equal(t, tt.err.Error(), entry["error"])
			} else {
				assert.NotContains(t, entry, "error")
			}
		})
	}
}

func TestLogger_Methods(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelDebug, &buf)

	l.Debug("d", nil)
	l.Info("i", Fields{"lots": 3})
	l.Warn("w", nil)
	l.Error("e", nil, errors.New("boom"))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 4)
	assert.Equal(t, "debug", entries[0]["level"])
	assert.Equal(t, float64(3), entries[1]["lots"])
	assert.Equal(t, "warn", entries[2]["level"])
	assert.Equal(t, "boom", entries[3]["error"])
}

func TestDefaultLogger(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	var buf bytes.Buffer
	SetDefault(New(LevelWarn, &buf))

	Info("hidden", nil)
	Warn("shown", Fields{"type": "car"})
	Error("failed", nil, errors.New("x"))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "shown", entries[0]["message"])
	assert.Equal(t, "car", entries[0]["type"])
	assert.Equal(t, "failed", entries[1]["message"])
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	zl := New(LevelInfo, &buf).Component("worker")

	zl.Info().Int("lots", 2).Msg("refreshed")
	zl.Debug().Msg("filtered by level")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "worker", entries[0]["component"])
	assert.Equal(t, float64(2), entries[0]["lots"])
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(LevelInfo, &buf).Info("refresh finished", Fields{"lots": 5})

	out := buf.String()
	assert.Contains(t, out, "refresh finished")
	assert.Contains(t, out, "lots=5")
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Error("nothing", Fields{"a": 1}, errors.New("x"))
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"Warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"trace", "", true},
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
