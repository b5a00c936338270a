package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"critical", LevelCritical},
		{" crit ", LevelCritical},
		{"invalid", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer

	l := New(&buf)
	l.SetLevel(LevelWarn)

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	l.Warn("warn %d", 3)
	l.Critical("block %d,%d", 4, 5)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "[WARN] warn 3")
	assert.Contains(t, out, "[CRITICAL] block 4,5")
}

func TestLoggerLevelString(t *testing.T) {
	l := New(&bytes.Buffer{})
	require.Equal(t, "INFO", l.GetLevelString())

	l.SetLevelFromString("critical")
	require.Equal(t, "CRITICAL", l.GetLevelString())
}

func TestDefaultLoggerIsShared(t *testing.T) {
	require.Same(t, Default(), Default())

	SetLevelFromString("error")
	defer SetLevel(LevelInfo)

	assert.True(t, strings.EqualFold(GetLevelString(), "error"))
}

func TestKnownLevel(t *testing.T) {
	for _, name := range []string{"debug", "Info", "warn", "warning", "error", "critical", "crit"} {
		assert.True(t, KnownLevel(name), name)
	}

	assert.False(t, KnownLevel("loud"))
	assert.False(t, KnownLevel(""))
}
