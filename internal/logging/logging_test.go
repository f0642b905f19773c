package logging

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func fixedLogger(buf *bytes.Buffer, debug, quiet bool) *Logger {
	l := NewWriter(buf, debug, quiet)
	l.now = func() time.Time { return time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC) }
	return l
}

func TestLoggerLevels(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	l := fixedLogger(&buf, false, false)

	l.Info("Discovered %d routes", 3)
	l.Debug("hidden")
	l.Success("done")

	assert.Equal(t, "[15:04:05] Discovered 3 routes\n[15:04:05] done\n", buf.String())
}

func TestLoggerQuietStillPrintsErrors(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	l := fixedLogger(&buf, false, true)

	l.Info("info")
	l.Warn("warn")
	l.Error("failed: %s", "boom")

	assert.Equal(t, "[15:04:05] failed: boom\n", buf.String())
}

func TestLoggerDebug(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	l := fixedLogger(&buf, true, false)
	l.Debug("watching %s", "internal")

	assert.True(t, l.IsDebug())
	assert.Equal(t, "[15:04:05] watching internal\n", buf.String())
}

func TestNilLogger(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Info("x")
		l.Error("x")
		l.Debug("x")
	})
	assert.False(t, l.IsDebug())
}
