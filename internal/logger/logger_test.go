package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	// Create a buffer to capture log output
	var buf bytes.Buffer

	config := &Config{
		Level:       DEBUG,
		Format:      TEXT,
		Output:      &buf,
		DefaultTags: map[string]interface{}{"test": true},
	}
	logger := New(config)

	// Test different log levels
	logger.Debug("adb prefix resolved")
	if !strings.Contains(buf.String(), "DEBUG") || !strings.Contains(buf.String(), "adb prefix resolved") {
		t.Errorf("Expected debug message in log output, got: %s", buf.String())
	}

	buf.Reset()
	logger.Info("device connected")
	if !strings.Contains(buf.String(), "INFO") || !strings.Contains(buf.String(), "device connected") {
		t.Errorf("Expected info message in log output, got: %s", buf.String())
	}

	// Test with context
	buf.Reset()
	logger.WithContext("adb").Warn("screenshot stream empty")
	if !strings.Contains(buf.String(), "WARN") ||
		!strings.Contains(buf.String(), "screenshot stream empty") ||
		!strings.Contains(buf.String(), "[adb]") {
		t.Errorf("Expected warning with context in log output, got: %s", buf.String())
	}

	// Test with fields
	buf.Reset()
	logger.WithField("serial", "emulator-5554").Error("tap failed")
	if !strings.Contains(buf.String(), "ERROR") ||
		!strings.Contains(buf.String(), "tap failed") ||
		!strings.Contains(buf.String(), "serial=emulator-5554") {
		t.Errorf("Expected error with field in log output, got: %s", buf.String())
	}

	// Test JSON format
	buf.Reset()
	jsonLogger := New(&Config{
		Level:  INFO,
		Format: JSON,
		Output: &buf,
	})
	jsonLogger.Info("server started")
	out := buf.String()
	if !strings.HasPrefix(out, "{") || !strings.Contains(out, "\"message\":\"server started\"") {
		t.Errorf("Expected JSON log output, got: %s", out)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	logger := New(&Config{
		Level:  WARN,
		Format: TEXT,
		Output: &buf,
	})

	logger.Debug("should be filtered")
	logger.Info("should be filtered too")
	if buf.Len() != 0 {
		t.Errorf("Expected no output below WARN, got: %s", buf.String())
	}

	logger.Warn("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("Expected warn message in log output, got: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warn", WARN},
		{"error", ERROR},
		{"fatal", FATAL},
		{"disabled", DISABLED},
		{"bogus", INFO},
		{"", INFO},
	}

	for _, tc := range tests {
		if got := ParseLevel(tc.input); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}
