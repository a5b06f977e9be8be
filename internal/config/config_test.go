package config

import (
	"testing"
	"time"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	if cfg.Server.Transport != "sse" {
		t.Errorf("Expected transport \"sse\", got %q", cfg.Server.Transport)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Expected host \"0.0.0.0\", got %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 8009 {
		t.Errorf("Expected port 8009, got %d", cfg.Server.Port)
	}
	if cfg.ADB.Binary != "adb" {
		t.Errorf("Expected adb binary, got %q", cfg.ADB.Binary)
	}
	if !cfg.History.Enabled || cfg.History.SQLitePath != DefaultSQLitePath {
		t.Errorf("Unexpected history defaults: %+v", cfg.History)
	}
	if cfg.Logging.Level != DefaultLogLevel || cfg.Logging.Format != DefaultLogFormat {
		t.Errorf("Unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestToTiming(t *testing.T) {
	cfg := NewConfig()
	cfg.Timing.TapSeconds = 0.5
	cfg.Timing.SwipeSeconds = 2
	cfg.Timing.KeySeconds = 0.25
	cfg.Timing.LaunchSeconds = 3

	timing := cfg.ToTiming()
	if timing.Tap != 500*time.Millisecond {
		t.Errorf("Expected tap delay 500ms, got %v", timing.Tap)
	}
	if timing.Swipe != 2*time.Second {
		t.Errorf("Expected swipe delay 2s, got %v", timing.Swipe)
	}
	if timing.Key != 250*time.Millisecond || timing.Back != 250*time.Millisecond {
		t.Errorf("Expected key delays 250ms, got key=%v back=%v", timing.Key, timing.Back)
	}
	if timing.Launch != 3*time.Second {
		t.Errorf("Expected launch delay 3s, got %v", timing.Launch)
	}
}

func TestToTimingUnsetKeepsDefaults(t *testing.T) {
	cfg := &Config{}

	timing := cfg.ToTiming()
	if timing.Tap == 0 || timing.Launch == 0 {
		t.Errorf("Expected default delays for unset timing, got %+v", timing)
	}
}

func TestADBTimeout(t *testing.T) {
	cfg := NewConfig()
	cfg.ADB.TimeoutSeconds = 30
	if got := cfg.ADBTimeout(); got != 30*time.Second {
		t.Errorf("Expected 30s, got %v", got)
	}

	cfg.ADB.TimeoutSeconds = 0
	if got := cfg.ADBTimeout(); got <= 0 {
		t.Errorf("Expected default timeout, got %v", got)
	}
}
