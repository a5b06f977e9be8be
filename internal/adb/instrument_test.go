package adb

import (
	"context"
	"testing"

	"github.com/phonemcp/phonemcp/internal/telemetry"
)

func TestInstrumentedRunnerRecordsCommands(t *testing.T) {
	inner := &fakeRunner{}
	metrics := telemetry.NewMetricsCollector()
	runner := NewInstrumentedRunner(inner, metrics)

	if _, err := runner.Run(context.Background(), "", "shell", "input", "tap", "1", "2"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if _, err := runner.RunBytes(context.Background(), "", "exec-out", "screencap", "-p"); err != nil {
		t.Fatalf("RunBytes returned error: %v", err)
	}

	if got := metrics.GetCounter(telemetry.MetricADBCommands); got != 2 {
		t.Errorf("expected 2 commands recorded, got %d", got)
	}
	if got := metrics.GetCounter(telemetry.MetricADBCommandsFailed); got != 0 {
		t.Errorf("expected no failed commands, got %d", got)
	}
	if len(inner.Calls) != 2 {
		t.Errorf("expected 2 calls to reach the inner runner, got %d", len(inner.Calls))
	}
}

func TestInstrumentedRunnerCountsFailures(t *testing.T) {
	inner := &fakeRunner{ReturnError: true}
	metrics := telemetry.NewMetricsCollector()
	runner := NewInstrumentedRunner(inner, metrics)

	if _, err := runner.Run(context.Background(), "", "devices", "-l"); err == nil {
		t.Fatal("expected error from inner runner")
	}

	if got := metrics.GetCounter(telemetry.MetricADBCommands); got != 1 {
		t.Errorf("expected 1 command recorded, got %d", got)
	}
	if got := metrics.GetCounter(telemetry.MetricADBCommandsFailed); got != 1 {
		t.Errorf("expected 1 failed command, got %d", got)
	}
}
