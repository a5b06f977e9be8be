package adb

import (
	"context"
	"time"

	"github.com/phonemcp/phonemcp/internal/telemetry"
)

// InstrumentedRunner decorates a Runner with command count and timing
// metrics. Every adb invocation is counted and timed; transport failures
// (timeouts, missing binary) count as failed commands, nonzero device-side
// exit codes do not.
type InstrumentedRunner struct {
	Runner  Runner
	Metrics *telemetry.MetricsCollector
}

// NewInstrumentedRunner wraps runner so its invocations are recorded in
// metrics.
func NewInstrumentedRunner(runner Runner, metrics *telemetry.MetricsCollector) *InstrumentedRunner {
	return &InstrumentedRunner{Runner: runner, Metrics: metrics}
}

// Run implements Runner.Run.
func (r *InstrumentedRunner) Run(ctx context.Context, serial string, args ...string) (Output, error) {
	started := time.Now()
	out, err := r.Runner.Run(ctx, serial, args...)
	r.observe(started, err)
	return out, err
}

// RunBytes implements Runner.RunBytes.
func (r *InstrumentedRunner) RunBytes(ctx context.Context, serial string, args ...string) ([]byte, error) {
	started := time.Now()
	out, err := r.Runner.RunBytes(ctx, serial, args...)
	r.observe(started, err)
	return out, err
}

func (r *InstrumentedRunner) observe(started time.Time, err error) {
	r.Metrics.IncrementCounter(telemetry.MetricADBCommands, 1)
	r.Metrics.RecordTimer(telemetry.MetricADBCommandTime, time.Since(started))
	if err != nil {
		r.Metrics.IncrementCounter(telemetry.MetricADBCommandsFailed, 1)
	}
}
