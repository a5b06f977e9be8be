// Package adb wraps the Android Debug Bridge CLI and exposes the device
// operations the PhoneMCP service is built on.
package adb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// DefaultBinary is the adb executable resolved from PATH when no explicit
// path is configured.
const DefaultBinary = "adb"

// DefaultTimeout bounds a single adb invocation. uiautomator dumps are the
// slowest call we make and finish well inside this window.
const DefaultTimeout = 15 * time.Second

// Output holds the result of a completed adb invocation.
type Output struct {
	// Stdout is the captured standard output, decoded as text.
	Stdout string

	// Stderr is the captured standard error, decoded as text.
	Stderr string

	// ExitCode is the process exit code. A nonzero code is a result, not a
	// Go error; callers decide whether it is fatal for their operation.
	ExitCode int
}

// Runner abstracts execution of adb commands so device operations can be
// exercised in tests without a connected device or an adb install.
type Runner interface {
	// Run executes adb with the given arguments, prefixing "-s serial" when
	// serial is non-empty, and captures text output.
	Run(ctx context.Context, serial string, args ...string) (Output, error)

	// RunBytes executes adb the same way but returns raw stdout bytes.
	// Used for binary streams such as exec-out screencap.
	RunBytes(ctx context.Context, serial string, args ...string) ([]byte, error)
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct {
	// Binary is the adb executable path or name.
	Binary string

	// Timeout bounds each invocation. Zero means DefaultTimeout.
	Timeout time.Duration
}

// NewExecRunner creates an ExecRunner for the given adb binary path.
// An empty path falls back to DefaultBinary.
func NewExecRunner(binary string, timeout time.Duration) *ExecRunner {
	if binary == "" {
		binary = DefaultBinary
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ExecRunner{Binary: binary, Timeout: timeout}
}

// prefixArgs builds the adb argument list with the optional device specifier.
func prefixArgs(serial string, args []string) []string {
	if serial == "" {
		return args
	}
	return append([]string{"-s", serial}, args...)
}

// Run implements Runner.Run.
func (r *ExecRunner) Run(ctx context.Context, serial string, args ...string) (Output, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, r.Binary, prefixArgs(serial, args)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		if ctx.Err() != nil {
			return out, fmt.Errorf("adb %v timed out: %w", args, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Nonzero exit is a result, not a transport failure.
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return out, fmt.Errorf("failed to run adb: %w", err)
	}

	return out, nil
}

// RunBytes implements Runner.RunBytes.
func (r *ExecRunner) RunBytes(ctx context.Context, serial string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, r.Binary, prefixArgs(serial, args)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("adb %v timed out: %w", args, ctx.Err())
		}
		return nil, fmt.Errorf("failed to run adb: %w (stderr: %s)", err, stderr.String())
	}

	return stdout.Bytes(), nil
}

func (r *ExecRunner) timeout() time.Duration {
	if r.Timeout <= 0 {
		return DefaultTimeout
	}
	return r.Timeout
}
