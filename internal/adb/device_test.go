package adb

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

var testError = errors.New("test error")

// fakeRunner implements Runner for tests. Outputs are keyed by the joined
// argument list; unmatched calls get the zero Output.
type fakeRunner struct {
	Calls       [][]string
	Serials     []string
	Outputs     map[string]Output
	Bytes       []byte
	ReturnError bool
}

func (f *fakeRunner) Run(ctx context.Context, serial string, args ...string) (Output, error) {
	if f.ReturnError {
		return Output{}, testError
	}
	f.Calls = append(f.Calls, args)
	f.Serials = append(f.Serials, serial)
	if out, ok := f.Outputs[strings.Join(args, " ")]; ok {
		return out, nil
	}
	return Output{}, nil
}

func (f *fakeRunner) RunBytes(ctx context.Context, serial string, args ...string) ([]byte, error) {
	if f.ReturnError {
		return nil, testError
	}
	f.Calls = append(f.Calls, args)
	f.Serials = append(f.Serials, serial)
	return f.Bytes, nil
}

// newTestController wires a Controller to a fakeRunner with settle delays
// stubbed out.
func newTestController(runner *fakeRunner) *Controller {
	c := NewController(runner, DefaultTiming())
	c.sleep = func(time.Duration) {}
	return c
}

func TestTap(t *testing.T) {
	runner := &fakeRunner{}
	c := newTestController(runner)

	if err := c.Tap(context.Background(), "emulator-5554", 120, 480); err != nil {
		t.Fatalf("Tap returned error: %v", err)
	}

	if len(runner.Calls) != 1 {
		t.Fatalf("Expected 1 adb call, got %d", len(runner.Calls))
	}
	want := "shell input tap 120 480"
	if got := strings.Join(runner.Calls[0], " "); got != want {
		t.Errorf("Expected call %q, got %q", want, got)
	}
	if runner.Serials[0] != "emulator-5554" {
		t.Errorf("Expected serial to be forwarded, got %q", runner.Serials[0])
	}
}

func TestDoubleTapIssuesTwoTaps(t *testing.T) {
	runner := &fakeRunner{}
	c := newTestController(runner)

	if err := c.DoubleTap(context.Background(), "", 10, 20); err != nil {
		t.Fatalf("DoubleTap returned error: %v", err)
	}

	if len(runner.Calls) != 2 {
		t.Fatalf("Expected 2 adb calls, got %d", len(runner.Calls))
	}
	for i, call := range runner.Calls {
		if got := strings.Join(call, " "); got != "shell input tap 10 20" {
			t.Errorf("Call %d: expected tap, got %q", i, got)
		}
	}
}

func TestLongPressUsesZeroDistanceSwipe(t *testing.T) {
	runner := &fakeRunner{}
	c := newTestController(runner)

	if err := c.LongPress(context.Background(), "", 50, 60, 3000); err != nil {
		t.Fatalf("LongPress returned error: %v", err)
	}

	want := "shell input swipe 50 60 50 60 3000"
	if got := strings.Join(runner.Calls[0], " "); got != want {
		t.Errorf("Expected call %q, got %q", want, got)
	}
}

func TestLongPressDefaultsDuration(t *testing.T) {
	runner := &fakeRunner{}
	c := newTestController(runner)

	if err := c.LongPress(context.Background(), "", 50, 60, 0); err != nil {
		t.Fatalf("LongPress returned error: %v", err)
	}

	want := "shell input swipe 50 60 50 60 3000"
	if got := strings.Join(runner.Calls[0], " "); got != want {
		t.Errorf("Expected hold of %dms, got %q", DefaultLongPressMS, got)
	}
}

func TestSwipeDuration(t *testing.T) {
	tests := []struct {
		name                   string
		x1, y1, x2, y2, wantMs int
	}{
		{"short flick clamps up", 0, 0, 10, 10, 1000},
		{"long drag clamps down", 0, 0, 0, 2000, 2000},
		{"mid range passes through", 0, 0, 0, 1200, 1440},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SwipeDuration(tc.x1, tc.y1, tc.x2, tc.y2); got != tc.wantMs {
				t.Errorf("SwipeDuration = %d, want %d", got, tc.wantMs)
			}
		})
	}
}

func TestSwipeDerivesDuration(t *testing.T) {
	runner := &fakeRunner{}
	c := newTestController(runner)

	if err := c.Swipe(context.Background(), "", 0, 0, 10, 10, 0); err != nil {
		t.Fatalf("Swipe returned error: %v", err)
	}

	want := "shell input swipe 0 0 10 10 1000"
	if got := strings.Join(runner.Calls[0], " "); got != want {
		t.Errorf("Expected call %q, got %q", want, got)
	}
}

func TestResolveKeycode(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"enter", "66"},
		{"Volume_Up", "24"},
		{" esc ", "111"},
		{"66", "66"},
		{"sleep", "KEYCODE_SLEEP"},
	}

	for _, tc := range tests {
		if got := ResolveKeycode(tc.key); got != tc.want {
			t.Errorf("ResolveKeycode(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}

func TestParseResolvedActivity(t *testing.T) {
	output := "priority=0 preferredOrder=0 match=0x108000 specificIndex=-1 isDefault=true\n" +
		"com.android.settings/.Settings\n"

	if got := ParseResolvedActivity(output); got != "com.android.settings/.Settings" {
		t.Errorf("Expected component line, got %q", got)
	}

	if got := ParseResolvedActivity("No activity found\n"); got != "" {
		t.Errorf("Expected empty result for unresolved package, got %q", got)
	}
}

func TestLaunchPackagePrefersResolvedActivity(t *testing.T) {
	runner := &fakeRunner{
		Outputs: map[string]Output{
			"shell cmd package resolve-activity --brief -c android.intent.category.LAUNCHER com.android.settings": {
				Stdout: "priority=0 isDefault=true\ncom.android.settings/.Settings\n",
			},
			"shell am start -n com.android.settings/.Settings": {
				Stdout: "Starting: Intent { cmp=com.android.settings/.Settings }\n",
			},
		},
	}
	c := newTestController(runner)

	if err := c.LaunchPackage(context.Background(), "", "com.android.settings"); err != nil {
		t.Fatalf("LaunchPackage returned error: %v", err)
	}

	if len(runner.Calls) != 2 {
		t.Fatalf("Expected 2 adb calls (resolve + am start), got %d", len(runner.Calls))
	}
	if got := strings.Join(runner.Calls[1], " "); got != "shell am start -n com.android.settings/.Settings" {
		t.Errorf("Expected am start with resolved activity, got %q", got)
	}
}

func TestLaunchPackageFallsBackToMonkey(t *testing.T) {
	runner := &fakeRunner{
		Outputs: map[string]Output{
			"shell am start -a android.intent.action.MAIN -c android.intent.category.LAUNCHER -n com.example.app/.MainActivity": {
				Stdout: "Error: Activity not started\n",
			},
		},
	}
	c := newTestController(runner)

	if err := c.LaunchPackage(context.Background(), "", "com.example.app"); err != nil {
		t.Fatalf("LaunchPackage returned error: %v", err)
	}

	last := strings.Join(runner.Calls[len(runner.Calls)-1], " ")
	if last != "shell monkey -p com.example.app -c android.intent.category.LAUNCHER 1" {
		t.Errorf("Expected monkey fallback, got %q", last)
	}
}

func TestLaunchAppUnknownName(t *testing.T) {
	runner := &fakeRunner{}
	c := newTestController(runner)

	known, err := c.LaunchApp(context.Background(), "", "NotARealApp")
	if err != nil {
		t.Fatalf("LaunchApp returned error: %v", err)
	}
	if known {
		t.Error("Expected unknown app name to be reported")
	}
	if len(runner.Calls) != 0 {
		t.Errorf("Expected no adb calls for unknown app, got %d", len(runner.Calls))
	}
}

func TestCurrentAppFromDump(t *testing.T) {
	dump := "  mCurrentFocus=Window{abc u0 com.android.settings/com.android.settings.Settings}\n"
	if got := CurrentAppFromDump(dump); got != "Settings" {
		t.Errorf("Expected Settings, got %q", got)
	}

	dump = "  mCurrentFocus=Window{abc u0 com.unknown.app/com.unknown.app.Main}\n"
	if got := CurrentAppFromDump(dump); got != "System Home" {
		t.Errorf("Expected System Home for unknown package, got %q", got)
	}
}

func TestFilterPackageList(t *testing.T) {
	output := "package:com.android.settings\npackage:com.tencent.mm\npackage:com.android.chrome\n"

	got := FilterPackageList(output, "ANDROID")
	if len(got) != 2 {
		t.Fatalf("Expected 2 matches, got %d: %v", len(got), got)
	}
	if got[0] != "com.android.settings" || got[1] != "com.android.chrome" {
		t.Errorf("Unexpected matches: %v", got)
	}

	if got := FilterPackageList("garbage line\n", "x"); len(got) != 0 {
		t.Errorf("Expected no matches from malformed output, got %v", got)
	}
}
