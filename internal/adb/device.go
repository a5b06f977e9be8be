package adb

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/phonemcp/phonemcp/internal/apps"
)

// Timing holds the settle delays applied after device gestures. Values are
// durations rather than raw seconds so call sites stay unit-safe.
type Timing struct {
	Tap          time.Duration
	DoubleTap    time.Duration
	DoubleTapGap time.Duration
	LongPress    time.Duration
	Swipe        time.Duration
	Back         time.Duration
	Home         time.Duration
	Launch       time.Duration
	Key          time.Duration
}

// DefaultTiming returns the stock settle delays. A second after a gesture
// gives most apps time to finish their transition animation before the
// next screenshot or hierarchy dump.
func DefaultTiming() Timing {
	return Timing{
		Tap:          time.Second,
		DoubleTap:    time.Second,
		DoubleTapGap: 100 * time.Millisecond,
		LongPress:    time.Second,
		Swipe:        time.Second,
		Back:         time.Second,
		Home:         time.Second,
		Launch:       time.Second,
		Key:          500 * time.Millisecond,
	}
}

// Controller executes high-level device operations through a Runner.
type Controller struct {
	runner Runner
	timing Timing

	// sleep is indirected so tests do not wait out settle delays.
	sleep func(time.Duration)
}

// NewController creates a Controller over the given Runner.
func NewController(runner Runner, timing Timing) *Controller {
	return &Controller{
		runner: runner,
		timing: timing,
		sleep:  time.Sleep,
	}
}

// Timing returns the controller's settle delay configuration.
func (c *Controller) Timing() Timing {
	return c.timing
}

func (c *Controller) settle(d time.Duration) {
	if d > 0 {
		c.sleep(d)
	}
}

// shell runs an adb shell command and folds a nonzero exit into the error.
func (c *Controller) shell(ctx context.Context, serial string, args ...string) (string, error) {
	out, err := c.runner.Run(ctx, serial, append([]string{"shell"}, args...)...)
	if err != nil {
		return "", err
	}
	if out.ExitCode != 0 {
		detail := strings.TrimSpace(out.Stderr)
		if detail == "" {
			detail = strings.TrimSpace(out.Stdout)
		}
		return out.Stdout, fmt.Errorf("adb shell %s failed: %s", args[0], detail)
	}
	return out.Stdout, nil
}

// Tap taps the screen at the given coordinates.
func (c *Controller) Tap(ctx context.Context, serial string, x, y int) error {
	_, err := c.shell(ctx, serial, "input", "tap", strconv.Itoa(x), strconv.Itoa(y))
	if err != nil {
		return err
	}
	c.settle(c.timing.Tap)
	return nil
}

// DoubleTap taps the same point twice with a short gap between taps.
func (c *Controller) DoubleTap(ctx context.Context, serial string, x, y int) error {
	if _, err := c.shell(ctx, serial, "input", "tap", strconv.Itoa(x), strconv.Itoa(y)); err != nil {
		return err
	}
	c.settle(c.timing.DoubleTapGap)
	if _, err := c.shell(ctx, serial, "input", "tap", strconv.Itoa(x), strconv.Itoa(y)); err != nil {
		return err
	}
	c.settle(c.timing.DoubleTap)
	return nil
}

// DefaultLongPressMS is the hold duration used when the caller passes no
// explicit duration.
const DefaultLongPressMS = 3000

// LongPress holds a point for durationMs milliseconds. Implemented as a
// zero-distance swipe, which is how the input tool expresses a hold. A
// duration of zero or less falls back to DefaultLongPressMS.
func (c *Controller) LongPress(ctx context.Context, serial string, x, y, durationMs int) error {
	if durationMs <= 0 {
		durationMs = DefaultLongPressMS
	}
	_, err := c.shell(ctx, serial, "input", "swipe",
		strconv.Itoa(x), strconv.Itoa(y), strconv.Itoa(x), strconv.Itoa(y), strconv.Itoa(durationMs))
	if err != nil {
		return err
	}
	c.settle(c.timing.LongPress)
	return nil
}

// Swipe drags from the start to the end point. When durationMs is zero the
// duration is derived from the squared gesture distance and clamped to the
// 1000-2000ms band so short flicks stay controllable.
func (c *Controller) Swipe(ctx context.Context, serial string, startX, startY, endX, endY, durationMs int) error {
	if durationMs <= 0 {
		durationMs = SwipeDuration(startX, startY, endX, endY)
	}

	_, err := c.shell(ctx, serial, "input", "swipe",
		strconv.Itoa(startX), strconv.Itoa(startY),
		strconv.Itoa(endX), strconv.Itoa(endY), strconv.Itoa(durationMs))
	if err != nil {
		return err
	}
	c.settle(c.timing.Swipe)
	return nil
}

// SwipeDuration derives a swipe duration in milliseconds from the squared
// distance of the gesture, clamped to [1000, 2000].
func SwipeDuration(startX, startY, endX, endY int) int {
	dx := startX - endX
	dy := startY - endY
	durationMs := (dx*dx + dy*dy) / 1000
	if durationMs < 1000 {
		return 1000
	}
	if durationMs > 2000 {
		return 2000
	}
	return durationMs
}

// Back presses the back button.
func (c *Controller) Back(ctx context.Context, serial string) error {
	if _, err := c.shell(ctx, serial, "input", "keyevent", "4"); err != nil {
		return err
	}
	c.settle(c.timing.Back)
	return nil
}

// Home presses the home button.
func (c *Controller) Home(ctx context.Context, serial string) error {
	if _, err := c.shell(ctx, serial, "input", "keyevent", "KEYCODE_HOME"); err != nil {
		return err
	}
	c.settle(c.timing.Home)
	return nil
}

// keyMap translates friendly key names to Android keycodes.
var keyMap = map[string]string{
	"enter":              "66",
	"tab":                "61",
	"delete":             "67",
	"backspace":          "67",
	"space":              "62",
	"escape":             "111",
	"esc":                "111",
	"volume_up":          "24",
	"volume_down":        "25",
	"volume_mute":        "164",
	"power":              "26",
	"camera":             "27",
	"menu":               "82",
	"search":             "84",
	"media_play_pause":   "85",
	"media_stop":         "86",
	"media_next":         "87",
	"media_previous":     "88",
	"media_rewind":       "89",
	"media_fast_forward": "90",
	"mute":               "91",
	"page_up":            "92",
	"page_down":          "93",
	"dpad_up":            "19",
	"dpad_down":          "20",
	"dpad_left":          "21",
	"dpad_right":         "22",
	"dpad_center":        "23",
}

// ResolveKeycode maps a friendly key name or numeric keycode to the value
// passed to "input keyevent". Unknown non-numeric names are forwarded as
// KEYCODE_<NAME> and left to the device to reject.
func ResolveKeycode(key string) string {
	name := strings.ToLower(strings.TrimSpace(key))
	if code, ok := keyMap[name]; ok {
		return code
	}
	if _, err := strconv.Atoi(name); err == nil {
		return name
	}
	return "KEYCODE_" + strings.ToUpper(name)
}

// PressKey sends a key event to the device.
func (c *Controller) PressKey(ctx context.Context, serial, key string) error {
	if _, err := c.shell(ctx, serial, "input", "keyevent", ResolveKeycode(key)); err != nil {
		return err
	}
	c.settle(c.timing.Key)
	return nil
}

// LaunchApp launches an app by its friendly name. Returns false when the
// name is not in the known app table.
func (c *Controller) LaunchApp(ctx context.Context, serial, appName string) (bool, error) {
	pkg := apps.PackageName(appName)
	if pkg == "" {
		return false, nil
	}
	return true, c.LaunchPackage(ctx, serial, pkg)
}

// LaunchPackage launches an app by package name. It resolves the launcher
// activity first because "am start -n" is the most reliable start path,
// then falls back to an explicit MainActivity intent, and finally to the
// monkey tool.
func (c *Controller) LaunchPackage(ctx context.Context, serial, pkg string) error {
	activity := c.resolveLauncherActivity(ctx, serial, pkg)
	if activity != "" {
		out, err := c.shell(ctx, serial, "am", "start", "-n", activity)
		if err == nil && !strings.Contains(out, "Error") {
			c.settle(c.timing.Launch)
			return nil
		}
	}

	out, err := c.shell(ctx, serial, "am", "start",
		"-a", "android.intent.action.MAIN",
		"-c", "android.intent.category.LAUNCHER",
		"-n", pkg+"/.MainActivity")
	if err == nil && !strings.Contains(out, "Error") {
		c.settle(c.timing.Launch)
		return nil
	}

	out, err = c.shell(ctx, serial, "monkey",
		"-p", pkg, "-c", "android.intent.category.LAUNCHER", "1")
	if err != nil {
		return err
	}
	c.settle(c.timing.Launch)
	if strings.Contains(out, "No activities found") {
		return fmt.Errorf("no launchable activity for package %s", pkg)
	}
	return nil
}

// resolveLauncherActivity asks the package manager for the launcher
// activity of a package. Returns "" when resolution fails.
func (c *Controller) resolveLauncherActivity(ctx context.Context, serial, pkg string) string {
	out, err := c.shell(ctx, serial, "cmd", "package", "resolve-activity",
		"--brief", "-c", "android.intent.category.LAUNCHER", pkg)
	if err != nil {
		return ""
	}
	return ParseResolvedActivity(out)
}

// ParseResolvedActivity extracts the component line from
// "cmd package resolve-activity --brief" output.
func ParseResolvedActivity(output string) string {
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		line = strings.TrimSpace(line)
		if strings.Contains(line, "/") && !strings.HasPrefix(line, "priority") {
			return line
		}
	}
	return ""
}

// CurrentApp returns the friendly name of the foreground app, or
// "System Home" when the focused window does not belong to a known app.
func (c *Controller) CurrentApp(ctx context.Context, serial string) (string, error) {
	out, err := c.shell(ctx, serial, "dumpsys", "window")
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("no output from dumpsys window")
	}
	return CurrentAppFromDump(out), nil
}

// CurrentAppFromDump scans dumpsys window output for the focused window and
// matches it against the known app table.
func CurrentAppFromDump(dump string) string {
	for _, line := range strings.Split(dump, "\n") {
		if !strings.Contains(line, "mCurrentFocus") && !strings.Contains(line, "mFocusedApp") {
			continue
		}
		for name, pkg := range apps.Packages {
			if strings.Contains(line, pkg) {
				return name
			}
		}
	}
	return "System Home"
}

// SearchApps returns the installed package names matching the keyword,
// case-insensitively.
func (c *Controller) SearchApps(ctx context.Context, serial, keyword string) ([]string, error) {
	out, err := c.shell(ctx, serial, "pm", "list", "packages")
	if err != nil {
		return nil, err
	}
	return FilterPackageList(out, keyword), nil
}

// FilterPackageList parses "pm list packages" output and keeps the
// packages whose name contains the keyword.
func FilterPackageList(output, keyword string) []string {
	keyword = strings.ToLower(keyword)

	var packages []string
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		pkg, ok := strings.CutPrefix(strings.TrimSpace(line), "package:")
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(pkg), keyword) {
			packages = append(packages, pkg)
		}
	}
	return packages
}
