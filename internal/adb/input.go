package adb

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// ADBKeyboardIME is the input method component of the ADB Keyboard app,
// which accepts text over broadcast intents. Typing arbitrary (including
// non-ASCII) text requires it to be installed on the device.
const ADBKeyboardIME = "com.android.adbkeyboard/.AdbIME"

// TypeText types text into the currently focused input field through the
// ADB Keyboard broadcast channel. The text is base64-encoded so whitespace
// and non-ASCII characters survive the shell.
func (c *Controller) TypeText(ctx context.Context, serial, text string) error {
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	_, err := c.shell(ctx, serial, "am", "broadcast", "-a", "ADB_INPUT_B64", "--es", "msg", encoded)
	return err
}

// ClearText clears the currently focused input field.
func (c *Controller) ClearText(ctx context.Context, serial string) error {
	_, err := c.shell(ctx, serial, "am", "broadcast", "-a", "ADB_CLEAR_TEXT")
	return err
}

// EnsureADBKeyboard makes the ADB Keyboard the active input method and
// returns the previously active IME so the caller can restore it. When the
// ADB Keyboard is already active the call is a no-op.
func (c *Controller) EnsureADBKeyboard(ctx context.Context, serial string) (string, error) {
	out, err := c.shell(ctx, serial, "ime", "list", "-s")
	if err != nil {
		return "", err
	}
	if !imeListed(out, ADBKeyboardIME) {
		return "", fmt.Errorf("ADB Keyboard is not installed on the device (ime %s not found)", ADBKeyboardIME)
	}

	current, err := c.shell(ctx, serial, "settings", "get", "secure", "default_input_method")
	if err != nil {
		return "", err
	}
	current = strings.TrimSpace(current)
	if current == ADBKeyboardIME {
		return current, nil
	}

	if _, err := c.shell(ctx, serial, "ime", "set", ADBKeyboardIME); err != nil {
		return "", err
	}
	return current, nil
}

// RestoreKeyboard switches back to the given input method. An empty
// previous IME resets the device to its default.
func (c *Controller) RestoreKeyboard(ctx context.Context, serial, previousIME string) error {
	if previousIME == "" || previousIME == ADBKeyboardIME {
		_, err := c.shell(ctx, serial, "ime", "reset")
		return err
	}
	_, err := c.shell(ctx, serial, "ime", "set", previousIME)
	return err
}

// imeListed reports whether the IME component appears in "ime list -s"
// output.
func imeListed(output, ime string) bool {
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == ime {
			return true
		}
	}
	return false
}
