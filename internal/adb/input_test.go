package adb

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
)

func TestTypeTextEncodesBase64(t *testing.T) {
	runner := &fakeRunner{}
	c := newTestController(runner)

	text := "hello 世界"
	if err := c.TypeText(context.Background(), "", text); err != nil {
		t.Fatalf("TypeText returned error: %v", err)
	}

	call := runner.Calls[0]
	encoded := call[len(call)-1]
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("Broadcast payload is not base64: %v", err)
	}
	if string(decoded) != text {
		t.Errorf("Expected payload %q, got %q", text, string(decoded))
	}
	if got := strings.Join(call[:5], " "); got != "shell am broadcast -a ADB_INPUT_B64" {
		t.Errorf("Unexpected broadcast command: %v", call)
	}
}

func TestEnsureADBKeyboard(t *testing.T) {
	runner := &fakeRunner{
		Outputs: map[string]Output{
			"shell ime list -s": {
				Stdout: "com.google.android.inputmethod.latin/com.android.inputmethod.latin.LatinIME\n" +
					ADBKeyboardIME + "\n",
			},
			"shell settings get secure default_input_method": {
				Stdout: "com.google.android.inputmethod.latin/com.android.inputmethod.latin.LatinIME\n",
			},
		},
	}
	c := newTestController(runner)

	previous, err := c.EnsureADBKeyboard(context.Background(), "")
	if err != nil {
		t.Fatalf("EnsureADBKeyboard returned error: %v", err)
	}
	if previous != "com.google.android.inputmethod.latin/com.android.inputmethod.latin.LatinIME" {
		t.Errorf("Expected previous IME to be returned, got %q", previous)
	}

	last := strings.Join(runner.Calls[len(runner.Calls)-1], " ")
	if last != "shell ime set "+ADBKeyboardIME {
		t.Errorf("Expected ime set call, got %q", last)
	}
}

func TestEnsureADBKeyboardAlreadyActive(t *testing.T) {
	runner := &fakeRunner{
		Outputs: map[string]Output{
			"shell ime list -s":                              {Stdout: ADBKeyboardIME + "\n"},
			"shell settings get secure default_input_method": {Stdout: ADBKeyboardIME + "\n"},
		},
	}
	c := newTestController(runner)

	if _, err := c.EnsureADBKeyboard(context.Background(), ""); err != nil {
		t.Fatalf("EnsureADBKeyboard returned error: %v", err)
	}

	// No ime set call should have been issued.
	for _, call := range runner.Calls {
		if strings.Join(call, " ") == "shell ime set "+ADBKeyboardIME {
			t.Error("Expected no ime set call when already active")
		}
	}
}

func TestEnsureADBKeyboardNotInstalled(t *testing.T) {
	runner := &fakeRunner{
		Outputs: map[string]Output{
			"shell ime list -s": {Stdout: "com.google.android.inputmethod.latin/LatinIME\n"},
		},
	}
	c := newTestController(runner)

	if _, err := c.EnsureADBKeyboard(context.Background(), ""); err == nil {
		t.Error("Expected error when ADB Keyboard is not installed")
	}
}

func TestRestoreKeyboard(t *testing.T) {
	runner := &fakeRunner{}
	c := newTestController(runner)

	if err := c.RestoreKeyboard(context.Background(), "", "com.example/.IME"); err != nil {
		t.Fatalf("RestoreKeyboard returned error: %v", err)
	}
	if got := strings.Join(runner.Calls[0], " "); got != "shell ime set com.example/.IME" {
		t.Errorf("Expected ime set, got %q", got)
	}

	runner.Calls = nil
	if err := c.RestoreKeyboard(context.Background(), "", ""); err != nil {
		t.Fatalf("RestoreKeyboard returned error: %v", err)
	}
	if got := strings.Join(runner.Calls[0], " "); got != "shell ime reset" {
		t.Errorf("Expected ime reset for empty previous IME, got %q", got)
	}
}

func TestScreenshotEmptyStream(t *testing.T) {
	runner := &fakeRunner{Bytes: nil}
	c := newTestController(runner)

	if _, err := c.Screenshot(context.Background(), ""); err == nil {
		t.Error("Expected error for empty screencap stream")
	}
}

func TestScreenshot(t *testing.T) {
	runner := &fakeRunner{Bytes: []byte{0x89, 'P', 'N', 'G'}}
	c := newTestController(runner)

	shot, err := c.Screenshot(context.Background(), "serial-1")
	if err != nil {
		t.Fatalf("Screenshot returned error: %v", err)
	}
	if len(shot.PNG) != 4 {
		t.Errorf("Expected raw PNG bytes, got %d bytes", len(shot.PNG))
	}
	if got := strings.Join(runner.Calls[0], " "); got != "exec-out screencap -p" {
		t.Errorf("Expected exec-out screencap, got %q", got)
	}
}
