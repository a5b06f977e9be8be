package adb

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ConnectionType describes how a device is attached to the host.
type ConnectionType string

// Connection types reported in device listings.
const (
	ConnectionUSB  ConnectionType = "usb"
	ConnectionWiFi ConnectionType = "wifi"
)

// DeviceInfo describes one entry from the adb device list.
type DeviceInfo struct {
	// Serial is the adb device identifier ("emulator-5554", "192.168.1.10:5555").
	Serial string `json:"serial"`

	// State is the adb device state ("device", "offline", "unauthorized").
	State string `json:"state"`

	// Type tells whether the device is attached over USB or the network.
	Type ConnectionType `json:"connection_type"`

	// Model is the device model when adb reports one.
	Model string `json:"model"`
}

// ListDevices returns the devices currently known to the adb server.
func (c *Controller) ListDevices(ctx context.Context) ([]DeviceInfo, error) {
	out, err := c.runner.Run(ctx, "", "devices", "-l")
	if err != nil {
		return nil, err
	}
	if out.ExitCode != 0 {
		return nil, fmt.Errorf("adb devices failed: %s", strings.TrimSpace(out.Stderr))
	}
	return ParseDeviceList(out.Stdout), nil
}

// ParseDeviceList parses "adb devices -l" output into DeviceInfo entries.
// The header line and empty lines are skipped.
func ParseDeviceList(output string) []DeviceInfo {
	var devices []DeviceInfo

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of devices") || strings.HasPrefix(line, "*") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		info := DeviceInfo{
			Serial: fields[0],
			State:  fields[1],
			Type:   ConnectionUSB,
		}

		// Network devices carry their address as the serial.
		if strings.Contains(info.Serial, ":") {
			info.Type = ConnectionWiFi
		}

		for _, field := range fields[2:] {
			if model, ok := strings.CutPrefix(field, "model:"); ok {
				info.Model = strings.ReplaceAll(model, "_", " ")
			}
		}

		devices = append(devices, info)
	}

	return devices
}

// Connect attaches a remote device over TCP. The address is "host:port".
// adb prints a success line even for devices that are already attached;
// both cases are treated as success.
func (c *Controller) Connect(ctx context.Context, address string) (string, error) {
	if address == "" {
		return "", errors.New("address is required")
	}

	out, err := c.runner.Run(ctx, "", "connect", address)
	if err != nil {
		return "", err
	}

	message := strings.TrimSpace(out.Stdout)
	if message == "" {
		message = strings.TrimSpace(out.Stderr)
	}

	if !connectSucceeded(message) {
		return message, fmt.Errorf("failed to connect to %s: %s", address, message)
	}
	return message, nil
}

// connectSucceeded reports whether an "adb connect" output line means the
// device is attached. adb exits zero even on failure, so the text is the
// only signal.
func connectSucceeded(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "connected to") && !strings.Contains(lower, "cannot connect") &&
		!strings.Contains(lower, "failed to connect")
}

// Disconnect detaches a remote device, or every remote device when the
// address is empty.
func (c *Controller) Disconnect(ctx context.Context, address string) (string, error) {
	args := []string{"disconnect"}
	if address != "" {
		args = append(args, address)
	}

	out, err := c.runner.Run(ctx, "", args...)
	if err != nil {
		return "", err
	}

	message := strings.TrimSpace(out.Stdout)
	if out.ExitCode != 0 {
		if message == "" {
			message = strings.TrimSpace(out.Stderr)
		}
		return message, fmt.Errorf("failed to disconnect: %s", message)
	}
	return message, nil
}
