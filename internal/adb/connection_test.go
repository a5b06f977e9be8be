package adb

import (
	"context"
	"testing"
)

func TestParseDeviceList(t *testing.T) {
	output := `List of devices attached
emulator-5554          device product:sdk_gphone64 model:sdk_gphone64_x86_64 device:emu64x
192.168.1.100:5555     device product:lineage model:Pixel_7 device:panther
R58M123ABC             unauthorized

`

	devices := ParseDeviceList(output)
	if len(devices) != 3 {
		t.Fatalf("Expected 3 devices, got %d", len(devices))
	}

	if devices[0].Serial != "emulator-5554" || devices[0].State != "device" {
		t.Errorf("Unexpected first device: %+v", devices[0])
	}
	if devices[0].Type != ConnectionUSB {
		t.Errorf("Expected usb connection for emulator, got %s", devices[0].Type)
	}
	if devices[0].Model != "sdk gphone64 x86 64" {
		t.Errorf("Unexpected model: %q", devices[0].Model)
	}

	if devices[1].Type != ConnectionWiFi {
		t.Errorf("Expected wifi connection for networked serial, got %s", devices[1].Type)
	}
	if devices[1].Model != "Pixel 7" {
		t.Errorf("Unexpected model: %q", devices[1].Model)
	}

	if devices[2].State != "unauthorized" {
		t.Errorf("Expected unauthorized state, got %q", devices[2].State)
	}
	if devices[2].Model != "" {
		t.Errorf("Expected empty model, got %q", devices[2].Model)
	}
}

func TestParseDeviceListEmpty(t *testing.T) {
	devices := ParseDeviceList("List of devices attached\n\n")
	if len(devices) != 0 {
		t.Errorf("Expected no devices, got %v", devices)
	}
}

func TestConnect(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		wantErr bool
	}{
		{"fresh connect", "connected to 192.168.1.100:5555", false},
		{"already connected", "already connected to 192.168.1.100:5555", false},
		{"refused", "cannot connect to 192.168.1.100:5555: Connection refused", true},
		{"failed", "failed to connect to '192.168.1.100:5555'", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			runner := &fakeRunner{
				Outputs: map[string]Output{
					"connect 192.168.1.100:5555": {Stdout: tc.output},
				},
			}
			c := newTestController(runner)

			message, err := c.Connect(context.Background(), "192.168.1.100:5555")
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Expected error, got message %q", message)
				}
				return
			}
			if err != nil {
				t.Fatalf("Connect returned error: %v", err)
			}
			if message != tc.output {
				t.Errorf("Expected message %q, got %q", tc.output, message)
			}
		})
	}
}

func TestConnectRequiresAddress(t *testing.T) {
	c := newTestController(&fakeRunner{})
	if _, err := c.Connect(context.Background(), ""); err == nil {
		t.Error("Expected error for empty address")
	}
}

func TestDisconnectAll(t *testing.T) {
	runner := &fakeRunner{
		Outputs: map[string]Output{
			"disconnect": {Stdout: "disconnected everything"},
		},
	}
	c := newTestController(runner)

	message, err := c.Disconnect(context.Background(), "")
	if err != nil {
		t.Fatalf("Disconnect returned error: %v", err)
	}
	if message != "disconnected everything" {
		t.Errorf("Unexpected message: %q", message)
	}
	if len(runner.Calls[0]) != 1 {
		t.Errorf("Expected bare disconnect, got %v", runner.Calls[0])
	}
}
