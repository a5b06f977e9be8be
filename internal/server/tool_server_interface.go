// Package server provides the MCP server implementation for the PhoneMCP service.
package server

import (
	"context"

	"github.com/phonemcp/phonemcp/internal/adb"
	"github.com/phonemcp/phonemcp/internal/ui"
)

// PhoneToolServer defines the interface for the MCP server that handles
// device-control tool calls from MCP clients.
type PhoneToolServer interface {
	// Initialize initializes the server with dependencies and configurations.
	Initialize() error

	// Start starts the MCP server on the specified transport.
	Start() error

	// Stop gracefully shuts down the MCP server.
	Stop() error
}

// DeviceController is the device-side surface the tool handlers drive.
// Device selection happens behind this interface; see BoundController.
type DeviceController interface {
	ListDevices(ctx context.Context) ([]adb.DeviceInfo, error)
	Connect(ctx context.Context, address string) (string, error)
	Disconnect(ctx context.Context, address string) (string, error)

	Screenshot(ctx context.Context) (*adb.Screenshot, error)
	DumpUIHierarchy(ctx context.Context) (string, error)

	Tap(ctx context.Context, x, y int) error
	DoubleTap(ctx context.Context, x, y int) error
	LongPress(ctx context.Context, x, y, durationMs int) error
	Swipe(ctx context.Context, startX, startY, endX, endY, durationMs int) error
	Back(ctx context.Context) error
	Home(ctx context.Context) error
	PressKey(ctx context.Context, key string) error

	TypeText(ctx context.Context, text string) error
	ClearText(ctx context.Context) error
	EnsureADBKeyboard(ctx context.Context) (string, error)
	RestoreKeyboard(ctx context.Context, previousIME string) error

	LaunchApp(ctx context.Context, appName string) (bool, error)
	LaunchPackage(ctx context.Context, pkg string) error
	CurrentApp(ctx context.Context) (string, error)
	SearchApps(ctx context.Context, keyword string) ([]string, error)
}

// OCREngine detects text elements on a PNG screenshot. *ui.OCR
// implements it.
type OCREngine interface {
	Elements(ctx context.Context, png []byte) ([]ui.Element, error)
}

// BoundController adapts *adb.Controller to DeviceController by pinning
// every device command to one serial. An empty serial lets adb choose,
// which works when exactly one device is attached.
type BoundController struct {
	Controller *adb.Controller
	Serial     string
}

// NewBoundController creates a BoundController for the given serial.
func NewBoundController(controller *adb.Controller, serial string) *BoundController {
	return &BoundController{Controller: controller, Serial: serial}
}

func (b *BoundController) ListDevices(ctx context.Context) ([]adb.DeviceInfo, error) {
	return b.Controller.ListDevices(ctx)
}

func (b *BoundController) Connect(ctx context.Context, address string) (string, error) {
	return b.Controller.Connect(ctx, address)
}

func (b *BoundController) Disconnect(ctx context.Context, address string) (string, error) {
	return b.Controller.Disconnect(ctx, address)
}

func (b *BoundController) Screenshot(ctx context.Context) (*adb.Screenshot, error) {
	return b.Controller.Screenshot(ctx, b.Serial)
}

func (b *BoundController) DumpUIHierarchy(ctx context.Context) (string, error) {
	return b.Controller.DumpUIHierarchy(ctx, b.Serial)
}

func (b *BoundController) Tap(ctx context.Context, x, y int) error {
	return b.Controller.Tap(ctx, b.Serial, x, y)
}

func (b *BoundController) DoubleTap(ctx context.Context, x, y int) error {
	return b.Controller.DoubleTap(ctx, b.Serial, x, y)
}

func (b *BoundController) LongPress(ctx context.Context, x, y, durationMs int) error {
	return b.Controller.LongPress(ctx, b.Serial, x, y, durationMs)
}

func (b *BoundController) Swipe(ctx context.Context, startX, startY, endX, endY, durationMs int) error {
	return b.Controller.Swipe(ctx, b.Serial, startX, startY, endX, endY, durationMs)
}

func (b *BoundController) Back(ctx context.Context) error {
	return b.Controller.Back(ctx, b.Serial)
}

func (b *BoundController) Home(ctx context.Context) error {
	return b.Controller.Home(ctx, b.Serial)
}

func (b *BoundController) PressKey(ctx context.Context, key string) error {
	return b.Controller.PressKey(ctx, b.Serial, key)
}

func (b *BoundController) TypeText(ctx context.Context, text string) error {
	return b.Controller.TypeText(ctx, b.Serial, text)
}

func (b *BoundController) ClearText(ctx context.Context) error {
	return b.Controller.ClearText(ctx, b.Serial)
}

func (b *BoundController) EnsureADBKeyboard(ctx context.Context) (string, error) {
	return b.Controller.EnsureADBKeyboard(ctx, b.Serial)
}

func (b *BoundController) RestoreKeyboard(ctx context.Context, previousIME string) error {
	return b.Controller.RestoreKeyboard(ctx, b.Serial, previousIME)
}

func (b *BoundController) LaunchApp(ctx context.Context, appName string) (bool, error) {
	return b.Controller.LaunchApp(ctx, b.Serial, appName)
}

func (b *BoundController) LaunchPackage(ctx context.Context, pkg string) error {
	return b.Controller.LaunchPackage(ctx, b.Serial, pkg)
}

func (b *BoundController) CurrentApp(ctx context.Context) (string, error) {
	return b.Controller.CurrentApp(ctx, b.Serial)
}

func (b *BoundController) SearchApps(ctx context.Context, keyword string) ([]string, error) {
	return b.Controller.SearchApps(ctx, b.Serial, keyword)
}
