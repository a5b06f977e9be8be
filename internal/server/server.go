// Package server provides the MCP server implementation for the PhoneMCP service.
package server

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/localrivet/gomcp/server"

	"github.com/phonemcp/phonemcp/internal/adb"
	"github.com/phonemcp/phonemcp/internal/apps"
	"github.com/phonemcp/phonemcp/internal/errortypes"
	"github.com/phonemcp/phonemcp/internal/history"
	"github.com/phonemcp/phonemcp/internal/telemetry"
	"github.com/phonemcp/phonemcp/internal/tools"
	"github.com/phonemcp/phonemcp/internal/ui"
	"github.com/phonemcp/phonemcp/internal/util"
)

// Common server error types
var (
	ErrServerNotInitialized = errors.New("server not initialized")
	ErrMissingDependencies  = errors.New("one or more required dependencies are nil")
)

// Transport names accepted by Options.Transport.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// elementCacheTTL is how long a detected element set stays valid. Screens
// change under the agent's feet, so this is short.
const elementCacheTTL = 30 * time.Second

// Options configures an MCPPhoneToolServer.
type Options struct {
	// Transport selects how the server speaks MCP ("stdio", "sse").
	Transport string

	// Host and Port are the SSE listen address. Ignored for stdio.
	Host string
	Port int

	// Serial pins all device commands to one device. Empty lets adb pick.
	Serial string
}

// elementCache holds the last detected element set together with the
// request shape that produced it.
type elementCache struct {
	elements      []ui.Element
	source        string
	clickableOnly bool
	mode          string
	when          time.Time
}

// MCPPhoneToolServer implements the PhoneToolServer interface
// for handling MCP tool calls that control an Android device.
type MCPPhoneToolServer struct {
	device  DeviceController
	ocr     OCREngine
	store   history.Store
	metrics *telemetry.MetricsCollector
	opts    Options

	mcpServer server.Server

	cacheMu sync.Mutex
	cache   elementCache

	// now and sleep are injectable for tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// NewPhoneToolServer creates a new MCPPhoneToolServer instance. The
// history store may be nil, which disables action recording.
func NewPhoneToolServer(device DeviceController, ocr OCREngine, store history.Store, metrics *telemetry.MetricsCollector, opts Options) *MCPPhoneToolServer {
	return &MCPPhoneToolServer{
		device:  device,
		ocr:     ocr,
		store:   store,
		metrics: metrics,
		opts:    opts,
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// Initialize initializes the server with dependencies and configurations.
func (s *MCPPhoneToolServer) Initialize() error {
	slog.Info("Initializing MCP Phone Tool Server")

	if s.device == nil || s.ocr == nil {
		return errortypes.ConfigError(ErrMissingDependencies, "server initialization failed")
	}
	if s.metrics == nil {
		s.metrics = telemetry.NewMetricsCollector()
	}

	srv := server.NewServer("phonemcp")

	srv = srv.Tool(tools.ToolListDevices, "List connected Android devices",
		s.handleListDevices)
	srv = srv.Tool(tools.ToolConnectDevice, "Connect to a device over the network by address",
		s.handleConnectDevice)
	srv = srv.Tool(tools.ToolDisconnectDevice, "Disconnect a network device, or all network devices",
		s.handleDisconnectDevice)

	srv = srv.Tool(tools.ToolGetScreenshot, "Capture the device screen, optionally annotated with numbered UI elements",
		s.handleGetScreenshot)
	srv = srv.Tool(tools.ToolGetUIElements, "Detect UI elements on the current screen via the view hierarchy or OCR",
		s.handleGetUIElements)

	srv = srv.Tool(tools.ToolTap, "Tap the screen at a coordinate",
		s.handleTap)
	srv = srv.Tool(tools.ToolDoubleTap, "Double-tap the screen at a coordinate",
		s.handleDoubleTap)
	srv = srv.Tool(tools.ToolLongPress, "Long-press the screen at a coordinate",
		s.handleLongPress)
	srv = srv.Tool(tools.ToolSwipe, "Swipe between two screen coordinates",
		s.handleSwipe)
	srv = srv.Tool(tools.ToolTapElement, "Tap a detected UI element by index, text, or resource id",
		s.handleTapElement)

	srv = srv.Tool(tools.ToolTypeText, "Type text into the focused field, including Unicode",
		s.handleTypeText)
	srv = srv.Tool(tools.ToolClearText, "Clear the focused text field",
		s.handleClearText)

	srv = srv.Tool(tools.ToolPressBack, "Press the back button",
		s.handlePressBack)
	srv = srv.Tool(tools.ToolPressHome, "Press the home button",
		s.handlePressHome)
	srv = srv.Tool(tools.ToolPressKey, "Press a key by name or Android keycode",
		s.handlePressKey)

	srv = srv.Tool(tools.ToolLaunchApp, "Launch an app by friendly name or package name",
		s.handleLaunchApp)
	srv = srv.Tool(tools.ToolGetCurrentApp, "Report the app currently in the foreground",
		s.handleGetCurrentApp)
	srv = srv.Tool(tools.ToolSearchApps, "Search installed packages by keyword",
		s.handleSearchApps)

	srv = srv.Tool(tools.ToolWait, "Pause before the next action",
		s.handleWait)
	srv = srv.Tool(tools.ToolGetActionHistory, "Retrieve recently performed device actions",
		s.handleGetActionHistory)

	s.mcpServer = srv
	slog.Info("MCP Phone Tool Server initialized successfully", "tool_count", 20)
	return nil
}

// Start starts the MCP server on the specified transport.
func (s *MCPPhoneToolServer) Start() error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(ErrServerNotInitialized, "cannot start server")
	}

	switch s.opts.Transport {
	case TransportSSE:
		addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
		slog.Info("Starting MCP Phone Tool Server", "transport", TransportSSE, "addr", addr)
		return s.mcpServer.AsSSE(addr).Run()
	case TransportStdio, "":
		slog.Info("Starting MCP Phone Tool Server", "transport", TransportStdio)
		return s.mcpServer.AsStdio().Run()
	default:
		return errortypes.ConfigError(fmt.Errorf("unknown transport %q", s.opts.Transport), "cannot start server")
	}
}

// Stop gracefully shuts down the MCP server.
func (s *MCPPhoneToolServer) Stop() error {
	slog.Info("Stopping MCP Phone Tool Server")
	// The stdio server exits when stdin is closed
	return nil
}

// record stores one entry in the action history. Failures are logged and
// swallowed so a broken history database never blocks device control.
func (s *MCPPhoneToolServer) record(action, detail string) {
	if s.store == nil {
		return
	}

	timestamp := s.now()
	entry := history.Entry{
		ID:        util.GenerateHash(action+detail, timestamp.UnixNano()),
		Action:    action,
		Detail:    detail,
		Serial:    s.opts.Serial,
		Timestamp: timestamp,
	}
	if err := s.store.Record(entry); err != nil {
		slog.Warn("Failed to record action history entry", "action", action, "error", err)
	}
}

// fail marks the response envelope and counts the failure. The typed error
// is logged, not returned: tool calls always answer with a response the
// client can read.
func (s *MCPPhoneToolServer) fail(err *errortypes.AppError, status *string, message *string) {
	errortypes.LogError(nil, err)
	s.metrics.IncrementCounter(telemetry.MetricToolCallsFailed, 1)
	*status = "error"
	*message = err.Error()
}

// handleListDevices handles the list_devices MCP tool call.
func (s *MCPPhoneToolServer) handleListDevices(ctx *server.Context, req tools.ListDevicesRequest) (tools.ListDevicesResponse, error) {
	slog.Info("Processing list_devices request")
	s.metrics.IncrementCounter(telemetry.MetricToolCalls, 1)

	response := tools.ListDevicesResponse{
		Status:  "success",
		Devices: []adb.DeviceInfo{},
	}

	devices, err := s.device.ListDevices(context.Background())
	if err != nil {
		appErr := errortypes.ExternalError(err, "failed to list devices")
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	response.Devices = devices
	response.Count = len(devices)
	s.metrics.SetGauge(telemetry.MetricConnectedDevices, float64(len(devices)))
	s.metrics.RecordTimestamp(telemetry.MetricLastDeviceCheck)
	slog.Info("Successfully listed devices", "count", len(devices))
	return response, nil
}

// handleConnectDevice handles the connect_device MCP tool call.
func (s *MCPPhoneToolServer) handleConnectDevice(ctx *server.Context, req tools.ConnectDeviceRequest) (tools.ConnectDeviceResponse, error) {
	slog.Info("Processing connect_device request", "address", req.Address)
	s.metrics.IncrementCounter(telemetry.MetricToolCalls, 1)

	response := tools.ConnectDeviceResponse{
		Status: "success",
	}

	if req.Address == "" {
		appErr := errortypes.ValidationError(errors.New("address cannot be empty for connect_device"), "invalid connect_device request")
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	address, err := s.device.Connect(context.Background(), req.Address)
	if err != nil {
		appErr := errortypes.DeviceError(err, "failed to connect to device").
			WithField("address", req.Address)
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	response.Address = address
	s.record(tools.ToolConnectDevice, req.Address)
	slog.Info("Successfully connected to device", "address", address)
	return response, nil
}

// handleDisconnectDevice handles the disconnect_device MCP tool call.
func (s *MCPPhoneToolServer) handleDisconnectDevice(ctx *server.Context, req tools.DisconnectDeviceRequest) (tools.DisconnectDeviceResponse, error) {
	slog.Info("Processing disconnect_device request", "address", req.Address)
	s.metrics.IncrementCounter(telemetry.MetricToolCalls, 1)

	response := tools.DisconnectDeviceResponse{
		Status: "success",
	}

	if _, err := s.device.Disconnect(context.Background(), req.Address); err != nil {
		appErr := errortypes.DeviceError(err, "failed to disconnect device").
			WithField("address", req.Address)
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	s.record(tools.ToolDisconnectDevice, req.Address)
	slog.Info("Successfully disconnected", "address", req.Address)
	return response, nil
}

// handleGetScreenshot handles the get_screenshot MCP tool call.
func (s *MCPPhoneToolServer) handleGetScreenshot(ctx *server.Context, req tools.GetScreenshotRequest) (tools.GetScreenshotResponse, error) {
	slog.Info("Processing get_screenshot request", "annotated", req.Annotated)
	s.metrics.IncrementCounter(telemetry.MetricToolCalls, 1)
	s.metrics.IncrementCounter(telemetry.MetricScreenshots, 1)

	response := tools.GetScreenshotResponse{
		Status: "success",
	}

	started := s.now()
	shot, err := s.device.Screenshot(context.Background())
	if err != nil {
		appErr := errortypes.DeviceError(err, "failed to capture screenshot")
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}
	s.metrics.RecordTimer(telemetry.MetricScreenshotTime, s.now().Sub(started))

	var jpegData []byte
	if req.Annotated {
		// Same request shape as tap_element, so the scan here seeds its
		// cache.
		elements, _, detectErr := s.detectElements(context.Background(), false, tools.ModeAuto, false)
		if detectErr != nil {
			appErr := errortypes.DeviceError(detectErr, "failed to detect elements for annotation")
			s.fail(appErr, &response.Status, &response.Error)
			return response, nil
		}

		jpegData, err = ui.Annotate(shot.PNG, elements)
		if err != nil {
			appErr := errortypes.InternalError(err, "failed to annotate screenshot")
			s.fail(appErr, &response.Status, &response.Error)
			return response, nil
		}
		response.ElementCount = len(elements)
	} else {
		jpegData, err = ui.EncodeJPEG(shot.PNG, ui.ScreenshotQuality)
		if err != nil {
			appErr := errortypes.InternalError(err, "failed to encode screenshot")
			s.fail(appErr, &response.Status, &response.Error)
			return response, nil
		}
	}

	response.Image = base64.StdEncoding.EncodeToString(jpegData)
	response.MimeType = "image/jpeg"
	slog.Info("Successfully captured screenshot", "bytes", len(jpegData), "annotated", req.Annotated)
	return response, nil
}

// handleGetUIElements handles the get_ui_elements MCP tool call.
func (s *MCPPhoneToolServer) handleGetUIElements(ctx *server.Context, req tools.GetUIElementsRequest) (tools.GetUIElementsResponse, error) {
	slog.Info("Processing get_ui_elements request", "clickable_only", req.ClickableOnly, "mode", req.Mode)
	s.metrics.IncrementCounter(telemetry.MetricToolCalls, 1)
	s.metrics.IncrementCounter(telemetry.MetricElementQueries, 1)

	response := tools.GetUIElementsResponse{
		Status:   "success",
		Elements: []ui.Element{},
	}

	mode := req.Mode
	if mode == "" {
		mode = tools.ModeAuto
	}
	if mode != tools.ModeAuto && mode != tools.ModeXML && mode != tools.ModeOCR {
		appErr := errortypes.ValidationError(fmt.Errorf("unknown mode %q", req.Mode), "invalid get_ui_elements request")
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	elements, source, err := s.detectElements(context.Background(), req.ClickableOnly, mode, false)
	if err != nil {
		appErr := errortypes.DeviceError(err, "failed to detect UI elements")
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	response.Elements = elements
	response.Formatted = ui.FormatForLLM(elements)
	response.Count = len(elements)
	response.Source = source
	slog.Info("Successfully detected UI elements", "count", len(elements), "source", source)
	return response, nil
}

// handleTap handles the tap MCP tool call.
func (s *MCPPhoneToolServer) handleTap(ctx *server.Context, req tools.TapRequest) (tools.TapResponse, error) {
	slog.Info("Processing tap request", "x", req.X, "y", req.Y)
	s.metrics.IncrementCounter(telemetry.MetricToolCalls, 1)

	response := tools.TapResponse{
		Status: "success",
	}

	if err := s.validateCoordinate(req.X, req.Y); err != nil {
		s.fail(err, &response.Status, &response.Error)
		return response, nil
	}

	if err := s.device.Tap(context.Background(), req.X, req.Y); err != nil {
		appErr := errortypes.DeviceError(err, "failed to tap").
			WithField("x", req.X).WithField("y", req.Y)
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	s.invalidateElementCache()
	s.record(tools.ToolTap, fmt.Sprintf("x=%d y=%d", req.X, req.Y))
	return response, nil
}

// handleDoubleTap handles the double_tap MCP tool call.
func (s *MCPPhoneToolServer) handleDoubleTap(ctx *server.Context, req tools.DoubleTapRequest) (tools.DoubleTapResponse, error) {
	slog.Info("Processing double_tap request", "x", req.X, "y", req.Y)
	s.metrics.IncrementCounter(telemetry.MetricToolCalls, 1)

	response := tools.DoubleTapResponse{
		Status: "success",
	}

	if err := s.validateCoordinate(req.X, req.Y); err != nil {
		s.fail(err, &response.Status, &response.Error)
		return response, nil
	}

	if err := s.device.DoubleTap(context.Background(), req.X, req.Y); err != nil {
		appErr := errortypes.DeviceError(err, "failed to double-tap").
			WithField("x", req.X).WithField("y", req.Y)
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	s.invalidateElementCache()
	s.record(tools.ToolDoubleTap, fmt.Sprintf("x=%d y=%d", req.X, req.Y))
	return response, nil
}

// handleLongPress handles the long_press MCP tool call.
func (s *MCPPhoneToolServer) handleLongPress(ctx *server.Context, req tools.LongPressRequest) (tools.LongPressResponse, error) {
	slog.Info("Processing long_press request", "x", req.X, "y", req.Y, "duration_ms", req.DurationMS)
	s.metrics.IncrementCounter(telemetry.MetricToolCalls, 1)

	response := tools.LongPressResponse{
		Status: "success",
	}

	if err := s.validateCoordinate(req.X, req.Y); err != nil {
		s.fail(err, &response.Status, &response.Error)
		return response, nil
	}

	if err := s.device.LongPress(context.Background(), req.X, req.Y, req.DurationMS); err != nil {
		appErr := errortypes.DeviceError(err, "failed to long-press").
			WithField("x", req.X).WithField("y", req.Y)
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	s.invalidateElementCache()
	s.record(tools.ToolLongPress, fmt.Sprintf("x=%d y=%d duration_ms=%d", req.X, req.Y, req.DurationMS))
	return response, nil
}

// handleSwipe handles the swipe MCP tool call.
func (s *MCPPhoneToolServer) handleSwipe(ctx *server.Context, req tools.SwipeRequest) (tools.SwipeResponse, error) {
	slog.Info("Processing swipe request", "x1", req.X1, "y1", req.Y1, "x2", req.X2, "y2", req.Y2)
	s.metrics.IncrementCounter(telemetry.MetricToolCalls, 1)

	response := tools.SwipeResponse{
		Status: "success",
	}

	if err := s.validateCoordinate(req.X1, req.Y1); err != nil {
		s.fail(err, &response.Status, &response.Error)
		return response, nil
	}
	if err := s.validateCoordinate(req.X2, req.Y2); err != nil {
		s.fail(err, &response.Status, &response.Error)
		return response, nil
	}

	if err := s.device.Swipe(context.Background(), req.X1, req.Y1, req.X2, req.Y2, req.DurationMS); err != nil {
		appErr := errortypes.DeviceError(err, "failed to swipe")
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	s.invalidateElementCache()
	s.record(tools.ToolSwipe, fmt.Sprintf("from=(%d,%d) to=(%d,%d)", req.X1, req.Y1, req.X2, req.Y2))
	return response, nil
}

// handleTapElement handles the tap_element MCP tool call.
func (s *MCPPhoneToolServer) handleTapElement(ctx *server.Context, req tools.TapElementRequest) (tools.TapElementResponse, error) {
	slog.Info("Processing tap_element request", "text", req.Text, "resource_id", req.ResourceID, "refresh", req.Refresh)
	s.metrics.IncrementCounter(telemetry.MetricToolCalls, 1)

	response := tools.TapElementResponse{
		Status: "success",
	}

	if req.Index == nil && req.Text == "" && req.ResourceID == "" {
		appErr := errortypes.ValidationError(
			errors.New("one of index, text, or resource_id is required for tap_element"),
			"invalid tap_element request")
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	elem, err := s.matchElement(context.Background(), req, req.Refresh)
	if err != nil {
		appErr := errortypes.DeviceError(err, "failed to detect UI elements")
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}
	if elem == nil && !req.Refresh {
		// The cached view may be stale. Rescan once before giving up.
		elem, err = s.matchElement(context.Background(), req, true)
		if err != nil {
			appErr := errortypes.DeviceError(err, "failed to detect UI elements")
			s.fail(appErr, &response.Status, &response.Error)
			return response, nil
		}
	}
	if elem == nil {
		appErr := errortypes.ValidationError(errors.New("no matching element on screen"), "tap_element target not found").
			WithField("text", req.Text).
			WithField("resource_id", req.ResourceID)
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	center := elem.Center()
	if err := s.device.Tap(context.Background(), center.X, center.Y); err != nil {
		appErr := errortypes.DeviceError(err, "failed to tap element").
			WithField("x", center.X).WithField("y", center.Y)
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	s.invalidateElementCache()
	response.Element = elem
	response.TappedAt = &center
	s.record(tools.ToolTapElement, fmt.Sprintf("%s at (%d,%d)", elem.Label(), center.X, center.Y))
	slog.Info("Successfully tapped element", "label", elem.Label(), "x", center.X, "y", center.Y)
	return response, nil
}

// matchElement finds the requested element in the current element set,
// rescanning when refresh is set.
func (s *MCPPhoneToolServer) matchElement(ctx context.Context, req tools.TapElementRequest, refresh bool) (*ui.Element, error) {
	elements, _, err := s.detectElements(ctx, false, tools.ModeAuto, refresh)
	if err != nil {
		return nil, err
	}

	switch {
	case req.Index != nil:
		return ui.FindByIndex(elements, *req.Index), nil
	case req.Text != "":
		return ui.FindByText(elements, req.Text, req.Exact), nil
	default:
		return ui.FindByResourceID(elements, req.ResourceID, !req.Exact), nil
	}
}

// handleTypeText handles the type_text MCP tool call.
func (s *MCPPhoneToolServer) handleTypeText(ctx *server.Context, req tools.TypeTextRequest) (tools.TypeTextResponse, error) {
	clearFirst := req.ClearFirst == nil || *req.ClearFirst
	slog.Info("Processing type_text request", "text_length", len(req.Text), "clear_first", clearFirst)
	s.metrics.IncrementCounter(telemetry.MetricToolCalls, 1)

	response := tools.TypeTextResponse{
		Status: "success",
	}

	if req.Text == "" {
		appErr := errortypes.ValidationError(errors.New("text cannot be empty for type_text"), "invalid type_text request")
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	bg := context.Background()
	previousIME, err := s.device.EnsureADBKeyboard(bg)
	if err != nil {
		appErr := errortypes.DeviceError(err, "failed to activate ADB keyboard")
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}
	defer s.restoreKeyboard(bg, previousIME)

	if clearFirst {
		if err := s.device.ClearText(bg); err != nil {
			appErr := errortypes.DeviceError(err, "failed to clear field before typing")
			s.fail(appErr, &response.Status, &response.Error)
			return response, nil
		}
	}

	if err := s.device.TypeText(bg, req.Text); err != nil {
		appErr := errortypes.DeviceError(err, "failed to type text").
			WithField("text_length", len(req.Text))
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	s.invalidateElementCache()
	s.record(tools.ToolTypeText, fmt.Sprintf("%d chars", len(req.Text)))
	slog.Info("Successfully typed text", "text_length", len(req.Text))
	return response, nil
}

// handleClearText handles the clear_text MCP tool call.
func (s *MCPPhoneToolServer) handleClearText(ctx *server.Context, req tools.ClearTextRequest) (tools.ClearTextResponse, error) {
	slog.Info("Processing clear_text request")
	s.metrics.IncrementCounter(telemetry.MetricToolCalls, 1)

	response := tools.ClearTextResponse{
		Status: "success",
	}

	bg := context.Background()
	previousIME, err := s.device.EnsureADBKeyboard(bg)
	if err != nil {
		appErr := errortypes.DeviceError(err, "failed to activate ADB keyboard")
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}
	defer s.restoreKeyboard(bg, previousIME)

	if err := s.device.ClearText(bg); err != nil {
		appErr := errortypes.DeviceError(err, "failed to clear text")
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	s.invalidateElementCache()
	s.record(tools.ToolClearText, "")
	return response, nil
}

func (s *MCPPhoneToolServer) restoreKeyboard(ctx context.Context, previousIME string) {
	if err := s.device.RestoreKeyboard(ctx, previousIME); err != nil {
		slog.Warn("Failed to restore previous keyboard", "previous_ime", previousIME, "error", err)
	}
}

// handlePressBack handles the press_back MCP tool call.
func (s *MCPPhoneToolServer) handlePressBack(ctx *server.Context, req tools.PressBackRequest) (tools.PressBackResponse, error) {
	slog.Info("Processing press_back request")
	s.metrics.IncrementCounter(telemetry.MetricToolCalls, 1)

	response := tools.PressBackResponse{
		Status: "success",
	}

	if err := s.device.Back(context.Background()); err != nil {
		appErr := errortypes.DeviceError(err, "failed to press back")
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	s.invalidateElementCache()
	s.record(tools.ToolPressBack, "")
	return response, nil
}

// handlePressHome handles the press_home MCP tool call.
func (s *MCPPhoneToolServer) handlePressHome(ctx *server.Context, req tools.PressHomeRequest) (tools.PressHomeResponse, error) {
	slog.Info("Processing press_home request")
	s.metrics.IncrementCounter(telemetry.MetricToolCalls, 1)

	response := tools.PressHomeResponse{
		Status: "success",
	}

	if err := s.device.Home(context.Background()); err != nil {
		appErr := errortypes.DeviceError(err, "failed to press home")
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	s.invalidateElementCache()
	s.record(tools.ToolPressHome, "")
	return response, nil
}

// handlePressKey handles the press_key MCP tool call.
func (s *MCPPhoneToolServer) handlePressKey(ctx *server.Context, req tools.PressKeyRequest) (tools.PressKeyResponse, error) {
	slog.Info("Processing press_key request", "key", req.Key)
	s.metrics.IncrementCounter(telemetry.MetricToolCalls, 1)

	response := tools.PressKeyResponse{
		Status: "success",
	}

	if req.Key == "" {
		appErr := errortypes.ValidationError(errors.New("key cannot be empty for press_key"), "invalid press_key request")
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	if err := s.device.PressKey(context.Background(), req.Key); err != nil {
		appErr := errortypes.DeviceError(err, "failed to press key").
			WithField("key", req.Key)
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	s.invalidateElementCache()
	response.Keycode = adb.ResolveKeycode(req.Key)
	s.record(tools.ToolPressKey, req.Key)
	return response, nil
}

// handleLaunchApp handles the launch_app MCP tool call.
func (s *MCPPhoneToolServer) handleLaunchApp(ctx *server.Context, req tools.LaunchAppRequest) (tools.LaunchAppResponse, error) {
	slog.Info("Processing launch_app request", "app_name", req.AppName, "package_name", req.PackageName)
	s.metrics.IncrementCounter(telemetry.MetricToolCalls, 1)

	response := tools.LaunchAppResponse{
		Status: "success",
	}

	bg := context.Background()
	switch {
	case req.PackageName != "":
		if err := s.device.LaunchPackage(bg, req.PackageName); err != nil {
			appErr := errortypes.DeviceError(err, "failed to launch package").
				WithField("package", req.PackageName)
			s.fail(appErr, &response.Status, &response.Error)
			return response, nil
		}
		response.Package = req.PackageName

	case req.AppName != "":
		known, err := s.device.LaunchApp(bg, req.AppName)
		if err != nil {
			appErr := errortypes.DeviceError(err, "failed to launch app").
				WithField("app_name", req.AppName)
			s.fail(appErr, &response.Status, &response.Error)
			return response, nil
		}
		if !known {
			appErr := errortypes.ValidationError(
				fmt.Errorf("unknown app %q; use package_name or search_apps", req.AppName),
				"launch_app target not found")
			s.fail(appErr, &response.Status, &response.Error)
			return response, nil
		}
		response.Package = apps.PackageName(req.AppName)

	default:
		appErr := errortypes.ValidationError(
			errors.New("one of app_name or package_name is required for launch_app"),
			"invalid launch_app request")
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	s.invalidateElementCache()
	s.record(tools.ToolLaunchApp, response.Package)
	slog.Info("Successfully launched app", "package", response.Package)
	return response, nil
}

// handleGetCurrentApp handles the get_current_app MCP tool call.
func (s *MCPPhoneToolServer) handleGetCurrentApp(ctx *server.Context, req tools.GetCurrentAppRequest) (tools.GetCurrentAppResponse, error) {
	slog.Info("Processing get_current_app request")
	s.metrics.IncrementCounter(telemetry.MetricToolCalls, 1)

	response := tools.GetCurrentAppResponse{
		Status: "success",
	}

	name, err := s.device.CurrentApp(context.Background())
	if err != nil {
		appErr := errortypes.DeviceError(err, "failed to read foreground app")
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	response.AppName = name
	response.PackageName = apps.PackageName(name)
	slog.Info("Successfully read foreground app", "app_name", name)
	return response, nil
}

// handleSearchApps handles the search_apps MCP tool call.
func (s *MCPPhoneToolServer) handleSearchApps(ctx *server.Context, req tools.SearchAppsRequest) (tools.SearchAppsResponse, error) {
	slog.Info("Processing search_apps request", "query", req.Query)
	s.metrics.IncrementCounter(telemetry.MetricToolCalls, 1)

	response := tools.SearchAppsResponse{
		Status:   "success",
		Packages: []string{},
	}

	if req.Query == "" {
		appErr := errortypes.ValidationError(errors.New("query cannot be empty for search_apps"), "invalid search_apps request")
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	packages, err := s.device.SearchApps(context.Background(), req.Query)
	if err != nil {
		appErr := errortypes.DeviceError(err, "failed to search installed packages").
			WithField("query", req.Query)
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	response.Packages = packages
	response.Count = len(packages)
	slog.Info("Successfully searched packages", "query", req.Query, "count", len(packages))
	return response, nil
}

// handleWait handles the wait MCP tool call.
func (s *MCPPhoneToolServer) handleWait(ctx *server.Context, req tools.WaitRequest) (tools.WaitResponse, error) {
	slog.Info("Processing wait request", "seconds", req.Seconds)
	s.metrics.IncrementCounter(telemetry.MetricToolCalls, 1)

	response := tools.WaitResponse{
		Status: "success",
	}

	if req.Seconds < 0 {
		appErr := errortypes.ValidationError(errors.New("seconds must not be negative for wait"), "invalid wait request")
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	seconds := req.Seconds
	if seconds == 0 {
		seconds = tools.DefaultWaitSeconds
	}
	if seconds > tools.MaxWaitSeconds {
		seconds = tools.MaxWaitSeconds
	}

	s.sleep(time.Duration(seconds * float64(time.Second)))
	s.record(tools.ToolWait, fmt.Sprintf("%.1fs", seconds))
	return response, nil
}

// handleGetActionHistory handles the get_action_history MCP tool call.
func (s *MCPPhoneToolServer) handleGetActionHistory(ctx *server.Context, req tools.GetActionHistoryRequest) (tools.GetActionHistoryResponse, error) {
	slog.Info("Processing get_action_history request", "limit", req.Limit)
	s.metrics.IncrementCounter(telemetry.MetricToolCalls, 1)

	response := tools.GetActionHistoryResponse{
		Status:  "success",
		Entries: []history.Entry{},
	}

	if s.store == nil {
		appErr := errortypes.ConfigError(errors.New("action history is disabled"), "cannot read action history")
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	limit := req.Limit
	if limit <= 0 {
		limit = tools.DefaultHistoryLimit
		slog.Debug("Using default limit for get_action_history", "limit", limit)
	}

	entries, err := s.store.Recent(limit)
	if err != nil {
		appErr := errortypes.DatabaseError(err, "failed to read action history").
			WithField("limit", limit)
		s.fail(appErr, &response.Status, &response.Error)
		return response, nil
	}

	response.Entries = entries
	slog.Info("Successfully read action history", "count", len(entries))
	return response, nil
}

// validateCoordinate rejects negative screen coordinates.
func (s *MCPPhoneToolServer) validateCoordinate(x, y int) *errortypes.AppError {
	if x < 0 || y < 0 {
		return errortypes.ValidationError(
			fmt.Errorf("coordinates must be non-negative, got (%d, %d)", x, y),
			"invalid screen coordinate")
	}
	return nil
}

// detectElements returns the current element set, serving from the cache
// when the previous scan is fresh and matches the request shape.
func (s *MCPPhoneToolServer) detectElements(ctx context.Context, clickableOnly bool, mode string, refresh bool) ([]ui.Element, string, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	cached := s.cache
	if !refresh && !cached.when.IsZero() &&
		cached.clickableOnly == clickableOnly && cached.mode == mode &&
		s.now().Sub(cached.when) < elementCacheTTL {
		s.metrics.IncrementCounter(telemetry.MetricElementCacheHits, 1)
		return cached.elements, cached.source, nil
	}
	s.metrics.IncrementCounter(telemetry.MetricElementCacheMiss, 1)

	elements, source, err := s.scanElements(ctx, clickableOnly, mode)
	if err != nil {
		return nil, "", err
	}

	s.cache = elementCache{
		elements:      elements,
		source:        source,
		clickableOnly: clickableOnly,
		mode:          mode,
		when:          s.now(),
	}
	return elements, source, nil
}

// scanElements performs one fresh detection pass.
func (s *MCPPhoneToolServer) scanElements(ctx context.Context, clickableOnly bool, mode string) ([]ui.Element, string, error) {
	if mode == tools.ModeOCR {
		return s.scanOCR(ctx)
	}

	started := s.now()
	dump, err := s.device.DumpUIHierarchy(ctx)
	if err != nil {
		if mode == tools.ModeXML {
			return nil, "", err
		}
		slog.Warn("Hierarchy dump failed, falling back to OCR", "error", err)
		return s.scanOCR(ctx)
	}
	s.metrics.RecordTimer(telemetry.MetricHierarchyTime, s.now().Sub(started))

	elements := ui.ParseHierarchy(dump, clickableOnly)
	if len(elements) == 0 && mode == tools.ModeAuto {
		// Screens uiautomator cannot see into come back empty.
		slog.Debug("Hierarchy produced no elements, falling back to OCR")
		return s.scanOCR(ctx)
	}
	return elements, tools.ModeXML, nil
}

func (s *MCPPhoneToolServer) scanOCR(ctx context.Context) ([]ui.Element, string, error) {
	s.metrics.IncrementCounter(telemetry.MetricOCRRuns, 1)

	shot, err := s.device.Screenshot(ctx)
	if err != nil {
		return nil, "", err
	}

	started := s.now()
	elements, err := s.ocr.Elements(ctx, shot.PNG)
	if err != nil {
		return nil, "", err
	}
	s.metrics.RecordTimer(telemetry.MetricOCRTime, s.now().Sub(started))

	return elements, tools.ModeOCR, nil
}

// invalidateElementCache drops the cached element set. Called after any
// action that can change the screen.
func (s *MCPPhoneToolServer) invalidateElementCache() {
	s.cacheMu.Lock()
	s.cache = elementCache{}
	s.cacheMu.Unlock()
}
