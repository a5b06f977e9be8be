// Package tools defines the interfaces and data structures
// for the PhoneMCP service.
package tools

import (
	"github.com/phonemcp/phonemcp/internal/adb"
	"github.com/phonemcp/phonemcp/internal/history"
	"github.com/phonemcp/phonemcp/internal/ui"
)

const (
	// ToolListDevices is the name of the list_devices MCP tool
	ToolListDevices = "list_devices"

	// ToolConnectDevice is the name of the connect_device MCP tool
	ToolConnectDevice = "connect_device"

	// ToolDisconnectDevice is the name of the disconnect_device MCP tool
	ToolDisconnectDevice = "disconnect_device"

	// ToolGetScreenshot is the name of the get_screenshot MCP tool
	ToolGetScreenshot = "get_screenshot"

	// ToolTap is the name of the tap MCP tool
	ToolTap = "tap"

	// ToolDoubleTap is the name of the double_tap MCP tool
	ToolDoubleTap = "double_tap"

	// ToolLongPress is the name of the long_press MCP tool
	ToolLongPress = "long_press"

	// ToolSwipe is the name of the swipe MCP tool
	ToolSwipe = "swipe"

	// ToolTypeText is the name of the type_text MCP tool
	ToolTypeText = "type_text"

	// ToolClearText is the name of the clear_text MCP tool
	ToolClearText = "clear_text"

	// ToolPressBack is the name of the press_back MCP tool
	ToolPressBack = "press_back"

	// ToolPressHome is the name of the press_home MCP tool
	ToolPressHome = "press_home"

	// ToolPressKey is the name of the press_key MCP tool
	ToolPressKey = "press_key"

	// ToolLaunchApp is the name of the launch_app MCP tool
	ToolLaunchApp = "launch_app"

	// ToolGetCurrentApp is the name of the get_current_app MCP tool
	ToolGetCurrentApp = "get_current_app"

	// ToolSearchApps is the name of the search_apps MCP tool
	ToolSearchApps = "search_apps"

	// ToolGetUIElements is the name of the get_ui_elements MCP tool
	ToolGetUIElements = "get_ui_elements"

	// ToolTapElement is the name of the tap_element MCP tool
	ToolTapElement = "tap_element"

	// ToolWait is the name of the wait MCP tool
	ToolWait = "wait"

	// ToolGetActionHistory is the name of the get_action_history MCP tool
	ToolGetActionHistory = "get_action_history"

	// DefaultHistoryLimit is the default number of entries to return
	// when no limit is specified in a get_action_history request
	DefaultHistoryLimit = 20

	// MaxWaitSeconds caps a single wait call
	MaxWaitSeconds = 30

	// DefaultWaitSeconds is the pause used when a wait request omits
	// the duration
	DefaultWaitSeconds = 1.0
)

// Element detection modes accepted by get_ui_elements.
const (
	ModeAuto = "auto"
	ModeXML  = "xml"
	ModeOCR  = "ocr"
)

// ListDevicesRequest defines the input schema for list_devices tool
type ListDevicesRequest struct{}

// ListDevicesResponse defines the output schema for list_devices tool
type ListDevicesResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Devices contains the connected devices
	Devices []adb.DeviceInfo `json:"devices"`

	// Count is the number of connected devices
	Count int `json:"count"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// ConnectDeviceRequest defines the input schema for connect_device tool
type ConnectDeviceRequest struct {
	// Address is the device network address ("192.168.1.10:5555")
	Address string `json:"address"`
}

// ConnectDeviceResponse defines the output schema for connect_device tool
type ConnectDeviceResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Address is the address the device is now reachable at
	Address string `json:"address,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// DisconnectDeviceRequest defines the input schema for disconnect_device tool
type DisconnectDeviceRequest struct {
	// Address is the device to disconnect. Empty disconnects all
	// network devices.
	Address string `json:"address,omitempty"`
}

// DisconnectDeviceResponse defines the output schema for disconnect_device tool
type DisconnectDeviceResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// GetScreenshotRequest defines the input schema for get_screenshot tool
type GetScreenshotRequest struct {
	// Annotated overlays numbered boxes for the current UI elements
	Annotated bool `json:"annotated,omitempty"`
}

// GetScreenshotResponse defines the output schema for get_screenshot tool
type GetScreenshotResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Image is the base64-encoded screenshot
	Image string `json:"image,omitempty"`

	// MimeType is the encoding of Image
	MimeType string `json:"mime_type,omitempty"`

	// ElementCount is the number of annotated elements, when Annotated
	ElementCount int `json:"element_count,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// TapRequest defines the input schema for tap tool
type TapRequest struct {
	// X is the horizontal screen coordinate in pixels
	X int `json:"x"`

	// Y is the vertical screen coordinate in pixels
	Y int `json:"y"`
}

// TapResponse defines the output schema for tap tool
type TapResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// DoubleTapRequest defines the input schema for double_tap tool
type DoubleTapRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DoubleTapResponse defines the output schema for double_tap tool
type DoubleTapResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// LongPressRequest defines the input schema for long_press tool
type LongPressRequest struct {
	X int `json:"x"`
	Y int `json:"y"`

	// DurationMS is the press duration in milliseconds. Zero uses the
	// default.
	DurationMS int `json:"duration_ms,omitempty"`
}

// LongPressResponse defines the output schema for long_press tool
type LongPressResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// SwipeRequest defines the input schema for swipe tool
type SwipeRequest struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`

	// DurationMS is the swipe duration in milliseconds. Zero derives a
	// duration from the swipe distance.
	DurationMS int `json:"duration_ms,omitempty"`
}

// SwipeResponse defines the output schema for swipe tool
type SwipeResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// TypeTextRequest defines the input schema for type_text tool
type TypeTextRequest struct {
	// Text is the text to type into the focused field. Unicode is
	// supported via the ADB Keyboard IME.
	Text string `json:"text"`

	// ClearFirst clears the field before typing. Omitted means true.
	ClearFirst *bool `json:"clear_first,omitempty"`
}

// TypeTextResponse defines the output schema for type_text tool
type TypeTextResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ClearTextRequest defines the input schema for clear_text tool
type ClearTextRequest struct{}

// ClearTextResponse defines the output schema for clear_text tool
type ClearTextResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// PressBackRequest defines the input schema for press_back tool
type PressBackRequest struct{}

// PressBackResponse defines the output schema for press_back tool
type PressBackResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// PressHomeRequest defines the input schema for press_home tool
type PressHomeRequest struct{}

// PressHomeResponse defines the output schema for press_home tool
type PressHomeResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// PressKeyRequest defines the input schema for press_key tool
type PressKeyRequest struct {
	// Key is a key name ("enter", "volume_up") or a numeric Android
	// keycode
	Key string `json:"key"`
}

// PressKeyResponse defines the output schema for press_key tool
type PressKeyResponse struct {
	Status string `json:"status"`

	// Keycode is the resolved Android keycode
	Keycode string `json:"keycode,omitempty"`

	Error string `json:"error,omitempty"`
}

// LaunchAppRequest defines the input schema for launch_app tool
type LaunchAppRequest struct {
	// AppName is a friendly app name ("chrome", "settings")
	AppName string `json:"app_name,omitempty"`

	// PackageName is an Android package name; takes precedence over
	// AppName
	PackageName string `json:"package_name,omitempty"`
}

// LaunchAppResponse defines the output schema for launch_app tool
type LaunchAppResponse struct {
	Status string `json:"status"`

	// Package is the package that was launched
	Package string `json:"package,omitempty"`

	Error string `json:"error,omitempty"`
}

// GetCurrentAppRequest defines the input schema for get_current_app tool
type GetCurrentAppRequest struct{}

// GetCurrentAppResponse defines the output schema for get_current_app tool
type GetCurrentAppResponse struct {
	Status string `json:"status"`

	// AppName is the friendly name when the package is known
	AppName string `json:"app_name,omitempty"`

	// PackageName is the foreground package
	PackageName string `json:"package_name,omitempty"`

	Error string `json:"error,omitempty"`
}

// SearchAppsRequest defines the input schema for search_apps tool
type SearchAppsRequest struct {
	// Query filters installed package names, case-insensitively
	Query string `json:"query"`
}

// SearchAppsResponse defines the output schema for search_apps tool
type SearchAppsResponse struct {
	Status string `json:"status"`

	// Packages contains the matching installed package names
	Packages []string `json:"packages"`

	// Count is the number of matches
	Count int `json:"count"`

	Error string `json:"error,omitempty"`
}

// GetUIElementsRequest defines the input schema for get_ui_elements tool
type GetUIElementsRequest struct {
	// ClickableOnly narrows the result to clickable elements and their
	// labels
	ClickableOnly bool `json:"clickable_only,omitempty"`

	// Mode selects the detection source: "xml", "ocr", or "auto"
	// (hierarchy first, OCR when the hierarchy comes back empty)
	Mode string `json:"mode,omitempty"`
}

// GetUIElementsResponse defines the output schema for get_ui_elements tool
type GetUIElementsResponse struct {
	Status string `json:"status"`

	// Elements contains the detected elements
	Elements []ui.Element `json:"elements"`

	// Formatted is a text rendering of Elements for direct agent use
	Formatted string `json:"formatted,omitempty"`

	// Count is the number of detected elements
	Count int `json:"count"`

	// Source is the detection source that produced the elements
	// ("xml" or "ocr")
	Source string `json:"source,omitempty"`

	Error string `json:"error,omitempty"`
}

// TapElementRequest defines the input schema for tap_element tool
type TapElementRequest struct {
	// Index selects an element by its index from get_ui_elements
	Index *int `json:"index,omitempty"`

	// Text selects the first element whose text or description matches
	Text string `json:"text,omitempty"`

	// ResourceID selects the first element whose resource id matches
	ResourceID string `json:"resource_id,omitempty"`

	// Exact requires a full text match instead of a substring match
	Exact bool `json:"exact,omitempty"`

	// Refresh forces a fresh element scan before matching
	Refresh bool `json:"refresh,omitempty"`
}

// TapElementResponse defines the output schema for tap_element tool
type TapElementResponse struct {
	Status string `json:"status"`

	// Element is the element that was tapped
	Element *ui.Element `json:"element,omitempty"`

	// TappedAt is the screen coordinate that was tapped
	TappedAt *ui.Point `json:"tapped_at,omitempty"`

	Error string `json:"error,omitempty"`
}

// WaitRequest defines the input schema for wait tool
type WaitRequest struct {
	// Seconds is how long to pause, capped at MaxWaitSeconds. Zero uses
	// DefaultWaitSeconds.
	Seconds float64 `json:"seconds,omitempty"`
}

// WaitResponse defines the output schema for wait tool
type WaitResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// GetActionHistoryRequest defines the input schema for get_action_history tool
type GetActionHistoryRequest struct {
	// Limit is the maximum number of entries to return
	// If not specified, DefaultHistoryLimit will be used
	Limit int `json:"limit,omitempty"`
}

// GetActionHistoryResponse defines the output schema for get_action_history tool
type GetActionHistoryResponse struct {
	Status string `json:"status"`

	// Entries contains the recorded actions, newest first
	Entries []history.Entry `json:"entries"`

	Error string `json:"error,omitempty"`
}
