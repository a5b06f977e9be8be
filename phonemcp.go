package phonemcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/phonemcp/phonemcp/internal/adb"
	"github.com/phonemcp/phonemcp/internal/config"
	"github.com/phonemcp/phonemcp/internal/errortypes"
	"github.com/phonemcp/phonemcp/internal/history"
	"github.com/phonemcp/phonemcp/internal/server"
	"github.com/phonemcp/phonemcp/internal/telemetry"
	"github.com/phonemcp/phonemcp/internal/ui"
	"github.com/phonemcp/phonemcp/internal/util"
)

// Config represents the configuration for the PhoneMCP service.
type Config = config.Config

// Server represents the PhoneMCP service.
type Server struct {
	config     *config.Config
	device     server.DeviceController
	ocr        server.OCREngine
	store      history.Store
	toolServer server.PhoneToolServer
	logger     *slog.Logger // Logger for this Server instance
}

// ServerOptions defines the options for creating a new Server.
type ServerOptions struct {
	Config     *Config      // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string       // Path to config file. Used if Config is nil. If both are empty, DefaultConfig() is used.
	Logger     *slog.Logger // External logger. If nil, slog.Default() is used.
}

// NewServer creates a new PhoneMCP Server with the given options.
// If opts.Config is provided, it will be used directly.
// Otherwise, if opts.ConfigPath is provided, configuration will be loaded from that path.
// If neither is provided, DefaultConfig() will be used.
// If opts.Logger is nil, slog.Default() will be used.
func NewServer(opts ServerOptions) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *Config
	var err error

	if opts.Config != nil {
		cfg = opts.Config
		logger.Info("Using provided Config object for server initialization")
	} else if opts.ConfigPath != "" {
		logger.Info("Loading configuration for server initialization", "path", opts.ConfigPath)
		cfg, err = config.LoadConfigWithPath(opts.ConfigPath)
		if err != nil {
			logger.Error("Failed to load configuration from path", "path", opts.ConfigPath, "error", err)
			return nil, errortypes.ConfigError(err, "Failed to load configuration from path: "+opts.ConfigPath)
		}
	} else {
		logger.Warn("No Config object or ConfigPath provided, using default configuration for server initialization")
		cfg = DefaultConfig()
	}

	metrics := telemetry.NewMetricsCollector()
	device, ocr, store, err := CreateComponents(cfg, logger, metrics)
	if err != nil {
		logger.Error("Failed to create components during server initialization", "error", err)
		return nil, err
	}

	logger.Info("Initializing phone tool server component")
	mcpServer := server.NewPhoneToolServer(device, ocr, store, metrics, server.Options{
		Transport: cfg.Server.Transport,
		Host:      cfg.Server.Host,
		Port:      cfg.Server.Port,
		Serial:    cfg.ADB.Serial,
	})
	if err := mcpServer.Initialize(); err != nil {
		logger.Error("Failed to initialize MCP phone tool server component", "error", err)
		return nil, errortypes.ConfigError(err, "Failed to initialize MCP phone tool server component")
	}

	logger.Info("PhoneMCP server successfully initialized")
	return &Server{
		config:     cfg,
		device:     device,
		ocr:        ocr,
		store:      store,
		toolServer: mcpServer,
		logger:     logger,
	}, nil
}

// DefaultConfig returns the default configuration for the PhoneMCP service.
func DefaultConfig() *Config {
	return config.NewConfig()
}

// SaveConfig serializes the configuration and returns the JSON content.
func SaveConfig(config *Config, path string) ([]byte, error) {
	// Pretty-print the JSON for better readability
	content, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, errortypes.ConfigError(err, "failed to marshal configuration")
	}

	return content, nil
}

// Start starts the PhoneMCP service.
func (s *Server) Start() error {
	s.logger.Info("Starting PhoneMCP service")
	return s.toolServer.Start()
}

// Stop stops the PhoneMCP service.
func (s *Server) Stop() error {
	s.logger.Info("Stopping PhoneMCP service")
	err := s.toolServer.Stop()
	if err != nil {
		s.logger.Error("Error stopping tool server", "error", err)
		return err
	}

	if s.store != nil {
		s.logger.Info("Closing action history store")
		if err := s.store.Close(); err != nil {
			s.logger.Error("Failed to close action history store", "error", err)
			return err
		}
	}

	s.logger.Info("PhoneMCP service stopped")
	return nil
}

// Screenshot captures the device screen and returns it as JPEG bytes.
func (s *Server) Screenshot(ctx context.Context) ([]byte, error) {
	s.logger.Debug("Capturing screenshot")
	shot, err := s.device.Screenshot(ctx)
	if err != nil {
		s.logger.Error("Failed to capture screenshot", "error", err)
		return nil, err
	}

	jpegData, err := ui.EncodeJPEG(shot.PNG, ui.ScreenshotQuality)
	if err != nil {
		s.logger.Error("Failed to encode screenshot", "error", err)
		return nil, err
	}

	s.logger.Info("Captured screenshot", "bytes", len(jpegData))
	return jpegData, nil
}

// Tap taps the device screen at the given coordinate and records the
// action.
func (s *Server) Tap(ctx context.Context, x, y int) error {
	s.logger.Debug("Tapping screen", "x", x, "y", y)
	if err := s.device.Tap(ctx, x, y); err != nil {
		s.logger.Error("Failed to tap", "x", x, "y", y, "error", err)
		return err
	}

	s.recordAction("tap", time.Now())
	return nil
}

// Elements detects UI elements on the current screen via the view
// hierarchy.
func (s *Server) Elements(ctx context.Context, clickableOnly bool) ([]ui.Element, error) {
	s.logger.Debug("Detecting UI elements", "clickable_only", clickableOnly)
	dump, err := s.device.DumpUIHierarchy(ctx)
	if err != nil {
		s.logger.Error("Failed to dump UI hierarchy", "error", err)
		return nil, err
	}

	elements := ui.ParseHierarchy(dump, clickableOnly)
	s.logger.Info("Detected UI elements", "count", len(elements))
	return elements, nil
}

// RecentActions returns the most recently recorded device actions.
func (s *Server) RecentActions(limit int) ([]history.Entry, error) {
	if s.store == nil {
		return nil, errortypes.ConfigError(nil, "action history is disabled")
	}
	return s.store.Recent(limit)
}

func (s *Server) recordAction(action string, timestamp time.Time) {
	if s.store == nil {
		return
	}
	entry := history.Entry{
		ID:        GenerateHash(action, timestamp.UnixNano()),
		Action:    action,
		Serial:    s.config.ADB.Serial,
		Timestamp: timestamp,
	}
	if err := s.store.Record(entry); err != nil {
		s.logger.Warn("Failed to record action", "action", action, "error", err)
	}
}

// GetDevice returns the device controller instance used by the server.
func (s *Server) GetDevice() server.DeviceController {
	return s.device
}

// GetOCR returns the OCR engine instance used by the server.
func (s *Server) GetOCR() server.OCREngine {
	return s.ocr
}

// GetStore returns the action history store used by the server. Nil when
// history is disabled.
func (s *Server) GetStore() history.Store {
	return s.store
}

// CreateComponents creates and initializes the components of the PhoneMCP service
// without creating a server instance. This is useful for callers that need
// direct access to the device controller, OCR engine, and history store.
// A nil metrics collector skips adb command instrumentation.
func CreateComponents(cfg *Config, logger *slog.Logger, metrics *telemetry.MetricsCollector) (server.DeviceController, server.OCREngine, history.Store, error) {
	if logger == nil {
		logger = slog.Default()
		logger.Debug("CreateComponents called with nil logger, defaulting to slog.Default()")
	}

	// Initialize the adb-backed device controller
	logger.Info("Initializing device controller for CreateComponents", "binary", cfg.ADB.Binary, "serial", cfg.ADB.Serial)
	var runner adb.Runner = adb.NewExecRunner(cfg.ADB.Binary, cfg.ADBTimeout())
	if metrics != nil {
		runner = adb.NewInstrumentedRunner(runner, metrics)
	}
	controller := adb.NewController(runner, cfg.ToTiming())
	device := server.NewBoundController(controller, cfg.ADB.Serial)

	// Initialize the OCR fallback
	logger.Info("Initializing OCR engine for CreateComponents", "binary", cfg.OCR.Binary, "languages", cfg.OCR.Languages)
	ocr := ui.NewOCR(cfg.OCR.Binary, cfg.OCR.Languages)

	// Initialize the action history store
	var store history.Store
	if cfg.History.Enabled {
		logger.Info("Initializing action history store for CreateComponents", "path", cfg.History.SQLitePath)
		sqliteStore := history.NewSQLiteStore()
		if err := sqliteStore.Initialize(cfg.History.SQLitePath); err != nil {
			logger.Error("Failed to initialize action history store in CreateComponents", "path", cfg.History.SQLitePath, "error", err)
			return nil, nil, nil, errortypes.DatabaseError(err, "Failed to initialize action history store")
		}
		store = sqliteStore
	} else {
		logger.Info("Action history disabled in CreateComponents")
	}

	logger.Info("Components successfully initialized via CreateComponents")
	return device, ocr, store, nil
}

// GenerateHash creates a short identifier from an action and a timestamp.
// This is a convenience wrapper around the internal util.GenerateHash function
func GenerateHash(action string, timestamp int64) string {
	return util.GenerateHash(action, timestamp)
}
