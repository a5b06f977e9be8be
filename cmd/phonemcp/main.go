package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/phonemcp/phonemcp/internal/adb"
	"github.com/phonemcp/phonemcp/internal/config"
	"github.com/phonemcp/phonemcp/internal/errortypes"
	"github.com/phonemcp/phonemcp/internal/history"
	"github.com/phonemcp/phonemcp/internal/logger"
	"github.com/phonemcp/phonemcp/internal/server"
	"github.com/phonemcp/phonemcp/internal/telemetry"
	"github.com/phonemcp/phonemcp/internal/ui"
)

const banner = `
╔══════════════════════════════════════════════════════════════╗
║                         PhoneMCP                             ║
║        Android Device Control via MCP Protocol               ║
╚══════════════════════════════════════════════════════════════╝
`

const usageGuide = `
================== Usage Guide ==================

PhoneMCP exposes Android device control over the MCP protocol so an
AI assistant can drive a connected device.

MCP tools provided:
  - list_devices        : list connected devices
  - connect_device      : connect a device over the network
  - get_screenshot      : capture the screen (optionally annotated)
  - get_ui_elements     : detect on-screen UI elements
  - tap_element         : tap an element by index, text, or id
  - tap / swipe         : raw coordinate gestures
  - type_text           : type text, including Unicode
  - press_back / press_home / press_key
  - launch_app          : launch an app by name or package
  - get_action_history  : review recent device actions

Client configuration:

  SSE mode:
  {
    "mcpServers": {
      "phonemcp": { "url": "http://localhost:8009/sse" }
    }
  }

  STDIO mode:
  {
    "mcpServers": {
      "phonemcp": {
        "command": "/path/to/phonemcp",
        "args": ["-transport", "stdio"]
      }
    }
  }

Prerequisites:
  1. adb installed and on PATH
  2. A device connected over USB or WiFi with USB debugging on
  3. For Unicode typing: the ADB Keyboard app installed on the device
  4. For OCR fallback: tesseract installed on the host

=================================================
`

func main() {
	var (
		transport  string
		host       string
		port       int
		configPath string
		showGuide  bool
	)

	flag.StringVar(&transport, "transport", "", "transport mode: stdio or sse (default from config)")
	flag.StringVar(&transport, "t", "", "shorthand for -transport")
	flag.StringVar(&host, "host", "", "SSE listen host (default from config)")
	flag.StringVar(&host, "H", "", "shorthand for -host")
	flag.IntVar(&port, "port", 0, "SSE listen port (default from config)")
	flag.IntVar(&port, "p", 0, "shorthand for -port")
	flag.StringVar(&configPath, "config", config.DefaultConfigFilename, "path to the configuration file")
	flag.BoolVar(&showGuide, "guide", false, "print the usage guide and exit")
	flag.Parse()

	if showGuide {
		fmt.Fprint(os.Stderr, banner)
		fmt.Fprint(os.Stderr, usageGuide)
		return
	}

	// Initialize logging first thing
	appLogger := setupLogging()

	appLogger.Info("PhoneMCP MCP Server - Starting...")

	// Load configuration
	cfg, err := config.InitGlobal(configPath)
	if err != nil {
		errortypes.LogError(nil, errortypes.ConfigError(err, "failed to load configuration"))
		appLogger.Fatal("Failed to load configuration")
	}

	// Flags override the configuration
	if transport != "" {
		cfg.Server.Transport = transport
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	// Configure logging based on config
	if cfg.Logging.Level != "" {
		appLogger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
		appLogger.Info("Log level set to %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format == "json" {
		appLogger.SetFormat(logger.JSON)
		appLogger.Info("Log format set to JSON")
	}

	if cfg.Server.Transport != server.TransportStdio {
		fmt.Fprint(os.Stderr, banner)
	}

	metrics := telemetry.NewMetricsCollector()

	// Initialize the device controller
	runner := adb.NewInstrumentedRunner(adb.NewExecRunner(cfg.ADB.Binary, cfg.ADBTimeout()), metrics)
	controller := adb.NewController(runner, cfg.ToTiming())
	device := server.NewBoundController(controller, cfg.ADB.Serial)
	appLogger.WithContext("adb").Info("Device controller initialized (binary: %s)", cfg.ADB.Binary)

	// Initialize the OCR fallback
	ocr := ui.NewOCR(cfg.OCR.Binary, cfg.OCR.Languages)
	appLogger.WithContext("ocr").Info("OCR engine initialized (binary: %s)", ocr.Binary)

	// Initialize the action history store
	var store history.Store
	if cfg.History.Enabled {
		sqliteStore := history.NewSQLiteStore()
		if err := sqliteStore.Initialize(cfg.History.SQLitePath); err != nil {
			err = errortypes.DatabaseError(err, "failed to initialize action history store")
			errortypes.LogError(nil, err)
			appLogger.Fatal("Failed to initialize action history store")
		}
		defer sqliteStore.Close()
		store = sqliteStore
		appLogger.WithContext("history").Info("Action history store initialized (path: %s)", cfg.History.SQLitePath)
	} else {
		appLogger.WithContext("history").Info("Action history disabled")
	}

	// Initialize the MCP server
	srv := server.NewPhoneToolServer(device, ocr, store, metrics, server.Options{
		Transport: cfg.Server.Transport,
		Host:      cfg.Server.Host,
		Port:      cfg.Server.Port,
		Serial:    cfg.ADB.Serial,
	})
	srvLogger := appLogger.WithContext("server")

	if err := srv.Initialize(); err != nil {
		errortypes.LogError(nil, errortypes.ConfigError(err, "failed to initialize MCP server"))
		appLogger.Fatal("Failed to initialize MCP server")
	}
	srvLogger.Info("MCP server initialized")

	// Handle graceful shutdown
	setupSignalHandler(store, appLogger)

	// Start the MCP server (this will block until server is terminated)
	srvLogger.Info("Starting MCP server (transport: %s)...", cfg.Server.Transport)
	if err := srv.Start(); err != nil {
		errortypes.LogError(nil, errortypes.ExternalError(err, "MCP server failed"))
		appLogger.Fatal("Failed to start MCP server")
	}
}

// setupLogging configures and returns the application logger
func setupLogging() *logger.Logger {
	// Create default configuration
	config := logger.DefaultConfig()

	// Try to get log level from environment variable
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		config.Level = logger.ParseLevel(levelStr)
	}

	// Create and return logger
	appLogger := logger.New(config)
	logger.SetDefaultLogger(appLogger)

	return appLogger
}

// setupSignalHandler sets up a signal handler for graceful shutdown.
func setupSignalHandler(store history.Store, log *logger.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Received shutdown signal, terminating gracefully...")

		if store != nil {
			if err := store.Close(); err != nil {
				errortypes.LogError(nil, errortypes.DatabaseError(err, "error closing history store during shutdown"))
			} else {
				log.Info("History store closed successfully")
			}
		}

		log.Info("Shutdown complete")
		os.Exit(0)
	}()
}
