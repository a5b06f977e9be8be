package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/localrivet/configurator"

	"github.com/phonemcp/phonemcp/internal/adb"
)

// Global configuration instance
var (
	// Global is the global configuration instance
	Global *Config
	// initOnce ensures initialization happens only once
	initOnce sync.Once
)

// InitGlobal initializes the global configuration
func InitGlobal(configPath string) (*Config, error) {
	var err error
	initOnce.Do(func() {
		Global, err = LoadConfigWithPath(configPath)
	})
	return Global, err
}

// Config represents the PhoneMCP configuration
type Config struct {
	// Server contains MCP transport configuration.
	Server struct {
		// Transport selects how the server speaks MCP ("stdio", "sse").
		Transport string `json:"transport" env:"TRANSPORT" validate:"required"`

		// Host is the listen host for the SSE transport.
		Host string `json:"host" env:"HOST"`

		// Port is the listen port for the SSE transport.
		Port int `json:"port" env:"PORT" validate:"min:1"`
	} `json:"server"`

	// ADB contains configuration for the adb binary.
	ADB struct {
		// Binary is the adb executable path or name.
		Binary string `json:"binary" env:"ADB_BINARY" validate:"required"`

		// TimeoutSeconds bounds one adb invocation.
		TimeoutSeconds int `json:"timeout_seconds" env:"ADB_TIMEOUT_SECONDS" validate:"min:1"`

		// Serial pins all commands to one device. Empty lets adb pick.
		Serial string `json:"serial" env:"ADB_SERIAL"`
	} `json:"adb"`

	// Timing contains post-action settle delays, in seconds.
	Timing struct {
		TapSeconds    float64 `json:"tap_seconds" env:"TIMING_TAP_SECONDS"`
		SwipeSeconds  float64 `json:"swipe_seconds" env:"TIMING_SWIPE_SECONDS"`
		KeySeconds    float64 `json:"key_seconds" env:"TIMING_KEY_SECONDS"`
		LaunchSeconds float64 `json:"launch_seconds" env:"TIMING_LAUNCH_SECONDS"`
	} `json:"timing"`

	// OCR contains configuration for the text-recognition fallback.
	OCR struct {
		// Binary is the tesseract executable path or name.
		Binary string `json:"binary" env:"OCR_BINARY"`

		// Languages is the tesseract language spec ("eng", "eng+chi_sim").
		Languages string `json:"languages" env:"OCR_LANGUAGES"`
	} `json:"ocr"`

	// History contains action-log configuration.
	History struct {
		// Enabled turns action recording on or off.
		Enabled bool `json:"enabled" env:"HISTORY_ENABLED"`

		// SQLitePath is the path to the SQLite database file.
		SQLitePath string `json:"sqlite_path" env:"HISTORY_SQLITE_PATH"`
	} `json:"history"`

	// Logging contains logging-related configuration.
	Logging struct {
		// Level is the minimum log level to display ("debug", "info", "warn", "error").
		Level string `json:"level" env:"LOG_LEVEL" validate:"required"`

		// Format is the log format to use ("text", "json").
		Format string `json:"format" env:"LOG_FORMAT"`
	} `json:"logging"`

	// Internal state (not saved to config file)
	configPath     string       `json:"-"`
	mutex          sync.RWMutex `json:"-"`
	lastModifiedAt time.Time    `json:"-"`
}

// Default configuration values
const (
	DefaultConfigFilename = ".phonemcpconfig"
	DefaultTransport      = "sse"
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 8009
	DefaultSQLitePath     = ".phonemcp.db"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	config := &Config{}
	config.Server.Transport = DefaultTransport
	config.Server.Host = DefaultHost
	config.Server.Port = DefaultPort
	config.ADB.Binary = adb.DefaultBinary
	config.ADB.TimeoutSeconds = int(adb.DefaultTimeout / time.Second)
	config.Timing.TapSeconds = 1.0
	config.Timing.SwipeSeconds = 1.0
	config.Timing.KeySeconds = 0.5
	config.Timing.LaunchSeconds = 1.0
	config.OCR.Binary = ""
	config.OCR.Languages = ""
	config.History.Enabled = true
	config.History.SQLitePath = DefaultSQLitePath
	config.Logging.Level = DefaultLogLevel
	config.Logging.Format = DefaultLogFormat
	return config
}

// LoadConfig loads the configuration from the default path
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath(DefaultConfigFilename)
}

// LoadConfigWithPath loads the configuration from a specific path
func LoadConfigWithPath(configPath string) (*Config, error) {
	// Create a default logger for configuration loading. Stdout carries the
	// MCP protocol in stdio mode, so this goes to stderr.
	stdLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Create default configuration
	cfg := NewConfig()

	// Try to find config file if path is default
	if configPath == DefaultConfigFilename {
		foundPath, err := configurator.FindConfigFile(configPath)
		if err == nil {
			configPath = foundPath
			stdLogger.Debug("Found config file at " + foundPath)
		}
	}

	// Check if the file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// File doesn't exist, return default config
		stdLogger.Info("Config file not found, using default configuration", "path", configPath)
		cfg.configPath = configPath
		cfg.lastModifiedAt = time.Now()
		return cfg, nil
	}

	stdLogger.Info("Loading configuration", "path", configPath)

	// Create configurator instance
	config := configurator.New(stdLogger).
		WithProvider(configurator.NewDefaultProvider()).
		WithProvider(configurator.NewFileProvider(configPath)).
		WithProvider(configurator.NewEnvProvider("PHONEMCP")).
		WithValidator(configurator.NewDefaultValidator())

	// Load configuration
	ctx := context.Background()
	if err := config.Load(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Store the config path for future operations
	cfg.configPath = configPath
	cfg.lastModifiedAt = time.Now()

	return cfg, nil
}

// SaveToFile saves the configuration to the specified file
func (c *Config) SaveToFile(path string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	// Create directory if needed
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Save using configurator's SaveToFile function
	if err := configurator.SaveToFile(c, path, configurator.FormatJSON); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	// Update internal state
	c.configPath = path
	c.lastModifiedAt = time.Now()

	return nil
}

// Save saves the configuration to the last used file path
func (c *Config) Save() error {
	if c.configPath == "" {
		c.configPath = DefaultConfigFilename
	}
	return c.SaveToFile(c.configPath)
}

// GetConfigPath returns the path of the currently loaded configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// ADBTimeout returns the configured adb timeout as a duration.
func (c *Config) ADBTimeout() time.Duration {
	if c.ADB.TimeoutSeconds <= 0 {
		return adb.DefaultTimeout
	}
	return time.Duration(c.ADB.TimeoutSeconds) * time.Second
}

// ToTiming converts the configured settle delays to the adb timing set.
// Unset delays keep their defaults.
func (c *Config) ToTiming() adb.Timing {
	timing := adb.DefaultTiming()

	if d := secondsToDuration(c.Timing.TapSeconds); d > 0 {
		timing.Tap = d
		timing.DoubleTap = d
		timing.LongPress = d
	}
	if d := secondsToDuration(c.Timing.SwipeSeconds); d > 0 {
		timing.Swipe = d
	}
	if d := secondsToDuration(c.Timing.KeySeconds); d > 0 {
		timing.Key = d
		timing.Back = d
		timing.Home = d
	}
	if d := secondsToDuration(c.Timing.LaunchSeconds); d > 0 {
		timing.Launch = d
	}

	return timing
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
