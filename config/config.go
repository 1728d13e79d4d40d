// Package config loads the sgc-host configuration file
package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// DefaultPath is where sgc-host looks for its configuration
const DefaultPath = "sgcd.toml"

// Serial drivers
const (
	DriverTarm  = "tarm"
	DriverBugst = "bugst"
)

// Config is the complete host configuration
type Config struct {
	Serial       Serial  `toml:"serial"`
	Display      Display `toml:"display"`
	Notify       Notify  `toml:"notify"`
	Console      Console `toml:"console"`
	DebugLogging bool    `toml:"debug_logging"`

	// LogFile is a rotating log file; empty logs to the console only
	LogFile string `toml:"log_file"`
}

// Serial selects and configures the UART the display is attached to
type Serial struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3"); empty means auto-detect
	Device        string `toml:"device"`
	Baud          int    `toml:"baud" validate:"min=300,max=256000"`
	Driver        string `toml:"driver" validate:"oneof=tarm bugst"`
	ReadTimeoutMS int    `toml:"read_timeout_ms" validate:"min=0,max=10000"`
}

// Display holds controller options
type Display struct {
	ResetPin           uint32 `toml:"reset_pin"`
	ResetActiveHigh    bool   `toml:"reset_active_high"`
	TextGuard          int    `toml:"text_guard" validate:"min=0,max=64"`
	IdleTimeoutMinutes uint8  `toml:"idle_timeout_minutes"`
	IdleTimeoutEnabled bool   `toml:"idle_timeout_enabled"`
}

// Notify configures where state changes are reported
type Notify struct {
	Enabled    bool   `toml:"enabled"`
	TCPTarget  string `toml:"tcp_target" validate:"omitempty,hostname_port"`
	MQTTBroker string `toml:"mqtt_broker" validate:"omitempty,hostname_port"`
	MQTTTopic  string `toml:"mqtt_topic" validate:"required_with=MQTTBroker"`
	QueueSize  int    `toml:"queue_size" validate:"min=0,max=1024"`
}

// Console configures the ECMD line server
type Console struct {
	// Listen address for the TCP command server; empty disables it
	Listen string `toml:"listen" validate:"omitempty,hostname_port"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads and validates the file at path. A missing file yields the
// defaults.
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if errors.Is(err, afero.ErrFileNotFound) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML data, fills in defaults and validates the result
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Save writes cfg to path as TOML
func Save(fs afero.Fs, path string, cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Default returns the configuration used when no file exists
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// applyDefaults fills in missing configuration values with sensible defaults
func applyDefaults(cfg *Config) {
	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = 9600 // SGC modules power up at 9600 and auto-baud from there
	}
	if cfg.Serial.Driver == "" {
		cfg.Serial.Driver = DriverTarm
	}
	if cfg.Serial.ReadTimeoutMS == 0 {
		cfg.Serial.ReadTimeoutMS = 100
	}
	if cfg.Notify.MQTTBroker != "" && cfg.Notify.MQTTTopic == "" {
		cfg.Notify.MQTTTopic = "sgcd/events"
	}
	if cfg.Notify.QueueSize == 0 {
		cfg.Notify.QueueSize = 16
	}
}
