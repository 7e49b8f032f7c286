// Package config loads the runtime's ambient configuration: logging,
// reactor tuning, buffer tuning, and the launcher's service-registry
// contract.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (CORERT_*)
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
//
// Environment variables are applied only when a configuration file is
// found; without one, Load returns the default values unchanged.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/coreipc/corert/internal/bytesize"
)

// Config is the complete configuration for a corert host process.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" jsonschema:"title=Logging"`

	// Reactor holds settings for the single-threaded run loop.
	Reactor ReactorConfig `mapstructure:"reactor" yaml:"reactor" jsonschema:"title=Reactor"`

	// Buffers holds settings for wire-encode buffers.
	Buffers BufferConfig `mapstructure:"buffers" yaml:"buffers" jsonschema:"title=Buffers"`

	// Launcher configures the external-collaborator launching contract.
	Launcher LauncherConfig `mapstructure:"launcher" yaml:"launcher" jsonschema:"title=Launcher"`

	// Metrics contains Prometheus metrics server configuration.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics" jsonschema:"title=Metrics"`

	// Telemetry controls Pyroscope continuous profiling.
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry" jsonschema:"title=Telemetry"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format: text or json.
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written: stdout, stderr, or a file path.
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// ReactorConfig holds the event loop's wait-set batching and deadline
// settings (§4.5). pkg/reactor does not read them: a reactor always
// starts with a results buffer of 16 and grows it to at most 256, and
// AddHandler always takes an explicit deadline.
type ReactorConfig struct {
	// InitialResultsCapacity is the starting size of the per-iteration
	// wait-set results buffer.
	// Default: 16
	InitialResultsCapacity int `mapstructure:"initial_results_capacity" validate:"required,gt=0" yaml:"initial_results_capacity"`

	// MaxResultsCapacity caps how large the results buffer is allowed to
	// grow in response to a max_results growth hint.
	// Default: 256
	MaxResultsCapacity int `mapstructure:"max_results_capacity" validate:"required,gtefield=InitialResultsCapacity" yaml:"max_results_capacity"`

	// DefaultHandlerDeadline is a default handler deadline. Zero means
	// Forever. Nothing in this module reads it.
	DefaultHandlerDeadline time.Duration `mapstructure:"default_handler_deadline" yaml:"default_handler_deadline"`
}

// BufferConfig holds settings for wire-encode buffers.
type BufferConfig struct {
	// DefaultBlockSize is a block size for encode buffers. Nothing in this
	// module reads it; wire.Buffer has a fixed capacity and does not grow.
	// Default: 4KiB. Supports human-readable formats: "4KiB", "64Ki".
	DefaultBlockSize bytesize.ByteSize `mapstructure:"default_block_size" yaml:"default_block_size,omitempty"`
}

// LauncherConfig configures the external-collaborator launching contract:
// where the launcher places the rendezvous socket it hands a spawned
// service provider, and how long a connect request waits by default.
// Nothing in this module reads these values; launcher.Registry spawns no
// processes and applies no timeout of its own.
type LauncherConfig struct {
	// SocketDir is the directory the launcher creates rendezvous sockets in.
	SocketDir string `mapstructure:"socket_dir" validate:"required" yaml:"socket_dir"`

	// DefaultServiceTimeout bounds how long Connect waits for a spawned
	// service provider to claim its end of the handshake.
	DefaultServiceTimeout time.Duration `mapstructure:"default_service_timeout" validate:"required,gt=0" yaml:"default_service_timeout"`
}

// MetricsConfig configures the Prometheus metrics HTTP server. When
// Enabled is false, no metrics are collected.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the metrics endpoint.
	// Default: 9090
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// TelemetryConfig controls Pyroscope continuous profiling.
type TelemetryConfig struct {
	// Enabled controls whether continuous profiling is enabled.
	// Default: false (opt-in)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server endpoint (URL).
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ProfileTypes specifies which profile types to collect.
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// Load loads configuration from file, environment, and defaults. When no
// configuration file is found it returns GetDefaultConfig() and does not
// read the environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !configFileFound {
		return GetDefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration, returning a user-friendly error if the
// file is missing.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  corertd config init\n\n"+
				"Or specify a custom config file:\n"+
				"  corertd <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the configuration to path in YAML format.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate runs struct-tag validation over cfg.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("CORERT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "corert")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "corert")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the
// default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
