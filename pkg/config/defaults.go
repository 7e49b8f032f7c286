package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/coreipc/corert/internal/bytesize"
)

// ApplyDefaults sets default values for any unspecified configuration
// fields.
//
// Default Strategy:
//   - Zero values (0, "", false) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyReactorDefaults(&cfg.Reactor)
	applyBufferDefaults(&cfg.Buffers)
	applyLauncherDefaults(&cfg.Launcher)
	applyMetricsDefaults(&cfg.Metrics)
	applyTelemetryDefaults(&cfg.Telemetry)

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyReactorDefaults(cfg *ReactorConfig) {
	if cfg.InitialResultsCapacity == 0 {
		cfg.InitialResultsCapacity = 16
	}
	if cfg.MaxResultsCapacity == 0 {
		cfg.MaxResultsCapacity = 256
	}
}

func applyBufferDefaults(cfg *BufferConfig) {
	if cfg.DefaultBlockSize == 0 {
		cfg.DefaultBlockSize = 4 * bytesize.KiB
	}
}

func applyLauncherDefaults(cfg *LauncherConfig) {
	if cfg.SocketDir == "" {
		cfg.SocketDir = filepath.Join("/tmp", "corert", "sockets")
	}
	if cfg.DefaultServiceTimeout == 0 {
		cfg.DefaultServiceTimeout = 5 * time.Second
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{"cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space", "goroutines"}
	}
}

// GetDefaultConfig returns a fully defaulted configuration, used when no
// config file is present.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
