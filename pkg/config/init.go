package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// configTemplate is the YAML written by InitConfig/InitConfigToPath. It
// mirrors GetDefaultConfig's values so a freshly generated file loads back
// to the same defaults, but is hand-formatted with comments for a human
// editing it directly.
const configTemplate = `# corert Configuration File
#
# This file configures the corert host process: its logger, its reactor
# run loop, its wire-encode buffer pool, its launcher, and its optional
# metrics and profiling endpoints.

logging:
  level: INFO
  format: text
  output: stdout

reactor:
  initial_results_capacity: 16
  max_results_capacity: 256
  default_handler_deadline: 0

buffers:
  default_block_size: 4KiB

launcher:
  socket_dir: /tmp/corert/sockets
  default_service_timeout: 5s

metrics:
  enabled: false
  port: 9090

telemetry:
  enabled: false
  endpoint: http://localhost:4040
  profile_types:
    - cpu
    - alloc_objects
    - alloc_space
    - inuse_objects
    - inuse_space
    - goroutines

shutdown_timeout: 10s
`

// InitConfig writes a default configuration file to the default location,
// returning the path it wrote. It fails if a file already exists there
// unless force is set.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes a default configuration file to path, creating
// any missing parent directories. It fails if a file already exists at
// path unless force is set.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", path)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
