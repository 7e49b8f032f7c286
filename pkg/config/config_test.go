package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "INFO"

launcher:
  socket_dir: "` + filepath.ToSlash(tmpDir) + `/sockets"

shutdown_timeout: 15s
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Logging.Format != "text" {
		t.Errorf("expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("expected default output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Errorf("expected shutdown_timeout 15s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Reactor.InitialResultsCapacity != 16 {
		t.Errorf("expected default initial_results_capacity 16, got %d", cfg.Reactor.InitialResultsCapacity)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	nonExistentPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("expected no error when loading default config, got: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected default config to be returned")
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("expected default metrics port 9090, got %d", cfg.Metrics.Port)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	if err := os.WriteFile(configPath, []byte("logging: [unterminated"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("expected an error loading invalid YAML")
	}
}

func TestLoadByteSizeDecodeHook(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
buffers:
  default_block_size: "64Ki"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Buffers.DefaultBlockSize.Uint64() != 64*1024 {
		t.Errorf("expected default_block_size 64Ki, got %d", cfg.Buffers.DefaultBlockSize.Uint64())
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Logging.Level = "DEBUG"

	if err := SaveConfig(cfg, configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if loaded.Logging.Level != "DEBUG" {
		t.Errorf("expected reloaded level DEBUG, got %q", loaded.Logging.Level)
	}
}

func TestGetDefaultConfigPathUsesXDG(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	want := filepath.Join(tmpDir, "corert", "config.yaml")
	if got := GetDefaultConfigPath(); got != want {
		t.Errorf("expected default config path %q, got %q", want, got)
	}
}
