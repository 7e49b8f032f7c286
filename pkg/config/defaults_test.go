package config

import "testing"

func TestApplyDefaultsFillsZeroValues(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("expected default level INFO, got %q", cfg.Logging.Level)
	}
	if cfg.Reactor.MaxResultsCapacity != 256 {
		t.Errorf("expected default max_results_capacity 256, got %d", cfg.Reactor.MaxResultsCapacity)
	}
	if cfg.Launcher.DefaultServiceTimeout == 0 {
		t.Error("expected a non-zero default service timeout")
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("expected default metrics port 9090, got %d", cfg.Metrics.Port)
	}
	if len(cfg.Telemetry.ProfileTypes) == 0 {
		t.Error("expected default profile types to be populated")
	}
}

func TestApplyDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "debug"
	cfg.Reactor.InitialResultsCapacity = 32

	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("expected level to be normalized to uppercase, got %q", cfg.Logging.Level)
	}
	if cfg.Reactor.InitialResultsCapacity != 32 {
		t.Errorf("expected explicit initial_results_capacity to be preserved, got %d", cfg.Reactor.InitialResultsCapacity)
	}
}

func TestGetDefaultConfigIsValid(t *testing.T) {
	cfg := GetDefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Errorf("expected default config to validate, got: %v", err)
	}
}
