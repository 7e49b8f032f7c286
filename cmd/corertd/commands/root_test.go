package commands

import (
	"bytes"
	"testing"
)

func TestRootCmdHasExpectedSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range GetRootCmd().Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"version", "serve", "status", "config", "launcher", "diagnostics"} {
		if !names[want] {
			t.Errorf("expected rootCmd to have subcommand %q", want)
		}
	}
}

func TestVersionCommandPrintsVersion(t *testing.T) {
	Version = "1.2.3"
	defer func() { Version = "dev" }()

	root := GetRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetArgs([]string{"version", "--short"})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
}

func TestConfigSchemaCommandRuns(t *testing.T) {
	root := GetRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetArgs([]string{"config", "schema"})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
}

func TestGetConfigFileDefaultsEmpty(t *testing.T) {
	cfgFile = ""
	if GetConfigFile() != "" {
		t.Errorf("expected empty default config file, got %q", GetConfigFile())
	}
}
