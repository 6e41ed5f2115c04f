package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/agentstation/pagecast/pkg/errors"
)

// TestLoadConfigDefaults verifies defaults when nothing is configured.
func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	config, err := loadConfig(viper.New(), "")
	if err != nil {
		t.Fatalf("loadConfig() failed: %v", err)
	}
	if config.Registrations != DefaultRegistrations {
		t.Errorf("Registrations = %q, want %q", config.Registrations, DefaultRegistrations)
	}
	if config.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", config.Timeout, DefaultTimeout)
	}
	if config.LogFormat == "" {
		t.Error("LogFormat not set to default")
	}
	if config.LogOutput != "stderr" {
		t.Errorf("LogOutput = %q, want stderr", config.LogOutput)
	}
}

// TestLoadConfigEnvironment verifies PAGECAST_* variables are read.
func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PAGECAST_TIMEOUT", "5s")
	t.Setenv("PAGECAST_POLICY", "first-success")
	t.Setenv("PAGECAST_BATCH_LIMIT", "3")
	t.Setenv("PAGECAST_FORMAT", "yaml")
	t.Setenv("PAGECAST_VERBOSE", "true")
	t.Setenv("LOG_LEVEL", "debug")

	config, err := loadConfig(viper.New(), "")
	if err != nil {
		t.Fatalf("loadConfig() failed: %v", err)
	}
	if config.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", config.Timeout)
	}
	if config.Policy != "first-success" {
		t.Errorf("Policy = %q, want first-success", config.Policy)
	}
	if config.BatchLimit != 3 {
		t.Errorf("BatchLimit = %d, want 3", config.BatchLimit)
	}
	if config.Format != "yaml" {
		t.Errorf("Format = %q, want yaml", config.Format)
	}
	if !config.Verbose {
		t.Error("PAGECAST_VERBOSE not loaded")
	}
	if config.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", config.LogLevel)
	}
}

// TestLoadConfigFile verifies an explicit config file is read.
func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagecast.yaml")
	body := "registrations: ./regs.yaml\npolicy: first-success\ntimeout: 2s\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := loadConfig(viper.New(), path)
	if err != nil {
		t.Fatalf("loadConfig() failed: %v", err)
	}
	if config.Registrations != "./regs.yaml" {
		t.Errorf("Registrations = %q, want ./regs.yaml", config.Registrations)
	}
	if config.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v, want 2s", config.Timeout)
	}
	if config.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", config.ConfigFile, path)
	}
}

// TestLoadConfigMissingFile verifies an explicit file must exist.
func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("loadConfig() succeeded for a missing file")
	}
	var cfgErr *errors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("error = %T, want *errors.ConfigError", err)
	}
}

// TestUpdateFromFlags verifies only changed flags override the config.
func TestUpdateFromFlags(t *testing.T) {
	config := &Config{
		Registrations: "file.yaml",
		Policy:        "first-success",
		Timeout:       time.Minute,
	}
	flags := Flags{
		Quiet:         true,
		Format:        "table",
		Registrations: DefaultRegistrations,
		Policy:        "first-settled",
		Timeout:       time.Second,
	}
	changed := map[string]bool{"timeout": true}

	config.UpdateFromFlags(flags, func(name string) bool { return changed[name] })

	if !config.Quiet {
		t.Error("Quiet not applied")
	}
	if config.Format != "table" {
		t.Errorf("Format = %q, want table", config.Format)
	}
	if config.Registrations != "file.yaml" {
		t.Errorf("Registrations = %q, want the unchanged file.yaml", config.Registrations)
	}
	if config.Policy != "first-success" {
		t.Errorf("Policy = %q, want the unchanged first-success", config.Policy)
	}
	if config.Timeout != time.Second {
		t.Errorf("Timeout = %v, want 1s", config.Timeout)
	}
}
