package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	// Test default version
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	// Test that version is at least "dev" or "unknown"
	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestConfigFields(t *testing.T) {
	// Create a config instance to test field access
	cfg := &Cfg{
		ConfigDir:    "./config",
		CacheDir:     "./cache",
		DBPath:       "./test.db",
		FailureLog:   "./failures.log",
		Port:         "8088",
		FetchTimeout: 30,
		UserAgent:    "Test Agent",
		Timezone:     "UTC",
		Debug:        true,
		Version:      "test-version",
	}

	// Test direct field access
	if cfg.ConfigDir != "./config" {
		t.Errorf("Expected config dir './config', got '%s'", cfg.ConfigDir)
	}
	if cfg.CacheDir != "./cache" {
		t.Errorf("Expected cache dir './cache', got '%s'", cfg.CacheDir)
	}
	if cfg.DBPath != "./test.db" {
		t.Errorf("Expected db path './test.db', got '%s'", cfg.DBPath)
	}
	if cfg.FailureLog != "./failures.log" {
		t.Errorf("Expected failure log './failures.log', got '%s'", cfg.FailureLog)
	}
	if cfg.Port != "8088" {
		t.Errorf("Expected port '8088', got '%s'", cfg.Port)
	}
	if cfg.FetchTimeout != 30 {
		t.Errorf("Expected fetch timeout 30, got %d", cfg.FetchTimeout)
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Expected timezone 'UTC', got '%s'", cfg.Timezone)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
	if cfg.Version != "test-version" {
		t.Errorf("Expected version 'test-version', got '%s'", cfg.Version)
	}
}
