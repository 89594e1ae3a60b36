package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadSettingsDefaults(t *testing.T) {
	t.Setenv("HYPRRULES_LOG_LEVEL", "")
	t.Setenv("HYPRRULES_LOG_FORMAT", "")
	t.Setenv("HYPRRULES_STATS", "")

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	want := Settings{LogLevel: "info", LogFormat: LogFormatConsole, Stats: true}
	if s != want {
		t.Fatalf("unexpected defaults: got %+v want %+v", s, want)
	}
}

func TestLoadSettingsEnvOverrides(t *testing.T) {
	t.Setenv("HYPRRULES_LOG_LEVEL", "debug")
	t.Setenv("HYPRRULES_LOG_FORMAT", "JSON")
	t.Setenv("HYPRRULES_STATS", "false")

	s, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	want := Settings{LogLevel: "debug", LogFormat: LogFormatJSON, Stats: false}
	if s != want {
		t.Fatalf("unexpected settings: got %+v want %+v", s, want)
	}
}

func TestLoadSettingsRejectsUnknownFormat(t *testing.T) {
	t.Setenv("HYPRRULES_LOG_FORMAT", "xml")

	_, err := LoadSettings()
	if err == nil || !strings.Contains(err.Error(), "log_format") {
		t.Fatalf("expected log_format error, got %v", err)
	}
}

func TestDefaultRulesPath(t *testing.T) {
	path := DefaultRulesPath()
	if !strings.HasSuffix(path, filepath.Join("hypr", "rules.yaml")) {
		t.Fatalf("unexpected path %q", path)
	}
}
