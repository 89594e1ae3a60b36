package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces the environment variables read by LoadSettings.
const EnvPrefix = "HYPRRULES_"

const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Settings are process-level knobs that live outside the rule document.
type Settings struct {
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
	Stats     bool   `koanf:"stats"`
}

func defaultSettings() map[string]interface{} {
	return map[string]interface{}{
		"log_level":  "info",
		"log_format": LogFormatConsole,
		"stats":      true,
	}
}

// LoadSettings merges defaults with HYPRRULES_* environment overrides.
func LoadSettings() (Settings, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaultSettings(), "."), nil); err != nil {
		return Settings{}, fmt.Errorf("load default settings: %w", err)
	}
	// Empty variables are ignored so that VAR= does not wipe a default.
	err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), value
	}), nil)
	if err != nil {
		return Settings{}, fmt.Errorf("load env settings: %w", err)
	}

	var s Settings
	conf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &s,
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &s, conf); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	s.LogFormat = strings.ToLower(s.LogFormat)
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate rejects unknown enumerations.
func (s Settings) Validate() error {
	switch strings.ToLower(s.LogFormat) {
	case LogFormatConsole, LogFormatJSON:
	default:
		return fmt.Errorf("log_format must be console or json, got %q", s.LogFormat)
	}
	return nil
}

// DefaultRulesPath is the rule file used when no path is given on the command line.
func DefaultRulesPath() string {
	return filepath.Join(xdg.ConfigHome, "hypr", "rules.yaml")
}
