package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"wsdlsync/pkg/logging"
)

const (
	userConfigDir    = ".config/wsdlsync"
	projectConfigDir = ".wsdlsync"
	configFileName   = "config.yaml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "WSDLSYNC_"
)

// Package-level seams for tests.
var (
	osUserHomeDir = os.UserHomeDir
	lookupEnv     = os.LookupEnv
)

// UserConfigPath returns ~/.config/wsdlsync/config.yaml.
func UserConfigPath() (string, error) {
	home, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(home, userConfigDir, configFileName), nil
}

// ProjectConfigPath returns <workspace>/.wsdlsync/config.yaml.
func ProjectConfigPath(workspace string) string {
	return filepath.Join(workspace, projectConfigDir, configFileName)
}

// Load builds the settings for workspace. A non-empty explicitPath replaces
// the user and workspace files and must exist.
func Load(workspace, explicitPath string) (Settings, error) {
	settings := GetDefaultSettings()

	if explicitPath != "" {
		if err := mergeFile(&settings, explicitPath, true); err != nil {
			return Settings{}, err
		}
	} else {
		if userPath, err := UserConfigPath(); err != nil {
			logging.Debug("ConfigLoader", "Skipping user config: %v", err)
		} else if err := mergeFile(&settings, userPath, false); err != nil {
			return Settings{}, err
		}
		if workspace != "" {
			if err := mergeFile(&settings, ProjectConfigPath(workspace), false); err != nil {
				return Settings{}, err
			}
		}
	}

	if err := applyEnv(&settings); err != nil {
		return Settings{}, err
	}

	settings.Normalize()
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// mergeFile decodes path on top of settings. Keys absent from the file keep
// their current values.
func mergeFile(settings *Settings, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			logging.Debug("ConfigLoader", "No config.yaml found at %s", path)
			return nil
		}
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return &ConfigurationError{FilePath: path, Message: "malformed YAML", Cause: err}
	}
	logging.Info("ConfigLoader", "Loaded configuration from %s", path)
	return nil
}

type envBinding struct {
	name  string
	apply func(s *Settings, value string) error
}

var envBindings = []envBinding{
	{"AUTO_RUN_ON_CHANGE", boolSetter(func(s *Settings) *bool { return &s.AutoRunOnChange })},
	{"SHOW_NOTIFICATIONS", boolSetter(func(s *Settings) *bool { return &s.ShowNotifications })},
	{"AUTO_UPDATE_ON_WSDL_CHANGE", boolSetter(func(s *Settings) *bool { return &s.AutoUpdateOnWSDLChange })},
	{"SHOW_CHANGE_DETAILS", boolSetter(func(s *Settings) *bool { return &s.ShowChangeDetails })},
	{"AUTO_START_MONITORING", boolSetter(func(s *Settings) *bool { return &s.AutoStartMonitoring })},
	{"WSDL_CHECK_INTERVAL", func(s *Settings, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		s.WSDLCheckInterval = n
		return nil
	}},
	{"TOOL", func(s *Settings, v string) error {
		s.Tool = v
		return nil
	}},
	{"FETCH_TIMEOUT", durationSetter(func(s *Settings) *time.Duration { return &s.FetchTimeout })},
	{"GENERATION_TIMEOUT", durationSetter(func(s *Settings) *time.Duration { return &s.GenerationTimeout })},
	{"PROMPT_TIMEOUT", durationSetter(func(s *Settings) *time.Duration { return &s.PromptTimeout })},
	{"SUPPRESSION_WINDOW", durationSetter(func(s *Settings) *time.Duration { return &s.SuppressionWindow })},
}

func boolSetter(field func(*Settings) *bool) func(*Settings, string) error {
	return func(s *Settings, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(s) = b
		return nil
	}
}

func durationSetter(field func(*Settings) *time.Duration) func(*Settings, string) error {
	return func(s *Settings, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(s) = d
		return nil
	}
}

// applyEnv applies WSDLSYNC_* overrides. Every malformed value is reported.
func applyEnv(settings *Settings) error {
	var errs ValidationErrors
	for _, b := range envBindings {
		value, ok := lookupEnv(EnvPrefix + b.name)
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if err := b.apply(settings, value); err != nil {
			errs.Add(EnvPrefix+b.name, fmt.Sprintf("invalid value: %v", err), value)
			continue
		}
		logging.Debug("ConfigLoader", "Applied %s%s=%s", EnvPrefix, b.name, value)
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}

// Normalize clamps the check interval into its allowed range.
func (s *Settings) Normalize() {
	clamped := ClampInterval(s.WSDLCheckInterval)
	if clamped != s.WSDLCheckInterval {
		logging.Warn("ConfigLoader", "wsdlCheckInterval %d is out of range, using %d", s.WSDLCheckInterval, clamped)
		s.WSDLCheckInterval = clamped
	}
	s.Tool = strings.TrimSpace(s.Tool)
}
