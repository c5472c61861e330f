package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"

	"wsdlsync/internal/config"
)

// SettingsAdapter gives thread-safe access to the effective settings and
// persists them as YAML.
type SettingsAdapter struct {
	mu         sync.RWMutex
	settings   config.Settings
	workspace  string
	configPath string
}

// NewSettingsAdapter creates an adapter for settings loaded for workspace.
// configPath is where Save writes; empty means the workspace config file.
func NewSettingsAdapter(settings config.Settings, workspace, configPath string) *SettingsAdapter {
	return &SettingsAdapter{
		settings:   settings,
		workspace:  workspace,
		configPath: configPath,
	}
}

// Get returns a copy of the current settings.
func (a *SettingsAdapter) Get() config.Settings {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.settings
}

// Update validates and replaces the settings in memory.
func (a *SettingsAdapter) Update(settings config.Settings) error {
	settings.Normalize()
	if err := settings.Validate(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.settings = settings
	return nil
}

// Path returns the file Save writes to.
func (a *SettingsAdapter) Path() string {
	if a.configPath != "" {
		return a.configPath
	}
	return config.ProjectConfigPath(a.workspace)
}

// Save writes the settings to Path. An existing file is only replaced when
// overwrite is set.
func (a *SettingsAdapter) Save(overwrite bool) (string, error) {
	path := a.Path()

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return path, &config.ConfigurationError{FilePath: path, Message: "file already exists"}
		}
	}

	a.mu.RLock()
	data, err := yaml.Marshal(a.settings)
	a.mu.RUnlock()
	if err != nil {
		return path, fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return path, &config.ConfigurationError{FilePath: path, Message: "failed to create directory", Cause: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return path, &config.ConfigurationError{FilePath: path, Message: "failed to write file", Cause: err}
	}
	return path, nil
}

// Reload loads the settings from disk again with the layered loader.
func (a *SettingsAdapter) Reload() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	settings, err := config.Load(a.workspace, a.configPath)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	a.settings = settings
	return nil
}

// SettingsView renders settings as KEY/VALUE rows.
type SettingsView config.Settings

// Headers implements formatting.Tabular.
func (v SettingsView) Headers() []string {
	return []string{"KEY", "VALUE"}
}

// Rows implements formatting.Tabular.
func (v SettingsView) Rows() [][]string {
	values := map[string]string{
		"autoRunOnChange":        strconv.FormatBool(v.AutoRunOnChange),
		"showNotifications":      strconv.FormatBool(v.ShowNotifications),
		"autoUpdateOnWSDLChange": strconv.FormatBool(v.AutoUpdateOnWSDLChange),
		"wsdlCheckInterval":      strconv.Itoa(v.WSDLCheckInterval),
		"showChangeDetails":      strconv.FormatBool(v.ShowChangeDetails),
		"autoStartMonitoring":    strconv.FormatBool(v.AutoStartMonitoring),
		"tool":                   v.Tool,
		"fetchTimeout":           v.FetchTimeout.String(),
		"generationTimeout":      v.GenerationTimeout.String(),
		"promptTimeout":          v.PromptTimeout.String(),
		"suppressionWindow":      v.SuppressionWindow.String(),
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, values[k]})
	}
	return rows
}
