package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wsdlsync/internal/config"
)

func writeConfigFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "wsdlsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewApplication_ExplicitConfig(t *testing.T) {
	workspace := t.TempDir()
	configPath := writeConfigFile(t, t.TempDir(), "autoUpdateOnWSDLChange: true\nwsdlCheckInterval: 1\ntool: svcutil-test\n")

	cfg := NewConfig(false, workspace, configPath)
	cfg.Output = &bytes.Buffer{}

	application, err := NewApplication(cfg)
	require.NoError(t, err)
	defer application.Close()

	require.NotNil(t, cfg.Settings)
	assert.True(t, cfg.Settings.AutoUpdateOnWSDLChange)
	// Clamped to the minimum
	assert.Equal(t, config.MinCheckInterval, cfg.Settings.WSDLCheckInterval)
	assert.Equal(t, "svcutil-test", application.Services().Invoker.Tool())
	assert.True(t, application.Services().Supervisor.Config().AutoUpdate)
}

func TestNewApplication_PreloadedSettings(t *testing.T) {
	settings := config.GetDefaultSettings()
	settings.Tool = "preloaded"

	cfg := &Config{
		Workspace: t.TempDir(),
		Settings:  &settings,
		Output:    &bytes.Buffer{},
	}

	application, err := NewApplication(cfg)
	require.NoError(t, err)
	defer application.Close()

	assert.Equal(t, "preloaded", application.Services().Invoker.Tool())
}

func TestNewApplication_Errors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	tests := []struct {
		name string
		cfg  *Config
	}{
		{
			name: "missing workspace",
			cfg:  &Config{Workspace: filepath.Join(dir, "missing")},
		},
		{
			name: "workspace is a file",
			cfg:  &Config{Workspace: file},
		},
		{
			name: "missing explicit config",
			cfg:  &Config{Workspace: dir, ConfigPath: filepath.Join(dir, "nope.yaml")},
		},
		{
			name: "invalid explicit config",
			cfg:  &Config{Workspace: dir, ConfigPath: writeConfigFile(t, t.TempDir(), "tool: [unclosed\n")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Output = &bytes.Buffer{}
			application, err := NewApplication(tt.cfg)
			assert.Error(t, err)
			assert.Nil(t, application)
		})
	}
}

func TestLoadSettings_ResolvesWorkspace(t *testing.T) {
	dir := t.TempDir()
	settings := config.GetDefaultSettings()

	cwd, err := os.Getwd()
	require.NoError(t, err)
	rel, err := filepath.Rel(cwd, dir)
	require.NoError(t, err)

	cfg := &Config{Workspace: rel, Settings: &settings}
	require.NoError(t, LoadSettings(cfg))

	assert.True(t, filepath.IsAbs(cfg.Workspace))
	assert.Equal(t, filepath.Clean(dir), cfg.Workspace)
}
