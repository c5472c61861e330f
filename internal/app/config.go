package app

import (
	"io"

	"wsdlsync/internal/config"
)

// Config holds the application configuration
type Config struct {
	// Debug settings
	Debug bool

	// Workspace is the root searched for params documents.
	Workspace string

	// Custom configuration file (optional)
	// When set, disables layered configuration loading
	ConfigPath string

	// LogFile receives the log sink. Empty writes it to Output.
	LogFile string

	// Interactive enables terminal prompts. Otherwise confirmation prompts
	// are answered by AutoAccept.
	Interactive bool
	AutoAccept  bool

	// Monitor starts monitoring every discovered target in watch mode and
	// every params document created while watching.
	Monitor bool

	// StateDir holds run locks and write markers shared between wsdlsync
	// processes. Empty uses runstate.DefaultDir().
	StateDir string

	// Quiet suppresses success and failure notifications on the console.
	Quiet bool

	// Output is where notifications and the default log sink go.
	Output io.Writer

	// Settings is loaded during bootstrap when nil.
	Settings *config.Settings
}

// NewConfig creates a new application configuration
func NewConfig(debug bool, workspace, configPath string) *Config {
	return &Config{
		Debug:      debug,
		Workspace:  workspace,
		ConfigPath: configPath,
	}
}
