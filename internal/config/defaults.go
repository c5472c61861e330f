package config

import "time"

const (
	// DefaultCheckInterval is the polling interval in seconds.
	DefaultCheckInterval = 30
	MinCheckInterval     = 5
	MaxCheckInterval     = 300

	DefaultTool              = "dotnet"
	DefaultFetchTimeout      = 30 * time.Second
	DefaultGenerationTimeout = 10 * time.Minute
	DefaultPromptTimeout     = 60 * time.Second
	DefaultSuppressionWindow = 3 * time.Second
)

// GetDefaultSettings returns the built-in defaults.
func GetDefaultSettings() Settings {
	return Settings{
		AutoRunOnChange:        true,
		ShowNotifications:      true,
		AutoUpdateOnWSDLChange: false,
		WSDLCheckInterval:      DefaultCheckInterval,
		ShowChangeDetails:      true,
		AutoStartMonitoring:    false,
		Tool:                   DefaultTool,
		FetchTimeout:           DefaultFetchTimeout,
		GenerationTimeout:      DefaultGenerationTimeout,
		PromptTimeout:          DefaultPromptTimeout,
		SuppressionWindow:      DefaultSuppressionWindow,
	}
}
