package config

import "fmt"

// ConfigurationError reports a settings file that could not be read or
// written.
type ConfigurationError struct {
	FilePath string
	Message  string
	Cause    error
}

func (ce *ConfigurationError) Error() string {
	if ce.Cause != nil {
		return fmt.Sprintf("configuration error in %s: %s: %v", ce.FilePath, ce.Message, ce.Cause)
	}
	return fmt.Sprintf("configuration error in %s: %s", ce.FilePath, ce.Message)
}

func (ce *ConfigurationError) Unwrap() error {
	return ce.Cause
}
