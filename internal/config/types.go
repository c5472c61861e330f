package config

import "time"

// Settings is the wsdlsync configuration surface.
type Settings struct {
	// AutoRunOnChange regenerates when a params document changes on disk.
	AutoRunOnChange bool `yaml:"autoRunOnChange" json:"autoRunOnChange"`

	// ShowNotifications enables success and failure notifications.
	ShowNotifications bool `yaml:"showNotifications" json:"showNotifications"`

	// AutoUpdateOnWSDLChange regenerates on a remote change without asking.
	AutoUpdateOnWSDLChange bool `yaml:"autoUpdateOnWSDLChange" json:"autoUpdateOnWSDLChange"`

	// WSDLCheckInterval is the polling interval in seconds.
	WSDLCheckInterval int `yaml:"wsdlCheckInterval" json:"wsdlCheckInterval"`

	// ShowChangeDetails includes fingerprints in change messages.
	ShowChangeDetails bool `yaml:"showChangeDetails" json:"showChangeDetails"`

	// AutoStartMonitoring starts monitoring every target found at startup
	// and every newly created params document.
	AutoStartMonitoring bool `yaml:"autoStartMonitoring" json:"autoStartMonitoring"`

	Tool              string        `yaml:"tool" json:"tool"`
	FetchTimeout      time.Duration `yaml:"fetchTimeout" json:"fetchTimeout"`
	GenerationTimeout time.Duration `yaml:"generationTimeout" json:"generationTimeout"`
	PromptTimeout     time.Duration `yaml:"promptTimeout" json:"promptTimeout"`
	SuppressionWindow time.Duration `yaml:"suppressionWindow" json:"suppressionWindow"`
}

// CheckInterval returns the clamped polling interval.
func (s Settings) CheckInterval() time.Duration {
	return time.Duration(ClampInterval(s.WSDLCheckInterval)) * time.Second
}

// ClampInterval bounds seconds to [MinCheckInterval, MaxCheckInterval].
func ClampInterval(seconds int) int {
	switch {
	case seconds < MinCheckInterval:
		return MinCheckInterval
	case seconds > MaxCheckInterval:
		return MaxCheckInterval
	default:
		return seconds
	}
}
