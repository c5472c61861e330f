package events

import (
	"time"
)

// EventType classifies an event as routine or worth attention.
type EventType string

const (
	// EventTypeNormal indicates normal, non-problematic events.
	EventTypeNormal EventType = "Normal"

	// EventTypeWarning indicates events that may require attention.
	EventTypeWarning EventType = "Warning"
)

// EventReason is the reason code for an event.
type EventReason string

// Monitoring lifecycle
const (
	ReasonMonitoringStarted EventReason = "MonitoringStarted"
	ReasonMonitoringStopped EventReason = "MonitoringStopped"
	ReasonBaselineRecorded  EventReason = "BaselineRecorded"
	ReasonWSDLChanged       EventReason = "WSDLChanged"
	ReasonChangeDeclined    EventReason = "ChangeDeclined"
	ReasonFetchFailed       EventReason = "FetchFailed"
	ReasonCheckFailed       EventReason = "CheckFailed"
)

// Generation lifecycle
const (
	ReasonGenerationStarted   EventReason = "GenerationStarted"
	ReasonGenerationSucceeded EventReason = "GenerationSucceeded"
	ReasonGenerationFailed    EventReason = "GenerationFailed"
	ReasonGenerationSkipped   EventReason = "GenerationSkipped"
	ReasonConfigInvalid       EventReason = "ConfigInvalid"
	ReasonConfigCreated       EventReason = "ConfigCreated"
)

// EventData carries the values a template can reference.
type EventData struct {
	// Target is the params document path.
	Target string

	// Identifier is the remote resource involved, if any.
	Identifier string

	// Previous and Current are fingerprints around a change.
	Previous string
	Current  string

	// Source names the trigger (Filesystem, RemoteWSDL, Manual).
	Source string

	// Reason explains a skip or a decline.
	Reason string

	// RunID identifies one generation run.
	RunID string

	Interval time.Duration
	Duration time.Duration
	ExitCode int
	Count    int
	Error    string

	// Details enables the fingerprint details in change messages.
	Details bool
}

// eventType returns the EventType for a reason.
func eventType(reason EventReason) EventType {
	switch reason {
	case ReasonFetchFailed,
		ReasonCheckFailed,
		ReasonGenerationFailed,
		ReasonConfigInvalid:
		return EventTypeWarning
	default:
		return EventTypeNormal
	}
}
