package events

import (
	"wsdlsync/internal/sink"
	"wsdlsync/pkg/logging"
)

// Recorder writes rendered events to a sink and to the structured log.
type Recorder struct {
	sink      sink.Sink
	templates *MessageTemplateEngine
}

// NewRecorder creates a Recorder. A nil sink discards sink output.
func NewRecorder(s sink.Sink) *Recorder {
	if s == nil {
		s = sink.Discard
	}
	return &Recorder{
		sink:      s,
		templates: NewMessageTemplateEngine(),
	}
}

// Record renders the event, appends it to the sink, and returns the message.
func (r *Recorder) Record(reason EventReason, data EventData) string {
	message := r.templates.Render(reason, data)
	r.sink.Append(message)

	if eventType(reason) == EventTypeWarning {
		logging.Warn("Events", "%s: %s", reason, message)
	} else {
		logging.Debug("Events", "%s: %s", reason, message)
	}
	return message
}

// Templates exposes the template engine for customization.
func (r *Recorder) Templates() *MessageTemplateEngine {
	return r.templates
}
