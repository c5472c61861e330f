package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wsdlsync/internal/sink"
)

func TestRender_DefaultTemplates(t *testing.T) {
	e := NewMessageTemplateEngine()

	tests := []struct {
		name     string
		reason   EventReason
		data     EventData
		expected string
	}{
		{
			name:     "monitoring started plural",
			reason:   ReasonMonitoringStarted,
			data:     EventData{Target: "/w/params.json", Count: 2, Interval: 30 * time.Second},
			expected: "Started monitoring /w/params.json (2 remote documents, every 30s)",
		},
		{
			name:     "monitoring started singular",
			reason:   ReasonMonitoringStarted,
			data:     EventData{Target: "/w/params.json", Count: 1, Interval: 5 * time.Second},
			expected: "Started monitoring /w/params.json (1 remote document, every 5s)",
		},
		{
			name:     "change with details",
			reason:   ReasonWSDLChanged,
			data:     EventData{Identifier: "http://x", Previous: "aaaaaaaaaaaaaaaa", Current: "bbbbbbbbbbbbbbbb", Details: true},
			expected: "WSDL changed: http://x (aaaaaaaaaaaa -> bbbbbbbbbbbb)",
		},
		{
			name:     "change without details",
			reason:   ReasonWSDLChanged,
			data:     EventData{Identifier: "http://x", Previous: "aa", Current: "bb"},
			expected: "WSDL changed: http://x",
		},
		{
			name:     "failure with exit code",
			reason:   ReasonGenerationFailed,
			data:     EventData{Target: "t", ExitCode: 3},
			expected: "Generation failed for t (exit code 3)",
		},
		{
			name:     "skipped default reason",
			reason:   ReasonGenerationSkipped,
			data:     EventData{Target: "t"},
			expected: "Generation skipped for t: already running",
		},
		{
			name:     "started default source",
			reason:   ReasonGenerationStarted,
			data:     EventData{Target: "t", RunID: "0123456789abcdef"},
			expected: "Generating client for t (Manual, run 01234567)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.Render(tt.reason, tt.data))
		})
	}
}

func TestRender_UnknownReason(t *testing.T) {
	e := NewMessageTemplateEngine()
	assert.Equal(t, "Event: Mystery for t", e.Render("Mystery", EventData{Target: "t"}))
}

func TestSetTemplate(t *testing.T) {
	e := NewMessageTemplateEngine()
	require.NoError(t, e.SetTemplate(ReasonMonitoringStopped, "bye {{.Target | upper}}"))
	assert.Equal(t, "bye T", e.Render(ReasonMonitoringStopped, EventData{Target: "t"}))

	assert.Error(t, e.SetTemplate(ReasonMonitoringStopped, "{{.Target"))
}

func TestRecorder_AppendsToSink(t *testing.T) {
	mem := sink.NewMemory()
	r := NewRecorder(mem)

	msg := r.Record(ReasonMonitoringStopped, EventData{Target: "t"})

	assert.Equal(t, "Stopped monitoring t", msg)
	assert.Equal(t, []string{"Stopped monitoring t"}, mem.Lines())
	assert.Equal(t, EventTypeWarning, eventType(ReasonGenerationFailed))
	assert.Equal(t, EventTypeNormal, eventType(ReasonGenerationSucceeded))
}
