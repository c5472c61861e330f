package events

import (
	"bytes"
	"fmt"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// MessageTemplateEngine renders event messages from templates.
type MessageTemplateEngine struct {
	mu        sync.RWMutex
	templates map[EventReason]*template.Template
}

// NewMessageTemplateEngine creates an engine loaded with the default templates.
func NewMessageTemplateEngine() *MessageTemplateEngine {
	e := &MessageTemplateEngine{
		templates: make(map[EventReason]*template.Template),
	}
	e.loadDefaultTemplates()
	return e
}

var defaultTemplates = map[EventReason]string{
	ReasonMonitoringStarted: `Started monitoring {{.Target}} ({{.Count}} remote {{if eq .Count 1}}document{{else}}documents{{end}}, every {{.Interval}})`,
	ReasonMonitoringStopped: `Stopped monitoring {{.Target}}`,
	ReasonBaselineRecorded:  `Baseline for {{.Identifier}}{{if .Details}}: {{.Current | trunc 12}}{{end}}`,
	ReasonWSDLChanged:       `WSDL changed: {{.Identifier}}{{if .Details}} ({{.Previous | trunc 12}} -> {{.Current | trunc 12}}){{end}}`,
	ReasonChangeDeclined:    `Regeneration of {{.Target}} declined{{if .Reason}} ({{.Reason}}){{end}}`,
	ReasonFetchFailed:       `Could not fetch {{.Identifier}}{{if .Error}}: {{.Error}}{{end}}`,
	ReasonCheckFailed:       `Check for {{.Target}} failed{{if .Error}}: {{.Error}}{{end}}`,

	ReasonGenerationStarted:   `Generating client for {{.Target}} ({{.Source | default "Manual"}}{{if .RunID}}, run {{.RunID | trunc 8}}{{end}})`,
	ReasonGenerationSucceeded: `Generation succeeded for {{.Target}}{{if .Duration}} in {{.Duration}}{{end}}`,
	ReasonGenerationFailed:    `Generation failed for {{.Target}}{{if .ExitCode}} (exit code {{.ExitCode}}){{end}}{{if .Error}}: {{.Error}}{{end}}`,
	ReasonGenerationSkipped:   `Generation skipped for {{.Target}}: {{.Reason | default "already running"}}`,
	ReasonConfigInvalid:       `Invalid params document {{.Target}}{{if .Error}}: {{.Error}}{{end}}`,
	ReasonConfigCreated:       `Created params document {{.Target}}`,
}

func (e *MessageTemplateEngine) loadDefaultTemplates() {
	for reason, text := range defaultTemplates {
		if err := e.SetTemplate(reason, text); err != nil {
			panic(fmt.Sprintf("invalid default template for %s: %v", reason, err))
		}
	}
}

// Render generates the message for reason. Unknown reasons and rendering
// failures fall back to a generic message.
func (e *MessageTemplateEngine) Render(reason EventReason, data EventData) string {
	e.mu.RLock()
	tmpl, ok := e.templates[reason]
	e.mu.RUnlock()

	if !ok {
		return fmt.Sprintf("Event: %s for %s", reason, data.Target)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Event: %s for %s", reason, data.Target)
	}
	return buf.String()
}

// SetTemplate replaces the template for reason.
func (e *MessageTemplateEngine) SetTemplate(reason EventReason, text string) error {
	tmpl, err := template.New(string(reason)).Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.templates[reason] = tmpl
	e.mu.Unlock()
	return nil
}
