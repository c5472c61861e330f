package reconciler

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"wsdlsync/internal/generator"
	"wsdlsync/pkg/logging"
)

// ReconcileMetrics tracks trigger and generation counters per source and
// the last outcome per target.
type ReconcileMetrics struct {
	mu sync.RWMutex

	sources     map[ChangeSource]*sourceMetrics
	lastOutcome map[string]generator.Outcome
}

type sourceMetrics struct {
	Triggers          int64
	Runs              int64
	Successes         int64
	Failures          int64
	SkippedBusy       int64
	SkippedSuppressed int64
	SkippedDisabled   int64
	LastTriggerAt     time.Time
}

// NewReconcileMetrics creates an empty metrics set.
func NewReconcileMetrics() *ReconcileMetrics {
	return &ReconcileMetrics{
		sources:     make(map[ChangeSource]*sourceMetrics),
		lastOutcome: make(map[string]generator.Outcome),
	}
}

func (m *ReconcileMetrics) getOrCreate(source ChangeSource) *sourceMetrics {
	if sm, ok := m.sources[source]; ok {
		return sm
	}
	sm := &sourceMetrics{}
	m.sources[source] = sm
	return sm
}

// RecordTrigger counts a trigger arriving at the entry point.
func (m *ReconcileMetrics) RecordTrigger(source ChangeSource, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sm := m.getOrCreate(source)
	sm.Triggers++
	sm.LastTriggerAt = time.Now()
	logging.Debug("ReconcileMetrics", "Trigger from %s for %s", source, key)
}

// RecordSkip counts a trigger that did not run the generator.
func (m *ReconcileMetrics) RecordSkip(source ChangeSource, key, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sm := m.getOrCreate(source)
	switch reason {
	case SkipBusy:
		sm.SkippedBusy++
	case SkipSuppressed:
		sm.SkippedSuppressed++
	case SkipDisabled:
		sm.SkippedDisabled++
	}
	logging.Debug("ReconcileMetrics", "Skipped %s trigger for %s: %s", source, key, reason)
}

// RecordOutcome counts a finished run and remembers it for the target.
func (m *ReconcileMetrics) RecordOutcome(source ChangeSource, outcome generator.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sm := m.getOrCreate(source)
	sm.Runs++
	if outcome.Succeeded() {
		sm.Successes++
	} else {
		sm.Failures++
	}
	m.lastOutcome[outcome.Target] = outcome
}

// RecordFailure counts a run that failed before the generator started.
func (m *ReconcileMetrics) RecordFailure(source ChangeSource, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sm := m.getOrCreate(source)
	sm.Failures++
	logging.Debug("ReconcileMetrics", "Failure from %s for %s before generation", source, key)
}

// LastOutcome returns the last finished run for a target.
func (m *ReconcileMetrics) LastOutcome(key string) (generator.Outcome, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.lastOutcome[key]
	return o, ok
}

// SourceMetricView is a read-only view of the counters of one source.
type SourceMetricView struct {
	Source            ChangeSource `json:"source" yaml:"source"`
	Triggers          int64        `json:"triggers" yaml:"triggers"`
	Runs              int64        `json:"runs" yaml:"runs"`
	Successes         int64        `json:"successes" yaml:"successes"`
	Failures          int64        `json:"failures" yaml:"failures"`
	SkippedBusy       int64        `json:"skippedBusy" yaml:"skippedBusy"`
	SkippedSuppressed int64        `json:"skippedSuppressed" yaml:"skippedSuppressed"`
	SkippedDisabled   int64        `json:"skippedDisabled" yaml:"skippedDisabled"`
	LastTriggerAt     time.Time    `json:"lastTriggerAt,omitempty" yaml:"lastTriggerAt,omitempty"`
}

// MetricsSummary is a snapshot of all counters.
type MetricsSummary []SourceMetricView

// Summary returns a snapshot sorted by source.
func (m *ReconcileMetrics) Summary() MetricsSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(MetricsSummary, 0, len(m.sources))
	for source, sm := range m.sources {
		out = append(out, SourceMetricView{
			Source:            source,
			Triggers:          sm.Triggers,
			Runs:              sm.Runs,
			Successes:         sm.Successes,
			Failures:          sm.Failures,
			SkippedBusy:       sm.SkippedBusy,
			SkippedSuppressed: sm.SkippedSuppressed,
			SkippedDisabled:   sm.SkippedDisabled,
			LastTriggerAt:     sm.LastTriggerAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// Headers implements formatting.Tabular.
func (s MetricsSummary) Headers() []string {
	return []string{"SOURCE", "TRIGGERS", "RUNS", "OK", "FAILED", "BUSY", "SUPPRESSED", "DISABLED"}
}

// Rows implements formatting.Tabular.
func (s MetricsSummary) Rows() [][]string {
	rows := make([][]string, 0, len(s))
	for _, v := range s {
		rows = append(rows, []string{
			string(v.Source),
			itoa(v.Triggers), itoa(v.Runs), itoa(v.Successes), itoa(v.Failures),
			itoa(v.SkippedBusy), itoa(v.SkippedSuppressed), itoa(v.SkippedDisabled),
		})
	}
	return rows
}

// For returns the view of one source, zero if it never triggered.
func (s MetricsSummary) For(source ChangeSource) SourceMetricView {
	for _, v := range s {
		if v.Source == source {
			return v
		}
	}
	return SourceMetricView{Source: source}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
