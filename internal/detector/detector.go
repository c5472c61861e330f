// Package detector decides whether remote documents changed since they were
// last observed.
package detector

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"wsdlsync/internal/events"
	"wsdlsync/internal/fetch"
	"wsdlsync/internal/fingerprint"
	"wsdlsync/pkg/logging"
)

const subsystem = "Detector"

// maxBaselineFetches bounds concurrent fetches while recording a baseline.
const maxBaselineFetches = 4

// Result is the outcome of checking one identifier.
type Result struct {
	Identifier string                  `json:"identifier" yaml:"identifier"`
	Changed    bool                    `json:"changed" yaml:"changed"`
	Previous   fingerprint.Fingerprint `json:"previous,omitempty" yaml:"previous,omitempty"`
	Current    fingerprint.Fingerprint `json:"current,omitempty" yaml:"current,omitempty"`
}

// Detector fetches identifiers and compares them with a fingerprint store.
type Detector struct {
	fetcher  fetch.Fetcher
	store    *fingerprint.Store
	recorder *events.Recorder
	details  bool
}

// Option configures a Detector.
type Option func(*Detector)

// WithRecorder sends fetch failures and baselines to rec.
func WithRecorder(rec *events.Recorder) Option {
	return func(d *Detector) { d.recorder = rec }
}

// WithDetails includes fingerprints in recorded events.
func WithDetails(enabled bool) Option {
	return func(d *Detector) { d.details = enabled }
}

// New creates a Detector.
func New(fetcher fetch.Fetcher, store *fingerprint.Store, opts ...Option) *Detector {
	d := &Detector{fetcher: fetcher, store: store}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Store returns the fingerprint store the detector writes to.
func (d *Detector) Store() *fingerprint.Store {
	return d.store
}

// Detect checks ids in order. Identifiers that are not URLs are ignored and a
// failed fetch skips only that identifier. An identifier seen for the first
// time becomes a baseline and reports unchanged. The first changed
// identifier updates the store and ends the batch, so later identifiers are
// checked on the next call.
func (d *Detector) Detect(ctx context.Context, ids []string) []Result {
	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if !fetch.IsFetchable(id) {
			logging.Debug(subsystem, "Skipping non-URL input %s", id)
			continue
		}

		current, err := d.fingerprint(ctx, id)
		if err != nil {
			continue
		}

		previous, existed := d.store.Compare(id, current)
		if !existed {
			d.record(events.ReasonBaselineRecorded, events.EventData{Identifier: id, Current: string(current)})
			results = append(results, Result{Identifier: id, Current: current})
			continue
		}

		if previous == current {
			results = append(results, Result{Identifier: id, Previous: previous, Current: current})
			continue
		}

		logging.Info(subsystem, "Change detected for %s (%s -> %s)", id, previous.Short(), current.Short())
		results = append(results, Result{Identifier: id, Changed: true, Previous: previous, Current: current})
		break
	}
	return results
}

// Baseline fetches every URL in ids concurrently and records its
// fingerprint, replacing any existing entry. It returns how many
// identifiers were recorded.
func (d *Detector) Baseline(ctx context.Context, ids []string) int {
	var recorded atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxBaselineFetches)
	for _, id := range ids {
		if !fetch.IsFetchable(id) {
			continue
		}
		g.Go(func() error {
			fp, err := d.fingerprint(gctx, id)
			if err != nil {
				return nil
			}
			d.store.Set(id, fp)
			d.record(events.ReasonBaselineRecorded, events.EventData{Identifier: id, Current: string(fp)})
			recorded.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	n := int(recorded.Load())
	logging.Debug(subsystem, "Recorded %d baseline fingerprints", n)
	return n
}

func (d *Detector) fingerprint(ctx context.Context, id string) (fingerprint.Fingerprint, error) {
	body, err := d.fetcher.Fetch(ctx, id)
	if err != nil {
		logging.Warn(subsystem, "Failed to fetch %s: %v", id, err)
		d.record(events.ReasonFetchFailed, events.EventData{Identifier: id, Error: err.Error()})
		return "", err
	}
	return fingerprint.Compute(body), nil
}

func (d *Detector) record(reason events.EventReason, data events.EventData) {
	if d.recorder == nil {
		return
	}
	data.Details = d.details
	d.recorder.Record(reason, data)
}
