// Package monitor polls the remote documents of monitored targets and
// applies the update policy when one of them changes.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"wsdlsync/internal/detector"
	"wsdlsync/internal/events"
	"wsdlsync/internal/fetch"
	"wsdlsync/internal/generator"
	"wsdlsync/internal/notify"
	"wsdlsync/internal/params"
	"wsdlsync/internal/target"
	"wsdlsync/pkg/logging"
)

const subsystem = "Monitor"

const (
	DefaultInterval      = 30 * time.Second
	MinInterval          = 5 * time.Second
	MaxInterval          = 300 * time.Second
	DefaultPromptTimeout = 60 * time.Second
)

// Regenerator runs generation for a target whose remote document changed.
type Regenerator interface {
	OnRemoteChange(ctx context.Context, t target.Target, change detector.Result) (generator.Outcome, error)
}

// Config is the polling policy.
type Config struct {
	Interval          time.Duration
	AutoUpdate        bool
	PromptTimeout     time.Duration
	ShowChangeDetails bool
}

// ClampInterval bounds d to [MinInterval, MaxInterval]; zero means the
// default.
func ClampInterval(d time.Duration) time.Duration {
	switch {
	case d == 0:
		return DefaultInterval
	case d < MinInterval:
		return MinInterval
	case d > MaxInterval:
		return MaxInterval
	default:
		return d
	}
}

func (c Config) normalized() Config {
	c.Interval = ClampInterval(c.Interval)
	if c.PromptTimeout <= 0 {
		c.PromptTimeout = DefaultPromptTimeout
	}
	return c
}

// Options wires a Supervisor.
type Options struct {
	Detector    *detector.Detector
	Regenerator Regenerator
	Prompter    notify.Prompter
	Notifier    notify.Notifier
	Recorder    *events.Recorder
	Scheduler   Scheduler
	Config      Config
}

// Supervisor owns one polling task per monitored target.
type Supervisor struct {
	detector   *detector.Detector
	prompter   notify.Prompter
	notifier   notify.Notifier
	recorder   *events.Recorder
	scheduler  Scheduler
	config     Config
	readParams func(path string) (params.GenerationParameters, error)

	// work is the parent of every check. It is independent of the tasks so
	// stopping a target lets its running check finish.
	work context.Context

	mu      sync.Mutex
	regen   Regenerator
	handles map[string]*handle
}

type handle struct {
	target    target.Target
	task      Task
	startedAt time.Time
	stopped   bool
}

// New creates a Supervisor.
func New(opts Options) *Supervisor {
	if opts.Scheduler == nil {
		opts.Scheduler = TickerScheduler{}
	}
	if opts.Prompter == nil {
		opts.Prompter = notify.Static{}
	}
	if opts.Recorder == nil {
		opts.Recorder = events.NewRecorder(nil)
	}
	return &Supervisor{
		detector:   opts.Detector,
		regen:      opts.Regenerator,
		prompter:   opts.Prompter,
		notifier:   opts.Notifier,
		recorder:   opts.Recorder,
		scheduler:  opts.Scheduler,
		config:     opts.Config.normalized(),
		readParams: params.Read,
		work:       context.Background(),
		handles:    make(map[string]*handle),
	}
}

// SetRegenerator sets the component that runs generation on a change.
func (s *Supervisor) SetRegenerator(r Regenerator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regen = r
}

// Config returns the normalized policy.
func (s *Supervisor) Config() Config {
	return s.config
}

// Start begins monitoring t. It records a baseline for every remote input
// and then schedules the recurring check. Starting a target that is already
// monitored, or whose start is still in progress, does nothing.
func (s *Supervisor) Start(ctx context.Context, t target.Target) error {
	key := t.Key()

	s.mu.Lock()
	if _, exists := s.handles[key]; exists {
		s.mu.Unlock()
		logging.Debug(subsystem, "Already monitoring %s", key)
		return nil
	}
	h := &handle{target: t, startedAt: time.Now()}
	s.handles[key] = h
	s.mu.Unlock()

	p, err := s.readParams(t.ConfigPath)
	if err != nil {
		s.mu.Lock()
		if s.handles[key] == h {
			delete(s.handles, key)
		}
		s.mu.Unlock()
		s.recorder.Record(events.ReasonCheckFailed, events.EventData{Target: key, Error: err.Error()})
		return fmt.Errorf("failed to start monitoring %s: %w", key, err)
	}

	remote := remoteInputs(p.Inputs)
	s.detector.Baseline(ctx, remote)

	s.mu.Lock()
	if h.stopped {
		s.mu.Unlock()
		logging.Info(subsystem, "Monitoring of %s was stopped before it started", key)
		return nil
	}
	h.task = s.scheduler.Every(s.config.Interval, func() { s.tick(t) })
	s.mu.Unlock()

	logging.Info(subsystem, "Monitoring %s (%d remote inputs, every %s)", key, len(remote), s.config.Interval)
	s.recorder.Record(events.ReasonMonitoringStarted, events.EventData{
		Target:   key,
		Count:    len(remote),
		Interval: s.config.Interval,
	})
	return nil
}

// Stop cancels the polling task of t. A check already running finishes.
// Fingerprints recorded for t stay in the store.
func (s *Supervisor) Stop(t target.Target) {
	key := t.Key()

	s.mu.Lock()
	h, ok := s.handles[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.handles, key)
	h.stopped = true
	task := h.task
	s.mu.Unlock()

	if task != nil {
		task.Cancel()
	}
	logging.Info(subsystem, "Stopped monitoring %s", key)
	s.recorder.Record(events.ReasonMonitoringStopped, events.EventData{Target: key})
}

// StopAll stops every task. It is the teardown path.
func (s *Supervisor) StopAll() {
	for _, t := range s.Targets() {
		s.Stop(t)
	}
}

// IsMonitoring reports whether t has a task or a start in progress.
func (s *Supervisor) IsMonitoring(t target.Target) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.handles[t.Key()]
	return ok
}

// Targets returns the monitored targets sorted by key.
func (s *Supervisor) Targets() []target.Target {
	s.mu.Lock()
	out := make([]target.Target, 0, len(s.handles))
	for _, h := range s.handles {
		out = append(out, h.target)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// CheckNow runs one check for t synchronously, whether or not it is
// monitored.
func (s *Supervisor) CheckNow(ctx context.Context, t target.Target) ([]detector.Result, error) {
	return s.check(ctx, t)
}

func (s *Supervisor) tick(t target.Target) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic during check: %v", r)
			logging.Error(subsystem, err, "Check for %s panicked\n%s", t.Key(), debug.Stack())
			s.recorder.Record(events.ReasonCheckFailed, events.EventData{Target: t.Key(), Error: err.Error()})
		}
	}()
	_, _ = s.check(s.work, t)
}

func (s *Supervisor) check(ctx context.Context, t target.Target) ([]detector.Result, error) {
	key := t.Key()

	p, err := s.readParams(t.ConfigPath)
	if err != nil {
		logging.Warn(subsystem, "Skipping check for %s: %v", key, err)
		s.recorder.Record(events.ReasonCheckFailed, events.EventData{Target: key, Error: err.Error()})
		return nil, err
	}

	results := s.detector.Detect(ctx, p.Inputs)
	for _, r := range results {
		if !r.Changed {
			continue
		}
		message := s.recorder.Record(events.ReasonWSDLChanged, events.EventData{
			Target:     key,
			Identifier: r.Identifier,
			Previous:   string(r.Previous),
			Current:    string(r.Current),
			Details:    s.config.ShowChangeDetails,
		})
		if s.notifier != nil {
			s.notifier.Info(message)
		}
		s.applyPolicy(ctx, t, r)
	}
	return results, nil
}

// applyPolicy regenerates directly under auto-update, otherwise only after
// the user accepts. An unanswered prompt counts as a decline.
func (s *Supervisor) applyPolicy(ctx context.Context, t target.Target, change detector.Result) {
	s.mu.Lock()
	regen := s.regen
	s.mu.Unlock()
	if regen == nil {
		logging.Warn(subsystem, "No regenerator configured, ignoring change for %s", t.Key())
		return
	}

	if !s.config.AutoUpdate {
		accepted, reason := s.confirm(ctx, t, change)
		if !accepted {
			s.recorder.Record(events.ReasonChangeDeclined, events.EventData{Target: t.Key(), Reason: reason})
			return
		}
	}

	if _, err := regen.OnRemoteChange(ctx, t, change); err != nil {
		logging.Warn(subsystem, "Regeneration after change of %s failed: %v", change.Identifier, err)
	}
}

func (s *Supervisor) confirm(ctx context.Context, t target.Target, change detector.Result) (bool, string) {
	pctx, cancel := context.WithTimeout(ctx, s.config.PromptTimeout)
	defer cancel()

	question := fmt.Sprintf("The WSDL at %s changed. Regenerate the client in %s?", change.Identifier, t.Dir)
	accepted, err := s.prompter.Confirm(pctx, question)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return false, "no answer"
	case err != nil:
		logging.Debug(subsystem, "Prompt for %s failed: %v", t.Key(), err)
		return false, "dismissed"
	case !accepted:
		return false, "declined"
	default:
		return true, ""
	}
}

func remoteInputs(inputs []string) []string {
	out := make([]string, 0, len(inputs))
	for _, in := range inputs {
		if fetch.IsFetchable(in) {
			out = append(out, in)
		}
	}
	return out
}
