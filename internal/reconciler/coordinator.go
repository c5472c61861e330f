package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"wsdlsync/internal/detector"
	"wsdlsync/internal/events"
	"wsdlsync/internal/generator"
	"wsdlsync/internal/notify"
	"wsdlsync/internal/params"
	"wsdlsync/internal/target"
	"wsdlsync/pkg/logging"
)

const subsystem = "Coordinator"

// recentlyWrittenSize bounds the RecentlyWritten set.
const recentlyWrittenSize = 256

// Generator runs the external tool with per-target mutual exclusion.
type Generator interface {
	Invoke(ctx context.Context, t target.Target, p params.GenerationParameters, opts ...generator.InvokeOption) (generator.Outcome, error)
	IsRunning(key string) bool
}

// Monitor is the part of the monitor supervisor the coordinator drives.
type Monitor interface {
	Start(ctx context.Context, t target.Target) error
	Stop(t target.Target)
}

// Coordinator is the single entry point for regeneration triggers.
type Coordinator struct {
	config   CoordinatorConfig
	gen      Generator
	notifier notify.Notifier
	recorder *events.Recorder
	metrics  *ReconcileMetrics

	recent *expirable.LRU[string, time.Time]

	readParams  func(path string) (params.GenerationParameters, error)
	writeParams func(path string, doc params.Document) error

	mu         sync.RWMutex
	monitor    Monitor
	detector   ChangeDetector
	queue      ReconcileQueue
	changeChan chan ChangeEvent
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	running    bool
}

// NewCoordinator creates a Coordinator. A nil notifier or recorder discards
// output.
func NewCoordinator(config CoordinatorConfig, gen Generator, notifier notify.Notifier, recorder *events.Recorder) *Coordinator {
	if config.WorkerCount == 0 {
		config.WorkerCount = 2
	}
	if config.DebounceInterval == 0 {
		config.DebounceInterval = 500 * time.Millisecond
	}
	if notifier == nil {
		notifier = notify.NewMemory()
	}
	if recorder == nil {
		recorder = events.NewRecorder(nil)
	}

	c := &Coordinator{
		config:      config,
		gen:         gen,
		notifier:    notifier,
		recorder:    recorder,
		metrics:     NewReconcileMetrics(),
		readParams:  params.Read,
		writeParams: params.Write,
	}
	if config.SuppressionWindow > 0 {
		c.recent = expirable.NewLRU[string, time.Time](recentlyWrittenSize, nil, config.SuppressionWindow)
	}
	return c
}

// SetMonitor connects the monitor supervisor.
func (c *Coordinator) SetMonitor(m Monitor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.monitor = m
}

// Config returns the effective configuration.
func (c *Coordinator) Config() CoordinatorConfig {
	return c.config
}

// Metrics returns the coordinator counters.
func (c *Coordinator) Metrics() *ReconcileMetrics {
	return c.metrics
}

// MarkRecentlyWritten suppresses triggers for path until the suppression
// window has passed, in this process and in every process sharing the run
// state.
func (c *Coordinator) MarkRecentlyWritten(path string) {
	if c.recent == nil {
		return
	}
	key := target.New(path).Key()
	now := time.Now()
	c.recent.Add(key, now)
	if c.config.RunState != nil {
		if err := c.config.RunState.MarkWritten(key, now); err != nil {
			logging.Warn(subsystem, "Other processes will not suppress %s: %v", key, err)
		}
	}
	logging.Debug(subsystem, "Suppressing triggers for %s for %s", key, c.config.SuppressionWindow)
}

// RecentlyWritten reports whether key is inside its suppression window.
func (c *Coordinator) RecentlyWritten(key string) bool {
	if c.recent == nil {
		return false
	}
	if _, ok := c.recent.Get(key); ok {
		return true
	}
	return c.config.RunState != nil && c.config.RunState.WrittenWithin(key, c.config.SuppressionWindow, time.Now())
}

// Regenerate is the entry point every trigger goes through. It skips the
// target when it was written by wsdlsync within the suppression window
// or when a run for it is executing. A skip returns an Outcome with status
// Skipped and a nil error.
func (c *Coordinator) Regenerate(ctx context.Context, t target.Target, source ChangeSource) (generator.Outcome, error) {
	key := t.Key()
	c.metrics.RecordTrigger(source, key)

	if c.RecentlyWritten(key) {
		return c.skip(t, source, SkipSuppressed), nil
	}
	return c.generate(ctx, t, source)
}

// Generate runs the generator for t on an explicit user request. The
// suppression window does not apply; the in-flight guard does.
func (c *Coordinator) Generate(ctx context.Context, t target.Target) (generator.Outcome, error) {
	c.metrics.RecordTrigger(SourceManual, t.Key())
	return c.generate(ctx, t, SourceManual)
}

func (c *Coordinator) generate(ctx context.Context, t target.Target, source ChangeSource) (generator.Outcome, error) {
	key := t.Key()

	if c.gen.IsRunning(key) {
		return c.skip(t, source, SkipBusy), nil
	}

	p, err := c.readParams(t.ConfigPath)
	if err != nil {
		c.metrics.RecordFailure(source, key)
		message := c.recorder.Record(events.ReasonConfigInvalid, events.EventData{Target: key, Error: err.Error()})
		c.notifyFailure(message)
		return generator.Outcome{Target: key, Status: generator.StatusFailed, ExitCode: -1}, err
	}

	done := func() {}
	outcome, err := c.gen.Invoke(ctx, t, p, generator.OnStart(func() {
		c.recorder.Record(events.ReasonGenerationStarted, events.EventData{Target: key, Source: string(source)})
		done = c.notifier.Progress(fmt.Sprintf("Generating client in %s", t.ParentDir))
	}))
	done()

	if outcome.Skipped() {
		return c.skip(t, source, SkipBusy), nil
	}
	c.metrics.RecordOutcome(source, outcome)

	if err != nil {
		data := events.EventData{Target: key, RunID: outcome.RunID, Error: err.Error()}
		var failure *generator.ProcessFailure
		if errors.As(err, &failure) && !failure.TimedOut && failure.ExitCode > 0 {
			data.ExitCode = failure.ExitCode
			data.Error = ""
		}
		message := c.recorder.Record(events.ReasonGenerationFailed, data)
		c.notifyFailure(message)
		return outcome, err
	}

	message := c.recorder.Record(events.ReasonGenerationSucceeded, events.EventData{
		Target:   key,
		RunID:    outcome.RunID,
		Duration: outcome.Duration.Round(time.Millisecond),
	})
	if c.config.ShowNotifications {
		c.notifier.Success(message)
	}
	return outcome, nil
}

func (c *Coordinator) skip(t target.Target, source ChangeSource, reason string) generator.Outcome {
	key := t.Key()
	c.metrics.RecordSkip(source, key, reason)
	c.recorder.Record(events.ReasonGenerationSkipped, events.EventData{Target: key, Source: string(source), Reason: reason})
	logging.Info(subsystem, "Skipping %s trigger for %s: %s", source, key, reason)
	return generator.Outcome{Target: key, Status: generator.StatusSkipped}
}

func (c *Coordinator) notifyFailure(message string) {
	if c.config.ShowNotifications {
		c.notifier.Failure(message)
	}
}

// OnConfigChanged handles a modified params document.
func (c *Coordinator) OnConfigChanged(ctx context.Context, path string) (generator.Outcome, error) {
	t := target.New(path)
	if !c.config.AutoRunOnChange {
		c.metrics.RecordTrigger(SourceFilesystem, t.Key())
		return c.skip(t, SourceFilesystem, SkipDisabled), nil
	}
	return c.Regenerate(ctx, t, SourceFilesystem)
}

// OnConfigCreated handles a new params document. Monitoring starts for it
// when AutoStartMonitoring is set.
func (c *Coordinator) OnConfigCreated(ctx context.Context, path string) (generator.Outcome, error) {
	outcome, err := c.OnConfigChanged(ctx, path)
	if c.config.AutoStartMonitoring {
		c.startMonitoring(ctx, target.New(path))
	}
	return outcome, err
}

// OnConfigDeleted stops monitoring a removed params document.
func (c *Coordinator) OnConfigDeleted(path string) {
	t := target.New(path)
	c.mu.RLock()
	m := c.monitor
	c.mu.RUnlock()
	if m != nil {
		m.Stop(t)
	}
	logging.Info(subsystem, "Params document %s was removed", t.Key())
}

// OnRemoteChange handles a changed remote WSDL reported by the monitor.
func (c *Coordinator) OnRemoteChange(ctx context.Context, t target.Target, change detector.Result) (generator.Outcome, error) {
	logging.Info(subsystem, "Remote document %s of %s changed", change.Identifier, t.Key())
	return c.Regenerate(ctx, t, SourceRemote)
}

// CreateConfig validates req and writes a new params document. The path is
// marked as recently written before the write so the resulting file event
// does not trigger a run.
func (c *Coordinator) CreateConfig(ctx context.Context, req params.CreateRequest) (target.Target, error) {
	if err := req.Validate(); err != nil {
		return target.Target{}, err
	}

	t := target.ForDirectory(req.ProjectDir)
	c.MarkRecentlyWritten(t.ConfigPath)

	if err := c.writeParams(t.ConfigPath, params.NewDocument(req)); err != nil {
		message := fmt.Sprintf("Could not create %s: %v", t.ConfigPath, err)
		c.notifyFailure(message)
		return target.Target{}, err
	}

	message := c.recorder.Record(events.ReasonConfigCreated, events.EventData{Target: t.Key()})
	c.notifier.Info(message)

	if c.config.AutoStartMonitoring {
		c.startMonitoring(ctx, t)
	}
	return t, nil
}

func (c *Coordinator) startMonitoring(ctx context.Context, t target.Target) {
	c.mu.RLock()
	m := c.monitor
	c.mu.RUnlock()
	if m == nil {
		return
	}
	if err := m.Start(ctx, t); err != nil {
		logging.Warn(subsystem, "Could not start monitoring %s: %v", t.Key(), err)
	}
}

// Start watches the workspace and dispatches file events to the workers.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}

	c.ctx, c.cancelFunc = context.WithCancel(ctx)
	c.running = true
	c.queue = NewQueue()
	c.changeChan = make(chan ChangeEvent, 100)
	if c.detector == nil {
		c.detector = NewFilesystemDetector(c.config.Workspace, c.config.DebounceInterval)
	}
	det := c.detector
	c.mu.Unlock()

	if err := det.Start(c.ctx, c.changeChan); err != nil {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		c.cancelFunc()
		return fmt.Errorf("failed to start change detector: %w", err)
	}

	c.wg.Add(1)
	go c.processChangeEvents()

	for i := 0; i < c.config.WorkerCount; i++ {
		c.wg.Add(1)
		go c.worker(i)
	}

	logging.Info(subsystem, "Started with %d workers on %s", c.config.WorkerCount, c.config.Workspace)
	return nil
}

// processChangeEvents forwards file events to the queue.
func (c *Coordinator) processChangeEvents() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return

		case event, ok := <-c.changeChan:
			if !ok {
				return
			}
			c.handleChangeEvent(event)
		}
	}
}

func (c *Coordinator) handleChangeEvent(event ChangeEvent) {
	logging.Debug(subsystem, "Handling change event: %s %s", event.Operation, event.Path)

	req := ReconcileRequest{
		Target:    target.New(event.Path),
		Operation: event.Operation,
		Source:    event.Source,
	}
	if !c.queue.Add(req) {
		c.metrics.RecordTrigger(req.Source, req.Target.Key())
		c.skip(req.Target, req.Source, SkipBusy)
	}
}

func (c *Coordinator) worker(id int) {
	defer c.wg.Done()

	logging.Debug(subsystem, "Worker %d started", id)

	for {
		req, ok := c.queue.Get(c.ctx)
		if !ok {
			logging.Debug(subsystem, "Worker %d shutting down", id)
			return
		}

		c.processRequest(req)
		c.queue.Done(req)
	}
}

func (c *Coordinator) processRequest(req ReconcileRequest) {
	// Runs use a context that outlives Stop so a started generation ends
	// on its own terms.
	ctx := context.WithoutCancel(c.ctx)

	switch req.Operation {
	case OperationCreate:
		_, _ = c.OnConfigCreated(ctx, req.Target.ConfigPath)
	case OperationUpdate:
		_, _ = c.OnConfigChanged(ctx, req.Target.ConfigPath)
	case OperationDelete:
		c.OnConfigDeleted(req.Target.ConfigPath)
	}
}

// Stop stops the watcher and waits for the workers to finish.
func (c *Coordinator) Stop() error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	det := c.detector
	queue := c.queue
	c.mu.Unlock()

	logging.Info(subsystem, "Stopping coordinator...")

	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	if det != nil {
		if err := det.Stop(); err != nil {
			logging.Error(subsystem, err, "Error stopping change detector")
		}
	}
	queue.Shutdown()
	c.wg.Wait()

	logging.Info(subsystem, "Coordinator stopped")
	return nil
}

// IsRunning reports whether the event loop is active.
func (c *Coordinator) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}
