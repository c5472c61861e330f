// Package generator runs the external code generation tool for a target.
package generator

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"wsdlsync/internal/params"
	"wsdlsync/internal/runstate"
	"wsdlsync/internal/sink"
	"wsdlsync/internal/target"
	"wsdlsync/pkg/logging"
)

const subsystem = "Generator"

const (
	// DefaultTool is the executable that hosts the svcutil sub-command.
	DefaultTool = "dotnet"

	// DefaultTimeout bounds one generation run.
	DefaultTimeout = 10 * time.Minute

	// DefaultWaitDelay is how long output is still read after the tool
	// exited or was killed. Descendants that keep the output open past it
	// are cut off.
	DefaultWaitDelay = 5 * time.Second

	maxLineBytes = 1024 * 1024
)

// execCommandContext is a variable to allow mocking in tests
var execCommandContext = exec.CommandContext

// Status is the terminal state of one Invoke call.
type Status string

const (
	StatusSucceeded Status = "Succeeded"
	StatusFailed    Status = "Failed"
	StatusSkipped   Status = "Skipped"
)

// Outcome describes one Invoke call.
type Outcome struct {
	RunID     string        `json:"runId" yaml:"runId"`
	Target    string        `json:"target" yaml:"target"`
	Status    Status        `json:"status" yaml:"status"`
	ExitCode  int           `json:"exitCode" yaml:"exitCode"`
	Args      []string      `json:"args,omitempty" yaml:"args,omitempty"`
	StartedAt time.Time     `json:"startedAt" yaml:"startedAt"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// Succeeded reports whether the tool exited with code 0.
func (o Outcome) Succeeded() bool {
	return o.Status == StatusSucceeded
}

// Skipped reports whether the call did nothing because the target was busy.
func (o Outcome) Skipped() bool {
	return o.Status == StatusSkipped
}

// Options configures an Invoker.
type Options struct {
	// Tool is the executable to run. Defaults to DefaultTool.
	Tool string

	// Timeout bounds each run; zero uses DefaultTimeout, negative disables it.
	Timeout time.Duration

	// WaitDelay bounds output draining after the tool exits; zero uses
	// DefaultWaitDelay.
	WaitDelay time.Duration

	// Sink receives the command line and every line of tool output.
	Sink sink.Sink

	// RunState, when set, extends the in-flight guard to other processes
	// sharing the same state directory.
	RunState *runstate.Store
}

// InvokeHooks are callbacks of a single Invoke call.
type InvokeHooks struct {
	// OnStart runs once the in-flight slot is held, before the tool starts.
	OnStart func()
}

// InvokeOption sets an InvokeHooks field.
type InvokeOption func(*InvokeHooks)

// OnStart registers fn to run when the run actually starts. It is not called
// for skipped runs.
func OnStart(fn func()) InvokeOption {
	return func(h *InvokeHooks) {
		h.OnStart = fn
	}
}

// NewInvokeHooks applies opts.
func NewInvokeHooks(opts ...InvokeOption) InvokeHooks {
	var h InvokeHooks
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// Invoker runs the tool with at most one concurrent run per target.
type Invoker struct {
	tool      string
	timeout   time.Duration
	waitDelay time.Duration
	sink      sink.Sink
	state     *runstate.Store
	command   func(ctx context.Context, name string, args ...string) *exec.Cmd

	mu       sync.Mutex
	inFlight map[string]time.Time
}

// New creates an Invoker.
func New(opts Options) *Invoker {
	if opts.Tool == "" {
		opts.Tool = DefaultTool
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.WaitDelay <= 0 {
		opts.WaitDelay = DefaultWaitDelay
	}
	if opts.Sink == nil {
		opts.Sink = sink.Discard
	}
	return &Invoker{
		tool:      opts.Tool,
		timeout:   opts.Timeout,
		waitDelay: opts.WaitDelay,
		sink:      opts.Sink,
		state:     opts.RunState,
		command:   execCommandContext,
		inFlight:  make(map[string]time.Time),
	}
}

// Tool returns the configured executable.
func (i *Invoker) Tool() string {
	return i.tool
}

// tryAcquire marks key as in flight unless it already is, here or in a
// process sharing the run state. The check and the insert share one
// critical section. The returned release must be called when ok is true.
func (i *Invoker) tryAcquire(key string) (release func(), ok bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, busy := i.inFlight[key]; busy {
		return nil, false
	}

	unlock := func() {}
	if i.state != nil {
		fileUnlock, locked, err := i.state.TryLock(key)
		switch {
		case err != nil:
			logging.Warn(subsystem, "Run lock unavailable for %s, guarding this process only: %v", key, err)
		case !locked:
			logging.Info(subsystem, "Generation for %s is running in another process", key)
			return nil, false
		default:
			unlock = fileUnlock
		}
	}

	i.inFlight[key] = time.Now()
	return func() {
		unlock()
		i.mu.Lock()
		delete(i.inFlight, key)
		i.mu.Unlock()
	}, true
}

// IsRunning reports whether a run for key is executing in this process.
func (i *Invoker) IsRunning(key string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	_, busy := i.inFlight[key]
	return busy
}

// Running returns the keys of all in-flight runs, sorted.
func (i *Invoker) Running() []string {
	i.mu.Lock()
	keys := make([]string, 0, len(i.inFlight))
	for k := range i.inFlight {
		keys = append(keys, k)
	}
	i.mu.Unlock()
	sort.Strings(keys)
	return keys
}

// Invoke runs the tool for t. A target that is already running yields a
// skipped Outcome and no error. A tool that cannot be started yields a
// *SpawnError; a nonzero exit yields a *ProcessFailure. The in-flight mark
// is removed on every path.
func (i *Invoker) Invoke(ctx context.Context, t target.Target, p params.GenerationParameters, opts ...InvokeOption) (Outcome, error) {
	key := t.Key()
	outcome := Outcome{
		RunID:     uuid.New().String(),
		Target:    key,
		StartedAt: time.Now(),
	}

	release, ok := i.tryAcquire(key)
	if !ok {
		outcome.Status = StatusSkipped
		logging.Info(subsystem, "Generation for %s is already running, skipping", key)
		return outcome, nil
	}
	defer release()

	if hooks := NewInvokeHooks(opts...); hooks.OnStart != nil {
		hooks.OnStart()
	}

	outcome.Args = BuildArgs(p)
	err := i.run(ctx, t, p, &outcome)
	outcome.Duration = time.Since(outcome.StartedAt)
	return outcome, err
}

func (i *Invoker) run(ctx context.Context, t target.Target, p params.GenerationParameters, outcome *Outcome) error {
	i.removeArtifact(t, p)

	runCtx := ctx
	if i.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	sink.Appendf(i.sink, "> %s %s", i.tool, CommandLine(outcome.Args))
	logging.Debug(subsystem, "Running %s %s in %s", i.tool, CommandLine(outcome.Args), t.Dir)

	stdout := newLineWriter(i.sink, "")
	stderr := newLineWriter(i.sink, "[stderr] ")

	cmd := i.command(runCtx, i.tool, outcome.Args...)
	cmd.Dir = t.Dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = i.waitDelay

	if err := cmd.Start(); err != nil {
		return i.spawnFailed(outcome, err)
	}

	waitErr := cmd.Wait()
	stdout.Flush()
	stderr.Flush()

	// The exit status decides. Output cut off by WaitDelay after a clean
	// exit is still a success.
	if state := cmd.ProcessState; state != nil && state.Success() {
		if waitErr != nil {
			logging.Warn(subsystem, "Output of %s for %s was cut off: %v", i.tool, t.Key(), waitErr)
		}
		outcome.Status = StatusSucceeded
		outcome.ExitCode = 0
		logging.Info(subsystem, "Generation succeeded for %s", t.Key())
		return nil
	}

	outcome.Status = StatusFailed
	failure := &ProcessFailure{Tool: i.tool, ExitCode: -1, Cause: waitErr}
	if state := cmd.ProcessState; state != nil && state.Exited() {
		failure.ExitCode = state.ExitCode()
	} else if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		failure.TimedOut = true
	}
	outcome.ExitCode = failure.ExitCode

	sink.Appendf(i.sink, "%s", failure.Error())
	logging.Error(subsystem, failure, "Generation failed for %s", t.Key())
	return failure
}

func (i *Invoker) spawnFailed(outcome *Outcome, err error) error {
	outcome.Status = StatusFailed
	outcome.ExitCode = -1
	spawnErr := &SpawnError{Tool: i.tool, Cause: err}
	sink.Appendf(i.sink, "%s", spawnErr.Error())
	logging.Error(subsystem, err, "Could not start %s", i.tool)
	return spawnErr
}

// removeArtifact deletes a previous output file; svcutil refuses to
// overwrite it.
func (i *Invoker) removeArtifact(t target.Target, p params.GenerationParameters) {
	if p.OutputFile == "" {
		return
	}
	path := p.OutputFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(t.Dir, path)
	}

	err := os.Remove(path)
	switch {
	case err == nil:
		logging.Debug(subsystem, "Removed previous output %s", path)
	case errors.Is(err, fs.ErrNotExist):
	default:
		logging.Warn(subsystem, "Could not remove previous output %s: %v", path, err)
		sink.Appendf(i.sink, "warning: could not remove %s: %v", path, err)
	}
}
