package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"wsdlsync/internal/config"
	"wsdlsync/internal/detector"
	"wsdlsync/internal/events"
	"wsdlsync/internal/fetch"
	"wsdlsync/internal/fingerprint"
	"wsdlsync/internal/generator"
	"wsdlsync/internal/monitor"
	"wsdlsync/internal/notify"
	"wsdlsync/internal/reconciler"
	"wsdlsync/internal/runstate"
	"wsdlsync/internal/sink"
	"wsdlsync/pkg/logging"
)

// Services holds the object graph of one process. Every trigger path shares
// the same Invoker, fingerprint store and coordinator.
//
// The services are initialized leaves first:
//  1. Log sink and event recorder
//  2. Fetcher, fingerprint store and change detector
//  3. Run state shared with other processes, and the generator invoker
//  4. Notifier and prompter
//  5. Reconciliation coordinator and monitor supervisor, wired to each other
type Services struct {
	Settings config.Settings

	Sink     sink.Sink
	Recorder *events.Recorder

	Fetcher  *fetch.HTTPFetcher
	Store    *fingerprint.Store
	Detector *detector.Detector
	RunState *runstate.Store
	Invoker  *generator.Invoker

	Notifier notify.Notifier
	Prompter notify.Prompter

	Coordinator *reconciler.Coordinator
	Supervisor  *monitor.Supervisor

	closers []io.Closer
}

// InitializeServices builds the Services graph from cfg. cfg.Settings must
// be loaded.
func InitializeServices(cfg *Config) (*Services, error) {
	if cfg.Settings == nil {
		return nil, fmt.Errorf("settings are not loaded")
	}
	settings := *cfg.Settings

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	s := &Services{Settings: settings}

	logSink, err := s.openSink(cfg.LogFile, out)
	if err != nil {
		return nil, err
	}
	s.Sink = logSink
	s.Recorder = events.NewRecorder(logSink)

	fetchOpts := fetch.DefaultOptions()
	if settings.FetchTimeout > 0 {
		fetchOpts.Timeout = settings.FetchTimeout
	}
	s.Fetcher = fetch.NewHTTPFetcher(fetchOpts)
	s.Store = fingerprint.NewStore()
	s.Detector = detector.New(s.Fetcher, s.Store,
		detector.WithRecorder(s.Recorder),
		detector.WithDetails(settings.ShowChangeDetails),
	)

	stateDir := cfg.StateDir
	if stateDir == "" {
		stateDir = runstate.DefaultDir()
	}
	s.RunState = runstate.New(stateDir)

	s.Invoker = generator.New(generator.Options{
		Tool:     settings.Tool,
		Timeout:  settings.GenerationTimeout,
		Sink:     logSink,
		RunState: s.RunState,
	})

	s.Notifier = notify.NewConsole(notify.ConsoleOptions{
		Writer:    out,
		Quiet:     cfg.Quiet,
		NoSpinner: !cfg.Interactive,
	})
	if cfg.Interactive {
		terminal := notify.NewTerminal(out)
		s.Prompter = terminal
		s.closers = append(s.closers, terminal)
	} else {
		s.Prompter = notify.Static{Accept: cfg.AutoAccept}
	}

	s.Coordinator = reconciler.NewCoordinator(reconciler.CoordinatorConfig{
		Workspace:           cfg.Workspace,
		AutoRunOnChange:     settings.AutoRunOnChange,
		ShowNotifications:   settings.ShowNotifications,
		AutoStartMonitoring: settings.AutoStartMonitoring || cfg.Monitor,
		SuppressionWindow:   settings.SuppressionWindow,
		RunState:            s.RunState,
	}, s.Invoker, s.Notifier, s.Recorder)

	s.Supervisor = monitor.New(monitor.Options{
		Detector:    s.Detector,
		Regenerator: s.Coordinator,
		Prompter:    s.Prompter,
		Notifier:    s.Notifier,
		Recorder:    s.Recorder,
		Config: monitor.Config{
			Interval:          settings.CheckInterval(),
			AutoUpdate:        settings.AutoUpdateOnWSDLChange,
			PromptTimeout:     settings.PromptTimeout,
			ShowChangeDetails: settings.ShowChangeDetails,
		},
	})
	s.Coordinator.SetMonitor(s.Supervisor)

	logging.Debug("Services", "Initialized services for workspace %s (tool %s)", cfg.Workspace, s.Invoker.Tool())
	return s, nil
}

func (s *Services) openSink(logFile string, out io.Writer) (sink.Sink, error) {
	if logFile == "" {
		return sink.NewWriter(out), nil
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", logFile, err)
	}
	s.closers = append(s.closers, f)
	return sink.NewWriter(f), nil
}

// Close releases the log file and the terminal.
func (s *Services) Close() {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			logging.Debug("Services", "Close failed: %v", err)
		}
	}
	s.closers = nil
}
