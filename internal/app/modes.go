package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"

	"wsdlsync/internal/target"
	"wsdlsync/pkg/logging"
)

// sdNotify reports service state to systemd. It is a no-op outside a
// systemd unit.
var sdNotify = daemon.SdNotify

// runWatchMode watches the workspace for params documents and, when
// requested, monitors the remote documents of every discovered target.
//
// Signal Handling:
//   - SIGINT (Ctrl+C): Triggers graceful shutdown
//   - SIGTERM: Triggers graceful shutdown (common under systemd)
//
// Teardown stops every monitor and the coordinator. Generation runs already
// started finish on their own.
func runWatchMode(ctx context.Context, cfg *Config, services *Services) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info("Watch", "Watching %s for params documents", cfg.Workspace)

	if err := services.Coordinator.Start(ctx); err != nil {
		logging.Error("Watch", err, "Failed to start coordinator")
		return err
	}

	if cfg.Monitor || services.Settings.AutoStartMonitoring {
		startDiscovered(ctx, cfg.Workspace, services)
	}

	notifySystemd(daemon.SdNotifyReady)
	logging.Info("Watch", "Ready. Press Ctrl+C to stop.")

	<-ctx.Done()

	// Graceful shutdown sequence
	notifySystemd(daemon.SdNotifyStopping)
	logging.Info("Watch", "Shutting down")
	services.Supervisor.StopAll()
	if err := services.Coordinator.Stop(); err != nil {
		logging.Error("Watch", err, "Failed to stop coordinator")
	}

	for _, view := range services.Coordinator.Metrics().Summary() {
		logging.Info("Watch", "%s: %d triggers, %d runs, %d succeeded, %d failed",
			view.Source, view.Triggers, view.Runs, view.Successes, view.Failures)
	}
	return nil
}

// startDiscovered starts monitoring every params document under workspace.
// Invalid documents are reported and skipped.
func startDiscovered(ctx context.Context, workspace string, services *Services) int {
	targets, err := target.Discover(workspace)
	if err != nil {
		logging.Error("Watch", err, "Failed to discover params documents")
		return 0
	}

	started := 0
	for _, t := range targets {
		if err := services.Supervisor.Start(ctx, t); err != nil {
			logging.Warn("Watch", "Not monitoring %s: %v", t.Key(), err)
			continue
		}
		started++
	}
	logging.Info("Watch", "Monitoring %d of %d params documents", started, len(targets))
	return started
}

func notifySystemd(state string) {
	sent, err := sdNotify(false, state)
	if err != nil {
		logging.Debug("Watch", "systemd notification %q failed: %v", state, err)
		return
	}
	if sent {
		logging.Debug("Watch", "Sent %q to systemd", state)
	}
}
