// Package app provides application bootstrap and lifecycle management for wsdlsync.
//
// # Architecture Overview
//
// The app package is the bootstrap layer. It has four parts:
//
//  1. **Bootstrap (`bootstrap.go`)**: workspace resolution, settings loading, logging setup
//  2. **Configuration (`config.go`)**: runtime options taken from the command line
//  3. **Services (`services.go`)**: construction of the one object graph of the process
//  4. **Modes (`modes.go`)**: watch mode, signal handling and teardown
//
// `config_adapter.go` gives commands thread-safe access to the effective
// settings and writes them back as YAML.
//
// # Object Graph
//
// InitializeServices builds, leaves first:
//
//	sink ──► events.Recorder
//	fetch.HTTPFetcher ──► detector.Detector ◄── fingerprint.Store
//	generator.Invoker
//	notify.Console, notify.Terminal | notify.Static
//	reconciler.Coordinator ◄──► monitor.Supervisor
//
// The coordinator is the supervisor's Regenerator and the supervisor is the
// coordinator's Monitor, so a remote change and a file event for the same
// target meet at the same in-flight check.
//
// # Configuration Loading Strategies
//
// **Layered Configuration (Default)**:
//  1. Built-in defaults
//  2. User configuration (~/.config/wsdlsync/config.yaml)
//  3. Workspace configuration (<workspace>/.wsdlsync/config.yaml)
//  4. WSDLSYNC_* environment variables
//
// **Single Path Configuration**:
//   - Loads the file passed with --config only (environment overrides still apply)
//
// # Watch Mode
//
// runWatchMode starts the coordinator, optionally monitors every discovered
// params document, reports READY to systemd when run as a unit and blocks
// until SIGINT, SIGTERM or context cancellation. Teardown stops all monitors
// and the coordinator and logs the trigger counters.
//
// # Usage Example
//
//	cfg := app.NewConfig(debug, workspace, configPath)
//	cfg.Monitor = true
//
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	defer application.Close()
//
//	return application.Run(ctx)
package app
