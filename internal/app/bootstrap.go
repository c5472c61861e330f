package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"wsdlsync/internal/config"
	"wsdlsync/pkg/logging"
)

// Application represents the main application structure that bootstraps and
// runs wsdlsync. It owns the configuration and the one Services graph of the
// process.
//
// The Application follows a two-phase initialization pattern:
//  1. Bootstrap phase: resolve the workspace, load settings, initialize
//     logging and services
//  2. Execution phase: run watch mode until the context is cancelled
//
// Example usage:
//
//	cfg := app.NewConfig(false, ".", "")
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	defer application.Close()
//	return application.Run(ctx)
type Application struct {
	config   *Config
	services *Services
}

// NewApplication creates and initializes a new application instance.
//
// Configuration Loading Behavior:
//   - If cfg.ConfigPath is set: loads that file only
//   - If cfg.ConfigPath is empty: uses layered loading (defaults + user + project)
//   - If cfg.Settings is already set: skips loading
func NewApplication(cfg *Config) (*Application, error) {
	// Configure logging based on debug flag
	appLogLevel := logging.LevelInfo
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}
	var logOutput io.Writer = os.Stderr
	if cfg.Output != nil {
		logOutput = cfg.Output
	}
	logging.InitForCLI(appLogLevel, logOutput)

	if err := LoadSettings(cfg); err != nil {
		return nil, err
	}

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// LoadSettings resolves cfg.Workspace to an absolute path and loads
// cfg.Settings unless it is already set.
func LoadSettings(cfg *Config) error {
	if cfg.Workspace == "" {
		cfg.Workspace = "."
	}
	workspace, err := filepath.Abs(cfg.Workspace)
	if err != nil {
		return fmt.Errorf("failed to resolve workspace %s: %w", cfg.Workspace, err)
	}
	info, err := os.Stat(workspace)
	if err != nil {
		return fmt.Errorf("workspace %s is not accessible: %w", workspace, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("workspace %s is not a directory", workspace)
	}
	cfg.Workspace = workspace

	if cfg.Settings != nil {
		return nil
	}

	settings, err := config.Load(workspace, cfg.ConfigPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load wsdlsync configuration")
		return fmt.Errorf("failed to load wsdlsync configuration: %w", err)
	}
	if cfg.ConfigPath != "" {
		logging.Info("Bootstrap", "Loaded configuration from custom path: %s", cfg.ConfigPath)
	} else {
		logging.Debug("Bootstrap", "Loaded configuration using layered approach")
	}
	cfg.Settings = &settings
	return nil
}

// Services returns the object graph built during bootstrap.
func (a *Application) Services() *Services {
	return a.services
}

// Workspace returns the absolute workspace root.
func (a *Application) Workspace() string {
	return a.config.Workspace
}

// Run executes watch mode. It blocks until ctx is cancelled or a
// termination signal arrives.
func (a *Application) Run(ctx context.Context) error {
	return runWatchMode(ctx, a.config, a.services)
}

// Close releases resources held by the services.
func (a *Application) Close() {
	a.services.Close()
}
