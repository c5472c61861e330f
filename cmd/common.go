package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"wsdlsync/internal/app"
	"wsdlsync/internal/formatting"
	"wsdlsync/internal/target"
)

// newApplication bootstraps the application from the global flags.
// configure adjusts the app configuration before services are built.
func newApplication(cmd *cobra.Command, configure func(*app.Config)) (*app.Application, error) {
	cfg := app.NewConfig(rootDebug, rootWorkspace, rootConfigPath)
	cfg.LogFile = rootLogFile
	cfg.Output = cmd.ErrOrStderr()
	if configure != nil {
		configure(cfg)
	}

	application, err := app.NewApplication(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return application, nil
}

// resolveTargets maps command arguments to targets. An argument may be a
// params document, a project folder containing ServiceReference, or any
// folder to search. Without arguments the workspace is searched.
func resolveTargets(workspace string, args []string) ([]target.Target, error) {
	if len(args) == 0 {
		args = []string{workspace}
	}

	seen := make(map[string]bool)
	var targets []target.Target
	add := func(t target.Target) {
		if !seen[t.Key()] {
			seen[t.Key()] = true
			targets = append(targets, t)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(target.New(arg))
			continue
		}

		direct := target.ForDirectory(arg)
		if _, err := os.Stat(direct.ConfigPath); err == nil {
			add(direct)
			continue
		}

		found, err := target.Discover(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to search %s: %w", arg, err)
		}
		for _, t := range found {
			add(t)
		}
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("no %s found under %s", filepath.Join(target.ServiceReferenceDir, target.ConfigFileName), args[0])
	}
	return targets, nil
}

// newFormatter creates the formatter for an --output flag value.
func newFormatter(cmd *cobra.Command, output string, quiet bool) (formatting.Formatter, error) {
	format, err := formatting.ParseFormat(output)
	if err != nil {
		return nil, err
	}
	return formatting.New(formatting.Options{
		Format: format,
		Quiet:  quiet,
		Writer: cmd.OutOrStdout(),
	}), nil
}
