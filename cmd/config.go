package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"wsdlsync/internal/app"
)

var (
	configOutputFormat string
	configForce        bool
)

// configCmd groups the settings subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize settings",
	Long: `Settings are layered: built-in defaults, then ~/.config/wsdlsync/config.yaml,
then <workspace>/.wsdlsync/config.yaml, then WSDLSYNC_* environment variables.
With --config a single file replaces the two files.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective settings to the workspace config file",
	Long: `Writes the effective settings to <workspace>/.wsdlsync/config.yaml, or to the
file given with --config. An existing file is kept unless --force is set.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func loadSettingsAdapter() (*app.SettingsAdapter, error) {
	cfg := app.NewConfig(rootDebug, rootWorkspace, rootConfigPath)
	if err := app.LoadSettings(cfg); err != nil {
		return nil, err
	}
	return app.NewSettingsAdapter(*cfg.Settings, cfg.Workspace, rootConfigPath), nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter(cmd, configOutputFormat, true)
	if err != nil {
		return err
	}
	adapter, err := loadSettingsAdapter()
	if err != nil {
		return err
	}
	return formatter.FormatData(app.SettingsView(adapter.Get()))
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	adapter, err := loadSettingsAdapter()
	if err != nil {
		return err
	}

	path, err := adapter.Save(configForce)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s\n", text.FgGreen.Sprint("✓"), path)
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	configShowCmd.Flags().StringVarP(&configOutputFormat, "output", "o", "table", "Output format (table, console, json, yaml)")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")
}
