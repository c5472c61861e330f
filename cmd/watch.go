package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"wsdlsync/internal/app"
	"wsdlsync/internal/notify"
)

var (
	watchMonitor bool
	watchYes     bool
	watchQuiet   bool
)

// watchCmd runs the long-lived process.
var watchCmd = &cobra.Command{
	Use:   "watch [workspace]",
	Short: "Watch a workspace and regenerate clients on change",
	Long: `Watches every ServiceReference/dotnet-svcutil.params.json below the workspace.

When a params document is created or modified, the client is regenerated
(setting autoRunOnChange). With --monitor, or when autoStartMonitoring is set,
the remote WSDL documents of every target are polled and a change triggers a
regeneration, after a confirmation prompt unless autoUpdateOnWSDLChange is set.

When no terminal is attached, confirmation prompts are declined unless --yes
is given.

Examples:
  wsdlsync watch
  wsdlsync watch ./src --monitor
  wsdlsync watch --monitor --yes --log-file /var/log/wsdlsync.log`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		rootWorkspace = args[0]
	}

	application, err := newApplication(cmd, func(cfg *app.Config) {
		cfg.Monitor = watchMonitor
		cfg.Quiet = watchQuiet
		cfg.AutoAccept = watchYes
		cfg.Interactive = !watchYes && notify.IsInteractive()
	})
	if err != nil {
		return err
	}
	defer application.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchMonitor, "monitor", false, "Monitor the remote WSDL documents of every discovered target")
	watchCmd.Flags().BoolVarP(&watchYes, "yes", "y", false, "Accept regeneration prompts without asking")
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "Suppress success and failure notifications")
}
