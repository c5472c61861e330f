package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"wsdlsync/internal/app"
	"wsdlsync/internal/notify"
	"wsdlsync/internal/params"
)

var (
	createURL        string
	createNamespace  string
	createFramework  string
	createYes        bool
	createNoGenerate bool
)

// createCmd writes a new params document and generates its client.
var createCmd = &cobra.Command{
	Use:   "create [project-dir]",
	Short: "Add a service reference to a project",
	Long: `Creates ServiceReference/dotnet-svcutil.params.json in the project folder
(default: the current directory) and generates the client.

Missing answers are asked for on the terminal. With --yes, or when no
terminal is attached, the flags and defaults are used as given.

Examples:
  wsdlsync create src/Billing
  wsdlsync create src/Billing --url http://host/Billing.svc?wsdl --namespace Contoso.Billing --yes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	projectDir := "."
	if len(args) == 1 {
		projectDir = args[0]
	}
	projectDir, err := filepath.Abs(projectDir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", projectDir, err)
	}

	application, err := newApplication(cmd, func(cfg *app.Config) {
		cfg.Interactive = !createYes && notify.IsInteractive()
	})
	if err != nil {
		return err
	}
	defer application.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	services := application.Services()
	req, err := askCreateRequest(ctx, services.Prompter, projectDir)
	if err != nil {
		return err
	}

	t, err := services.Coordinator.CreateConfig(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Created %s\n", text.FgGreen.Sprint("✓"), t.ConfigPath)

	if createNoGenerate {
		return nil
	}
	_, err = services.Coordinator.Generate(ctx, t)
	return err
}

// askCreateRequest fills a request from the flags and prompter answers.
func askCreateRequest(ctx context.Context, prompter notify.Prompter, projectDir string) (params.CreateRequest, error) {
	req := params.CreateRequest{ProjectDir: projectDir}

	url, err := prompter.Ask(ctx, "Service URL (WSDL)", createURL, params.ValidateServiceURL)
	if err != nil {
		return req, err
	}
	req.ServiceURL = url

	namespace := createNamespace
	if namespace == "" {
		namespace = params.DefaultNamespace(projectDir)
	}
	namespace, err = prompter.Ask(ctx, "Namespace", namespace, params.ValidateNamespace)
	if err != nil {
		return req, err
	}
	req.Namespace = namespace

	def := 0
	if createFramework != "" {
		def = slices.Index(params.Frameworks, createFramework)
		if def < 0 {
			return req, fmt.Errorf("unsupported target framework %q (use one of %v)", createFramework, params.Frameworks)
		}
	}
	framework, err := prompter.Choose(ctx, "Target framework", params.Frameworks, def)
	if err != nil {
		return req, err
	}
	req.TargetFramework = framework

	return req, nil
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVar(&createURL, "url", "", "Service URL of the WSDL document")
	createCmd.Flags().StringVar(&createNamespace, "namespace", "", "Namespace for the generated types")
	createCmd.Flags().StringVar(&createFramework, "framework", "", "Target framework")
	createCmd.Flags().BoolVarP(&createYes, "yes", "y", false, "Do not prompt; use the flags and defaults")
	createCmd.Flags().BoolVar(&createNoGenerate, "no-generate", false, "Only write the params document")
}
