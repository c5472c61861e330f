package cmd

import (
	"errors"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"wsdlsync/internal/config"
	"wsdlsync/internal/generator"
	"wsdlsync/internal/params"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeInvalidInput indicates an invalid params document, settings
	// file or create request.
	ExitCodeInvalidInput = 2
	// ExitCodeGenerationFailed indicates the generator ran and failed.
	ExitCodeGenerationFailed = 3
	// ExitCodeToolMissing indicates the generator could not be started.
	ExitCodeToolMissing = 4
)

// Global flags shared by every subcommand.
var (
	rootDebug      bool
	rootConfigPath string
	rootLogFile    string
	rootWorkspace  string
)

// rootCmd represents the base command for the wsdlsync application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "wsdlsync",
	Short: "Keep dotnet-svcutil clients in sync with their WSDL",
	Long: `wsdlsync watches dotnet-svcutil.params.json documents in a workspace and
regenerates the client code with dotnet-svcutil when a document changes on
disk or when one of the remote WSDL documents it references changes.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A missing .env file is not an error.
		_ = godotenv.Load()
	},
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var spawnErr *generator.SpawnError
	if errors.As(err, &spawnErr) {
		return ExitCodeToolMissing
	}

	var processErr *generator.ProcessFailure
	if errors.As(err, &processErr) {
		return ExitCodeGenerationFailed
	}

	var parseErr *params.ParseError
	if errors.As(err, &parseErr) {
		return ExitCodeInvalidInput
	}

	var settingsErr config.ValidationErrors
	if errors.As(err, &settingsErr) {
		return ExitCodeInvalidInput
	}

	var configErr *config.ConfigurationError
	if errors.As(err, &configErr) {
		return ExitCodeInvalidInput
	}

	var requestErr validator.ValidationErrors
	if errors.As(err, &requestErr) {
		return ExitCodeInvalidInput
	}

	// Default to general error
	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config", "", "Settings file (disables layered configuration)")
	rootCmd.PersistentFlags().StringVar(&rootLogFile, "log-file", "", "Write the generator log to this file instead of stderr")
	rootCmd.PersistentFlags().StringVarP(&rootWorkspace, "workspace", "w", ".", "Workspace root searched for params documents")

	// Used when the --version flag is invoked.
	rootCmd.SetVersionTemplate(`{{printf "wsdlsync version %s\n" .Version}}`)

	rootCmd.AddCommand(newVersionCmd())
}
