package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"wsdlsync/internal/params"
)

// newVersionCmd creates the Cobra command for displaying the application version.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of wsdlsync",
		Long: `Prints the wsdlsync version and the dotnet-svcutil version that
"wsdlsync create" records in new params documents.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			v := rootCmd.Version
			if v == "" {
				v = "dev"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wsdlsync version %s\n", v)
			fmt.Fprintf(cmd.OutOrStdout(), "dotnet-svcutil %s (new documents)\n", params.DefaultToolVersion)
		},
	}
}
