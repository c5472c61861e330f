package cmd

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"wsdlsync/internal/generator"
	"wsdlsync/pkg/strings"
)

var (
	generateOutputFormat string
	generateQuiet        bool
	generateParallel     int
)

// generateCmd regenerates clients on request.
var generateCmd = &cobra.Command{
	Use:   "generate [path...]",
	Short: "Regenerate clients now",
	Long: `Runs dotnet-svcutil for the given params documents or project folders.
Without arguments every params document in the workspace is regenerated.

A target that is already being generated by another trigger is skipped.

Examples:
  wsdlsync generate
  wsdlsync generate src/Billing
  wsdlsync generate src/Billing/ServiceReference/dotnet-svcutil.params.json -o json`,
	RunE: runGenerate,
}

// outcomeList renders generation outcomes as a table.
type outcomeList []generator.Outcome

func (l outcomeList) Headers() []string {
	return []string{"TARGET", "STATUS", "EXIT", "DURATION", "RUN"}
}

func (l outcomeList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, o := range l {
		exit := ""
		if o.Status != generator.StatusSkipped {
			exit = strconv.Itoa(o.ExitCode)
		}
		run := o.RunID
		if len(run) > 8 {
			run = run[:8]
		}
		rows = append(rows, []string{strings.TruncatePath(o.Target, strings.DefaultPathMaxLen), string(o.Status), exit, o.Duration.Round(time.Millisecond).String(), run})
	}
	return rows
}

func runGenerate(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter(cmd, generateOutputFormat, generateQuiet)
	if err != nil {
		return err
	}

	application, err := newApplication(cmd, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	services := application.Services()
	targets, err := resolveTargets(application.Workspace(), args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	outcomes := make(outcomeList, len(targets))
	errs := make([]error, len(targets))

	var g errgroup.Group
	g.SetLimit(max(generateParallel, 1))
	for i, t := range targets {
		g.Go(func() error {
			outcomes[i], errs[i] = services.Coordinator.Generate(ctx, t)
			return nil
		})
	}
	_ = g.Wait()

	if err := formatter.FormatData(outcomes); err != nil {
		return err
	}
	return errors.Join(errs...)
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateOutputFormat, "output", "o", "table", "Output format (table, console, json, yaml)")
	generateCmd.Flags().BoolVarP(&generateQuiet, "quiet", "q", false, "Suppress non-essential output")
	generateCmd.Flags().IntVarP(&generateParallel, "parallel", "p", 2, "Maximum number of concurrent generator runs")
}
