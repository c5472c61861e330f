package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"wsdlsync/internal/fetch"
	"wsdlsync/internal/params"
	"wsdlsync/pkg/strings"
)

var (
	checkOutputFormat string
	checkQuiet        bool
)

// checkCmd fetches and fingerprints the inputs of targets once.
var checkCmd = &cobra.Command{
	Use:   "check [path...]",
	Short: "Check that the remote WSDL documents of targets are reachable",
	Long: `Reads the given params documents, or every params document in the
workspace, fetches each remote input once and prints its fingerprint.
Local inputs are listed but not fetched.

Examples:
  wsdlsync check
  wsdlsync check src/Billing -o json`,
	RunE: runCheck,
}

// checkRow is one input of one target.
type checkRow struct {
	Target      string `json:"target" yaml:"target"`
	Input       string `json:"input" yaml:"input"`
	Status      string `json:"status" yaml:"status"`
	Fingerprint string `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// checkReport renders check rows as a table.
type checkReport []checkRow

func (r checkReport) Headers() []string {
	return []string{"TARGET", "INPUT", "STATUS", "FINGERPRINT"}
}

func (r checkReport) Rows() [][]string {
	rows := make([][]string, 0, len(r))
	for _, c := range r {
		status := c.Status
		if c.Error != "" {
			status = c.Status + ": " + strings.Truncate(c.Error, strings.DefaultCellMaxLen)
		}
		rows = append(rows, []string{
			strings.TruncatePath(c.Target, strings.DefaultPathMaxLen),
			strings.TruncatePath(c.Input, strings.DefaultPathMaxLen),
			status,
			c.Fingerprint,
		})
	}
	return rows
}

func runCheck(cmd *cobra.Command, args []string) error {
	formatter, err := newFormatter(cmd, checkOutputFormat, checkQuiet)
	if err != nil {
		return err
	}

	application, err := newApplication(cmd, nil)
	if err != nil {
		return err
	}
	defer application.Close()

	targets, err := resolveTargets(application.Workspace(), args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	services := application.Services()
	var report checkReport
	var errs []error
	unreachable, remote := 0, 0

	for _, t := range targets {
		p, err := params.Read(t.ConfigPath)
		if err != nil {
			report = append(report, checkRow{Target: t.Key(), Status: "invalid", Error: err.Error()})
			errs = append(errs, err)
			continue
		}

		results, err := services.Supervisor.CheckNow(ctx, t)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fingerprints := make(map[string]string, len(results))
		for _, r := range results {
			fingerprints[r.Identifier] = r.Current.Short()
		}

		for _, input := range p.Inputs {
			row := checkRow{Target: t.Key(), Input: input}
			switch fp, ok := fingerprints[input]; {
			case !fetch.IsFetchable(input):
				row.Status = "local"
			case ok:
				remote++
				row.Status = "reachable"
				row.Fingerprint = fp
			default:
				remote++
				unreachable++
				row.Status = "unreachable"
			}
			report = append(report, row)
		}
	}

	if err := formatter.FormatData(report); err != nil {
		return err
	}

	if unreachable > 0 {
		errs = append(errs, fmt.Errorf("%d of %d remote documents could not be fetched", unreachable, remote))
	}
	return errors.Join(errs...)
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkOutputFormat, "output", "o", "table", "Output format (table, console, json, yaml)")
	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "Suppress non-essential output")
}
