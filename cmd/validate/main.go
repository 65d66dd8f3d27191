// Command validate recounts a US Accidents CSV independently of the analysis
// pipeline and checks that a report.json written by cmd/analyze agrees with
// it. Chunk boundaries, the chunk limit, and the skipping of failed chunks
// follow the settings recorded in the report.
//
// Usage:
//
//	go run ./cmd/validate \
//	  --input data/mock/US_Accidents_mock.csv \
//	  --report charts/report.json
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var input, reportPath string

	cmd := &cobra.Command{
		Use:           "validate",
		Short:         "Check an analysis report against an independent recount of its CSV",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if code := run(cmd.OutOrStdout(), input, reportPath); code != 0 {
				return fmt.Errorf("validation failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "CSV file the report was produced from")
	cmd.Flags().StringVar(&reportPath, "report", "charts/report.json", "report written by analyze")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func run(out io.Writer, input, reportPath string) int {
	fmt.Fprintln(out, "=== Accident Report Validation ===")
	fmt.Fprintln(out)

	rep, err := loadReport(reportPath)
	if err != nil {
		fmt.Fprintf(out, "FATAL: %v\n", err)
		return 1
	}

	rc, err := recount(input, rep.ChunkSize, rep.MaxChunks)
	if err != nil {
		fmt.Fprintf(out, "FATAL: recount %s: %v\n", input, err)
		return 1
	}

	phases := []*phase{
		validateChunks(rep, rc),
		validateTemporal(rep, rc),
		validateWeather(rep, rc),
		validateRoadFeatures(rep, rc),
		validateSample(rep, rc),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-36s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Rows: %d read, %d aggregated in report; %d read, %d aggregated in recount\n",
		rep.RowsRead, rep.Rows, rc.rowsRead, rc.rows)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}
