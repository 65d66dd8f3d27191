// Command genmock writes a synthetic CSV shaped like the US Accidents
// dataset, for demos and for exercising the analysis without the real file.
//
// Usage:
//
//	go run ./cmd/genmock --rows 250000 --out data/mock/accidents.csv
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/accident-analysis/internal/mockdata"
	"github.com/couchcryptid/accident-analysis/internal/observability"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := mockdata.DefaultOptions()
	var (
		out   string
		start string
		end   string
	)

	cmd := &cobra.Command{
		Use:           "genmock",
		Short:         "Generate a synthetic US Accidents CSV",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := observability.NewLogger(cmd.ErrOrStderr(), "info", "text")

			var err error
			if opts.Start, err = time.Parse(time.DateOnly, start); err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			if opts.End, err = time.Parse(time.DateOnly, end); err != nil {
				return fmt.Errorf("--end: %w", err)
			}
			if err := generate(out, opts); err != nil {
				logger.Error("generate failed", "error", err)
				return err
			}
			logger.Info("mock dataset written", "path", out, "rows", opts.Rows, "seed", opts.Seed)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&out, "out", "data/mock/US_Accidents_mock.csv", "output CSV path")
	f.IntVar(&opts.Rows, "rows", opts.Rows, "number of data rows")
	f.Int64Var(&opts.Seed, "seed", opts.Seed, "random seed")
	f.StringVar(&start, "start", opts.Start.Format(time.DateOnly), "earliest Start_Time (YYYY-MM-DD)")
	f.StringVar(&end, "end", opts.End.Format(time.DateOnly), "latest Start_Time (YYYY-MM-DD)")
	f.IntVar(&opts.BadRowEvery, "bad-row-every", 0, "write an unparseable row every N rows (0 = never)")
	return cmd
}

func generate(path string, opts mockdata.Options) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	bar := progressbar.DefaultBytes(-1, "writing")
	defer bar.Finish() //nolint:errcheck // cosmetic

	w := bufio.NewWriter(file)
	if err := mockdata.Generate(io.MultiWriter(w, bar), opts); err != nil {
		return err
	}
	return w.Flush()
}
