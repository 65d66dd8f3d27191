// Command analyze streams the US Accidents CSV in fixed-size chunks,
// aggregates temporal, weather, road-feature and spatial statistics, and
// writes five PNG charts plus a JSON report.
//
// Usage:
//
//	go run ./cmd/analyze --input-path US_Accidents_March23.csv --output-dir charts
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/couchcryptid/accident-analysis/internal/config"
	"github.com/couchcryptid/accident-analysis/internal/observability"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var (
		cfgFile string
		envFile string
	)

	cmd := &cobra.Command{
		Use:           "analyze",
		Short:         "Aggregate the US Accidents dataset and render charts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadEnvFile(envFile, cmd.Flags().Changed("env-file")); err != nil {
				return err
			}
			if cfgFile != "" {
				v.SetConfigFile(cfgFile)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("read config file: %w", err)
				}
			}

			cfg, err := config.Load(v)
			if err != nil {
				slog.Error("failed to load config", "error", err)
				return err
			}

			logger := observability.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			metrics := observability.NewMetrics()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := run(ctx, cfg, logger, metrics); err != nil {
				logger.Error("analysis failed", "error", err)
				return err
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	f := cmd.Flags()
	f.String("input-path", "US_Accidents_March23.csv", "CSV file to analyze")
	f.Int("chunk-size", 100000, "rows per chunk")
	f.Int("max-chunks", 11, "stop after this many chunks (0 = all)")
	f.Float64("sample-fraction", 0.1, "fraction of each chunk kept for the hotspot sample")
	f.Int("scatter-sample-size", 10000, "points drawn on the hotspot chart")
	f.Int("top-weather", 10, "weather conditions shown on the weather chart")
	f.Uint64("seed", 0, "random seed (0 = time-seeded)")
	f.String("output-dir", "charts", "directory for charts and the report")
	f.Int("chart-width", 1200, "chart width in pixels")
	f.Int("chart-height", 600, "chart height in pixels")
	f.Bool("sample-parquet", false, "also export the hotspot sample as Parquet")
	f.Bool("progress", false, "show a progress bar")
	f.String("log-level", "info", "debug, info, warn or error")
	f.String("log-format", "text", "text or json")
	f.String("metrics-addr", "", "serve /healthz, /readyz, /status and /metrics here while running")
	f.String("s3-bucket", "", "upload artifacts to this bucket")
	f.String("s3-prefix", "accident-analysis", "key prefix for uploaded artifacts")
	f.String("aws-region", "", "AWS region for uploads")
	f.String("kafka-brokers", "", "comma-separated brokers to publish the report to")
	f.String("kafka-topic", "accident-analysis-reports", "report topic")

	// Only flags set on the command line override env and config file.
	for _, key := range config.Keys() {
		if fl := f.Lookup(flagName(key)); fl != nil {
			_ = v.BindPFlag(key, fl)
		}
	}

	return cmd
}

// flagName maps a config key to its command-line flag.
func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// loadEnvFile loads path into the process environment without overriding
// variables already set. A missing file is only an error when the path was
// given explicitly.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
