package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config holds all run settings. Values come from, in increasing priority:
// defaults, an optional config file, environment variables, and flags.
type Config struct {
	InputPath         string  `mapstructure:"input_path"`
	ChunkSize         int     `mapstructure:"chunk_size"`
	MaxChunks         int     `mapstructure:"max_chunks"`
	SampleFraction    float64 `mapstructure:"sample_fraction"`
	ScatterSampleSize int     `mapstructure:"scatter_sample_size"`
	TopWeather        int     `mapstructure:"top_weather"`
	Seed              uint64  `mapstructure:"seed"`

	OutputDir     string `mapstructure:"output_dir"`
	ChartWidth    int    `mapstructure:"chart_width"`
	ChartHeight   int    `mapstructure:"chart_height"`
	SampleParquet bool   `mapstructure:"sample_parquet"`
	Progress      bool   `mapstructure:"progress"`

	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	MetricsAddr string `mapstructure:"metrics_addr"`

	// Artifact upload; disabled when S3Bucket is empty.
	S3Bucket  string `mapstructure:"s3_bucket"`
	S3Prefix  string `mapstructure:"s3_prefix"`
	AWSRegion string `mapstructure:"aws_region"`

	// Report publishing; disabled when KafkaBrokers is empty.
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaTopic   string   `mapstructure:"kafka_topic"`

	ShutdownTimeout time.Duration `mapstructure:"-"`
}

var defaults = map[string]any{
	"input_path":          "US_Accidents_March23.csv",
	"chunk_size":          100000,
	"max_chunks":          11,
	"sample_fraction":     0.1,
	"scatter_sample_size": 10000,
	"top_weather":         10,
	"seed":                0,
	"output_dir":          "charts",
	"chart_width":         1200,
	"chart_height":        600,
	"sample_parquet":      false,
	"progress":            false,
	"log_level":           "info",
	"log_format":          "text",
	"metrics_addr":        "",
	"s3_bucket":           "",
	"s3_prefix":           "accident-analysis",
	"aws_region":          "",
	"kafka_brokers":       "",
	"kafka_topic":         "accident-analysis-reports",
}

// Keys lists every configuration key. Each maps to an upper-case
// environment variable of the same name.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	return keys
}

// SetDefaults registers defaults and environment lookup on v.
func SetDefaults(v *viper.Viper) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()
}

// Load decodes and validates the configuration held by v. Callers bind
// flags and read any config file before calling Load.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	hook := viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			trimSpaceHook(),
			dc.DecodeHook,
		)
	})
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.KafkaBrokers = normalizeBrokers(cfg.KafkaBrokers)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	cfg.ShutdownTimeout = shutdownTimeout

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SeedOrNow returns the configured seed, or a clock-derived one when unset.
func (c *Config) SeedOrNow(now time.Time) uint64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return uint64(now.UnixNano())
}

func (c *Config) validate() error {
	var errs []error
	if c.InputPath == "" {
		errs = append(errs, errors.New("INPUT_PATH is required"))
	}
	if c.ChunkSize <= 0 {
		errs = append(errs, errors.New("CHUNK_SIZE must be positive"))
	}
	if c.MaxChunks < 0 {
		errs = append(errs, errors.New("MAX_CHUNKS must be zero (all chunks) or positive"))
	}
	if c.SampleFraction <= 0 || c.SampleFraction > 1 {
		errs = append(errs, errors.New("SAMPLE_FRACTION must be in (0, 1]"))
	}
	if c.ScatterSampleSize <= 0 {
		errs = append(errs, errors.New("SCATTER_SAMPLE_SIZE must be positive"))
	}
	if c.TopWeather <= 0 {
		errs = append(errs, errors.New("TOP_WEATHER must be positive"))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("OUTPUT_DIR is required"))
	}
	if c.ChartWidth < 200 || c.ChartHeight < 200 {
		errs = append(errs, errors.New("CHART_WIDTH and CHART_HEIGHT must be at least 200"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q is not json or text", c.LogFormat))
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		errs = append(errs, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set"))
	}
	return errors.Join(errs...)
}

// normalizeBrokers trims entries and drops empty ones.
func normalizeBrokers(in []string) []string {
	joined := strings.TrimSpace(strings.Join(in, ","))
	if joined == "" {
		return nil
	}
	var out []string
	for _, b := range sharedcfg.ParseBrokers(joined) {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func trimSpaceHook() mapstructure.DecodeHookFuncType {
	return func(from, _ reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}
		return strings.TrimSpace(reflect.ValueOf(data).String()), nil
	}
}
