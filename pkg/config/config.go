// Package config loads build configuration from file, environment, and
// defaults through viper.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the dataset builder.
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Dataset configuration
	Dataset DatasetConfig `mapstructure:"dataset"`

	// Fetch configuration
	Fetch FetchConfig `mapstructure:"fetch"`

	// Split configuration
	Split SplitConfig `mapstructure:"split"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DatasetConfig holds paths and source locations for the build.
type DatasetConfig struct {
	Root       string `mapstructure:"root"`
	ArchiveURL string `mapstructure:"archive_url"`
}

// FetchConfig holds configuration for the metadata fetch stage.
type FetchConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	Workers   int    `mapstructure:"workers"`
	Chunksize int    `mapstructure:"chunksize"`
	// MaxRounds bounds the fetch retry loop over still-missing IDs.
	MaxRounds int `mapstructure:"max_rounds"`
	// MissingAllowed is the number of IDs permitted to stay unresolved
	// (papers de-indexed upstream).
	MissingAllowed int `mapstructure:"missing_allowed"`
}

// SplitConfig holds the temporal window boundaries of the edge split.
// Train covers t < TrainEnd, validation TrainEnd <= t <= ValEnd, and test
// t > ValEnd.
type SplitConfig struct {
	TrainEnd int `mapstructure:"train_end"`
	ValEnd   int `mapstructure:"val_end"`
}

// CircuitBreakerConfig holds configuration for circuit breaking around the
// remote API client.
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// TelemetryConfig holds telemetry configuration.
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
}

// DefaultArchiveURL is the upstream location of the PubMed-Diabetes archive.
const DefaultArchiveURL = "https://linqs-data.soe.ucsc.edu/public/datasets/pubmed-diabetes/pubmed-diabetes.zip"

// DefaultFetchBaseURL is the NCBI E-utilities endpoint base.
const DefaultFetchBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("log.level", "info")

	viper.SetDefault("dataset.root", ".")
	viper.SetDefault("dataset.archive_url", DefaultArchiveURL)

	viper.SetDefault("fetch.base_url", DefaultFetchBaseURL)
	viper.SetDefault("fetch.api_key", "")
	viper.SetDefault("fetch.workers", 0)
	viper.SetDefault("fetch.chunksize", 200)
	viper.SetDefault("fetch.max_rounds", 5)
	viper.SetDefault("fetch.missing_allowed", 1)

	viper.SetDefault("split.train_end", 37)
	viper.SetDefault("split.val_end", 40)

	viper.SetDefault("circuit_breaker.enabled", true)
	viper.SetDefault("circuit_breaker.max_requests", 3)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)

	viper.SetDefault("telemetry.parquet_path", "")
}

// overrideWithEnv overrides config with environment variables.
func overrideWithEnv(config *Config) {
	if root := os.Getenv("PUBMED_TEMPORAL_ROOT"); root != "" {
		config.Dataset.Root = root
	}
	if url := os.Getenv("PUBMED_TEMPORAL_ARCHIVE_URL"); url != "" {
		config.Dataset.ArchiveURL = url
	}
	if base := os.Getenv("EUTILS_BASE_URL"); base != "" {
		config.Fetch.BaseURL = base
	}
	if key := os.Getenv("NCBI_API_KEY"); key != "" {
		config.Fetch.APIKey = key
	}
	if workers := os.Getenv("FETCH_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil {
			config.Fetch.Workers = n
		}
	}
	if path := os.Getenv("TELEMETRY_PARQUET_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
