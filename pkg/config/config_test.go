package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DefaultArchiveURL, cfg.Dataset.ArchiveURL)
	assert.Equal(t, DefaultFetchBaseURL, cfg.Fetch.BaseURL)
	assert.Equal(t, 200, cfg.Fetch.Chunksize)
	assert.Equal(t, 1, cfg.Fetch.MissingAllowed)
	assert.Equal(t, 37, cfg.Split.TrainEnd)
	assert.Equal(t, 40, cfg.Split.ValEnd)
	assert.True(t, cfg.CircuitBreaker.Enabled)
}

func TestLoadEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("PUBMED_TEMPORAL_ROOT", "/data/pubmed")
	t.Setenv("FETCH_WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/pubmed", cfg.Dataset.Root)
	assert.Equal(t, 8, cfg.Fetch.Workers)
}

func TestLoadConfigFileOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("split.train_end", 30)
	viper.Set("split.val_end", 35)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Split.TrainEnd)
	assert.Equal(t, 35, cfg.Split.ValEnd)
}
