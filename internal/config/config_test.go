package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/spikegen/internal/artifact"
	"github.com/roach88/spikegen/internal/pointproc"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spikegen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	format, err := cfg.ArtifactFormat()
	require.NoError(t, err)
	assert.Equal(t, artifact.FormatMAT, format)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, []float64{10, 50, 100, 200, 500, 1000}, cfg.Refractory.Rates)
	assert.True(t, cfg.Refractory.SharedDraws)
}

func TestLoadFromFile_PartialOverride(t *testing.T) {
	path := writeConfig(t, `
seed: 7
homogeneous:
  rate: 20
refractory:
  rates: [5, 15]
output:
  path: out.json
`)
	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, 20.0, cfg.Homogeneous.Rate)
	assert.Equal(t, 1000, cfg.Homogeneous.N, "absent keys keep defaults")
	assert.Equal(t, []float64{5, 15}, cfg.Refractory.Rates)
	assert.Equal(t, 5.0, cfg.Refractory.Period)
	require.NoError(t, cfg.Validate())

	format, err := cfg.ArtifactFormat()
	require.NoError(t, err)
	assert.Equal(t, artifact.FormatJSON, format)
}

func TestLoadFromFile_Empty(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromFile_UnknownKey(t *testing.T) {
	_, err := LoadFromFile(writeConfig(t, "homogenous:\n  rate: 5\n"))
	assert.ErrorContains(t, err, "parsing config file")
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "reading config file")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvSeed, "123")
	t.Setenv(EnvOutput, "trains.arrow")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load(writeConfig(t, "seed: 7\n"))
	require.NoError(t, err)
	assert.Equal(t, uint64(123), cfg.Seed, "env wins over file")
	assert.Equal(t, "trains.arrow", cfg.Output.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)

	format, err := cfg.ArtifactFormat()
	require.NoError(t, err)
	assert.Equal(t, artifact.FormatArrow, format)
}

func TestLoad_EnvFormat(t *testing.T) {
	t.Setenv(EnvFormat, "json")

	cfg, err := Load("")
	require.NoError(t, err)
	format, err := cfg.ArtifactFormat()
	require.NoError(t, err)
	assert.Equal(t, artifact.FormatJSON, format)
}

func TestLoad_InvalidEnvSeed(t *testing.T) {
	t.Setenv(EnvSeed, "-1")
	_, err := Load("")
	assert.ErrorContains(t, err, EnvSeed)
}

func TestValidate_SchemaErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero homogeneous n", func(c *Config) { c.Homogeneous.N = 0 }, "homogeneous.n"},
		{"negative rate", func(c *Config) { c.Homogeneous.Rate = -1 }, "homogeneous.rate"},
		{"oversampling below one", func(c *Config) { c.Inhomogeneous.Oversampling = 0.5 }, "inhomogeneous.oversampling"},
		{"no rates", func(c *Config) { c.Refractory.Rates = nil }, "refractory.rates"},
		{"zero rate", func(c *Config) { c.Refractory.Rates = []float64{10, 0} }, "refractory.rates"},
		{"negative period", func(c *Config) { c.Refractory.Period = -5 }, "refractory.refractory_period"},
		{"oversampling too large", func(c *Config) { c.Inhomogeneous.Oversampling = 1e9 }, "inhomogeneous.oversampling"},
		{"homogeneous n too large", func(c *Config) { c.Homogeneous.N = pointproc.MaxSpikes + 1 }, "homogeneous.n"},
		{"empty output", func(c *Config) { c.Output.Path = "" }, "output.path"},
		{"unknown format", func(c *Config) { c.Output.Format = "csv" }, "output.format"},
		{"unknown level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_CrossField(t *testing.T) {
	t.Run("amplitude exceeds max rate", func(t *testing.T) {
		cfg := Default()
		cfg.Inhomogeneous.MaxRate = 120
		err := cfg.Validate()
		require.Error(t, err)
		assert.True(t, pointproc.IsInvalidParameter(err))
	})

	t.Run("rate dips below zero", func(t *testing.T) {
		cfg := Default()
		cfg.Inhomogeneous.Amplitude = 150
		cfg.Inhomogeneous.MaxRate = 300
		err := cfg.Validate()
		require.Error(t, err)
		assert.True(t, pointproc.IsInvalidParameter(err))
	})

	t.Run("too many candidates", func(t *testing.T) {
		cfg := Default()
		cfg.Inhomogeneous.N = pointproc.MaxSpikes / 100
		cfg.Inhomogeneous.Oversampling = 1000
		assert.ErrorContains(t, cfg.Validate(), "oversampling x n exceeds")
	})

	t.Run("refractory table too large", func(t *testing.T) {
		cfg := Default()
		cfg.Refractory.N = pointproc.MaxSpikes / 2
		assert.ErrorContains(t, cfg.Validate(), "n x len(rates) exceeds")
	})

	t.Run("limit matches schema", func(t *testing.T) {
		cfg := Default()
		cfg.Homogeneous.N = pointproc.MaxSpikes
		assert.NoError(t, cfg.Validate())
	})

	t.Run("format not inferable", func(t *testing.T) {
		cfg := Default()
		cfg.Output.Path = "trains.csv"
		assert.ErrorContains(t, cfg.Validate(), "cannot infer artifact format")
	})

	t.Run("explicit format overrides extension", func(t *testing.T) {
		cfg := Default()
		cfg.Output.Path = "trains.bin"
		cfg.Output.Format = "arrow"
		assert.NoError(t, cfg.Validate())
	})
}

func TestClone_IsDeep(t *testing.T) {
	cfg := Default()
	clone := cfg.Clone()
	clone.Refractory.Rates[0] = 99
	clone.Seed = 1

	assert.Equal(t, 10.0, cfg.Refractory.Rates[0])
	assert.Equal(t, uint64(42), cfg.Seed)
}
