// Package config loads spikegen run configuration.
//
// Layering follows a fixed order: Default, then a YAML file, then
// SPIKEGEN_* environment variables, then command-line flags applied by the
// caller. Validate runs last, against an embedded CUE schema and then Go
// cross-field checks.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/spikegen/internal/artifact"
	"github.com/roach88/spikegen/internal/pointproc"
)

//go:embed schema.cue
var schemaSource string

// Environment variables read by Load.
const (
	EnvSeed     = "SPIKEGEN_SEED"
	EnvOutput   = "SPIKEGEN_OUTPUT"
	EnvFormat   = "SPIKEGEN_FORMAT"
	EnvLogLevel = "SPIKEGEN_LOG_LEVEL"
)

// Config is a complete generation run configuration.
type Config struct {
	// Seed initializes the single random source shared by all generators.
	Seed uint64 `json:"seed" yaml:"seed"`

	Output        OutputConfig        `json:"output" yaml:"output"`
	Homogeneous   HomogeneousConfig   `json:"homogeneous" yaml:"homogeneous"`
	Inhomogeneous InhomogeneousConfig `json:"inhomogeneous" yaml:"inhomogeneous"`
	Refractory    RefractoryConfig    `json:"refractory" yaml:"refractory"`
	Logging       LoggingConfig       `json:"logging" yaml:"logging"`
}

// OutputConfig selects where and how the artifact is written.
type OutputConfig struct {
	Path string `json:"path" yaml:"path"`

	// Format is "mat", "json" or "arrow". Empty infers it from Path.
	Format string `json:"format" yaml:"format"`
}

// HomogeneousConfig parameterizes the constant-rate train.
type HomogeneousConfig struct {
	N    int     `json:"n" yaml:"n"`
	Rate float64 `json:"rate" yaml:"rate"`
}

// InhomogeneousConfig parameterizes the sinusoidally modulated train.
type InhomogeneousConfig struct {
	N         int     `json:"n" yaml:"n"`
	Amplitude float64 `json:"amplitude" yaml:"amplitude"`
	Baseline  float64 `json:"baseline" yaml:"baseline"`
	Frequency float64 `json:"frequency" yaml:"frequency"`
	MaxRate   float64 `json:"max_rate" yaml:"max_rate"`

	// Oversampling is the ratio of candidates generated to spikes kept.
	Oversampling float64 `json:"oversampling" yaml:"oversampling"`
}

// Sinusoid returns the rate function described by c.
func (c InhomogeneousConfig) Sinusoid() pointproc.Sinusoid {
	return pointproc.Sinusoid{
		Amplitude: c.Amplitude,
		Baseline:  c.Baseline,
		Frequency: c.Frequency,
		MaxRate:   c.MaxRate,
	}
}

// RefractoryConfig parameterizes the dead-time trains.
type RefractoryConfig struct {
	N     int       `json:"n" yaml:"n"`
	Rates []float64 `json:"rates" yaml:"rates"`

	// Period is the absolute refractory period t_r in ms.
	Period float64 `json:"refractory_period" yaml:"refractory_period"`

	// SharedDraws reuses one uniform draw array for every rate column.
	SharedDraws bool `json:"shared_draws" yaml:"shared_draws"`
}

// LoggingConfig sets log verbosity: "info" (default), "debug" or "trace".
type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
}

// Default returns the configuration of the classic teaching dataset.
func Default() *Config {
	return &Config{
		Seed: 42,
		Output: OutputConfig{
			Path: "PoissonSpikeTrains.mat",
		},
		Homogeneous: HomogeneousConfig{
			N:    1000,
			Rate: 100,
		},
		Inhomogeneous: InhomogeneousConfig{
			N:            1000,
			Amplitude:    50,
			Baseline:     100,
			Frequency:    10,
			MaxRate:      150,
			Oversampling: 10,
		},
		Refractory: RefractoryConfig{
			N:           1000,
			Rates:       []float64{10, 50, 100, 200, 500, 1000},
			Period:      5,
			SharedDraws: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds a configuration from defaults, the YAML file at path (if
// path is non-empty) and environment overrides. It does not validate.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads a YAML file over the defaults. Keys absent from the
// file keep their default values; unknown keys are an error.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: invalid seed %q", EnvSeed, v)
		}
		cfg.Seed = seed
	}
	if v := os.Getenv(EnvOutput); v != "" {
		cfg.Output.Path = v
	}
	if v := os.Getenv(EnvFormat); v != "" {
		cfg.Output.Format = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}

// Validate checks the configuration against the schema and then the
// constraints that span several fields.
func (c *Config) Validate() error {
	if err := c.validateSchema(); err != nil {
		return err
	}
	if err := c.Inhomogeneous.Sinusoid().Validate(); err != nil {
		return fmt.Errorf("inhomogeneous: %w", err)
	}
	if math.Ceil(c.Inhomogeneous.Oversampling*float64(c.Inhomogeneous.N)) > pointproc.MaxSpikes {
		return fmt.Errorf("inhomogeneous: oversampling x n exceeds the limit of %d candidate spikes", pointproc.MaxSpikes)
	}
	if c.Refractory.N*len(c.Refractory.Rates) > pointproc.MaxSpikes {
		return fmt.Errorf("refractory: n x len(rates) exceeds the limit of %d spikes", pointproc.MaxSpikes)
	}
	if _, err := c.ArtifactFormat(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	return nil
}

func (c *Config) validateSchema() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}

	value := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(c))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config:\n%s", cueerrors.Details(err, nil))
	}
	return nil
}

// ArtifactFormat resolves the output format, inferring it from the output
// path when Format is empty.
func (c *Config) ArtifactFormat() (artifact.Format, error) {
	if c.Output.Format == "" {
		return artifact.FormatFromPath(c.Output.Path)
	}
	return artifact.ParseFormat(c.Output.Format)
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Refractory.Rates = append([]float64(nil), c.Refractory.Rates...)
	return &out
}
