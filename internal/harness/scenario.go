package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/spikegen/internal/config"
)

// Scenario defines a property test of one generation run.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed overrides the configuration seed when set.
	Seed *uint64 `yaml:"seed,omitempty"`

	// Config holds overrides applied on top of config.Default, using the
	// same keys as a configuration file.
	Config map[string]any `yaml:"config,omitempty"`

	// Assertions validate the generated bundle, or the failure.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion checks one property of a run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Train selects "hom", "inh" or "ref". Assertions on "ref" apply to
	// every column unless Column is set.
	Train string `yaml:"train,omitempty"`

	// Column selects one refractory column by index.
	Column *int `yaml:"column,omitempty"`

	// Count is the expected length (length) or column count (columns).
	Count int `yaml:"count,omitempty"`

	// Value is the bound (min_isi) or expected mean in ms (mean_isi).
	Value float64 `yaml:"value,omitempty"`

	// Tolerance is the allowed relative error for mean_isi.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// Bins is the number of phase bins for phase_density.
	Bins int `yaml:"bins,omitempty"`

	// MaxError is the allowed relative error per bin (phase_density) or
	// the allowed KS distance (exponential_ks).
	MaxError float64 `yaml:"max_error,omitempty"`

	// Code is the expected error code (error).
	Code string `yaml:"code,omitempty"`

	// Stage optionally pins the failing stage (error).
	Stage string `yaml:"stage,omitempty"`
}

// Assertion type constants.
const (
	AssertLength             = "length"
	AssertStrictlyIncreasing = "strictly_increasing"
	AssertMinISI             = "min_isi"
	AssertMeanISI            = "mean_isi"
	AssertColumns            = "columns"
	AssertPhaseDensity       = "phase_density"
	AssertExponentialKS      = "exponential_ks"
	AssertError              = "error"
)

// Train selectors.
const (
	TrainHomogeneous   = "hom"
	TrainInhomogeneous = "inh"
	TrainRefractory    = "ref"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files under dir, sorted by path.
// A non-empty filter is a glob matched against the file name without its
// extension.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	sort.Strings(files)
	return files, err
}

// BuildConfig returns the scenario's configuration: defaults, then the
// overrides in Config, then Seed.
func (s *Scenario) BuildConfig() (*config.Config, error) {
	cfg := config.Default()
	if len(s.Config) > 0 {
		data, err := yaml.Marshal(s.Config)
		if err != nil {
			return nil, fmt.Errorf("encode config overrides: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("apply config overrides: %w", err)
		}
	}
	if s.Seed != nil {
		cfg.Seed = *s.Seed
	}
	return cfg, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if _, err := s.BuildConfig(); err != nil {
		return err
	}

	expectsError := false
	for i := range s.Assertions {
		a := &s.Assertions[i]
		if err := validateAssertion(i, a); err != nil {
			return err
		}
		if a.Type == AssertError {
			expectsError = true
		}
	}
	if expectsError && len(s.Assertions) > 1 {
		return fmt.Errorf("an error assertion must be the only assertion")
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	needTrain := func() error {
		switch a.Train {
		case TrainHomogeneous, TrainInhomogeneous, TrainRefractory:
		case "":
			return fmt.Errorf("assertions[%d]: train is required for %s", index, a.Type)
		default:
			return fmt.Errorf("assertions[%d]: unknown train %q", index, a.Train)
		}
		if a.Column != nil && a.Train != TrainRefractory {
			return fmt.Errorf("assertions[%d]: column only applies to train ref", index)
		}
		return nil
	}

	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertLength:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for length", index)
		}
		return needTrain()
	case AssertStrictlyIncreasing:
		return needTrain()
	case AssertMinISI:
		return needTrain()
	case AssertMeanISI:
		if !(a.Value > 0) {
			return fmt.Errorf("assertions[%d]: value must be positive for mean_isi", index)
		}
		if !(a.Tolerance > 0) {
			return fmt.Errorf("assertions[%d]: tolerance must be positive for mean_isi", index)
		}
		return needTrain()
	case AssertColumns:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for columns", index)
		}
	case AssertPhaseDensity:
		if a.Bins < 1 {
			return fmt.Errorf("assertions[%d]: bins must be >= 1 for phase_density", index)
		}
		if !(a.MaxError > 0) {
			return fmt.Errorf("assertions[%d]: max_error must be positive for phase_density", index)
		}
	case AssertExponentialKS:
		if !(a.MaxError > 0) {
			return fmt.Errorf("assertions[%d]: max_error must be positive for exponential_ks", index)
		}
		if a.Train == TrainInhomogeneous {
			return fmt.Errorf("assertions[%d]: exponential_ks does not apply to train inh", index)
		}
		return needTrain()
	case AssertError:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
