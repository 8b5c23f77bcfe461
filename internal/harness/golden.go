package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/spikegen/internal/ir"
	"github.com/roach88/spikegen/internal/store"
)

// Snapshot renders the seed-independent part of a result as canonical
// JSON: which checks passed, and either the bundle shapes or the error.
func Snapshot(scenarioName string, r *Result) ([]byte, error) {
	checks := make([]any, len(r.Checks))
	for i, c := range r.Checks {
		m := map[string]any{
			"type": c.Type,
			"pass": c.Pass,
		}
		if c.Train != "" {
			m["train"] = c.Train
		}
		if c.Column != nil {
			m["column"] = *c.Column
		}
		checks[i] = m
	}

	snap := map[string]any{
		"scenario": scenarioName,
		"pass":     r.Pass,
		"checks":   checks,
	}
	if r.ErrorCode != "" {
		snap["error_code"] = r.ErrorCode
		snap["stage"] = r.Stage
	}
	if r.Run != nil {
		s := store.ShapesOf(r.Run.Bundle)
		snap["shapes"] = map[string]any{
			"hom":      s.Homogeneous,
			"inh":      s.Inhomogeneous,
			"ref_rows": s.RefractoryRows,
			"ref_cols": s.RefractoryCols,
		}
	}
	return ir.MarshalCanonical(snap)
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	data, err := Snapshot(scenario.Name, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return result, nil
}
