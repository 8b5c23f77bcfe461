package harness

import (
	"context"
	"fmt"

	"github.com/roach88/spikegen/internal/engine"
	"github.com/roach88/spikegen/internal/pointproc"
	"github.com/roach88/spikegen/internal/testutil"
)

// ErrCodeInvalidConfig marks a scenario whose configuration failed schema
// validation before any generator ran.
const ErrCodeInvalidConfig = "INVALID_CONFIG"

// Run executes a scenario and returns the result.
//
// The configuration is validated first; a validation failure counts as a
// generation failure so that error assertions can target it. The run ID is
// fixed to the scenario name.
//
// Returns an error only if the scenario itself is unusable.
func Run(scenario *Scenario) (*Result, error) {
	cfg, err := scenario.BuildConfig()
	if err != nil {
		return nil, err
	}

	result := NewResult()
	runErr := cfg.Validate()
	var code, stage string
	if runErr != nil {
		code = string(pointproc.CodeOf(runErr))
		if code == "" {
			code = ErrCodeInvalidConfig
		}
		stage = "config"
	} else {
		eng := engine.New(engine.WithIDGenerator(testutil.NewFixedIDGenerator(scenario.Name)))
		result.Run, runErr = eng.Generate(context.Background(), cfg)
		code, stage = string(engine.CodeOf(runErr)), string(engine.StageOf(runErr))
	}

	if runErr != nil {
		result.ErrorCode = code
		result.Stage = stage
		for _, a := range scenario.Assertions {
			c := Check{Type: a.Type, Train: a.Train, Column: a.Column}
			switch {
			case a.Type != AssertError:
				c.Detail = fmt.Sprintf("generation failed: %v", runErr)
			case a.Code != code:
				c.Detail = fmt.Sprintf("got error %s, want %s: %v", code, a.Code, runErr)
			case a.Stage != "" && a.Stage != stage:
				c.Detail = fmt.Sprintf("failed in stage %s, want %s", stage, a.Stage)
			default:
				c.Pass = true
			}
			result.addCheck(c)
		}
		return result, nil
	}

	for i := range scenario.Assertions {
		result.addCheck(evaluate(&scenario.Assertions[i], cfg, result.Run.Bundle))
	}
	return result, nil
}
