package harness

import (
	"fmt"
	"math"

	"github.com/roach88/spikegen/internal/analysis"
	"github.com/roach88/spikegen/internal/config"
	"github.com/roach88/spikegen/internal/ir"
	"github.com/roach88/spikegen/internal/pointproc"
)

// isiSlack absorbs rounding in differences of cumulative sums.
const isiSlack = 1e-9

// selected is one train picked by an assertion, with the rate that drove it.
type selected struct {
	label string
	train ir.SpikeTrain
	rate  float64
}

func selectTrains(a *Assertion, cfg *config.Config, b *ir.Bundle) ([]selected, error) {
	switch a.Train {
	case TrainHomogeneous:
		return []selected{{TrainHomogeneous, b.Homogeneous, cfg.Homogeneous.Rate}}, nil
	case TrainInhomogeneous:
		return []selected{{TrainInhomogeneous, b.Inhomogeneous, cfg.Inhomogeneous.Baseline}}, nil
	case TrainRefractory:
		if a.Column != nil {
			j := *a.Column
			if j < 0 || j >= len(b.Refractory) {
				return nil, fmt.Errorf("column %d out of range [0, %d)", j, len(b.Refractory))
			}
			return []selected{{fmt.Sprintf("ref[%d]", j), b.Refractory[j], b.Rates[j]}}, nil
		}
		out := make([]selected, len(b.Refractory))
		for j, col := range b.Refractory {
			out[j] = selected{fmt.Sprintf("ref[%d]", j), col, b.Rates[j]}
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown train %q", a.Train)
}

// evaluate checks one assertion against a successful run.
func evaluate(a *Assertion, cfg *config.Config, b *ir.Bundle) Check {
	c := Check{Type: a.Type, Train: a.Train, Column: a.Column}
	err := evaluateErr(a, cfg, b)
	c.Pass = err == nil
	if err != nil {
		c.Detail = err.Error()
	}
	return c
}

func evaluateErr(a *Assertion, cfg *config.Config, b *ir.Bundle) error {
	switch a.Type {
	case AssertColumns:
		if got := len(b.Refractory); got != a.Count {
			return fmt.Errorf("got %d columns, want %d", got, a.Count)
		}
		return nil
	case AssertPhaseDensity:
		c := cfg.Inhomogeneous
		got, err := analysis.PhaseDensity(b.Inhomogeneous, c.Frequency, a.Bins)
		if err != nil {
			return err
		}
		dev, err := analysis.Deviation(got, analysis.ExpectedPhaseDensity(c.Amplitude, c.Baseline, a.Bins))
		if err != nil {
			return err
		}
		if dev > a.MaxError {
			return fmt.Errorf("phase density off by %.3f, max %.3f", dev, a.MaxError)
		}
		return nil
	case AssertError:
		return fmt.Errorf("expected error %s, run succeeded", a.Code)
	}

	trains, err := selectTrains(a, cfg, b)
	if err != nil {
		return err
	}
	for _, s := range trains {
		if err := checkTrain(a, cfg, s); err != nil {
			return fmt.Errorf("%s: %w", s.label, err)
		}
	}
	return nil
}

func checkTrain(a *Assertion, cfg *config.Config, s selected) error {
	switch a.Type {
	case AssertLength:
		if len(s.train) != a.Count {
			return fmt.Errorf("got %d spikes, want %d", len(s.train), a.Count)
		}
	case AssertStrictlyIncreasing:
		return s.train.Validate()
	case AssertMinISI:
		if len(s.train) == 0 {
			return analysis.ErrEmptyTrain
		}
		if got := analysis.Summarize(s.train).MinISI; got < a.Value-isiSlack {
			return fmt.Errorf("min ISI %.6g ms below %.6g ms", got, a.Value)
		}
	case AssertMeanISI:
		if len(s.train) == 0 {
			return analysis.ErrEmptyTrain
		}
		got := analysis.Summarize(s.train).MeanISI
		if rel := math.Abs(got-a.Value) / a.Value; rel > a.Tolerance {
			return fmt.Errorf("mean ISI %.4g ms, want %.4g ms within %.2g", got, a.Value, a.Tolerance)
		}
	case AssertExponentialKS:
		if a.Train == TrainInhomogeneous {
			return fmt.Errorf("exponential_ks does not apply to a rate-modulated train")
		}
		isis := pointproc.ISIs(s.train)
		if a.Train == TrainRefractory {
			isis = analysis.StripRefractory(isis, cfg.Refractory.Period)
		}
		d, err := analysis.ExponentialKS(isis, s.rate)
		if err != nil {
			return err
		}
		if d > a.MaxError {
			return fmt.Errorf("KS distance %.4f exceeds %.4f", d, a.MaxError)
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
