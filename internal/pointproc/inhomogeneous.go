package pointproc

import (
	"fmt"
	"math"
)

// Inhomogeneous generates nOut spike times (ms) whose local density follows
// rf, by thinning a homogeneous train generated at rf.Max().
//
// The candidate train holds ceil(oversampling*nOut) spikes. The caller must
// choose oversampling large enough that at least nOut candidates survive;
// on average a fraction mean(r)/r_max of them do. Too small a factor fails
// with INSUFFICIENT_SAMPLES rather than returning a short train.
func Inhomogeneous(src Source, nOut int, rf RateFunc, oversampling float64) ([]float64, error) {
	if err := checkCount("n", nOut); err != nil {
		return nil, err
	}
	if !(oversampling >= 1) || math.IsInf(oversampling, 0) {
		return nil, NewInvalidParameter("oversampling", "oversampling factor must be finite and >= 1, got %v", oversampling)
	}
	if s, ok := rf.(Sinusoid); ok {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}

	// Compare in float64 so that a huge factor cannot overflow int.
	want := math.Ceil(oversampling * float64(nOut))
	if want > MaxSpikes {
		return nil, NewInvalidParameter("oversampling", "%v x %d candidates exceeds the limit of %d spikes", oversampling, nOut, MaxSpikes)
	}
	nGen := int(want)
	candidates, err := Homogeneous(src, nGen, rf.Max())
	if err != nil {
		return nil, fmt.Errorf("candidate train: %w", err)
	}
	return Thin(src, candidates, rf, nOut)
}

// Thin keeps each candidate spike t with probability rf.Rate(t)/rf.Max() and
// returns the first nOut survivors in time order.
//
// A candidate is accepted iff u <= r(t)/r_max for a fresh uniform u. One
// uniform is drawn per candidate, in order, whether or not earlier
// candidates were accepted.
func Thin(src Source, candidates []float64, rf RateFunc, nOut int) ([]float64, error) {
	if err := checkCount("n", nOut); err != nil {
		return nil, err
	}
	rMax := rf.Max()
	if err := checkRate("max_rate", rMax); err != nil {
		return nil, err
	}

	kept := make([]float64, 0, nOut)
	for _, t := range candidates {
		r := rf.Rate(t)
		if r < 0 || r > rMax || math.IsNaN(r) {
			return nil, &Error{
				Code:    ErrCodeInvalidParameter,
				Message: fmt.Sprintf("rate function r(%v)=%v outside [0, %v]", t, r, rMax),
				Param:   "max_rate",
				Details: map[string]string{"t": fmt.Sprintf("%v", t), "rate": fmt.Sprintf("%v", r)},
			}
		}
		u := Uniform(src)
		if u <= r/rMax && len(kept) < nOut {
			kept = append(kept, t)
		}
	}
	if len(kept) < nOut {
		return nil, NewInsufficientSamples(len(kept), nOut, len(candidates))
	}
	return kept, nil
}
