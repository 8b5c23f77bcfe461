package pointproc

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// Source supplies uniform variates in [0, 1).
//
// *rand.Rand from math/rand/v2 satisfies Source.
type Source interface {
	Float64() float64
}

// NewSource returns a PCG-backed generator seeded with (seed, seed).
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// Uniform draws from the open interval (0, 1).
//
// Source.Float64 may return exactly 0, for which -ln(x) is infinite.
// Zero draws are discarded and redrawn, so callers always get a finite ISI.
func Uniform(src Source) float64 {
	for {
		if x := src.Float64(); x > 0 {
			return x
		}
	}
}

// uniforms fills a fresh slice with n draws from (0, 1).
func uniforms(src Source, n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = Uniform(src)
	}
	return xs
}

// exponentialISIs converts uniform draws into ISIs in milliseconds for the
// given rate in Hz, adding deadTime (ms) to every interval.
func exponentialISIs(draws []float64, rate, deadTime float64) []float64 {
	isis := make([]float64, len(draws))
	for i, x := range draws {
		isis[i] = -math.Log(x)/rate*1000 + deadTime
	}
	return isis
}

// SpikeTimes returns the cumulative sum of isis.
func SpikeTimes(isis []float64) []float64 {
	return floats.CumSum(make([]float64, len(isis)), isis)
}

// ISIs returns the intervals between consecutive spikes. The first interval
// is measured from t=0.
func ISIs(train []float64) []float64 {
	isis := make([]float64, len(train))
	prev := 0.0
	for i, t := range train {
		isis[i] = t - prev
		prev = t
	}
	return isis
}
