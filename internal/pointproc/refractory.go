package pointproc

import (
	"fmt"
	"math"
)

// Refractory generates one n-spike train per driving rate, each a
// homogeneous Poisson train with an absolute refractory period tr (ms)
// added to every ISI.
//
// With shared set, a single array of n uniform draws feeds every column, so
// columns differ only by rate; this reproduces the classic problem-set data.
// Otherwise every column draws its own uniforms and the columns are
// statistically independent. Either way the draws for column j come after
// those for columns 0..j-1, so output is a pure function of the seed.
func Refractory(src Source, n int, rates []float64, tr float64, shared bool) ([][]float64, error) {
	if err := checkCount("n", n); err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return nil, NewInvalidParameter("rates", "at least one driving rate is required")
	}
	if n > MaxSpikes/len(rates) {
		return nil, NewInvalidParameter("n", "%d spikes x %d rates exceeds the limit of %d spikes", n, len(rates), MaxSpikes)
	}
	for i, r := range rates {
		if err := checkRate(fmt.Sprintf("rates[%d]", i), r); err != nil {
			return nil, err
		}
	}
	if !(tr >= 0) || math.IsInf(tr, 0) {
		return nil, NewInvalidParameter("refractory_period", "refractory period must be finite and >= 0 ms, got %v", tr)
	}

	var draws []float64
	if shared {
		draws = uniforms(src, n)
	}
	columns := make([][]float64, len(rates))
	for j, r := range rates {
		if !shared {
			draws = uniforms(src, n)
		}
		columns[j] = SpikeTimes(exponentialISIs(draws, r, tr))
	}
	return columns, nil
}
