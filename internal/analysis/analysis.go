// Package analysis computes inter-spike interval statistics used to check
// generated trains against the process that produced them.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/roach88/spikegen/internal/pointproc"
)

// ErrEmptyTrain is returned by statistics that need at least one spike.
var ErrEmptyTrain = errors.New("empty spike train")

// Stats summarizes one spike train.
type Stats struct {
	Count    int     `json:"count"`
	Duration float64 `json:"duration_ms"`
	MeanISI  float64 `json:"mean_isi_ms"`
	StdISI   float64 `json:"std_isi_ms"`
	CV       float64 `json:"cv"`
	MinISI   float64 `json:"min_isi_ms"`
	Rate     float64 `json:"rate_hz"`
}

// Summarize computes ISI statistics for train. ISIs are measured from t=0,
// so the first spike contributes an interval too. An empty train yields the
// zero Stats.
func Summarize(train []float64) Stats {
	if len(train) == 0 {
		return Stats{}
	}
	isis := pointproc.ISIs(train)
	mean, std := stat.MeanStdDev(isis, nil)
	if len(isis) < 2 {
		std = 0
	}
	s := Stats{
		Count:    len(train),
		Duration: train[len(train)-1],
		MeanISI:  mean,
		StdISI:   std,
		MinISI:   floats.Min(isis),
	}
	if mean > 0 {
		s.CV = std / mean
	}
	if s.Duration > 0 {
		s.Rate = float64(s.Count) / s.Duration * 1000
	}
	return s
}

// FanoFactor returns the variance-to-mean ratio of spike counts in
// consecutive windows of windowMs covering [0, last spike). A Poisson
// process gives 1; a refractory process gives less.
func FanoFactor(train []float64, windowMs float64) (float64, error) {
	if !(windowMs > 0) || math.IsInf(windowMs, 0) {
		return 0, fmt.Errorf("window must be positive and finite, got %v", windowMs)
	}
	if len(train) == 0 {
		return 0, ErrEmptyTrain
	}
	n := int(train[len(train)-1] / windowMs)
	if n < 2 {
		return 0, fmt.Errorf("train spans %d windows of %v ms, need at least 2", n, windowMs)
	}
	counts := make([]float64, n)
	for _, t := range train {
		if w := int(t / windowMs); w < n {
			counts[w]++
		}
	}
	mean, variance := stat.MeanVariance(counts, nil)
	if mean == 0 {
		return 0, fmt.Errorf("no spikes in any complete window")
	}
	return variance / mean, nil
}

// PhaseDensity folds train onto the period of a frequencyHz oscillation and
// returns the firing rate (Hz) in each of bins equal phase bins, over
// [0, last spike].
func PhaseDensity(train []float64, frequencyHz float64, bins int) ([]float64, error) {
	if !(frequencyHz > 0) || math.IsInf(frequencyHz, 0) {
		return nil, fmt.Errorf("frequency must be positive and finite, got %v", frequencyHz)
	}
	if bins < 1 {
		return nil, fmt.Errorf("bins must be >= 1, got %d", bins)
	}
	if len(train) == 0 {
		return nil, ErrEmptyTrain
	}
	counts := make([]float64, bins)
	for _, t := range train {
		_, frac := math.Modf(t * frequencyHz / 1000)
		b := int(frac * float64(bins))
		if b >= bins {
			b = bins - 1
		}
		counts[b]++
	}
	// Time spent in each bin, in seconds.
	exposure := train[len(train)-1] / 1000 / float64(bins)
	floats.Scale(1/exposure, counts)
	return counts, nil
}

// ExpectedPhaseDensity returns the mean of A*sin(2*pi*phase)+r0 over each
// of bins equal phase bins.
func ExpectedPhaseDensity(amplitude, baseline float64, bins int) []float64 {
	out := make([]float64, bins)
	w := 1 / float64(bins)
	for i := range out {
		a, b := float64(i)*w, float64(i+1)*w
		out[i] = baseline + amplitude*(math.Cos(2*math.Pi*a)-math.Cos(2*math.Pi*b))/(2*math.Pi*w)
	}
	return out
}

// ExponentialKS returns the one-sample Kolmogorov-Smirnov statistic of isis
// (ms) against an exponential distribution with rate rateHz.
func ExponentialKS(isis []float64, rateHz float64) (float64, error) {
	if !(rateHz > 0) || math.IsInf(rateHz, 0) {
		return 0, fmt.Errorf("rate must be positive and finite, got %v", rateHz)
	}
	if len(isis) == 0 {
		return 0, ErrEmptyTrain
	}
	sorted := append([]float64(nil), isis...)
	sort.Float64s(sorted)

	dist := distuv.Exponential{Rate: rateHz / 1000}
	n := float64(len(sorted))
	var d float64
	for i, x := range sorted {
		f := dist.CDF(x)
		d = math.Max(d, math.Max(float64(i+1)/n-f, f-float64(i)/n))
	}
	return d, nil
}

// StripRefractory subtracts the dead time tr from every interval, leaving
// the exponential part of a refractory process.
func StripRefractory(isis []float64, tr float64) []float64 {
	out := make([]float64, len(isis))
	for i, x := range isis {
		out[i] = x - tr
	}
	return out
}

// Deviation returns the largest relative error |got-want|/want over paired
// values. Pairs with want == 0 compare absolutely.
func Deviation(got, want []float64) (float64, error) {
	if len(got) != len(want) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(got), len(want))
	}
	var worst float64
	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if want[i] != 0 {
			diff /= math.Abs(want[i])
		}
		worst = math.Max(worst, diff)
	}
	return worst, nil
}
