package ir

import (
	"fmt"
	"math"
)

// Artifact field names. Downstream consumers index the artifact by these
// exact keys, so they must never change.
const (
	FieldHomogeneous   = "SpikeTimes_hom"
	FieldInhomogeneous = "SpikeTimes_inh"
	FieldRefractory    = "SpikeTimes_ref"
	FieldRates         = "rates_ref"
)

// FieldNames lists the artifact fields in their canonical order.
var FieldNames = []string{FieldHomogeneous, FieldInhomogeneous, FieldRefractory, FieldRates}

// SpikeTrain is an ordered sequence of spike times in milliseconds.
type SpikeTrain []float64

// Validate checks that the train is finite, non-negative and strictly
// increasing.
func (s SpikeTrain) Validate() error {
	for i, t := range s {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("spike %d: non-finite time %v", i, t)
		}
		if t < 0 {
			return fmt.Errorf("spike %d: negative time %v", i, t)
		}
		if i > 0 && t <= s[i-1] {
			return fmt.Errorf("spike %d: time %v not after previous %v", i, t, s[i-1])
		}
	}
	return nil
}

// Last returns the final spike time, or 0 for an empty train.
func (s SpikeTrain) Last() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

// Bundle is the complete output of one generation run.
type Bundle struct {
	// Homogeneous is the constant-rate Poisson train.
	Homogeneous SpikeTrain

	// Inhomogeneous is the thinned, sinusoidally modulated train.
	Inhomogeneous SpikeTrain

	// Refractory holds one train per driving rate, in the order of Rates.
	// Serialized as an n x k table with one column per rate.
	Refractory []SpikeTrain

	// Rates lists the driving rates (Hz) of the refractory columns.
	Rates []float64
}

// Shape reports the refractory table dimensions: rows (spikes per train)
// and columns (driving rates).
func (b *Bundle) Shape() (rows, cols int) {
	if len(b.Refractory) == 0 {
		return 0, 0
	}
	return len(b.Refractory[0]), len(b.Refractory)
}

// Validate checks every train and the refractory table shape.
func (b *Bundle) Validate() error {
	if err := b.Homogeneous.Validate(); err != nil {
		return fmt.Errorf("%s: %w", FieldHomogeneous, err)
	}
	if err := b.Inhomogeneous.Validate(); err != nil {
		return fmt.Errorf("%s: %w", FieldInhomogeneous, err)
	}
	if len(b.Refractory) != len(b.Rates) {
		return fmt.Errorf("%s has %d columns but %s has %d rates", FieldRefractory, len(b.Refractory), FieldRates, len(b.Rates))
	}
	rows, _ := b.Shape()
	for j, col := range b.Refractory {
		if len(col) != rows {
			return fmt.Errorf("%s column %d has %d rows, want %d", FieldRefractory, j, len(col), rows)
		}
		if err := col.Validate(); err != nil {
			return fmt.Errorf("%s column %d: %w", FieldRefractory, j, err)
		}
	}
	return nil
}

// Row returns the refractory table row i (spike i of every column).
func (b *Bundle) Row(i int) []float64 {
	row := make([]float64, len(b.Refractory))
	for j, col := range b.Refractory {
		row[j] = col[i]
	}
	return row
}
