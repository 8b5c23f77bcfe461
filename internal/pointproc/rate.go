package pointproc

import "math"

// RateFunc is a time-varying firing rate with a known upper bound.
//
// Rate takes time in milliseconds and returns Hz. Implementations must keep
// Rate(t) within [0, Max()] for every t; Thin rejects any candidate where
// that does not hold.
type RateFunc interface {
	Rate(tMs float64) float64
	Max() float64
}

// Constant is a time-invariant rate in Hz.
type Constant float64

func (c Constant) Rate(float64) float64 { return float64(c) }
func (c Constant) Max() float64         { return float64(c) }

// Sinusoid is r(t) = Amplitude*sin(2*pi*Frequency*t) + Baseline with t in
// seconds. MaxRate is the declared bound used for thinning.
type Sinusoid struct {
	Amplitude float64 // Hz
	Baseline  float64 // Hz
	Frequency float64 // Hz
	MaxRate   float64 // Hz
}

// Rate evaluates the sinusoid at tMs milliseconds.
func (s Sinusoid) Rate(tMs float64) float64 {
	return s.Amplitude*math.Sin(2*math.Pi*s.Frequency*tMs/1000) + s.Baseline
}

// Max returns the declared upper bound.
func (s Sinusoid) Max() float64 {
	return s.MaxRate
}

// Validate checks that the sinusoid stays within [0, MaxRate] everywhere.
func (s Sinusoid) Validate() error {
	if err := checkRate("max_rate", s.MaxRate); err != nil {
		return err
	}
	if s.Frequency < 0 || math.IsNaN(s.Frequency) || math.IsInf(s.Frequency, 0) {
		return NewInvalidParameter("frequency", "frequency must be a finite non-negative number of Hz, got %v", s.Frequency)
	}
	if math.IsNaN(s.Amplitude) || math.IsNaN(s.Baseline) {
		return NewInvalidParameter("amplitude", "amplitude and baseline must be numbers")
	}
	amp := math.Abs(s.Amplitude)
	if s.Baseline-amp < 0 {
		return NewInvalidParameter("baseline", "rate function goes negative: baseline %v - |amplitude| %v < 0", s.Baseline, amp)
	}
	if s.Baseline+amp > s.MaxRate {
		return NewInvalidParameter("max_rate", "rate function exceeds declared maximum: baseline %v + |amplitude| %v > %v", s.Baseline, amp, s.MaxRate)
	}
	return nil
}
