// Package pointproc generates spike trains from Poisson point processes.
//
// Three generators share one pattern: draw inter-spike intervals (ISIs) from
// a uniform source, transform them, and take the cumulative sum to obtain
// spike times in milliseconds.
//
//   - Homogeneous: ISI = -ln(x)/rate, constant rate in Hz.
//   - Inhomogeneous: homogeneous candidates at r_max, thinned by accepting
//     each candidate t with probability r(t)/r_max.
//   - Refractory: homogeneous ISIs plus a fixed dead time t_r per interval,
//     one column per driving rate.
//
// RANDOMNESS:
//
// Every generator takes an explicit Source. Nothing in this package touches
// the global math/rand state, so a seed fully determines the output:
//
//	src := pointproc.NewSource(42)
//	train, err := pointproc.Homogeneous(src, 1000, 100)
//
// ERRORS:
//
// Invalid parameters fail with INVALID_PARAMETER before any draw is made.
// Thinning that yields fewer survivors than requested fails with
// INSUFFICIENT_SAMPLES. Neither condition is padded or clamped.
package pointproc
