package pointproc

import (
	"errors"
	"fmt"
	"math"
)

// ErrorCode categorizes generation failures.
type ErrorCode string

const (
	// ErrCodeInvalidParameter indicates a non-positive rate, a negative
	// refractory period, a non-positive count, or a rate function that
	// leaves [0, r_max].
	ErrCodeInvalidParameter ErrorCode = "INVALID_PARAMETER"

	// ErrCodeInsufficientSamples indicates thinning kept fewer spikes than
	// were requested.
	ErrCodeInsufficientSamples ErrorCode = "INSUFFICIENT_SAMPLES"
)

// Error is returned by every generator in this package.
//
// Both codes are fatal to the request that produced them: retrying with
// the same parameters fails the same way.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Param names the offending parameter, if any.
	Param string

	// Details contains additional context.
	Details map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param=%s)", e.Code, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvalidParameter returns true if err is, or wraps, an INVALID_PARAMETER error.
func IsInvalidParameter(err error) bool {
	return CodeOf(err) == ErrCodeInvalidParameter
}

// IsInsufficientSamples returns true if err is, or wraps, an
// INSUFFICIENT_SAMPLES error.
func IsInsufficientSamples(err error) bool {
	return CodeOf(err) == ErrCodeInsufficientSamples
}

// CodeOf extracts the error code from err. Returns "" if err is not a
// generation error.
func CodeOf(err error) ErrorCode {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// NewInvalidParameter creates an INVALID_PARAMETER error for param.
func NewInvalidParameter(param, format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeInvalidParameter,
		Message: fmt.Sprintf(format, args...),
		Param:   param,
	}
}

// NewInsufficientSamples creates an INSUFFICIENT_SAMPLES error.
func NewInsufficientSamples(survivors, requested, candidates int) *Error {
	return &Error{
		Code:    ErrCodeInsufficientSamples,
		Message: fmt.Sprintf("thinning kept %d of %d candidates, %d requested", survivors, candidates, requested),
		Details: map[string]string{
			"survivors":  fmt.Sprintf("%d", survivors),
			"requested":  fmt.Sprintf("%d", requested),
			"candidates": fmt.Sprintf("%d", candidates),
		},
	}
}

// checkRate rejects rates that are not finite and strictly positive.
func checkRate(param string, rate float64) error {
	if !(rate > 0) || math.IsInf(rate, 0) {
		return NewInvalidParameter(param, "rate must be a finite positive number of Hz, got %v", rate)
	}
	return nil
}

// MaxSpikes bounds the number of spikes one request may allocate,
// counting thinning candidates and every refractory column.
const MaxSpikes = 1 << 26

// checkCount rejects spike counts outside (0, MaxSpikes].
func checkCount(param string, n int) error {
	if n <= 0 {
		return NewInvalidParameter(param, "spike count must be positive, got %d", n)
	}
	if n > MaxSpikes {
		return NewInvalidParameter(param, "spike count %d exceeds the limit of %d", n, MaxSpikes)
	}
	return nil
}
