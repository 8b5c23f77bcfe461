package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/spikegen/internal/pointproc"
)

// Stage names one step of the generation pipeline.
type Stage string

const (
	StageHomogeneous   Stage = "homogeneous"
	StageInhomogeneous Stage = "inhomogeneous"
	StageRefractory    Stage = "refractory"
	StageAssemble      Stage = "assemble"
	StageWrite         Stage = "write"
)

// ErrorCode categorizes pipeline failures. Generator failures carry the
// pointproc code through unchanged.
type ErrorCode string

const (
	// ErrCodeInvalidParameter indicates a generator rejected its parameters.
	ErrCodeInvalidParameter ErrorCode = ErrorCode(pointproc.ErrCodeInvalidParameter)

	// ErrCodeInsufficientSamples indicates thinning kept too few candidates.
	ErrCodeInsufficientSamples ErrorCode = ErrorCode(pointproc.ErrCodeInsufficientSamples)

	// ErrCodeArtifactWrite indicates the artifact could not be written.
	ErrCodeArtifactWrite ErrorCode = "ARTIFACT_WRITE_FAILED"

	// ErrCodeCanceled indicates the context was canceled between stages.
	ErrCodeCanceled ErrorCode = "CANCELED"

	// ErrCodeInternal indicates a generated bundle failed validation.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// RunError is a pipeline failure. The first failing stage aborts the run;
// no partial bundle is produced.
type RunError struct {
	Code  ErrorCode
	Stage Stage
	RunID string
	Err   error
}

// Error implements the error interface.
func (e *RunError) Error() string {
	if e.RunID != "" {
		return fmt.Sprintf("%s: %s stage failed (run=%s): %v", e.Code, e.Stage, e.RunID, e.Err)
	}
	return fmt.Sprintf("%s: %s stage failed: %v", e.Code, e.Stage, e.Err)
}

// Unwrap exposes the underlying generator or I/O error.
func (e *RunError) Unwrap() error {
	return e.Err
}

func newStageError(runID string, stage Stage, err error) *RunError {
	code := ErrorCode(pointproc.CodeOf(err))
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = ErrCodeCanceled
	case code != "":
	case stage == StageWrite:
		code = ErrCodeArtifactWrite
	default:
		code = ErrCodeInternal
	}
	return &RunError{Code: code, Stage: stage, RunID: runID, Err: err}
}

// CodeOf returns the RunError code in err's chain, or "" if there is none.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// StageOf returns the failing stage in err's chain, or "".
func StageOf(err error) Stage {
	var re *RunError
	if errors.As(err, &re) {
		return re.Stage
	}
	return ""
}
