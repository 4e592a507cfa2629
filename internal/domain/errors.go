package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Adapters wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// Pipeline failures. AnalysisAmbiguous is deliberately absent: an ambiguous
	// analysis yields a degraded profile, never an error.
	ErrCredentialExpired     = errors.New("upload not found, credential expired before upload completed")
	ErrAnalysisUnavailable   = errors.New("face analysis unavailable")
	ErrGenerationMalformed   = errors.New("generated look is malformed")
	ErrGenerationUnavailable = errors.New("look generation unavailable")
	ErrStorageUnavailable    = errors.New("look storage unavailable")
	ErrValidation            = errors.New("validation failed")
)

// PipelineError reports the stage at which a run terminated.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed while %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// StageOf returns the failing stage of err, or "" when err is not a pipeline failure.
func StageOf(err error) Stage {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Stage
	}
	return ""
}
