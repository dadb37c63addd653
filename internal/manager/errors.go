package manager

import (
	"errors"

	"survivald/internal/schema"
)

// Error categories reported to callers.
const (
	CategoryModelLoad  = "model_load"
	CategoryNotReady   = "not_ready"
	CategoryValidation = "validation"
	CategoryPrediction = "prediction"
	CategoryInternal   = "internal"
)

// ModelLoadError means the artifact could not be resolved or decoded. It is
// fatal for the process instance.
type ModelLoadError struct {
	Ref string
	Err error
}

func (e *ModelLoadError) Error() string {
	return "model load failed for " + e.Ref + ": " + e.Err.Error()
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// ServiceNotReadyError rejects a request made before a successful load or
// after a failed one. Callers may retry.
type ServiceNotReadyError struct {
	State State
}

func (e *ServiceNotReadyError) Error() string { return "model not ready (state: " + string(e.State) + ")" }

// Retryable reports that the same request may succeed later.
func (e *ServiceNotReadyError) Retryable() bool { return true }

// PredictionError wraps a predictor failure for a structurally valid request.
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string { return "prediction failed: " + e.Err.Error() }

func (e *PredictionError) Unwrap() error { return e.Err }

// IsModelLoad reports whether err is a ModelLoadError.
func IsModelLoad(err error) bool {
	var e *ModelLoadError
	return errors.As(err, &e)
}

// IsNotReady reports whether err rejects a request for readiness (return 503).
func IsNotReady(err error) bool {
	var e *ServiceNotReadyError
	return errors.As(err, &e)
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	var e *schema.ValidationError
	return errors.As(err, &e)
}

// IsPrediction reports whether err is a predictor failure.
func IsPrediction(err error) bool {
	var e *PredictionError
	return errors.As(err, &e)
}

// Category maps err to its reportable category.
func Category(err error) string {
	switch {
	case IsNotReady(err):
		return CategoryNotReady
	case IsValidation(err):
		return CategoryValidation
	case IsPrediction(err):
		return CategoryPrediction
	case IsModelLoad(err):
		return CategoryModelLoad
	default:
		return CategoryInternal
	}
}
