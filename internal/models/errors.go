// -----------------------------------------------------------------------
// Error taxonomy - every job failure is classified into one of these kinds
// before it reaches a status-polling caller
// -----------------------------------------------------------------------

package models

import (
	"errors"
	"fmt"
)

// ErrorKind identifies a failure class in the analysis pipeline.
type ErrorKind string

const (
	// ErrKindInvalidInput - malformed ticker or analysis type, rejected
	// synchronously and never enqueued.
	ErrKindInvalidInput ErrorKind = "invalid_input"
	// ErrKindDataUnavailable - quote history or company data missing.
	ErrKindDataUnavailable ErrorKind = "data_unavailable"
	// ErrKindForecastUnavailable - a model produced empty output.
	ErrKindForecastUnavailable ErrorKind = "forecast_unavailable"
	// ErrKindEvidenceCollection - forum API error; a prior partial artifact,
	// if any, remains visible via the cache.
	ErrKindEvidenceCollection ErrorKind = "evidence_collection_failed"
	// ErrKindUnexpected - catch-all with a generic message.
	ErrKindUnexpected ErrorKind = "unexpected_error"
)

// AnalysisError carries a taxonomy kind and a human-readable message suitable
// for a job's terminal status.
type AnalysisError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// NewInvalidInput builds an invalid-input error.
func NewInvalidInput(message string) *AnalysisError {
	return &AnalysisError{Kind: ErrKindInvalidInput, Message: message}
}

// NewDataUnavailable builds a data-unavailable error.
func NewDataUnavailable(message string, err error) *AnalysisError {
	return &AnalysisError{Kind: ErrKindDataUnavailable, Message: message, Err: err}
}

// NewForecastUnavailable builds a forecast-unavailable error.
func NewForecastUnavailable(message string, err error) *AnalysisError {
	return &AnalysisError{Kind: ErrKindForecastUnavailable, Message: message, Err: err}
}

// NewEvidenceCollection builds an evidence-collection error.
func NewEvidenceCollection(message string, err error) *AnalysisError {
	return &AnalysisError{Kind: ErrKindEvidenceCollection, Message: message, Err: err}
}

// Classify resolves any error to its taxonomy kind and the most specific
// user-visible message available. Unclassified errors map to the catch-all
// kind with a generic message so internal detail never leaks to callers.
func Classify(err error) (ErrorKind, string) {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Kind, ae.Message
	}
	return ErrKindUnexpected, "An unexpected error occurred."
}
