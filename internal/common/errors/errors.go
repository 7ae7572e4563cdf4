// Package errors provides standardized error handling for the matching
// engine and its BPMN workflow integration.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Scoring-path codes. These degrade individual results; they never
	// abort a batch.
	ErrCodeExtractionDegraded     ErrorCode = "EXTRACTION_DEGRADED"
	ErrCodeScoringInputIncomplete ErrorCode = "SCORING_INPUT_INCOMPLETE"
	ErrCodeModelUnavailable       ErrorCode = "MODEL_UNAVAILABLE"

	// Training-path codes. Isolated from the online path, reported to
	// operators only.
	ErrCodeTrainingDataInsufficient ErrorCode = "TRAINING_DATA_INSUFFICIENT"
	ErrCodeTrainingFailed           ErrorCode = "TRAINING_FAILED"
	ErrCodeModelRegression          ErrorCode = "MODEL_REGRESSION"

	// Startup codes. Fatal: the process refuses to run on bad weights or
	// thresholds.
	ErrCodeInvalidConfiguration ErrorCode = "INVALID_CONFIGURATION"

	// Outcome feedback interface codes.
	ErrCodeOutcomeUnknownMatch ErrorCode = "OUTCOME_UNKNOWN_MATCH"
	ErrCodeOutcomeInvalidValue ErrorCode = "OUTCOME_INVALID_VALUE"
	ErrCodeOutcomeIllegalState ErrorCode = "OUTCOME_ILLEGAL_STATE"

	// Infrastructure codes.
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// IsCode reports whether err is a StandardError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	stdErr, ok := err.(*StandardError)
	return ok && stdErr.Code == code
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ConvertToBPMNError maps a StandardError onto the workflow error shape.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   GetRetryCount(stdErr.Code),
	}
}

// GetRetryCount returns how many workflow-level retries a code warrants.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed, ErrCodeQueryExecutionFailed, ErrCodeDatabaseInsertFailed:
		return 3
	default:
		return 0
	}
}

// GetErrorCategory groups codes for logging and alerting.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeExtractionDegraded, ErrCodeScoringInputIncomplete, ErrCodeModelUnavailable:
		return "scoring"
	case ErrCodeTrainingDataInsufficient, ErrCodeTrainingFailed, ErrCodeModelRegression:
		return "training"
	case ErrCodeOutcomeUnknownMatch, ErrCodeOutcomeInvalidValue, ErrCodeOutcomeIllegalState:
		return "outcome"
	case ErrCodeInvalidConfiguration:
		return "startup"
	default:
		return "infrastructure"
	}
}

// ==========================
// 3. Error Constructors
// ==========================

// NewExtractionDegradedError marks malformed or partial source text. Not
// fatal: downstream proceeds with low-confidence defaults.
func NewExtractionDegradedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionDegraded,
		Message:   "Source text malformed or partial, defaults substituted",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewScoringInputIncompleteError marks a missing structured field; the
// affected component falls back to the neutral score.
func NewScoringInputIncompleteError(field string) *StandardError {
	return &StandardError{
		Code:      ErrCodeScoringInputIncomplete,
		Message:   "Required structured field missing, neutral score substituted",
		Details:   fmt.Sprintf("field: %s", field),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelUnavailableError marks a missing or corrupt ensemble snapshot.
// The calculator falls back to heuristic mode.
func NewModelUnavailableError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelUnavailable,
		Message:   "Ensemble snapshot unavailable, heuristic fallback used",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTrainingDataInsufficientError marks a skipped training cycle.
func NewTrainingDataInsufficientError(have, need int) *StandardError {
	return &StandardError{
		Code:      ErrCodeTrainingDataInsufficient,
		Message:   "Not enough outcome samples to train",
		Details:   fmt.Sprintf("have: %d, need: %d", have, need),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTrainingFailedError wraps an unexpected training-cycle failure.
func NewTrainingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTrainingFailed,
		Message:   "Training cycle failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelRegressionError marks a candidate ensemble rejected by the
// publish gate.
func NewModelRegressionError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelRegression,
		Message:   "Candidate model regressed below the acceptance bar",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidConfigurationError is fatal at startup.
func NewInvalidConfigurationError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidConfiguration,
		Message:   "Configuration failed validation",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOutcomeUnknownMatchError rejects feedback for an unknown match id.
func NewOutcomeUnknownMatchError(matchID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOutcomeUnknownMatch,
		Message:   "Unknown match result id",
		Details:   fmt.Sprintf("matchResultId: %s", matchID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOutcomeInvalidValueError rejects an unrecognized outcome enum value.
func NewOutcomeInvalidValueError(value string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOutcomeInvalidValue,
		Message:   "Invalid outcome value",
		Details:   fmt.Sprintf("outcome: %s", value),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOutcomeIllegalStateError rejects a lifecycle transition the state
// machine does not allow.
func NewOutcomeIllegalStateError(matchID, from, next string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOutcomeIllegalState,
		Message:   "Illegal application state transition",
		Details:   fmt.Sprintf("matchResultId: %s, from: %s, to: %s", matchID, from, next),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable insert error.
func NewDatabaseInsertFailedError(table string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert error",
		Details:   fmt.Sprintf("table: %s, error: %s", table, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
