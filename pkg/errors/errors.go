// Package errors provides severity-aware error types for the response engine.
package errors

import "fmt"

// Severity indicates error impact level.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// EngineError is a structured error with context. Every operation in the
// engine surfaces failures as an EngineError so the driver always gets a
// code it can branch on instead of a raw panic or opaque string.
type EngineError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
	EntityID    string   `json:"entity_id,omitempty"`
	Recoverable bool     `json:"recoverable"`
}

func (e *EngineError) Error() string {
	if e.EntityID != "" {
		return fmt.Sprintf("[%s] %s: %s (entity: %s)", e.Severity, e.Code, e.Message, e.EntityID)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Code, e.Message)
}

// Error codes
const (
	ErrCodeNotFound                = "NOT_FOUND"
	ErrCodeInvalidInput            = "INVALID_INPUT"
	ErrCodeUnknownScenario         = "UNKNOWN_SCENARIO"
	ErrCodeCollaboratorUnavailable = "COLLABORATOR_UNAVAILABLE"
	ErrCodePersistenceFailure      = "PERSISTENCE_FAILURE"
)

// NewNotFoundError creates an error for missing Fact Store entities.
func NewNotFoundError(kind, id string) *EngineError {
	return &EngineError{
		Code:        ErrCodeNotFound,
		Message:     fmt.Sprintf("%s not found: %s", kind, id),
		Severity:    SeverityError,
		EntityID:    id,
		Recoverable: false,
	}
}

// NewInvalidInputError creates an error for malformed operation arguments.
func NewInvalidInputError(msg string) *EngineError {
	return &EngineError{
		Code:        ErrCodeInvalidInput,
		Message:     msg,
		Severity:    SeverityError,
		Recoverable: false,
	}
}

// NewUnknownScenarioError creates an error for unconfigured scenario types.
func NewUnknownScenarioError(scenarioType string) *EngineError {
	return &EngineError{
		Code:        ErrCodeUnknownScenario,
		Message:     fmt.Sprintf("unknown scenario type: %s", scenarioType),
		Severity:    SeverityError,
		EntityID:    scenarioType,
		Recoverable: false,
	}
}

// NewCollaboratorUnavailableError records that an optional collaborator
// (similarity index, embedder) could not serve a request. Recoverable:
// the caller has already degraded to a path that does not need it.
func NewCollaboratorUnavailableError(service string, err error) *EngineError {
	return &EngineError{
		Code:        ErrCodeCollaboratorUnavailable,
		Message:     fmt.Sprintf("%s unavailable: %v", service, err),
		Severity:    SeverityWarning,
		EntityID:    service,
		Recoverable: true,
	}
}

// NewPersistenceError wraps a ledger write failure. Recoverable: the event
// object survives in memory and the driver may retry the write.
func NewPersistenceError(err error) *EngineError {
	return &EngineError{
		Code:        ErrCodePersistenceFailure,
		Message:     fmt.Sprintf("ledger write failed: %v", err),
		Severity:    SeverityWarning,
		Recoverable: true,
	}
}

// IsCode reports whether err is an EngineError carrying the given code.
func IsCode(err error, code string) bool {
	ee, ok := err.(*EngineError)
	return ok && ee.Code == code
}
