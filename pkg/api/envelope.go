// Package api defines the status-tagged envelope every engine operation
// answers with. The driver always receives a structured result, never a
// raw failure.
package api

import (
	stderrors "errors"

	"disruption-response/pkg/errors"
)

// Statuses carried by every envelope.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps an operation result for the driver.
type Envelope struct {
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Success wraps a result.
func Success(data any) Envelope {
	return Envelope{Status: StatusSuccess, Data: data}
}

// Failure wraps an error, preserving the engine error code when present.
func Failure(err error) Envelope {
	var ee *errors.EngineError
	if stderrors.As(err, &ee) {
		return Envelope{Status: StatusError, Code: ee.Code, Message: ee.Message}
	}
	return Envelope{Status: StatusError, Message: err.Error()}
}
