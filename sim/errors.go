package sim

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthorized is returned when a submission is attempted without an
// authorized session. Callers show the sign-in prompt; it is never fatal.
var ErrUnauthorized = errors.New("session is not authorized")

// ValidationError blocks a submission because one or more fields are invalid.
type ValidationError struct {
	Result ValidationResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameters: %s", strings.Join(e.Result.Fields(), ", "))
}

// TransportError means the request did not complete: connection failure,
// timeout, cancellation, or an unreadable body.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServiceError means the simulation service answered with a failure status.
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("simulation service returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("simulation service returned HTTP %d: %s", e.StatusCode, e.Body)
}

// MalformedResponseError describes a response that did not have the expected
// shape. It accompanies a degraded (possibly empty) response and is logged,
// not shown to the learner.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err == nil {
		return "malformed simulation response: " + e.Reason
	}
	return fmt.Sprintf("malformed simulation response: %s: %v", e.Reason, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
