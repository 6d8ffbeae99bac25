package types

import (
	"fmt"

	"github.com/juju/errors"
)

var (
	_ error = &ClientError{}
	_ error = &ServerError{}
)

// Reason tells which caller-side condition a ClientError stands for.
type Reason int

const (
	ReasonMalformed       Reason = 1
	ReasonPermission      Reason = 2
	ReasonConfiguration   Reason = 3
	ReasonNotFound        Reason = 4
	ReasonInvalidWorkflow Reason = 5
)

func (r Reason) String() string {
	switch r {
	case ReasonMalformed:
		return "malformed input"
	case ReasonPermission:
		return "permission denied"
	case ReasonConfiguration:
		return "configuration"
	case ReasonNotFound:
		return "not found"
	case ReasonInvalidWorkflow:
		return "invalid workflow"
	}
	return "unknown"
}

func NewClientError(reason Reason, otherErr error) error {
	return &ClientError{baseError: newBaseErr(otherErr), Reason: reason}
}

func NewClientErrorf(reason Reason, format string, args ...interface{}) error {
	return NewClientError(reason, errors.Errorf(format, args...))
}

func NewServerError(otherErr error) error {
	return &ServerError{baseError: newBaseErr(otherErr)}
}

func NewServerErrorf(format string, args ...interface{}) error {
	return NewServerError(errors.Errorf(format, args...))
}

// IsClientError reports whether err, or anything it wraps, is a ClientError.
func IsClientError(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce)
}

func IsServerError(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

// ClientReason returns the reason of the ClientError wrapped in err.
func ClientReason(err error) (Reason, bool) {
	var ce *ClientError
	if !errors.As(err, &ce) {
		return 0, false
	}
	return ce.Reason, true
}

/**
 * ErrorFromStatus classifies an unexpected HTTP status code.
 * 401 is a permission problem, the rest of 4xx is malformed input from the
 * caller, everything else is the server's fault.
 */
func ErrorFromStatus(status int, verb, url, body string) error {
	return StatusError(status, verb+" job", url, body)
}

// StatusError is ErrorFromStatus for requests that are not about a job.
func StatusError(status int, doing, url, body string) error {
	msg := fmt.Sprintf("when %s at %s\nMessage was %d:\n%s", doing, url, status, body)
	switch {
	case status == 401:
		return NewClientErrorf(ReasonPermission, "Permission denied %s", msg)
	case status >= 400 && status < 500:
		return NewClientErrorf(ReasonMalformed, "Malformed input %s", msg)
	default:
		return NewServerErrorf("Unexpected status code %s", msg)
	}
}

func newBaseErr(otherErr error) *baseError {
	return &baseError{unwrapErr(otherErr)}
}

func unwrapErr(err error) error {
	if err == nil {
		return nil
	}
	if ue, ok := err.(wrappedErr); ok {
		return unwrapErr(ue.UnwrapLocal())
	}
	return err
}

type wrappedErr interface {
	UnwrapLocal() error
}

type baseError struct {
	BaseErr error
}

func (e *baseError) Error() string {
	return e.BaseErr.Error()
}

func (e *baseError) UnwrapLocal() error {
	return e.BaseErr
}

func (e *baseError) Unwrap() error {
	return e.BaseErr
}

type ClientError struct {
	*baseError
	Reason Reason
}

type ServerError struct {
	*baseError
}
