package submit

import (
	"errors"

	"github.com/hawknews/hawk-translation/internal"
	"github.com/hawknews/hawk-translation/internal/hawk"
)

type Code string

const (
	CodeInvalidRequest Code = "invalid_request"
	CodeForbidden      Code = "forbidden"
	CodeNotFound       Code = "not_found"
	CodeUnconfigured   Code = "unconfigured"
	CodeTransport      Code = "transport_error"
	CodeAPI            Code = "api_error"
	CodeInternal       Code = "internal_error"
)

// Error is a terminal failure of one submission.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

var (
	errInvalidRequest = &Error{Code: CodeInvalidRequest, Message: "invalid request"}
	errForbidden      = &Error{Code: CodeForbidden, Message: "insufficient permissions"}
	errNotFound       = &Error{Code: CodeNotFound, Message: "post not found"}
	errUnconfigured   = &Error{Code: CodeUnconfigured, Message: "no API key configured"}
)

// internalError hides host failures (database, settings) behind a generic message.
func internalError(err error) *Error {
	return &Error{Code: CodeInternal, Message: "internal error", Err: err}
}

// classify maps a client error to the transport/API codes.
func classify(err error) *Error {
	var apiErr *hawk.APIError
	if errors.As(err, &apiErr) {
		return &Error{Code: CodeAPI, Message: apiErr.Message, Err: err}
	}
	var transportErr *hawk.TransportError
	if errors.As(err, &transportErr) {
		return &Error{Code: CodeTransport, Message: transportErr.Error(), Err: err}
	}
	return &Error{Code: CodeTransport, Message: err.Error(), Err: err}
}

// CodeOf returns the code carried by err, or "" when err is nil or foreign.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Result converts the outcome of a submission into the widget result.
func Result(jobID *string, err error) internal.TranslationResult {
	if err == nil {
		return internal.TranslationResult{Success: true, JobID: jobID}
	}
	var e *Error
	if !errors.As(err, &e) {
		e = internalError(err)
	}
	return internal.TranslationResult{Code: string(e.Code), Error: e.Message}
}
