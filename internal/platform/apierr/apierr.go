package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable error codes returned to clients. Raw upstream error text never
// leaves the process; it lives in the wrapped Err for logging only.
const (
	CodeInvalidInput        = "invalid_input"
	CodeNotFound            = "not_found"
	CodeUpstreamUnavailable = "upstream_unavailable"
	CodeConfigurationError  = "configuration_error"
)

type Error struct {
	Status int
	Code   string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the client-facing text: the stable message, never Err.
func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return e.Msg
	}
	return e.Code
}

func New(status int, code string, msg string, err error) *Error {
	return &Error{Status: status, Code: code, Msg: msg, Err: err}
}

func InvalidInput(msg string, err error) *Error {
	return New(http.StatusBadRequest, CodeInvalidInput, msg, err)
}

func NotFound(msg string, err error) *Error {
	return New(http.StatusNotFound, CodeNotFound, msg, err)
}

func UpstreamUnavailable(msg string, err error) *Error {
	return New(http.StatusBadGateway, CodeUpstreamUnavailable, msg, err)
}

func ConfigurationError(msg string, err error) *Error {
	return New(http.StatusServiceUnavailable, CodeConfigurationError, msg, err)
}

// From extracts an *Error from err's chain, or nil.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
