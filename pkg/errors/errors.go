// Package errors defines the service error taxonomy shared by domain
// services and the HTTP transport. Handlers translate codes to HTTP
// statuses instead of inspecting error strings.
package errors

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeBadRequest  Code = "bad_request"
	CodeNotFound    Code = "not_found"
	CodeUnavailable Code = "upstream_unavailable"
	CodeInternal    Code = "internal"
)

// ServiceError carries a machine-readable code alongside the message so
// transport code branches on data rather than string matching.
type ServiceError struct {
	Code    Code
	Message string
	Err     error
}

func (e ServiceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e ServiceError) Unwrap() error {
	return e.Err
}

func New(code Code, message string) ServiceError {
	return ServiceError{Code: code, Message: message}
}

// Wrap attaches a code and context message to an underlying error.
func Wrap(code Code, message string, err error) ServiceError {
	return ServiceError{Code: code, Message: message, Err: err}
}

// CodeOf extracts the service code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var se ServiceError
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeInternal
}

func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
