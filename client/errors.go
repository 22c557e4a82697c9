package client

import (
	"errors"
	"fmt"
)

// ErrorKind represents the class of failure that occurred.
type ErrorKind int

const (
	// KindUnknown is an unclassified error.
	KindUnknown ErrorKind = iota
	// KindValidation is a local precondition failure. No request was sent.
	KindValidation
	// KindTransport is a network level failure (DNS, refused connection, timeout).
	// No response was obtained.
	KindTransport
	// KindProtocol is returned when a response was obtained but could not be
	// interpreted, e.g. invalid JSON under a JSON content type.
	KindProtocol
	// KindStatus is returned when the server answered with a status >= 400.
	KindStatus
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindStatus:
		return "status"
	default:
		return "unknown"
	}
}

// APIError carries the details shared by ShortURLError and PasteError.
type APIError struct {
	Kind ErrorKind
	// Status is the HTTP status code, or 0 when no response was obtained.
	Status int
	// Payload is the response body, when there was one.
	Payload *Body
	Message string
	// Err is the underlying cause for transport failures.
	Err error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func (e *APIError) apiError() *APIError {
	return e
}

// ShortURLError is returned by every ShortURLClient operation.
type ShortURLError struct {
	APIError
}

func (e *ShortURLError) Error() string {
	return "shorturl: " + e.APIError.Error()
}

// PasteError is returned by every PasteClient operation.
type PasteError struct {
	APIError
}

func (e *PasteError) Error() string {
	return "paste: " + e.APIError.Error()
}

type classified interface {
	apiError() *APIError
}

func asAPIError(err error) (*APIError, bool) {
	var c classified
	if errors.As(err, &c) {
		return c.apiError(), true
	}
	return nil, false
}

func kindOf(err error) ErrorKind {
	if e, ok := asAPIError(err); ok {
		return e.Kind
	}
	return KindUnknown
}

// IsValidation returns true if the error is a local precondition failure.
func IsValidation(err error) bool {
	return kindOf(err) == KindValidation
}

// IsTransport returns true if no response could be obtained.
func IsTransport(err error) bool {
	return kindOf(err) == KindTransport
}

// IsProtocol returns true if the response could not be interpreted.
func IsProtocol(err error) bool {
	return kindOf(err) == KindProtocol
}

// IsNotFound returns true if the server answered 404.
func IsNotFound(err error) bool {
	return StatusCode(err) == 404
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	if e, ok := asAPIError(err); ok {
		return e.Status
	}
	return 0
}

// PayloadOf returns the response body carried by err, or nil.
func PayloadOf(err error) *Body {
	if e, ok := asAPIError(err); ok {
		return e.Payload
	}
	return nil
}

func validationError(message string) APIError {
	return APIError{Kind: KindValidation, Message: message}
}

func transportError(url string, err error) APIError {
	return APIError{Kind: KindTransport, Message: fmt.Sprintf("request to %s failed", url), Err: err}
}

func failureError(f Failure) APIError {
	return APIError{Kind: f.Kind, Status: f.Status, Payload: f.Payload, Message: f.Message}
}
