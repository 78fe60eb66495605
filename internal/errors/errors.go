// Package errors provides custom error types for the chatbot client.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrBusy            = errors.New("a message is already being sent")
	ErrUnknownEndpoint = errors.New("unknown endpoint")
	ErrInvalidFilename = errors.New("invalid filename")
	ErrMessageNotFound = errors.New("message not found")
	ErrInvalidResponse = errors.New("invalid response format")
	ErrNetwork         = errors.New("network error")
	ErrTimeout         = errors.New("request timed out")
)

// APIError represents a non-2xx response from the chatbot backend.
// Error() returns only Message so it can be shown to the user as-is.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NetworkError represents a transport failure before any response arrived
type NetworkError struct {
	Endpoint string
	Cause    error
}

func (e *NetworkError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("network error at %s", e.Endpoint)
	}
	return fmt.Sprintf("network error at %s: %v", e.Endpoint, e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// Is allows comparison with sentinel errors
func (e *NetworkError) Is(target error) bool {
	if target == ErrNetwork {
		return true
	}
	_, ok := target.(*NetworkError)
	return ok
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(endpoint string, cause error) *NetworkError {
	return &NetworkError{Endpoint: endpoint, Cause: cause}
}

// TimeoutError represents a request that hit its deadline or was canceled
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string {
	if e.Message == "" {
		return "request timed out"
	}
	return fmt.Sprintf("request timed out: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *TimeoutError) Is(target error) bool {
	if target == ErrTimeout {
		return true
	}
	_, ok := target.(*TimeoutError)
	return ok
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(message string) *TimeoutError {
	return &TimeoutError{Message: message}
}

// ParseError represents a response parsing error
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// DownloadError represents a failure while fetching a report file
type DownloadError struct {
	Filename   string
	StatusCode int
	Message    string
}

func (e *DownloadError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("download of %s failed [%d]: %s", e.Filename, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("download of %s failed: %s", e.Filename, e.Message)
}

// NewDownloadError creates a new DownloadError
func NewDownloadError(filename string, statusCode int, message string) *DownloadError {
	return &DownloadError{Filename: filename, StatusCode: statusCode, Message: message}
}

// GetHTTPStatus returns the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	var dlErr *DownloadError
	if errors.As(err, &dlErr) {
		return dlErr.StatusCode
	}
	return 0
}

// GetEndpoint returns the endpoint carried by err, or ""
func GetEndpoint(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Endpoint
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Endpoint
	}
	return ""
}

// IsAPIError reports whether err is (or wraps) an APIError
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// IsNetworkError reports whether err is (or wraps) a NetworkError
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsTimeoutError reports whether err is (or wraps) a TimeoutError
func IsTimeoutError(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsParseError reports whether err is (or wraps) a ParseError
func IsParseError(err error) bool {
	return errors.Is(err, ErrInvalidResponse)
}
