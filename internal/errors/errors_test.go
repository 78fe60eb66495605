package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestAPIError(t *testing.T) {
	err := NewAPIError(400, "/chat-tools", "bad request")

	if err == nil {
		t.Fatal("Expected non-nil error")
	}

	if err.Error() != "bad request" {
		t.Errorf("Error() = %s, want %s", err.Error(), "bad request")
	}

	if GetHTTPStatus(err) != 400 {
		t.Errorf("GetHTTPStatus() = %d, want 400", GetHTTPStatus(err))
	}

	if GetEndpoint(err) != "/chat-tools" {
		t.Errorf("GetEndpoint() = %s, want /chat-tools", GetEndpoint(err))
	}
}

func TestAPIError_EmptyMessage(t *testing.T) {
	err := NewAPIError(503, "/chat", "")

	if err.Error() != "HTTP 503" {
		t.Errorf("Error() = %s, want HTTP 503", err.Error())
	}
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("/health", cause)

	expected := "network error at /health: connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, cause) {
		t.Error("Expected NetworkError to unwrap to its cause")
	}

	if !IsNetworkError(fmt.Errorf("wrapped: %w", err)) {
		t.Error("Expected wrapped NetworkError to be detected")
	}

	if GetEndpoint(err) != "/health" {
		t.Errorf("GetEndpoint() = %s, want /health", GetEndpoint(err))
	}
}

func TestTimeoutError(t *testing.T) {
	err := NewTimeoutError(context.DeadlineExceeded.Error())

	expected := "request timed out: context deadline exceeded"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !IsTimeoutError(err) {
		t.Error("Expected IsTimeoutError to match")
	}

	if IsNetworkError(err) {
		t.Error("TimeoutError should not match network errors")
	}

	if NewTimeoutError("").Error() != "request timed out" {
		t.Errorf("unexpected default message %q", NewTimeoutError("").Error())
	}
}

func TestParseError(t *testing.T) {
	err := NewParseError("response field missing", "response")

	expected := "parse error: response field missing"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, ErrInvalidResponse) {
		t.Error("Expected ParseError to match ErrInvalidResponse")
	}

	if !IsParseError(fmt.Errorf("context: %w", err)) {
		t.Error("Expected wrapped ParseError to be detected")
	}

	if err.Is(errors.New("standard error")) {
		t.Error("Expected error not to match standard error")
	}
}

func TestDownloadError(t *testing.T) {
	tests := []struct {
		name     string
		err      *DownloadError
		expected string
		status   int
	}{
		{
			name:     "with status",
			err:      NewDownloadError("report.pdf", 404, "File not found"),
			expected: "download of report.pdf failed [404]: File not found",
			status:   404,
		},
		{
			name:     "without status",
			err:      NewDownloadError("report.pdf", 0, "disk full"),
			expected: "download of report.pdf failed: disk full",
			status:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("Error() = %s, want %s", tt.err.Error(), tt.expected)
			}
			if GetHTTPStatus(tt.err) != tt.status {
				t.Errorf("GetHTTPStatus() = %d, want %d", GetHTTPStatus(tt.err), tt.status)
			}
		})
	}
}

func TestHelpers_PlainError(t *testing.T) {
	err := errors.New("plain")

	if GetHTTPStatus(err) != 0 {
		t.Error("plain error should have no status")
	}
	if GetEndpoint(err) != "" {
		t.Error("plain error should have no endpoint")
	}
	if IsAPIError(err) || IsNetworkError(err) || IsTimeoutError(err) || IsParseError(err) {
		t.Error("plain error should not match any typed error")
	}
}
