package api

import (
	"io"
	"testing"

	fhttp "github.com/bogdanfinn/fhttp"
)

// MockResponseBody is a ReadCloser that simulates reading response data
type MockResponseBody struct {
	data []byte
	pos  int
}

// NewMockResponseBody creates a new MockResponseBody with the given data
func NewMockResponseBody(data []byte) *MockResponseBody {
	return &MockResponseBody{data: data, pos: 0}
}

// Read implements the io.Reader interface
func (m *MockResponseBody) Read(p []byte) (n int, err error) {
	if m.pos >= len(m.data) {
		return 0, io.EOF
	}
	n = copy(p, m.data[m.pos:])
	m.pos += n
	return n, nil
}

// Close implements the io.Closer interface
func (m *MockResponseBody) Close() error {
	return nil
}

// DynamicMockHttpClient answers each request through DoFunc and records it
type DynamicMockHttpClient struct {
	DoFunc   func(req *fhttp.Request) (*fhttp.Response, error)
	Requests []*fhttp.Request
}

// Do implements HTTPDoer
func (m *DynamicMockHttpClient) Do(req *fhttp.Request) (*fhttp.Response, error) {
	m.Requests = append(m.Requests, req)
	return m.DoFunc(req)
}

// NewMockHttpClient creates a mock that always returns body with statusCode
func NewMockHttpClient(body []byte, statusCode int) *DynamicMockHttpClient {
	return &DynamicMockHttpClient{
		DoFunc: func(req *fhttp.Request) (*fhttp.Response, error) {
			return newMockResponse(body, statusCode), nil
		},
	}
}

// NewMockHttpClientWithError creates a mock that fails every request with err
func NewMockHttpClientWithError(err error) *DynamicMockHttpClient {
	return &DynamicMockHttpClient{
		DoFunc: func(req *fhttp.Request) (*fhttp.Response, error) {
			return nil, err
		},
	}
}

func newMockResponse(body []byte, statusCode int) *fhttp.Response {
	return &fhttp.Response{
		StatusCode: statusCode,
		Body:       NewMockResponseBody(body),
		Header:     make(fhttp.Header),
	}
}

// createTestClient creates a client backed by mock
func createTestClient(t *testing.T, mock HTTPDoer, opts ...ClientOption) *Client {
	t.Helper()
	opts = append([]ClientOption{WithHTTPClient(mock)}, opts...)
	client, err := NewClient("http://localhost:8000", opts...)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return client
}
