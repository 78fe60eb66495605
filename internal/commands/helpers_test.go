package commands

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"

	fhttp "github.com/bogdanfinn/fhttp"

	"github.com/diogo/chatbot/internal/tui"
)

type mockRoute struct {
	status int
	body   string
	err    error
}

type recordedRequest struct {
	method string
	path   string
	body   string
}

// routeMock answers requests by URL path; unknown paths get a FastAPI 404
type routeMock struct {
	mu       sync.Mutex
	routes   map[string]mockRoute
	requests []recordedRequest
}

func newRouteMock(routes map[string]mockRoute) *routeMock {
	return &routeMock{routes: routes}
}

func (m *routeMock) Do(req *fhttp.Request) (*fhttp.Response, error) {
	var body string
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		body = string(data)
	}

	m.mu.Lock()
	m.requests = append(m.requests, recordedRequest{method: req.Method, path: req.URL.Path, body: body})
	route, ok := m.routes[req.URL.Path]
	m.mu.Unlock()

	if !ok {
		route = mockRoute{status: 404, body: `{"detail":"Not Found"}`}
	}
	if route.err != nil {
		return nil, route.err
	}
	return &fhttp.Response{
		StatusCode: route.status,
		Body:       io.NopCloser(strings.NewReader(route.body)),
		Header:     make(fhttp.Header),
	}, nil
}

func (m *routeMock) Requests() []recordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedRequest(nil), m.requests...)
}

type fakeClipboard struct{ text string }

func (c *fakeClipboard) WriteAll(text string) error {
	c.text = text
	return nil
}

// fakeTUI records the chat session it was asked to run
type fakeTUI struct {
	called   bool
	endpoint string
	opts     tui.Options
}

func (f *fakeTUI) RunChat(bot tui.Controller, view *tui.EventView, opts tui.Options) error {
	f.called = true
	f.endpoint = bot.Endpoint()
	f.opts = opts
	return nil
}

// setupHome isolates config, logs and reports in a temp HOME
func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

// runCLI executes the command tree with captured output
func runCLI(t *testing.T, deps *Dependencies, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	deps.Stdout = &stdout
	deps.Stderr = &stderr
	if deps.Stdin == nil {
		deps.Stdin = strings.NewReader("")
	}
	if deps.TUI == nil {
		deps.TUI = &fakeTUI{}
	}

	cmd := NewRootCmd(deps)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

var backendRoutes = map[string]mockRoute{
	"/chat-tools":  {status: 200, body: `{"response":"tools reply","tool_used":true}`},
	"/chat":        {status: 200, body: `{"response":"plain reply"}`},
	"/health":      {status: 200, body: `{"status":"healthy","ollama":"connected","openai_compatibility":"working"}`},
	"/system-info": {status: 200, body: `{"status":"operational","model":"qwen3:0.6b"}`},
	"/": {status: 200, body: `{
		"message": "Vulnerable Chatbot API",
		"endpoints": {"/chat": "POST - plain chat", "/chat-tools": "POST - chat with tools", "/health": "GET - health"},
		"available_tools": ["fetch_url - Fetch content from URLs", "run_command - Run a shell command"]
	}`},
	"/download/report.txt": {status: 200, body: "report body"},
}

// hostRecorder notes the host each request is sent to
type hostRecorder struct {
	next *routeMock
	host *string
}

func (h hostRecorder) Do(req *fhttp.Request) (*fhttp.Response, error) {
	*h.host = req.URL.Host
	return h.next.Do(req)
}
