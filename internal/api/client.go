// Package api provides the HTTP client for the chatbot backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/chatbot/internal/errors"
	"github.com/diogo/chatbot/internal/models"
)

// Backend routes besides the selectable chat endpoints
const (
	PathHealth     = "/health"
	PathSystemInfo = "/system-info"
	PathRoot       = "/"
	PathDownload   = "/download/"
)

const userAgent = "chatbot-cli/1.0"

// HTTPDoer is the part of tls_client.HttpClient the client needs
type HTTPDoer interface {
	Do(req *fhttp.Request) (*fhttp.Response, error)
}

// Client talks to the chatbot backend
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	timeout    time.Duration
	log        zerolog.Logger
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithHTTPClient replaces the default TLS client
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithTimeout bounds each chat request. Zero means no client-side deadline.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}

	client := &Client{
		baseURL: baseURL,
		log:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(300),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do executes a request and returns status and body. Errors are always typed.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := fhttp.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, apierrors.NewNetworkError(path, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, timeoutFromContext(ctxErr, c.timeout)
		}
		c.log.Debug().Err(err).Str("path", path).Msg("request failed")
		return 0, nil, apierrors.NewNetworkError(path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, timeoutFromContext(ctxErr, c.timeout)
		}
		return 0, nil, apierrors.NewNetworkError(path, fmt.Errorf("failed to read response: %w", err))
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request completed")

	return resp.StatusCode, data, nil
}

func timeoutFromContext(err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) && timeout > 0 {
		return apierrors.NewTimeoutError(fmt.Sprintf("no response after %s", timeout))
	}
	if errors.Is(err, context.Canceled) {
		return apierrors.NewTimeoutError("canceled")
	}
	return apierrors.NewTimeoutError("")
}

// Chat posts message to endpoint and returns the assistant reply
func (c *Client) Chat(ctx context.Context, endpoint, message string) (*models.ChatResponse, error) {
	payload, err := json.Marshal(models.ChatRequest{Message: message})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	status, body, err := c.do(ctx, fhttp.MethodPost, endpoint, payload)
	if err != nil {
		return nil, err
	}

	if status < 200 || status >= 300 {
		return nil, apierrors.NewAPIError(status, endpoint, errorDetail(body))
	}

	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("response is not valid JSON", endpoint)
	}
	reply := gjson.GetBytes(body, "response")
	if reply.Type != gjson.String {
		return nil, apierrors.NewParseError("response field missing or not a string", endpoint)
	}

	return &models.ChatResponse{Response: reply.Str}, nil
}

// errorDetail extracts the user-facing message from an error body.
// FastAPI returns either a string detail or a list of validation errors.
func errorDetail(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}

	detail := gjson.GetBytes(body, "detail")
	switch {
	case detail.Type == gjson.String:
		return detail.Str
	case detail.IsArray():
		var msgs []string
		detail.ForEach(func(_, item gjson.Result) bool {
			if msg := item.Get("msg").String(); msg != "" {
				msgs = append(msgs, msg)
			}
			return true
		})
		return strings.Join(msgs, "; ")
	}
	return ""
}

// Health returns the raw /health body
func (c *Client) Health(ctx context.Context) (string, error) {
	return c.getJSON(ctx, PathHealth)
}

// SystemInfo returns the raw /system-info body
func (c *Client) SystemInfo(ctx context.Context) (string, error) {
	return c.getJSON(ctx, PathSystemInfo)
}

// Endpoints fetches the backend's self-description
func (c *Client) Endpoints(ctx context.Context) (models.EndpointListing, error) {
	raw, err := c.getJSON(ctx, PathRoot)
	if err != nil {
		return models.EndpointListing{}, err
	}
	return models.ParseEndpointListing(raw), nil
}

// getJSON fetches path and requires a JSON body. The status code is not
// checked: a degraded backend still reports its state in the body.
func (c *Client) getJSON(ctx context.Context, path string) (string, error) {
	_, body, err := c.do(ctx, fhttp.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError("response is not valid JSON", path)
	}
	return string(body), nil
}
