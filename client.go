package graphqllite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Trim error response bodies before folding them into a failure message.
const maxErrorBodyBytes = 1024

// Client issues GraphQL operations against a single endpoint.
//
// The default header map is the only mutable state; it is guarded so
// SetHeader and in-flight calls may run from different goroutines.
type Client struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration

	mu      sync.RWMutex
	headers http.Header
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client wholesale.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the default per-call timeout. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHeader sets a default header.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithHeaders merges a header map into the defaults, key by key.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for key, value := range headers {
			c.headers.Set(key, value)
		}
	}
}

// New creates a Client for the given endpoint. Defaults are seeded with
// a JSON content type; options run afterwards and may override it.
func New(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("endpoint is required")
	}

	c := &Client{
		endpoint: endpoint,
		headers:  http.Header{},
	}
	c.headers.Set("Content-Type", "application/json")

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = NewHTTPClient()
	}

	return c, nil
}

// NewHTTPClient returns an HTTP client suitable for request/response
// style calls. Timeouts are enforced per call through context
// cancellation, not on the client itself.
func NewHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{Transport: transport}
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// SetHeader sets a default header, replacing any previous value for the
// key. Calls already in flight are unaffected.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Set(key, value)
}

// SetHeaders merges a header map into the defaults, key by key. Keys
// absent from the map keep their current values.
func (c *Client) SetHeaders(headers map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, value := range headers {
		c.headers.Set(key, value)
	}
}

type callOptions struct {
	headers    map[string]string
	timeout    time.Duration
	hasTimeout bool
}

// CallOption overrides client configuration for a single call. Header
// overrides merge per key; other fields replace the default wholesale.
type CallOption func(*callOptions)

// WithCallHeader overrides one header for this call only.
func WithCallHeader(key, value string) CallOption {
	return func(o *callOptions) {
		if o.headers == nil {
			o.headers = map[string]string{}
		}
		o.headers[key] = value
	}
}

// WithCallHeaders overrides headers for this call only, key by key.
func WithCallHeaders(headers map[string]string) CallOption {
	return func(o *callOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string, len(headers))
		}
		for key, value := range headers {
			o.headers[key] = value
		}
	}
}

// WithCallTimeout replaces the client timeout for this call. Zero
// disables the timeout entirely.
func WithCallTimeout(timeout time.Duration) CallOption {
	return func(o *callOptions) {
		o.timeout = timeout
		o.hasTimeout = true
	}
}

type operationPayload struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// Execute performs one network call for the given operation text and
// variables and classifies the outcome. A *Response is returned only
// when the HTTP exchange succeeded and the body decoded; the response
// may still carry application-level errors, which Execute does not
// treat as failure. Exactly one attempt is made per call.
func (c *Client) Execute(ctx context.Context, operation string, variables map[string]any, opts ...CallOption) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var call callOptions
	for _, opt := range opts {
		opt(&call)
	}

	if variables == nil {
		variables = map[string]any{}
	}
	payload, err := json.Marshal(operationPayload{Query: operation, Variables: variables})
	if err != nil {
		return nil, &RequestError{err: fmt.Errorf("encode request body: %w", err)}
	}

	timeout := c.timeout
	if call.hasTimeout {
		timeout = call.timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		// Released unconditionally so the countdown never outlives the call.
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &RequestError{err: err}
	}
	req.Header = c.mergedHeaders(call.headers)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{
			err:     err,
			timeout: errors.Is(err, context.DeadlineExceeded),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// The body is not parsed as a response; at most a snippet is
		// folded into the failure message.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &RequestError{
			StatusCode: resp.StatusCode,
			err:        fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{err: fmt.Errorf("read response body: %w", err)}
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &RequestError{err: fmt.Errorf("decode response body: %w", err)}
	}
	return &out, nil
}

// Query executes the operation and unmarshals the data payload into
// out. If the response carries application-level errors the call fails
// with all messages joined; it never silently returns partial data.
// Absent or null data with a successful response is not an error, and
// out is left untouched in that case. A nil out discards the data.
func (c *Client) Query(ctx context.Context, operation string, variables map[string]any, out any, opts ...CallOption) error {
	resp, err := c.Execute(ctx, operation, variables, opts...)
	if err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		return resp.Errors
	}
	if out == nil || len(resp.Data) == 0 || string(resp.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

// Mutate is Query under another name: mutations share identical wire
// behavior and are distinguished only by caller intent.
func (c *Client) Mutate(ctx context.Context, operation string, variables map[string]any, out any, opts ...CallOption) error {
	return c.Query(ctx, operation, variables, out, opts...)
}

// mergedHeaders snapshots the defaults and applies per-call overrides
// on the copy, so overrides never mutate the stored defaults.
func (c *Client) mergedHeaders(override map[string]string) http.Header {
	c.mu.RLock()
	merged := c.headers.Clone()
	c.mu.RUnlock()

	if merged == nil {
		merged = http.Header{}
	}
	for key, value := range override {
		merged.Set(key, value)
	}
	return merged
}
