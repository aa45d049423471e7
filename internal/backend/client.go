package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/flowdraft/internal/draft"
	"github.com/zjrosen/flowdraft/internal/log"
)

// maxBodySize caps how much of a response body is read (4MB).
const maxBodySize = 4 << 20

// Client talks to the workflow generation service.
type Client struct {
	mu         sync.RWMutex
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTracing wraps the transport so every request produces a client span.
func WithTracing(tp trace.TracerProvider) Option {
	return func(c *Client) {
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		hc := *c.httpClient
		hc.Transport = otelhttp.NewTransport(base, otelhttp.WithTracerProvider(tp))
		c.httpClient = &hc
	}
}

// NewClient creates a client for the service at baseURL (scheme and host,
// e.g. http://localhost:8000). Requests carry no client-side timeout; callers
// bound them through the context.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// SetBaseURL points subsequent requests at a different service. Requests
// already in flight are unaffected.
func (c *Client) SetBaseURL(baseURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = strings.TrimRight(baseURL, "/")
}

// SubmitPrompt sends a natural-language workflow description.
func (c *Client) SubmitPrompt(ctx context.Context, prompt string) (*GenerateResponse, error) {
	var out GenerateResponse
	if err := c.postJSON(ctx, GeneratePath, PromptRequest{Prompt: prompt}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitWorkflow sends a fully assembled workflow draft.
func (c *Client) SubmitWorkflow(ctx context.Context, wf draft.Workflow) (*GenerateResponse, error) {
	if wf.Activities == nil {
		wf.Activities = []draft.Activity{}
	}
	var out GenerateResponse
	if err := c.postJSON(ctx, GeneratePath, wf, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health probes the service health endpoint.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	url := c.BaseURL() + HealthPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{Op: "request", URL: url, Err: err}
	}
	var out HealthResponse
	if err := c.do(req, HealthPath, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	url := c.BaseURL() + path

	payload, err := json.Marshal(body)
	if err != nil {
		return &TransportError{Op: "encode", URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &TransportError{Op: "request", URL: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, path string, out any) error {
	url := req.URL.String()
	log.Debug(log.CatHTTP, "Sending request", "method", req.Method, "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: "send", URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		log.Debug(log.CatHTTP, "Request rejected", "url", url, "status", resp.StatusCode)
		return &StatusError{Path: path, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &TransportError{Op: "read", URL: url, Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Op: "decode", URL: url, Err: fmt.Errorf("invalid JSON body: %w", err)}
	}

	log.Debug(log.CatHTTP, "Request completed", "url", url, "bytes", len(data))
	return nil
}
