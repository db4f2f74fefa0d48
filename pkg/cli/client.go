package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	types "github.com/getremoted/remoted/pkg/api/types"
	"github.com/getremoted/remoted/pkg/config"
	"github.com/getremoted/remoted/pkg/discovery"
)

// Client provides methods for communicating with a running daemon.
type Client interface {
	// Status returns the daemon liveness snapshot.
	Status() (*types.StatusResponse, error)
	// Providers returns the registered provider descriptions.
	Providers() (*types.ProvidersResponse, error)
	// Call invokes a single operation and returns the response envelope.
	Call(method, path string, query url.Values, body []byte) (*CallResult, error)
	// Batch submits a request sequence for ordered execution.
	Batch(req *types.BatchRequest) (*types.BatchResponse, error)
}

// CallResult is the outcome of a single operation call. Body holds the
// decoded envelope when the response was a JSON object; Raw holds the
// payload text otherwise.
type CallResult struct {
	StatusCode int
	Body       map[string]any
	Raw        string
}

// Failed reports whether the daemon answered with an error status.
func (r *CallResult) Failed() bool {
	return r.StatusCode >= 400
}

// APIError represents an error response from the daemon.
type APIError struct {
	StatusCode int
	ErrorCode  string
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// httpClient implements Client using HTTP.
type httpClient struct {
	baseURL string
	client  *http.Client
}

// ClientOption configures a daemon client.
type ClientOption func(*httpClient)

// WithTimeout sets the HTTP timeout for the client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *httpClient) {
		c.client.Timeout = timeout
	}
}

// NewClient creates a daemon API client. The baseURL should be the
// daemon base URL (e.g., "http://127.0.0.1:4270").
func NewClient(baseURL string, opts ...ClientOption) Client {
	c := &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResolveServerURL picks the daemon base URL: the --server-url flag,
// then the REMOTED_SERVER_URL environment variable, then the first
// running discovered instance, then the default address.
func ResolveServerURL(flagURL string) string {
	if flagURL != "" {
		return strings.TrimRight(flagURL, "/")
	}
	if env := os.Getenv("REMOTED_SERVER_URL"); env != "" {
		return strings.TrimRight(env, "/")
	}
	if insts, err := discovery.List(discovery.DefaultDir()); err == nil {
		for _, inst := range insts {
			if inst.IsRunning() {
				return inst.URL()
			}
		}
	}
	return fmt.Sprintf("http://%s:%d", config.DefaultHost, config.DefaultPort)
}

// newClientFromFlags builds a client from the persistent --server-url flag.
func newClientFromFlags() Client {
	return NewClient(ResolveServerURL(serverURL))
}

func (c *httpClient) Status() (*types.StatusResponse, error) {
	resp, err := c.doRequest(http.MethodGet, "/status", nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var status types.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &status, nil
}

func (c *httpClient) Providers() (*types.ProvidersResponse, error) {
	resp, err := c.doRequest(http.MethodGet, "/providers", nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var providers types.ProvidersResponse
	if err := json.NewDecoder(resp.Body).Decode(&providers); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &providers, nil
}

func (c *httpClient) Call(method, path string, query url.Values, body []byte) (*CallResult, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	resp, err := c.doRequest(method, path, body)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	result := &CallResult{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(payload, &result.Body); err != nil {
		result.Body = nil
		result.Raw = string(payload)
	}
	return result, nil
}

func (c *httpClient) Batch(req *types.BatchRequest) (*types.BatchResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode batch request: %w", err)
	}

	resp, err := c.doRequest(http.MethodPost, "/batch", body)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var batch types.BatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &batch, nil
}

func (c *httpClient) doRequest(method, path string, body []byte) (*http.Response, error) {
	fullURL := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &APIError{
			StatusCode: 0,
			ErrorCode:  "connection_error",
			Message:    fmt.Sprintf("cannot connect to daemon at %s: %v", c.baseURL, err),
		}
	}
	return resp, nil
}

func (c *httpClient) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp types.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			ErrorCode:  errResp.Error,
			Message:    errResp.Message,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		ErrorCode:  "unknown_error",
		Message:    fmt.Sprintf("daemon returned status %d: %s", resp.StatusCode, string(body)),
	}
}
