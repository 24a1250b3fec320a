package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/freshsense/freshsense/pkg/types"
)

const (
	// DefaultTimeout bounds a single API call.
	DefaultTimeout = 10 * time.Second

	// DefaultHeader is the API key header expected by the server by default.
	DefaultHeader = "x-api-key"

	deviceHeader = "X-Device-ID"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the server root, e.g. http://localhost:5000.
	BaseURL string

	// APIKey is sent in Header on every request when non-empty.
	APIKey string
	Header string

	// DeviceID is sent as X-Device-ID when non-empty.
	DeviceID string

	Timeout            time.Duration
	InsecureSkipVerify bool
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server returned %d: %s: %s", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client talks to a freshsense server.
type Client struct {
	base *url.URL
	opts Options
	http *http.Client
}

// New returns a Client for opts.BaseURL. The HTTP client is built once and
// reused across calls.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parse server url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("client: server url %q: scheme must be http or https", opts.BaseURL)
	}
	if opts.Header == "" {
		opts.Header = DefaultHeader
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Client{base: base, opts: opts, http: buildHTTPClient(opts)}, nil
}

// authRoundTripper injects the API key and device headers into every
// outgoing request.
type authRoundTripper struct {
	base http.RoundTripper
	opts Options
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.opts.APIKey == "" && t.opts.DeviceID == "" {
		return t.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	if t.opts.APIKey != "" {
		req.Header.Set(t.opts.Header, t.opts.APIKey)
	}
	if t.opts.DeviceID != "" {
		req.Header.Set(deviceHeader, t.opts.DeviceID)
	}
	return t.base.RoundTrip(req)
}

func buildHTTPClient(opts Options) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: opts.InsecureSkipVerify, //nolint:gosec // user-configured
	}
	return &http.Client{
		Transport: &authRoundTripper{base: tr, opts: opts},
		Timeout:   opts.Timeout,
	}
}

// Analyze classifies one reading set via POST /analyze.
func (c *Client) Analyze(ctx context.Context, r types.Readings) (types.Result, error) {
	var res types.Result
	err := c.doJSON(ctx, http.MethodPost, "/analyze", r, &res)
	return res, err
}

// Simulate classifies one reading set via POST /api/simulate.
func (c *Client) Simulate(ctx context.Context, r types.Readings) (types.Result, error) {
	var res types.Result
	err := c.doJSON(ctx, http.MethodPost, "/api/simulate", r, &res)
	return res, err
}

// Health returns GET /health.
func (c *Client) Health(ctx context.Context) (*types.HealthResponse, error) {
	var h types.HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Sensors returns GET /sensors.
func (c *Client) Sensors(ctx context.Context) ([]types.Sensor, error) {
	var out []types.Sensor
	err := c.doJSON(ctx, http.MethodGet, "/sensors", nil, &out)
	return out, err
}

// Dataset returns GET /api/dataset.
func (c *Client) Dataset(ctx context.Context) ([]types.DatasetRow, error) {
	var out []types.DatasetRow
	err := c.doJSON(ctx, http.MethodGet, "/api/dataset", nil, &out)
	return out, err
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String()
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode %s body: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s response: %w", path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var er types.ErrorResponse
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(b, &er); err == nil && er.Error != "" {
		apiErr.Message = er.Error
		apiErr.Detail = er.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(b))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return apiErr
}
