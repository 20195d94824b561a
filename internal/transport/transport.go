// Package transport performs single HTTP requests against the configured API
// endpoint and maps failures onto the apperr taxonomy.
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cumulus-dev/cumulus/internal/apperr"
)

// Method is the closed set of HTTP verbs the API uses.
type Method int

const (
	MethodGet Method = iota
	MethodPost
	MethodPut
	MethodPatch
	MethodDelete
)

// paramsInQuery reports whether params travel in the query string rather
// than the body.
func (m Method) paramsInQuery() bool {
	return m == MethodGet || m == MethodDelete
}

func (m Method) String() string {
	switch m {
	case MethodGet:
		return http.MethodGet
	case MethodPost:
		return http.MethodPost
	case MethodPut:
		return http.MethodPut
	case MethodPatch:
		return http.MethodPatch
	case MethodDelete:
		return http.MethodDelete
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// Header names used on the wire.
const (
	HeaderContentType  = "Content-Type"
	HeaderContentRange = "Content-Range"
	HeaderUploadID     = "x-appwrite-id"

	ContentTypeJSON      = "application/json"
	ContentTypeMultipart = "multipart/form-data"
)

// Config is the immutable transport configuration. Use the With* helpers to
// derive modified copies.
type Config struct {
	// Endpoint is the API base URL, e.g. https://cloud.example.com/v1
	Endpoint string
	// Headers are sent with every request; per-call headers override them.
	Headers map[string]string
	// SelfSigned disables TLS certificate verification.
	SelfSigned bool
	// Timeout bounds a single HTTP exchange. Zero means no timeout.
	Timeout time.Duration
	// RetryAttempts is the total number of attempts for network-level failures.
	// API errors are never retried. Zero is treated as one attempt.
	RetryAttempts uint
	// RetryDelay is the initial backoff between attempts.
	RetryDelay time.Duration
}

// WithHeader returns a copy of c with the header set.
func (c Config) WithHeader(key, value string) Config {
	headers := make(map[string]string, len(c.Headers)+1)
	for k, v := range c.Headers {
		headers[k] = v
	}
	headers[key] = value
	c.Headers = headers
	return c
}

// Request describes one API call.
type Request struct {
	Method  Method
	Path    string
	Headers map[string]string
	// Params are encoded as a query string for GET, as a JSON body otherwise,
	// or as multipart/form-data when any value is a file.
	Params map[string]any
}

// Response is a completed 2xx exchange.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into out.
func (r *Response) Decode(out any) error {
	if len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Map decodes the JSON body as an object.
func (r *Response) Map() (map[string]any, error) {
	out := map[string]any{}
	if err := r.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// errorBody is the error document the server returns on non-2xx responses
type errorBody struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Version string `json:"version"`
}

// Client sends requests. It is safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New builds a transport client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, apperr.InvalidArgument("transport endpoint is empty")
	}
	if !strings.HasPrefix(cfg.Endpoint, "http://") && !strings.HasPrefix(cfg.Endpoint, "https://") {
		return nil, apperr.InvalidArgument("transport endpoint %q must start with http:// or https://", cfg.Endpoint)
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	cfg = cfg.WithHeader(HeaderContentType, ContentTypeJSON)

	httpTransport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.SelfSigned {
		httpTransport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // Opt-in for self-hosted servers
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: httpTransport,
		},
	}, nil
}

// Config returns the client's configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// URL joins the endpoint with an API path.
func (c *Client) URL(path string) string {
	return c.cfg.Endpoint + "/" + strings.TrimLeft(path, "/")
}

// Call performs req and returns the response of a 2xx exchange. Non-2xx
// statuses yield *apperr.APIError and network failures *apperr.TransportError.
func (c *Client) Call(ctx context.Context, req Request) (*Response, error) {
	headers := c.mergeHeaders(req.Headers)
	reqURL := c.URL(req.Path)

	body, contentType, err := encodeBody(req.Method, req.Params, headers.Get(HeaderContentType))
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		headers.Set(HeaderContentType, contentType)
	} else {
		headers.Del(HeaderContentType)
	}
	if req.Method.paramsInQuery() {
		if query := encodeQuery(req.Params); query != "" {
			reqURL += "?" + query
		}
	}

	attempts := c.cfg.RetryAttempts
	if attempts == 0 {
		attempts = 1
	}
	delay := c.cfg.RetryDelay
	if delay == 0 {
		delay = 200 * time.Millisecond
	}

	var resp *Response
	attempt := 0
	err = retry.Do(
		func() error {
			attempt++
			var rerr error
			resp, rerr = c.do(ctx, req.Method, reqURL, headers, body, attempt)
			return rerr
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return false
			}
			var transportErr *apperr.TransportError
			return errors.As(err, &transportErr)
		}),
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method Method, reqURL string, headers http.Header, body []byte, attempt int) (*Response, error) {
	slog.Debug("API request",
		"method", method.String(),
		"url", reqURL,
		"bodySize", len(body),
		"contentRange", headers.Get(HeaderContentRange),
		"attempt", attempt,
	)

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method.String(), reqURL, bodyReader)
	if err != nil {
		return nil, retry.Unrecoverable(apperr.InvalidArgument("failed to create request: %v", err))
	}
	httpReq.Header = headers.Clone()

	startTime := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	duration := time.Since(startTime)
	if err != nil {
		slog.Warn("HTTP request failed",
			"error", err,
			"method", method.String(),
			"url", reqURL,
			"duration", duration,
			"attempt", attempt,
		)
		return nil, &apperr.TransportError{Method: method.String(), URL: reqURL, Err: err}
	}
	defer httpResp.Body.Close() //nolint:errcheck // Deferred close, error not actionable

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		slog.Error("Failed to read response body", "error", err, "statusCode", httpResp.StatusCode)
		return nil, &apperr.TransportError{Method: method.String(), URL: reqURL, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	slog.Debug("API response",
		"statusCode", httpResp.StatusCode,
		"responseSize", len(respBody),
		"duration", duration,
		"method", method.String(),
		"url", reqURL,
	)

	if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 {
		return &Response{
			StatusCode: httpResp.StatusCode,
			Header:     httpResp.Header,
			Body:       respBody,
		}, nil
	}

	apiErr := &apperr.APIError{
		Code:     httpResp.StatusCode,
		Response: string(respBody),
	}
	var errBody errorBody
	if err := json.Unmarshal(respBody, &errBody); err == nil {
		apiErr.Message = errBody.Message
		apiErr.Type = errBody.Type
	} else {
		apiErr.Message = strings.TrimSpace(string(respBody))
	}
	slog.Error("API error",
		"statusCode", httpResp.StatusCode,
		"message", apiErr.Message,
		"type", apiErr.Type,
		"method", method.String(),
		"url", reqURL,
	)
	return nil, retry.Unrecoverable(apiErr)
}

// mergeHeaders builds a fresh header set: config defaults first, then the
// per-call overrides. Neither input is modified.
func (c *Client) mergeHeaders(overrides map[string]string) http.Header {
	headers := make(http.Header, len(c.cfg.Headers)+len(overrides))
	for k, v := range c.cfg.Headers {
		headers.Set(k, v)
	}
	for k, v := range overrides {
		headers.Set(k, v)
	}
	return headers
}
