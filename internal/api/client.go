package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/cumulus-dev/cumulus/internal/auth"
	"github.com/cumulus-dev/cumulus/internal/transport"
	"github.com/cumulus-dev/cumulus/internal/upload"
	"github.com/cumulus-dev/cumulus/pkg/config"
)

// client is the REST API client
type client struct {
	config    *config.Config
	transport *transport.Client
	engine    *upload.Engine
}

var _ Client = (*client)(nil)

// NewClient creates a new API client. Credentials from cfg become default
// headers on every request.
func NewClient(cfg *config.Config) (Client, error) {
	headers, err := auth.Headers(cfg)
	if err != nil {
		return nil, err
	}

	tc, err := transport.New(transport.Config{
		Endpoint:      cfg.GetEndpoint(),
		Headers:       headers,
		SelfSigned:    cfg.SelfSigned,
		Timeout:       5 * time.Minute,
		RetryAttempts: cfg.GetRetryAttempts(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	slog.Debug("API client created",
		"endpoint", tc.Config().Endpoint,
		"project", cfg.ProjectID,
		"selfSigned", cfg.SelfSigned,
	)

	return &client{
		config:    cfg,
		transport: tc,
		engine:    upload.New(tc, upload.WithChunkSize(cfg.GetChunkSize())),
	}, nil
}

// call performs a request and decodes the JSON response into out, if given.
func (c *client) call(ctx context.Context, method transport.Method, path string, params map[string]any, out any) error {
	resp, err := c.transport.Call(ctx, transport.Request{
		Method: method,
		Path:   path,
		Params: params,
	})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := resp.Decode(out); err != nil {
		slog.Error("Failed to decode response", "error", err, "path", path)
		return err
	}
	slog.Debug("API request successful", "method", method.String(), "path", path)
	return nil
}

// raw performs a GET and returns the response body bytes.
func (c *client) raw(ctx context.Context, path string, params map[string]any) ([]byte, error) {
	resp, err := c.transport.Call(ctx, transport.Request{
		Method: transport.MethodGet,
		Path:   path,
		Params: params,
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// upload hands a payload to the chunked upload engine and decodes the final
// resource into out.
func (c *client) upload(ctx context.Context, req upload.Request, out any) error {
	resp, err := c.engine.Upload(ctx, req)
	if err != nil {
		return err
	}
	if err := resp.Decode(out); err != nil {
		slog.Error("Failed to decode upload response", "error", err, "path", req.Path)
		return err
	}
	return nil
}

// pathf formats an API path, escaping every id segment.
func pathf(format string, ids ...string) string {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = url.PathEscape(id)
	}
	return fmt.Sprintf(format, args...)
}
