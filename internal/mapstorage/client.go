package mapstorage

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// =============================================================================
// HTTP Implementation
// =============================================================================

// HTTPClient implements Client against the map-storage REST API.
// Requests carry bearer auth with the configured service token.
type HTTPClient struct {
	client *resty.Client
	logger *slog.Logger
}

// NewHTTPClient creates a map-storage client.
//
// Parameters:
//   - baseURL: Root URL of the map-storage service
//   - token: Bearer token for the map-storage API
//   - logger: Logger for request diagnostics
func NewHTTPClient(baseURL, token string, logger *slog.Logger) *HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(token).
		SetTimeout(15 * time.Second)

	return &HTTPClient{
		client: client,
		logger: logger,
	}
}

// UploadWAM writes a WAM descriptor at the given path.
func (c *HTTPClient) UploadWAM(ctx context.Context, path string, wam []byte) error {
	if err := validatePath(path); err != nil {
		return err
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(wam).
		Put("/maps/" + path)
	if err != nil {
		return fmt.Errorf("map-storage upload %s: %w", path, err)
	}
	if err := c.checkStatus(resp, "upload", path); err != nil {
		return err
	}

	c.logger.Debug("uploaded wam descriptor", "path", path, "bytes", len(wam))
	return nil
}

// CopyWAM copies the descriptor at src to dst.
func (c *HTTPClient) CopyWAM(ctx context.Context, src, dst string) error {
	if err := validatePath(src); err != nil {
		return err
	}
	if err := validatePath(dst); err != nil {
		return err
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"source": src, "destination": dst}).
		Post("/maps/copy")
	if err != nil {
		return fmt.Errorf("map-storage copy %s: %w", src, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("map-storage copy %s: %w", src, ErrNotFound)
	}
	if err := c.checkStatus(resp, "copy", src); err != nil {
		return err
	}

	c.logger.Debug("copied wam descriptor", "src", src, "dst", dst)
	return nil
}

// DeleteWAM removes the descriptor at the given path. Idempotent.
func (c *HTTPClient) DeleteWAM(ctx context.Context, path string) error {
	if err := validatePath(path); err != nil {
		return err
	}

	resp, err := c.client.R().
		SetContext(ctx).
		Delete("/maps/" + path)
	if err != nil {
		return fmt.Errorf("map-storage delete %s: %w", path, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil
	}
	if err := c.checkStatus(resp, "delete", path); err != nil {
		return err
	}

	c.logger.Debug("deleted wam descriptor", "path", path)
	return nil
}

// Ping checks reachability and credentials.
func (c *HTTPClient) Ping(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/ping")
	if err != nil {
		return fmt.Errorf("map-storage ping: %w", err)
	}
	return c.checkStatus(resp, "ping", "")
}

// checkStatus maps non-success responses to errors.
func (c *HTTPClient) checkStatus(resp *resty.Response, op, path string) error {
	code := resp.StatusCode()
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("map-storage %s %s: %w", op, path, ErrUnauthorized)
	default:
		return fmt.Errorf("map-storage %s %s: status %d", op, path, code)
	}
}

// =============================================================================
// Nop Implementation
// =============================================================================

// NopClient is a Client that accepts every call without talking to a
// map-storage service. Used in development and tests.
type NopClient struct{}

// NewNopClient creates a no-op map-storage client.
func NewNopClient() *NopClient { return &NopClient{} }

func (NopClient) UploadWAM(ctx context.Context, path string, wam []byte) error { return nil }
func (NopClient) CopyWAM(ctx context.Context, src, dst string) error           { return nil }
func (NopClient) DeleteWAM(ctx context.Context, path string) error             { return nil }
func (NopClient) Ping(ctx context.Context) error                               { return nil }
