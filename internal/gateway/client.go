// Package gateway provides typed clients for the omnigateway REST API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crmadmin/internal/model"

	"github.com/google/uuid"
)

// APIKeyHeader carries the tenant API key on every request.
const APIKeyHeader = "x-api-key"

// RequestIDHeader correlates a request with gateway logs.
const RequestIDHeader = "X-Request-ID"

// Options configures a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client issues requests against the gateway. It holds no per-screen state.
type Client struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client
	logger  *slog.Logger

	Bookings     *BookingService
	ClientApps   *ClientAppService
	Reports      *ReportService
	CheckinForms *CheckinFormService
	Images       *ImageService
	Logs         *LogService
	ML           *MLService
}

// New creates a Client for the gateway at opts.BaseURL.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("gateway url is required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("gateway url must be http or https, got %q", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Client{baseURL: base, apiKey: opts.APIKey, http: hc, logger: logger}
	c.Bookings = &BookingService{c: c}
	c.ClientApps = &ClientAppService{c: c}
	c.Reports = &ReportService{c: c}
	c.CheckinForms = &CheckinFormService{c: c}
	c.Images = &ImageService{c: c}
	c.Logs = &LogService{c: c}
	c.ML = &MLService{c: c}
	return c, nil
}

// APIError is returned for any non-2xx gateway response.
type APIError struct {
	Status    int
	Method    string
	Path      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("gateway %s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

// IsNotFound reports whether err is a 404 from the gateway.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(path, "/")
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// do sends one request and returns the raw response body. There is no retry;
// a failure is terminal for the calling action.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, q), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("gateway request failed", "method", method, "path", path, "request_id", reqID, "err", err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	c.logger.Debug("gateway request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", reqID,
	)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Status:    resp.StatusCode,
			Method:    method,
			Path:      path,
			Message:   errorMessage(data),
			RequestID: reqID,
		}
	}
	return data, nil
}

// doJSON sends a request and decodes the response into out. The gateway
// sometimes wraps single objects in {"data": ...}; both forms are accepted.
func (c *Client) doJSON(ctx context.Context, method, path string, q url.Values, body, out any) error {
	data, err := c.do(ctx, method, path, q, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(unwrapData(data), out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func list[T any](ctx context.Context, c *Client, path string, q url.Values) (model.Page[T], error) {
	data, err := c.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return model.Page[T]{}, err
	}
	page, err := decodePage[T](data, q)
	if err != nil {
		return model.Page[T]{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return page, nil
}

func itemPath(prefix, id string, rest ...string) string {
	parts := append([]string{prefix, url.PathEscape(id)}, rest...)
	return strings.Join(parts, "/")
}
