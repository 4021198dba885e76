// Package client implements nota.API over the Nota REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tendant/nota-dashboard/pkg/nota"
)

const (
	// DefaultTimeout bounds every request when no timeout is configured.
	DefaultTimeout = 30 * time.Second
	// DefaultSignupPath is the registration route of the backend.
	DefaultSignupPath = "/auth/register"
)

// ProgressFunc receives the number of bytes uploaded so far.
type ProgressFunc func(bytesUploaded int64)

// Client talks to one Nota API base URL, e.g. http://localhost:8080/api/v1.
// Session credentials are server-set cookies kept in the client's jar.
type Client struct {
	baseURL      *url.URL
	httpClient   *http.Client
	logger       *zap.Logger
	signupPath   string
	updateByID   bool
	retryAttempt int
	retryDelay   time.Duration
	progressFunc ProgressFunc
}

var _ nota.API = (*Client)(nil)

// Option is a functional option for configuring a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. A client without a jar gets one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger of the client
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSignupPath overrides the registration route, e.g. /auth/signup
func WithSignupPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.signupPath = path
		}
	}
}

// WithUpdatePathByID sends updates to /content/update/:id instead of
// /content/update
func WithUpdatePathByID() Option {
	return func(c *Client) {
		c.updateByID = true
	}
}

// WithRetry retries GET requests on transport errors and 5xx responses
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.retryAttempt = attempts
			c.retryDelay = delay
		}
	}
}

// WithProgress reports upload progress
func WithProgress(fn ProgressFunc) Option {
	return func(c *Client) {
		c.progressFunc = fn
	}
}

// New creates a client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse base url: %q is not absolute", baseURL)
	}

	c := &Client{
		baseURL:      u,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		logger:       zap.NewNop(),
		signupPath:   DefaultSignupPath,
		retryAttempt: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("new cookie jar: %w", err)
		}
		c.httpClient.Jar = jar
	}
	return c, nil
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Cookies returns the session cookies held for the API host.
func (c *Client) Cookies() []*http.Cookie {
	return c.httpClient.Jar.Cookies(c.baseURL)
}

// SetCookies restores session cookies, e.g. from a saved session file.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	c.httpClient.Jar.SetCookies(c.baseURL, cookies)
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + path
}

// doJSON sends body as JSON and decodes a 2xx response into out when out is
// not nil.
func (c *Client) doJSON(ctx context.Context, op, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		payload = b
	}

	attempts := 1
	if method == http.MethodGet {
		attempts = c.retryAttempt
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return &TransportError{Op: op, Err: ctx.Err()}
			case <-time.After(c.retryDelay * time.Duration(attempt)):
			}
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
		if err != nil {
			return fmt.Errorf("%s: create request: %w", op, err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		lastErr = c.send(req, op, out)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func retryable(err error) bool {
	switch e := err.(type) {
	case *TransportError:
		return !errors.Is(e.Err, context.Canceled) && !errors.Is(e.Err, context.DeadlineExceeded)
	case *APIError:
		return e.Status >= 500
	}
	return false
}

// send performs req and decodes the response.
func (c *Client) send(req *http.Request, op string, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Request failed",
			zap.String("op", op),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err))
		if ctxErr := req.Context().Err(); ctxErr != nil {
			err = ctxErr
		}
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	c.logger.Debug("Request completed",
		zap.String("op", op),
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Op: op, Status: resp.StatusCode, Message: errorMessage(b)}
	}
	if out == nil || len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// errorMessage extracts {error} or {message} from an error body.
func errorMessage(b []byte) string {
	var body map[string]any
	if err := json.Unmarshal(b, &body); err == nil {
		for _, key := range []string{"error", "message"} {
			switch v := body[key].(type) {
			case string:
				return v
			case map[string]any:
				if msg, ok := v["message"].(string); ok {
					return msg
				}
			}
		}
	}
	return strings.TrimSpace(string(b))
}

// decodeList accepts a bare array or a {data: [...]} envelope.
func decodeList(raw any) []map[string]any {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case map[string]any:
		for _, key := range []string{"data", "Data"} {
			if list, ok := v[key].([]any); ok {
				items = list
				break
			}
		}
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// decodeRecord accepts a record or a {data: record} envelope.
func decodeRecord(raw any) map[string]any {
	m, ok := raw.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return nota.UnwrapRecord(m)
}
