// Package api is the client's only way to talk to the issue-tracking REST
// API. Each remote operation is one method that issues a single request
// and returns either a decoded payload or an *Error.
//
// The bearer credential is read from a Credentials source for every
// request rather than kept as mutable default-header state, so logging
// in or out takes effect on the next call without any synchronization.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxBody caps how much of a response is read.
const maxBody = 4 << 20

// Credentials supplies the bearer token for outgoing requests. An empty
// token means the request is sent without an Authorization header.
type Credentials interface {
	Token() string
}

// StaticToken is a fixed credential.
type StaticToken string

// Token implements Credentials.
func (t StaticToken) Token() string { return string(t) }

// Client calls the issue API.
type Client struct {
	baseURL      string
	http         *http.Client
	creds        Credentials
	log          *zap.Logger
	loginPath    string
	registerPath string
	requestID    func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithCredentials sets the bearer token source.
func WithCredentials(creds Credentials) Option {
	return func(c *Client) { c.creds = creds }
}

// WithLogger sets the logger for per-request debug lines.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithAuthPaths overrides the login and register endpoints.
func WithAuthPaths(login, register string) Option {
	return func(c *Client) {
		if login != "" {
			c.loginPath = login
		}
		if register != "" {
			c.registerPath = register
		}
	}
}

// New returns a Client rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         &http.Client{Timeout: 15 * time.Second},
		creds:        StaticToken(""),
		log:          zap.NewNop(),
		loginPath:    "/user/login",
		registerPath: "/user/register",
		requestID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends one request and decodes a successful JSON body into out. out
// may be nil, and an empty body leaves it untouched.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Kind: KindClient, Err: fmt.Errorf("marshal request: %w", err)}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Op: op, Kind: KindTransport, Err: fmt.Errorf("create request: %w", err)}
	}
	requestID := c.requestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return transportError(ctx, op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return transportError(ctx, op, fmt.Errorf("read response: %w", err))
	}

	c.log.Debug("request done",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("request_id", requestID),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Op:      op,
			Kind:    kindForStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: errorMessage(data),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Op: op, Kind: KindDecode, Status: resp.StatusCode, Err: err}
	}
	return nil
}

// errorMessage pulls "message" out of an error body. Plain-text bodies are
// used as-is when short.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		return body.Error
	}
	text := strings.TrimSpace(string(data))
	if len(text) > 200 || strings.HasPrefix(text, "<") {
		return ""
	}
	return text
}
