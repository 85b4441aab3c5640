// Package api is the authenticated HTTP client for the vocabulary backend.
//
// Every call appends a relative path to the configured base URL, attaches the
// session's bearer token when one is present, and returns the raw JSON body on
// 2xx. Anything else is a *RequestError. Calls are cancelled through their
// context; there is no retry.
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

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/vocabadmin/internal/logging"
	"github.com/fyrsmithlabs/vocabadmin/internal/session"
)

const (
	instrumentationName = "github.com/fyrsmithlabs/vocabadmin/internal/api"

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 10 << 20
)

// Client issues authenticated requests to the backend.
type Client struct {
	baseURL string
	session *session.Session
	http    *http.Client
	logger  *logging.Logger
	tracer  trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// New creates a client for baseURL that reads its bearer token from sess.
func New(baseURL string, sess *session.Session, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if sess == nil {
		return nil, fmt.Errorf("session cannot be nil")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: sess,
		http:    &http.Client{},
		logger:  logging.NewNop(),
		tracer:  otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Request sends method to path with an optional JSON body and returns the
// response body. An empty 2xx body yields nil.
func (c *Client) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	raw, _, err := c.do(ctx, method, path, body)
	return raw, err
}

func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, int, error) {
	ctx, span := c.tracer.Start(ctx, "api.request", trace.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("api.path", path),
	))
	defer span.End()

	fail := func(status int, err error) (json.RawMessage, int, error) {
		reqErr := &RequestError{Method: method, Path: path, StatusCode: status, Err: err}
		span.RecordError(reqErr)
		span.SetStatus(codes.Error, "request failed")
		c.logger.Warn(ctx, "backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Error(err),
		)
		return nil, status, reqErr
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fail(0, fmt.Errorf("failed to encode request body: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return fail(0, fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token, ok := c.session.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fail(resp.StatusCode, fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug(ctx, "backend error body", zap.String("path", path), zap.ByteString("body", truncate(data, 512)))
		return fail(resp.StatusCode, fmt.Errorf("unexpected status %s", http.StatusText(resp.StatusCode)))
	}

	c.logger.Debug(ctx, "backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, resp.StatusCode, nil
	}
	if !gjson.ValidBytes(data) {
		return fail(resp.StatusCode, ErrInvalidJSON)
	}
	return json.RawMessage(data), resp.StatusCode, nil
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
