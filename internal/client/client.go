// Package client sends JSON requests to the finance API and records a
// transcript of every exchange.
package client

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

	"github.com/leca/finance-conformance/internal/config"
	"github.com/leca/finance-conformance/internal/expect"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 10 << 20

// Client issues requests against {base}/{prefix}/{endpoint}.
type Client struct {
	apiURL string
	http   *http.Client
	logger *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is used as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client for cfg. The request timeout comes from cfg.Timeout.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		apiURL: cfg.APIURL(),
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIURL returns the URL every endpoint is appended to.
func (c *Client) APIURL() string {
	return c.apiURL
}

// Request describes one call. Body, when non-nil, is encoded as JSON.
type Request struct {
	Method   string
	Endpoint string
	Body     any
	Query    url.Values
}

// Response is a completed HTTP exchange.
type Response struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte

	json      any
	decodeErr error
}

// JSON returns the decoded body, or an error if the body is not valid JSON.
func (r *Response) JSON() (any, error) {
	if r.decodeErr != nil {
		return nil, fmt.Errorf("decode response body: %w", r.decodeErr)
	}
	return r.json, nil
}

// Object returns the body as a JSON object.
func (r *Response) Object() (map[string]any, error) {
	v, err := r.JSON()
	if err != nil {
		return nil, err
	}
	return expect.Object(v)
}

// Array returns the body as a JSON array.
func (r *Response) Array() ([]any, error) {
	v, err := r.JSON()
	if err != nil {
		return nil, err
	}
	return expect.Array(v)
}

// TransportError is a request that never produced a response: DNS failure,
// refused connection, timeout or cancellation.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is, or wraps, a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// URL builds the absolute URL for an endpoint and optional query.
func (c *Client) URL(endpoint string, query url.Values) string {
	u := c.apiURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Send performs req and logs the exchange. A non-nil error means there is no
// response to inspect; HTTP error statuses are not errors.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	target := c.URL(req.Endpoint, req.Query)

	var (
		body    io.Reader
		payload []byte
	)
	if req.Body != nil {
		var err error
		payload, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	attrs := []any{"method", req.Method, "url", target}
	if payload != nil {
		attrs = append(attrs, "body", string(payload))
	}
	c.logger.Info("request", attrs...)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Error("request error", "method", req.Method, "url", target, "error", err)
		return nil, &TransportError{Method: req.Method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.logger.Error("read response failed", "method", req.Method, "url", target, "error", err)
		return nil, &TransportError{Method: req.Method, URL: target, Err: fmt.Errorf("read body: %w", err)}
	}

	out := &Response{
		Method:     req.Method,
		URL:        target,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}
	if len(bytes.TrimSpace(data)) == 0 {
		out.decodeErr = errors.New("empty body")
	} else {
		out.decodeErr = json.Unmarshal(data, &out.json)
	}

	c.logger.Info("response", "method", req.Method, "url", target, "status", resp.StatusCode, "body", string(data))
	return out, nil
}
