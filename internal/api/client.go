// Package api is a thin JSON-over-HTTP client bound to a single base URL.
//
// Every call is one request: there are no retries and no client-side
// timeout. Failures of any kind come back as *Error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	headerRequestID   = "X-Request-Id"
	headerAuth        = "Authorization"

	contentTypeJSON = "application/json"
)

// Client sends requests relative to a fixed base URL
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	logger  *logrus.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithToken sends "Authorization: Bearer <token>" on every request
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *logrus.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client for baseURL. A trailing slash is ignored.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.SetOutput(io.Discard)
	}
	return c
}

// BaseURL returns the base URL requests are resolved against
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RawBody is sent verbatim instead of being JSON-encoded (file uploads,
// multipart forms).
type RawBody struct {
	Reader      io.Reader
	ContentType string
}

// RequestOption adjusts a single request
type RequestOption func(http.Header)

// WithHeader sets a caller-supplied header. Content-Type is overridden for
// JSON bodies; Accept, X-Request-Id and Authorization are only generated
// when the caller did not set them.
func WithHeader(key, value string) RequestOption {
	return func(h http.Header) {
		h.Set(key, value)
	}
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// newRequest builds the request, merging caller headers with generated ones
func (c *Client) newRequest(ctx context.Context, method, path string, body any, opts []RequestOption) (*http.Request, error) {
	headers := http.Header{}
	for _, opt := range opts {
		opt(headers)
	}

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case RawBody:
		reader = b.Reader
		if b.ContentType != "" {
			headers.Set(headerContentType, b.ContentType)
		}
	case *RawBody:
		reader = b.Reader
		if b.ContentType != "" {
			headers.Set(headerContentType, b.ContentType)
		}
	default:
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
		headers.Set(headerContentType, contentTypeJSON)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if headers.Get(headerAccept) == "" {
		headers.Set(headerAccept, contentTypeJSON)
	}
	if headers.Get(headerRequestID) == "" {
		headers.Set(headerRequestID, uuid.NewString())
	}
	if c.token != "" && headers.Get(headerAuth) == "" {
		headers.Set(headerAuth, "Bearer "+c.token)
	}
	req.Header = headers

	return req, nil
}

// send performs one round trip and logs it
func (c *Client) send(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)

	fields := logrus.Fields{
		"method":     req.Method,
		"path":       req.URL.Path,
		"request_id": req.Header.Get(headerRequestID),
		"duration":   time.Since(start).String(),
	}
	if err != nil {
		c.logger.WithFields(fields).WithError(err).Warn("request failed")
		return nil, &Error{Message: err.Error(), Err: err}
	}

	fields["status"] = resp.StatusCode
	c.logger.WithFields(fields).Debug("request completed")
	return resp, nil
}

// do runs a request and decodes a JSON success body into out. decoded
// reports whether out was filled; false is the null result.
func (c *Client) do(ctx context.Context, method, path string, body, out any, opts []RequestOption) (decoded bool, err error) {
	req, err := c.newRequest(ctx, method, path, body, opts)
	if err != nil {
		return false, err
	}

	resp, err := c.send(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	return handleResponse(resp, out)
}

// handleResponse applies the response policy: 204 and non-JSON successes
// are null, failures become *Error.
func handleResponse(resp *http.Response, out any) (bool, error) {
	if resp.StatusCode == http.StatusNoContent {
		return false, nil
	}

	isJSON := hasJSONContentType(resp.Header.Get(headerContentType))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if !isJSON {
			return false, nil
		}
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return false, &Error{Status: resp.StatusCode, Message: err.Error(), Err: err}
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			return false, nil
		}
		if out == nil {
			return true, nil
		}
		if err := json.Unmarshal(trimmed, out); err != nil {
			return false, &Error{
				Status:  resp.StatusCode,
				Message: fmt.Sprintf("respuesta inválida: %v", err),
				Err:     err,
			}
		}
		return true, nil
	}

	return false, errorFromResponse(resp, isJSON)
}

func hasJSONContentType(v string) bool {
	if v == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.Contains(v, contentTypeJSON)
	}
	return mt == contentTypeJSON || strings.HasSuffix(mt, "+json")
}

// errorFromResponse reads the error body. A JSON body contributes its
// "Message" (preferred) or "message" field; anything else its raw text.
func errorFromResponse(resp *http.Response, isJSON bool) *Error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: MsgUnknown, Err: err}
	}

	var msg string
	if isJSON {
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			return &Error{Status: resp.StatusCode, Message: MsgUnknown, Err: err}
		}
		msg = messageField(body)
	} else {
		msg = strings.TrimSpace(string(raw))
	}

	if msg == "" {
		msg = MsgGeneric
	}
	return &Error{Status: resp.StatusCode, Message: msg}
}

func messageField(body map[string]any) string {
	for _, key := range []string{"Message", "message"} {
		if s, ok := body[key].(string); ok && s != "" {
			return s
		}
	}
	// other casings, e.g. "MESSAGE"
	for k, v := range body {
		if strings.EqualFold(k, "message") {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// Download issues a GET and hands back the raw response for streaming.
// The caller must close the body. Non-2xx statuses are returned as *Error
// with the body already consumed.
func (c *Client) Download(ctx context.Context, path string, opts ...RequestOption) (*http.Response, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, opts)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, errorFromResponse(resp, hasJSONContentType(resp.Header.Get(headerContentType)))
	}
	return resp, nil
}

// Get fetches path and decodes the body into a T. A nil result with a nil
// error means the service answered without content.
func Get[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (*T, error) {
	return call[T](ctx, c, http.MethodGet, path, nil, opts)
}

// Post sends body as JSON (or raw, see RawBody) and decodes the reply
func Post[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (*T, error) {
	return call[T](ctx, c, http.MethodPost, path, body, opts)
}

// Put sends body and decodes the reply; most PUT endpoints answer 204
func Put[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (*T, error) {
	return call[T](ctx, c, http.MethodPut, path, body, opts)
}

// Delete removes the resource at path
func Delete[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (*T, error) {
	return call[T](ctx, c, http.MethodDelete, path, nil, opts)
}

func call[T any](ctx context.Context, c *Client, method, path string, body any, opts []RequestOption) (*T, error) {
	out := new(T)
	ok, err := c.do(ctx, method, path, body, out, opts)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return out, nil
}

// Empty is the type parameter for calls whose reply is ignored
type Empty struct{}

// IsStatus reports whether err is an *Error with the given HTTP status
func IsStatus(err error, status int) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == status
	}
	return false
}
