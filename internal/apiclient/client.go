// Package apiclient is the HTTP facade over the finance REST API. A Client
// is bound to one bearer token; a token change builds a new Client rather
// than mutating the old one, so the unauthorized hook is registered exactly
// once per client, at construction.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/log"
	"fintrack/internal/trace"
)

// APIPrefix is appended to the server URL to form the API base.
const APIPrefix = "/api/v1"

const (
	defaultTimeout  = 5 * time.Second
	maxResponseSize = 4 << 20
)

// UnauthorizedFunc is invoked once for every 401/403 response, before the
// error is returned to the caller. It must not issue requests through the
// client that triggered it.
type UnauthorizedFunc func(status int)

type Options struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	HTTPClient     *http.Client
	OnUnauthorized UnauthorizedFunc
	Logger         *log.Logger
}

type Client struct {
	base           *url.URL
	token          string
	http           *http.Client
	onUnauthorized UnauthorizedFunc
	logger         *log.Logger
}

// Response is a decoded 2xx reply.
type Response struct {
	Status int
	Data   json.RawMessage
}

// New validates the options and builds a client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", opts.BaseURL)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Nop()
	}

	hc := &http.Client{}
	if opts.HTTPClient != nil {
		copied := *opts.HTTPClient
		hc = &copied
	}
	hc.Transport = log.NewTransport(hc.Transport, logger)
	switch {
	case opts.Timeout > 0:
		hc.Timeout = opts.Timeout
	case hc.Timeout == 0:
		hc.Timeout = defaultTimeout
	}

	return &Client{
		base:           base,
		token:          opts.Token,
		http:           hc,
		onUnauthorized: opts.OnUnauthorized,
		logger:         logger.WithComponent(log.ComponentAPI),
	}, nil
}

// WithToken returns a new client that authenticates with token. The
// receiver is left untouched.
func (c *Client) WithToken(token string) *Client {
	next := *c
	next.token = token
	return &next
}

// WithUnauthorized returns a new client with a different 401/403 hook.
func (c *Client) WithUnauthorized(fn UnauthorizedFunc) *Client {
	next := *c
	next.onUnauthorized = fn
	return &next
}

func (c *Client) Token() string { return c.token }

func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, nil, body)
}

func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(log.RequestIDHeader, uuid.NewString())
	if id := trace.GetCorrelationID(ctx); id != "" {
		req.Header.Set(trace.CorrelationIDHeader, id)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := &RequestError{Status: resp.StatusCode, Message: errorMessage(data)}
		if isAuthStatus(resp.StatusCode) && c.onUnauthorized != nil {
			c.logger.WarnContext(ctx, "Session rejected by server",
				log.FieldStatusCode, resp.StatusCode,
				log.FieldPath, u.Path)
			c.onUnauthorized(resp.StatusCode)
		}
		return nil, reqErr
	}
	if readErr != nil {
		return nil, &RequestError{Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", readErr)}
	}

	return &Response{Status: resp.StatusCode, Data: data}, nil
}

// errorMessage extracts {"message": "..."} and tolerates any other body.
func errorMessage(body []byte) string {
	var e struct {
		Message any `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	if s, ok := e.Message.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// envelope is the shape of every successful reply.
type envelope struct {
	Result  json.RawMessage `json:"result"`
	Message string          `json:"message"`
}

func (r *Response) envelope() (envelope, error) {
	var env envelope
	if len(bytes.TrimSpace(r.Data)) == 0 {
		return env, nil
	}
	if err := json.Unmarshal(r.Data, &env); err != nil {
		return env, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return env, nil
}

// DecodeResult unmarshals the "result" member into v.
func (r *Response) DecodeResult(v any) error {
	env, err := r.envelope()
	if err != nil {
		return err
	}
	if len(env.Result) == 0 || string(env.Result) == "null" {
		return fmt.Errorf("%w: missing result", ErrMalformedResponse)
	}
	if err := json.Unmarshal(env.Result, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// Message returns the top-level "message", falling back to result.message.
func (r *Response) Message() string {
	env, err := r.envelope()
	if err != nil {
		return ""
	}
	if env.Message != "" {
		return env.Message
	}
	var nested struct {
		Message string `json:"message"`
	}
	if len(env.Result) > 0 && json.Unmarshal(env.Result, &nested) == nil {
		return nested.Message
	}
	return ""
}
