package waapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/samvad-hq/waplatform-go/pkg/httpclient"
)

const (
	// Version is reported in the User-Agent header.
	Version = "1.0.0"

	DefaultBaseURL    = "http://localhost:3000/api/v1"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3

	userAgent = "WhatsApp-API-Go-SDK/" + Version
)

// Config holds the connection settings of a Client. Zero values fall back to
// the package defaults.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// Client issues authenticated calls against the platform REST API and
// exposes one façade per resource. It is safe for concurrent use.
type Client struct {
	cfg     Config
	http    httpclient.Client
	log     Logger
	limiter *rate.Limiter
	sleep   func(ctx context.Context, d time.Duration) error

	Sessions *Sessions
	Messages *Messages
	Contacts *Contacts
	Groups   *Groups
	Webhooks *Webhooks
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the resty-backed transport.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(log Logger) Option {
	return func(c *Client) {
		c.log = ensureLogger(log)
	}
}

// WithRateLimit throttles outgoing attempts to rps requests per second.
// A non-positive rps leaves the client unthrottled.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// New builds a Client. The API key is mandatory.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, errors.New("waapi: api key is required")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	c := &Client{
		cfg:   cfg,
		log:   noopLogger{},
		sleep: sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(cfg.Timeout)
	}

	c.Sessions = &Sessions{client: c}
	c.Messages = &Messages{client: c}
	c.Contacts = &Contacts{client: c}
	c.Groups = &Groups{client: c}
	c.Webhooks = &Webhooks{client: c}
	return c, nil
}

// Config returns the effective configuration.
func (c *Client) Config() Config { return c.cfg }

// Get issues a GET request with optional query parameters.
func (c *Client) Get(ctx context.Context, path string, query map[string]string) (Result, error) {
	return c.do(ctx, call{method: http.MethodGet, path: path, query: query})
}

// Post issues a POST request with an optional JSON body.
func (c *Client) Post(ctx context.Context, path string, body map[string]any) (Result, error) {
	return c.do(ctx, call{method: http.MethodPost, path: path, body: body})
}

// PostMultipart issues a multipart POST carrying form fields and files.
func (c *Client) PostMultipart(ctx context.Context, path string, form map[string]string, files ...httpclient.File) (Result, error) {
	return c.do(ctx, call{method: http.MethodPost, path: path, form: form, files: files})
}

// Put issues a PUT request with an optional JSON body.
func (c *Client) Put(ctx context.Context, path string, body map[string]any) (Result, error) {
	return c.do(ctx, call{method: http.MethodPut, path: path, body: body})
}

// Delete issues a DELETE request. Most endpoints take no body.
func (c *Client) Delete(ctx context.Context, path string, body map[string]any) (Result, error) {
	return c.do(ctx, call{method: http.MethodDelete, path: path, body: body})
}

type call struct {
	method string
	path   string
	query  map[string]string
	body   map[string]any
	form   map[string]string
	files  []httpclient.File
}

func (c *Client) endpoint(path string) string {
	return c.cfg.BaseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) headers(multipart bool, requestID string) map[string]string {
	h := map[string]string{
		"Authorization": "Bearer " + c.cfg.APIKey,
		"User-Agent":    userAgent,
		"Accept":        "application/json",
		"X-Request-ID":  requestID,
	}
	if !multipart {
		h["Content-Type"] = "application/json"
	}
	return h
}

// do runs the retry loop around a single logical call.
func (c *Client) do(ctx context.Context, in call) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	req := httpclient.Request{
		Method:   in.method,
		URL:      c.endpoint(in.path),
		Headers:  c.headers(len(in.files) > 0, uuid.NewString()),
		Query:    in.query,
		FormData: in.form,
		Files:    in.files,
	}
	if in.body != nil {
		req.Body = in.body
	}

	var lastErr *Error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, newConnectionError(err)
			}
		}

		c.log.DebugObj("platform request", "request_meta", map[string]any{
			"method":     req.Method,
			"path":       in.path,
			"attempt":    attempt + 1,
			"request_id": req.Headers["X-Request-ID"],
		})

		res, apiErr := c.attempt(ctx, req)
		if apiErr == nil {
			return res, nil
		}
		lastErr = apiErr
		if !apiErr.Retryable() || ctx.Err() != nil {
			return nil, apiErr
		}

		wait := backoff(apiErr.Kind, attempt)
		c.log.WarnObj("platform request failed; backing off", "retry_meta", map[string]any{
			"method":       req.Method,
			"path":         in.path,
			"attempt":      attempt + 1,
			"max_attempts": c.cfg.MaxRetries,
			"kind":         apiErr.Kind.String(),
			"status":       apiErr.StatusCode,
			"wait":         wait.String(),
		})
		if err := c.sleep(ctx, wait); err != nil {
			return nil, newConnectionError(err)
		}
	}
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, req httpclient.Request) (Result, *Error) {
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, newConnectionError(err)
	}
	return decodeResponse(resp.StatusCode(), resp.Body())
}

// decodeResponse turns a status code and body into a Result or a typed error.
// Every 2xx is success; only non-2xx codes are classified as failures.
func decodeResponse(status int, raw []byte) (Result, *Error) {
	success := status >= 200 && status < 300
	if success && len(bytes.TrimSpace(raw)) == 0 {
		return Result{}, nil
	}
	body := parseBody(raw)
	if success {
		return Result(body), nil
	}
	return nil, newStatusError(status, body, raw)
}

func parseBody(raw []byte) map[string]any {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil || body == nil {
		return map[string]any{"error": invalidJSONMessage}
	}
	return body
}
