// Package rest provides JSON-over-HTTP GET and POST helpers.
//
// Every failure is reported as a *RequestError whose Kind is one of a
// small closed set: the request body could not be encoded, the request
// itself failed, the server answered with a non-2xx status, or the
// response body could not be decoded. Requests are never retried.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/dshills/toolz/internal/jsonv"
	xlog "github.com/dshills/toolz/internal/log"
)

const defaultTimeout = 30 * time.Second

// Options configures a Client.
type Options struct {
	// Timeout bounds each request including reading the body (default 30s).
	Timeout time.Duration

	// UserAgent is sent with every request when set.
	UserAgent string

	// RateLimit caps requests per second. Zero means unlimited.
	RateLimit rate.Limit

	// RateLimitBurst is the limiter burst size (default 1).
	RateLimitBurst int

	// HTTPClient overrides the underlying client; Timeout is ignored then.
	HTTPClient *http.Client
}

// Client issues JSON requests.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	logger    zerolog.Logger
}

// DefaultClient is used by the package-level helpers.
var DefaultClient = NewClient(Options{})

// NewClient creates a client with the given options.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 1
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	limit := opts.RateLimit
	if limit <= 0 {
		limit = rate.Inf
	}

	return &Client{
		http:      httpClient,
		limiter:   rate.NewLimiter(limit, opts.RateLimitBurst),
		userAgent: opts.UserAgent,
		logger:    xlog.WithComponent("rest"),
	}
}

// Get fetches url with the default client and decodes the JSON body into a T.
func Get[T any](ctx context.Context, url string) (T, error) {
	return GetWith[T](ctx, DefaultClient, url)
}

// Post encodes value as JSON and posts it to url with the default client.
func Post(ctx context.Context, url string, value any) error {
	return DefaultClient.Post(ctx, url, value)
}

// GetWith fetches url with c and decodes the JSON body into a T.
func GetWith[T any](ctx context.Context, c *Client, url string) (T, error) {
	var out T

	started := time.Now()
	status, body, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		observeRequest(http.MethodGet, started, status, err)
		return out, err
	}

	if err := json.Unmarshal(body, &out); err != nil {
		rerr := &RequestError{
			Kind:   DecodingFailed,
			Method: http.MethodGet,
			URL:    url,
			Status: status,
			Body:   body,
			Err:    err,
		}
		observeRequest(http.MethodGet, started, status, rerr)
		return out, rerr
	}

	observeRequest(http.MethodGet, started, status, nil)
	return out, nil
}

// GetJSON fetches url and parses the body as a generic JSON value.
func (c *Client) GetJSON(ctx context.Context, url string) (jsonv.Value, error) {
	return GetWith[jsonv.Value](ctx, c, url)
}

// Post encodes value as JSON and posts it to url. Only the status of the
// response is inspected.
func (c *Client) Post(ctx context.Context, url string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		rerr := &RequestError{
			Kind:   EncodingFailed,
			Method: http.MethodPost,
			URL:    url,
			Err:    err,
		}
		observeRequest(http.MethodPost, time.Time{}, 0, rerr)
		return rerr
	}

	started := time.Now()
	status, _, err := c.do(ctx, http.MethodPost, url, payload)
	observeRequest(http.MethodPost, started, status, err)
	return err
}

// do performs a request and returns the status and body of a 2xx response.
func (c *Client) do(ctx context.Context, method, url string, payload []byte) (int, []byte, error) {
	fail := func(kind ErrorKind, status int, body []byte, err error) (int, []byte, error) {
		return status, body, &RequestError{
			Kind:   kind,
			Method: method,
			URL:    url,
			Status: status,
			Body:   body,
			Err:    err,
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fail(RequestFailed, 0, nil, err)
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fail(RequestFailed, 0, nil, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str(xlog.FieldMethod, method).Str(xlog.FieldURL, url).Msg("request failed")
		return fail(RequestFailed, 0, nil, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(RequestFailed, resp.StatusCode, nil, err)
	}

	c.logger.Debug().
		Str(xlog.FieldMethod, method).
		Str(xlog.FieldURL, url).
		Int(xlog.FieldStatus, resp.StatusCode).
		Int("bytes", len(body)).
		Msg("response received")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(UnexpectedStatus, resp.StatusCode, body, nil)
	}

	return resp.StatusCode, body, nil
}
