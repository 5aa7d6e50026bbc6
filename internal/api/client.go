// Package api is the HTTP boundary to the remote task service. It only moves
// JSON; deciding what an unauthorized response means is left to callers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout = 10 * time.Second

	maxErrorBody = 64 << 10
)

type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

type Option func(*options)

type options struct {
	source  oauth2.TokenSource
	timeout time.Duration
	rps     float64
	base    http.RoundTripper
	logger  zerolog.Logger
}

// WithTokenSource attaches the bearer credential from src to every request.
func WithTokenSource(src oauth2.TokenSource) Option {
	return func(o *options) { o.source = src }
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithRateLimit paces outgoing requests; rps <= 0 disables pacing.
func WithRateLimit(rps float64) Option {
	return func(o *options) { o.rps = rps }
}

func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api: invalid base url %q", baseURL)
	}
	o := options{timeout: DefaultTimeout, base: http.DefaultTransport, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	var limiter *rate.Limiter
	if o.rps > 0 {
		burst := int(o.rps)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(o.rps), burst)
	}
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   o.timeout,
			Transport: &authTransport{source: o.source, limiter: limiter, base: o.base},
		},
		logger: o.logger.With().Str("component", "api").Logger(),
	}, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return &Error{Method: method, Path: path, kind: ErrNetwork, cause: err}
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("request done")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    serverMessage(raw),
			kind:       kindForStatus(resp.StatusCode),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &Error{Method: method, Path: path, StatusCode: resp.StatusCode, kind: ErrServer, cause: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// serverMessage pulls {"error": "..."} or {"message": "..."} out of an error body.
func serverMessage(raw []byte) string {
	var body struct {
		Error   any    `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if s, ok := body.Error.(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(body.Message)
}
