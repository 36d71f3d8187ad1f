package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/lastmilefood/rescuesync/pkg/constants"
	"github.com/lastmilefood/rescuesync/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client provides HTTP client functionality with authentication, request
// throttling and retries for idempotent reads.
type Client struct {
	http       *http.Client
	auth       Authenticator
	tokens     oauth2.TokenSource
	limiter    *rate.Limiter
	maxRetries uint64
	backoff    time.Duration
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithAuthenticator replaces the default bearer authenticator.
func WithAuthenticator(auth Authenticator) Option {
	return func(c *Client) { c.auth = auth }
}

// WithRateLimit caps outgoing requests per second. Zero or less disables it.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithRetries sets how many times a GET is retried and the initial backoff.
func WithRetries(n uint64, initial time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = n
		c.backoff = initial
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a new transport client. A nil token source sends requests
// without credentials.
func New(tokens oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		http:       &http.Client{Timeout: DefaultHTTPTimeout},
		auth:       BearerAuth,
		tokens:     tokens,
		limiter:    rate.NewLimiter(rate.Limit(constants.DefaultRequestsPerSecond), 1),
		maxRetries: constants.MaxRetries,
		backoff:    constants.RetryBackoff,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs a single HTTP request with authentication applied. It is
// never retried.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, canceled(ctx, err)
	}

	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrUnauthenticated, err)
		}
		c.auth.Apply(req, tok)
	}

	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		return nil, canceled(ctx, err)
	}
	return resp, nil
}

// Send performs a single request with a body of the given content type.
func (c *Client) Send(ctx context.Context, method, url, contentType string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, newBody(body))
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, url, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.Do(ctx, req)
}

// Get performs a GET request, retrying transport errors, 429 and 5xx
// responses with exponential backoff. Once retries are exhausted the last
// response is returned as an APIError labelled with stage.
func (c *Client) Get(ctx context.Context, url, stage string) (*http.Response, error) {
	var resp *http.Response
	attempt := 0

	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		r, err := c.Do(ctx, req)
		if err != nil {
			if ctx.Err() != nil || errors.IsCanceled(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		if retryable(r.StatusCode) {
			body, _ := ReadBody(r)
			return &errors.APIError{
				Stage:      stage,
				Method:     http.MethodGet,
				Endpoint:   url,
				StatusCode: r.StatusCode,
				Body:       string(body),
			}
		}
		resp = r
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.backoff
	policy.MaxInterval = constants.MaxRetryBackoff
	policy.MaxElapsedTime = 0

	notify := func(err error, wait time.Duration) {
		c.logger.Warn().
			Err(err).
			Str("stage", stage).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("Retrying request")
	}

	err := backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx), notify)
	if err != nil {
		return nil, canceled(ctx, err)
	}
	return resp, nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// canceled maps context expiry to ErrCanceled so callers can tell an
// operator interrupt from a remote failure.
func canceled(ctx context.Context, err error) error {
	if ctx.Err() != nil && !errors.IsCanceled(err) {
		return fmt.Errorf("%w: %v", errors.ErrCanceled, ctx.Err())
	}
	return err
}

func newBody(b []byte) io.Reader {
	if b == nil {
		return http.NoBody
	}
	return bytes.NewReader(b)
}
