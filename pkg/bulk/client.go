// Package bulk is a client for the Salesforce Bulk API 2.0 query and ingest
// job flows. Calls block until the remote job reaches a terminal state,
// polling at a fixed interval, and fail with typed errors from pkg/errors
// instead of exiting.
package bulk

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lastmilefood/rescuesync/internal/transport"
	"github.com/lastmilefood/rescuesync/pkg/constants"
	"github.com/lastmilefood/rescuesync/pkg/errors"
)

const (
	contentJSON = "application/json; charset=UTF-8"
	contentCSV  = "text/csv"
)

// Client runs bulk jobs against a single org.
type Client struct {
	http       *transport.Client
	base       string
	queryPoll  time.Duration
	ingestPoll time.Duration
	maxWait    time.Duration
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithPollIntervals overrides the query and ingest polling intervals.
func WithPollIntervals(query, ingest time.Duration) Option {
	return func(c *Client) {
		c.queryPoll = query
		c.ingestPoll = ingest
	}
}

// WithMaxWait bounds how long a single job is polled. Zero polls forever.
func WithMaxWait(d time.Duration) Option {
	return func(c *Client) { c.maxWait = d }
}

// WithLogger sets the logger for job progress.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the jobs base URI, e.g.
// https://org.my.salesforce.com/services/data/v58.0/jobs/.
func New(base string, http *transport.Client, opts ...Option) *Client {
	if base != "" && base[len(base)-1] != '/' {
		base += "/"
	}
	c := &Client{
		http:       http,
		base:       base,
		queryPoll:  constants.QueryPollInterval,
		ingestPoll: constants.IngestPollInterval,
		maxWait:    constants.DefaultJobTimeout,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Base returns the jobs base URI.
func (c *Client) Base() string { return c.base }

// poll calls status every interval until it reports a terminal state, the
// context ends, or maxWait elapses.
func (c *Client) poll(ctx context.Context, what string, interval time.Duration, status func() (*JobInfo, error)) (*JobInfo, error) {
	start := time.Now()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		info, err := status()
		if err != nil {
			return nil, err
		}
		if info.State.Terminal() {
			return info, nil
		}
		if c.maxWait > 0 && time.Since(start) >= c.maxWait {
			return nil, errors.NewTimeoutError(what, c.maxWait.String(),
				fmt.Sprintf("job %s still %s", info.ID, info.State))
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", errors.ErrCanceled, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) getJob(ctx context.Context, url, stage string) (*JobInfo, error) {
	resp, err := c.http.Get(ctx, url, stage)
	if err != nil {
		return nil, err
	}
	var info JobInfo
	if err := transport.DecodeResponse(resp, stage, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
