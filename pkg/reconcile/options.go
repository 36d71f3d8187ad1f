package reconcile

import (
	"github.com/rs/zerolog"
)

// options configures a Reconciler.
type options struct {
	dryRun      bool
	strictLinks bool
	logger      zerolog.Logger
}

func defaultOptions() *options {
	return &options{
		logger: zerolog.Nop(),
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithDryRun plans every batch without submitting it.
func WithDryRun(enabled bool) Option {
	return func(o *options) error {
		o.dryRun = enabled
		return nil
	}
}

// WithStrictLinks drops rescues whose donor or partner name does not resolve
// to a CRM account instead of uploading them with a Null link.
func WithStrictLinks() Option {
	return func(o *options) error {
		o.strictLinks = true
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}
