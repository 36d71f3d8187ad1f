// Package sync orchestrates a reconciliation run: CRM snapshots, then the
// donor, partner, volunteer, rescue and comment stages in order.
package sync

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lastmilefood/rescuesync/pkg/errors"
)

// Options controls a run.
type Options struct {
	// Orchestration control
	DryRun      bool          // Plan every stage without submitting
	StrictLinks bool          // Drop rescues with unresolved donor or partner
	Timeout     time.Duration // Timeout for the entire run, 0 for none

	// Identification
	RunID string // Correlates log lines and artifacts of one run

	Logger zerolog.Logger
}

// Apply applies the given options.
func (s *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Defaults returns the default run options with a fresh run id.
func Defaults() *Options {
	return &Options{
		DryRun:      false,
		StrictLinks: false,
		Timeout:     0,
		RunID:       uuid.NewString(),
		Logger:      zerolog.Nop(),
	}
}

// Option is a function that configures run Options.
type Option func(*Options)

// Validate checks if the run options are valid.
func (s *Options) Validate() error {
	if s.Timeout < 0 {
		return &errors.ValidationError{
			Field:   "Timeout",
			Value:   s.Timeout,
			Message: "timeout must be non-negative",
		}
	}
	if s.RunID == "" {
		return &errors.ValidationError{Field: "RunID", Message: "cannot be empty"}
	}
	return nil
}

// WithDryRun configures dry run mode.
func WithDryRun(dryRun bool) Option {
	return func(opts *Options) {
		opts.DryRun = dryRun
	}
}

// WithStrictLinks drops rescues whose donor or partner does not resolve.
func WithStrictLinks(strict bool) Option {
	return func(opts *Options) {
		opts.StrictLinks = strict
	}
}

// WithTimeout bounds the whole run.
func WithTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.Timeout = timeout
	}
}

// WithRunID sets the run id instead of generating one.
func WithRunID(id string) Option {
	return func(opts *Options) {
		opts.RunID = id
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}
