// Package app provides the application context and dependency management
// for the rescuesync CLI: configuration, logging, and the lazily created
// Bulk API client shared by all commands.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lastmilefood/rescuesync/internal/auth"
	"github.com/lastmilefood/rescuesync/internal/cmd/application"
	"github.com/lastmilefood/rescuesync/internal/config"
	"github.com/lastmilefood/rescuesync/internal/transport"
	"github.com/lastmilefood/rescuesync/pkg/bulk"
	"github.com/lastmilefood/rescuesync/pkg/errors"
	"github.com/lastmilefood/rescuesync/pkg/reconcile"
	rsync "github.com/lastmilefood/rescuesync/pkg/sync"
)

// App represents the rescuesync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Lazy-initialized, singletons
	mu       sync.Mutex
	settings *config.Settings
	store    reconcile.Store
}

// Ensure App implements application.Application at compile time.
var _ application.Application = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, &errors.ConfigError{Message: "cannot load CLI configuration", Err: err}
	}
	app.config = cfg

	logger := NewLogger(cfg)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the --format value, possibly empty.
func (a *App) OutputFormat() string { return a.config.Format }

// OutDir returns the artifact directory.
func (a *App) OutDir() string { return a.config.OutDir }

// Credentials returns the CRM credentials from the environment.
func (a *App) Credentials() auth.Credentials { return auth.FromEnv() }

// Settings loads the deployment settings on first use. The config file is
// read after flag parsing so --config applies.
func (a *App) Settings() (*config.Settings, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.settings != nil {
		return a.settings, nil
	}
	s, err := config.Load(a.config.ConfigFile)
	if err != nil {
		return nil, err
	}
	a.settings = s
	return s, nil
}

// Store returns the Bulk API client, logging in on first use.
func (a *App) Store(ctx context.Context) (reconcile.Store, error) {
	settings, err := a.Settings()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.store != nil {
		return a.store, nil
	}

	tokens, err := a.Credentials().TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	authenticator, err := transport.AuthenticatorFor(a.config.AuthScheme)
	if err != nil {
		return nil, err
	}
	logger := a.logger.With().Str("component", "bulk").Logger()
	tc := transport.New(tokens, transport.WithAuthenticator(authenticator), transport.WithLogger(logger))
	a.store = bulk.New(settings.URI, tc,
		bulk.WithMaxWait(a.config.JobTimeout),
		bulk.WithLogger(logger),
	)
	a.logger.Debug().Str("uri", settings.URI).Msg("Bulk API client ready")
	return a.store, nil
}

// RunOptions returns the run options selected by global flags.
func (a *App) RunOptions() []rsync.Option {
	return []rsync.Option{
		rsync.WithDryRun(a.config.DryRun),
		rsync.WithStrictLinks(a.config.StrictLinks),
	}
}

// Shutdown releases resources. Bulk jobs already submitted keep running
// on the server and are not aborted.
func (a *App) Shutdown(_ context.Context) error {
	a.logger.Debug().Msg("Shutting down")
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(cfg *Config) Option {
	return func(a *App) error {
		a.config = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithSettings sets the deployment settings instead of reading the config file.
func WithSettings(s *config.Settings) Option {
	return func(a *App) error {
		a.settings = s
		return nil
	}
}

// WithStore sets the Bulk API client (useful for testing).
func WithStore(store reconcile.Store) Option {
	return func(a *App) error {
		a.store = store
		return nil
	}
}
