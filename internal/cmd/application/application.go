// Package application provides the application interface for rescuesync commands.
//
// The Application interface is the contract between the application layer and
// command implementations. Commands accept it rather than the concrete App so
// they can be tested against a Mock backed by a fake Bulk API.
//
// Usage in Commands:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            store, err := app.Store(cmd.Context())
//	            if err != nil {
//	                return err
//	            }
//	            // ... query or ingest through store
//	            return nil
//	        },
//	    }
//	}
package application

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lastmilefood/rescuesync/internal/auth"
	"github.com/lastmilefood/rescuesync/internal/config"
	"github.com/lastmilefood/rescuesync/pkg/reconcile"
	"github.com/lastmilefood/rescuesync/pkg/sync"
)

// Application provides what commands need from the running CLI.
type Application interface {
	// Settings returns the deployment settings from the config file and env.
	Settings() (*config.Settings, error)

	// Credentials returns the CRM login inputs. Checking them makes no
	// network call.
	Credentials() auth.Credentials

	// Store returns the authenticated Bulk API client, logging in on first
	// use. Missing credentials fail here, before any job is created.
	Store(ctx context.Context) (reconcile.Store, error)

	// RunOptions returns the run options selected by global flags.
	RunOptions() []sync.Option

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml, markdown).
	OutputFormat() string

	// OutDir is the directory artifacts are written to.
	OutDir() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
