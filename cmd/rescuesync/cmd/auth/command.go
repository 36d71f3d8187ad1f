// Package auth provides the credential commands.
package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lastmilefood/rescuesync/internal/auth"
	"github.com/lastmilefood/rescuesync/internal/cmd/application"
	"github.com/lastmilefood/rescuesync/internal/cmd/cmdutil"
	"github.com/lastmilefood/rescuesync/internal/cmd/output"
	"github.com/lastmilefood/rescuesync/pkg/constants"
	"github.com/lastmilefood/rescuesync/pkg/errors"
)

// verifyQuery is the cheapest query that proves the session works.
const verifyQuery = "SELECT Id FROM " + constants.ObjectAccount + " LIMIT 1"

// NewCommand creates the auth command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		GroupID: "management",
		Short:   "Check CRM credentials",
		Long: `Check the CRM credentials rescuesync will log in with.

Credentials come from SF_ACCESS_TOKEN, or from SF_USERNAME, SF_PASSWORD,
SF_SECURITY_TOKEN, SF_CLIENT_ID and SF_CLIENT_SECRET for a password login.
They are read from the environment and from .env and .env.local.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(NewStatusCommand(app))
	cmd.AddCommand(NewVerifyCommand(app))
	return cmd
}

// NewStatusCommand creates the auth status subcommand.
func NewStatusCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which credentials are configured",
		Long: `Status inspects the configured credentials without any network call.
Use 'rescuesync auth verify' to log in and run a query.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status := auth.Check(app.Credentials())
			if err := cmdutil.Print(cmd, app, output.AuthData(status)); err != nil {
				return err
			}
			if status.State != auth.StateConfigured {
				return fmt.Errorf("%w: %s", errors.ErrUnauthenticated, status.Summary)
			}
			return nil
		},
	}
}

// NewVerifyCommand creates the auth verify subcommand.
func NewVerifyCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Log in and run a one-row query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := app.Store(ctx)
			if err != nil {
				return err
			}
			if _, err := store.Query(ctx, verifyQuery); err != nil {
				return err
			}
			app.Logger().Info().Msg("Credentials verified")
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Credentials verified")
			return err
		},
	}
}
