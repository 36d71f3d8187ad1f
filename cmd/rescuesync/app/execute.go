package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/lastmilefood/rescuesync/internal/cmd/output"
	"github.com/lastmilefood/rescuesync/internal/transport"
)

// Execute runs the rescuesync CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "rescuesync",
		Short:   "Reconcile food-rescue admin exports with the CRM",
		Version: a.version,
		Long: `rescuesync brings the CRM up to date with the food-rescue admin tool.

It reads the admin tool's CSV exports of donors, nonprofit partners,
volunteers and rescues, queries the CRM through the Bulk API, and inserts
the records the CRM is missing. Read-only analyses report duplicate CRM
records, stale open rescues and rescues the two systems disagree on.

The Bulk API URI and record type ids come from rescuesync.yaml (or
--config). Credentials come from the environment or a .env file.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(
		&cobra.Group{ID: "core", Title: "Core Commands:"},
		&cobra.Group{ID: "analysis", Title: "Analysis Commands:"},
		&cobra.Group{ID: "management", Title: "Management Commands:"},
	)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.config.ConfigFile, "config", a.config.ConfigFile, "config file (default is ./rescuesync.yaml or $HOME/rescuesync.yaml)")
	flags.StringVar(&a.config.OutDir, "out-dir", a.config.OutDir, "directory for TSV artifacts")
	flags.BoolVarP(&a.config.Verbose, "verbose", "v", a.config.Verbose, "verbose output (shortcut for --log-level=debug)")
	flags.BoolVarP(&a.config.Quiet, "quiet", "q", a.config.Quiet, "minimal output (shortcut for --log-level=warn)")
	flags.BoolVar(&a.config.NoColor, "no-color", false, "disable colored output")
	flags.StringVarP(&a.config.Format, "format", "o", a.config.Format, "output format: table, json, yaml, markdown")
	flags.StringVar(&a.config.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.DurationVar(&a.config.JobTimeout, "job-timeout", a.config.JobTimeout, "longest a single bulk job is polled, 0 for no limit")
	flags.BoolVar(&a.config.DryRun, "dry-run", false, "plan uploads without submitting any job")
	flags.BoolVar(&a.config.StrictLinks, "strict-links", false, "skip rescues whose donor or partner is not in the CRM")
	flags.StringVar(&a.config.AuthScheme, "auth-scheme", a.config.AuthScheme, "how the session token is sent: bearer, session (X-SFDC-Session) or none")

	rootCmd.SetVersionTemplate("rescuesync {{.Version}}\n")

	a.registerCommands(rootCmd)
	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	// These flags are defined as persistent flags in createRootCommand, so errors indicate programming errors
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	format := mustGetString(cmd, "format")
	logLevel := mustGetString(cmd, "log-level")

	if _, err := output.ParseFormat(format); err != nil {
		return err
	}
	if _, err := transport.AuthenticatorFor(a.config.AuthScheme); err != nil {
		return err
	}
	a.config.UpdateFromFlags(verbose, quiet, noColor, format, logLevel)

	// Reinitialize logger with updated config
	logger := NewLogger(a.config)
	a.logger = &logger
	return nil
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
