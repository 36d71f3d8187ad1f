package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lastmilefood/rescuesync/cmd/rescuesync/cmd/auth"
	"github.com/lastmilefood/rescuesync/cmd/rescuesync/cmd/find"
	"github.com/lastmilefood/rescuesync/cmd/rescuesync/cmd/upload"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(upload.NewCommand(a))
	rootCmd.AddCommand(upload.NewAccountsCommand(a))
	rootCmd.AddCommand(upload.NewCommentsCommand(a))

	// Analysis commands
	rootCmd.AddCommand(find.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(auth.NewCommand(a))
	rootCmd.AddCommand(a.newVersionCommand())
}

// newVersionCommand creates the version command.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		GroupID: "management",
		Short:   "Show version information",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "rescuesync %s\n", a.version)
			if a.config.Verbose {
				fmt.Fprintf(out, "  commit:   %s\n", a.commit)
				fmt.Fprintf(out, "  built:    %s\n", a.date)
				fmt.Fprintf(out, "  built by: %s\n", a.builtBy)
			}
		},
	}
}
