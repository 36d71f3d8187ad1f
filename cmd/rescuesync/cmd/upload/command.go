// Package upload provides the commands that write to the CRM: the full
// reconciliation run, the accounts-only run and the comment update.
package upload

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lastmilefood/rescuesync/internal/cmd/application"
	"github.com/lastmilefood/rescuesync/internal/cmd/cmdutil"
	"github.com/lastmilefood/rescuesync/pkg/reports"
)

// NewCommand creates the upload command.
func NewCommand(app application.Application) *cobra.Command {
	var flags *cmdutil.ReportFlags
	cmd := &cobra.Command{
		Use:     "upload",
		GroupID: "core",
		Short:   "Upload admin records missing from the CRM",
		Long: `Upload reconciles the admin exports against the CRM and inserts the
records the CRM lacks, in order: donors, partners, volunteers, rescues.

Accounts are written in two batches so child locations can reference the
parent accounts created by the first. A stage is skipped when its export
is not given. The first failed job stops the run.

Records the CRM rejects are written to failed_<object>_<job>.tsv and
rescue links that matched no CRM record to unresolved_links_rescues.tsv.`,
		Example: `  rescuesync upload --donors donors.csv --partners partners.csv \
    --volunteers volunteers.csv --rescues rescues.csv
  rescuesync upload --rescues rescues.csv --dry-run
  rescuesync upload --rescues rescues.csv --strict-links`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := flags.Inputs()
			if err != nil {
				return err
			}
			return Execute(cmd, app, in)
		},
	}
	flags = cmdutil.AddReportFlags(cmd, reports.Donors, reports.Partners, reports.Volunteers, reports.Rescues)
	return cmd
}

// NewAccountsCommand creates the accounts command.
func NewAccountsCommand(app application.Application) *cobra.Command {
	var flags *cmdutil.ReportFlags
	cmd := &cobra.Command{
		Use:     "accounts",
		GroupID: "core",
		Short:   "Upload new donor and partner accounts and volunteer contacts",
		Long: `Accounts runs the donor, partner and volunteer stages of upload without
touching rescues.`,
		Example: `  rescuesync accounts --donors donors.csv --partners partners.csv
  rescuesync accounts --volunteers volunteers.csv --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := flags.Inputs()
			if err != nil {
				return err
			}
			return Execute(cmd, app, in)
		},
	}
	flags = cmdutil.AddReportFlags(cmd, reports.Donors, reports.Partners, reports.Volunteers)
	return cmd
}

// NewCommentsCommand creates the comments command.
func NewCommentsCommand(app application.Application) *cobra.Command {
	var flags *cmdutil.ReportFlags
	cmd := &cobra.Command{
		Use:     "comments",
		GroupID: "core",
		Short:   "Copy admin rescue comments onto CRM rescues",
		Long: `Comments sets Comments__c on CRM rescues that have none, from the admin
rescue comments export. Existing CRM comments are never overwritten.`,
		Example: `  rescuesync comments --comments comments.csv
  rescuesync comments --comments comments.csv --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.Require(reports.Comments); err != nil {
				return err
			}
			in, err := flags.Inputs()
			if err != nil {
				return fmt.Errorf("loading comments: %w", err)
			}
			return Execute(cmd, app, in)
		},
	}
	flags = cmdutil.AddReportFlags(cmd, reports.Comments)
	return cmd
}
