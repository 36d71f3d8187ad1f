package find

import (
	"github.com/spf13/cobra"

	"github.com/lastmilefood/rescuesync/internal/cmd/application"
	"github.com/lastmilefood/rescuesync/internal/cmd/cmdutil"
	"github.com/lastmilefood/rescuesync/pkg/findings"
	"github.com/lastmilefood/rescuesync/pkg/reports"
)

// NewDifferencesCommand creates the find differences subcommand.
func NewDifferencesCommand(app application.Application) *cobra.Command {
	var (
		flags   *cmdutil.ReportFlags
		outer   bool
		stacked bool
		show    bool
	)
	cmd := &cobra.Command{
		Use:   "differences",
		Short: "Compare rescue fields between the admin export and the CRM",
		Long: `Differences joins admin rescues to CRM rescues on Rescue ID and Food Type
and lists every rescue where the date, donor, partner, volunteer, state,
weight or detail URL disagree.

By default only rescues present on both sides are compared and each field
gets an Admin and a Salesforce column. --outer also lists rescues missing
from one side. --stacked writes one row per side instead.`,
		Example: `  rescuesync find differences --rescues rescues.csv
  rescuesync find differences --rescues rescues.csv --outer --stacked
  rescuesync find differences --rescues rescues.csv --show --format markdown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.Require(reports.Rescues); err != nil {
				return err
			}
			admin, err := flags.Load(reports.Rescues)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, err := app.Store(ctx)
			if err != nil {
				return err
			}
			crm, err := store.Query(ctx, findings.QueryRescueDetails)
			if err != nil {
				return err
			}

			opts := findings.CompareOptions{Join: findings.JoinInner, Layout: findings.LayoutInterleaved}
			if outer {
				opts.Join = findings.JoinOuter
			}
			if stacked {
				opts.Layout = findings.LayoutStacked
			}
			diff, err := findings.Compare(admin, crm, opts)
			if err != nil {
				return err
			}

			f, err := record(artifacts(app), findings.ArtifactDifferences, diff)
			if err != nil {
				return err
			}
			if show && diff.Len() > 0 {
				return cmdutil.Print(cmd, app, diff)
			}
			return report(cmd, app, []finding{f})
		},
	}
	flags = cmdutil.AddReportFlags(cmd, reports.Rescues)
	cmd.Flags().BoolVar(&outer, "outer", false, "include rescues present on only one side")
	cmd.Flags().BoolVar(&stacked, "stacked", false, "one row per side instead of paired columns")
	cmd.Flags().BoolVar(&show, "show", false, "print the differences instead of a summary")
	return cmd
}
