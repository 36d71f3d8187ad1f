package find

import (
	"github.com/spf13/cobra"

	"github.com/lastmilefood/rescuesync/internal/cmd/application"
	"github.com/lastmilefood/rescuesync/internal/cmd/cmdutil"
	"github.com/lastmilefood/rescuesync/pkg/findings"
	"github.com/lastmilefood/rescuesync/pkg/reports"
)

// NewDiscrepanciesCommand creates the find discrepancies subcommand.
func NewDiscrepanciesCommand(app application.Application) *cobra.Command {
	var flags *cmdutil.ReportFlags
	cmd := &cobra.Command{
		Use:   "discrepancies",
		Short: "List completed rescues present in only one system",
		Long: `Discrepancies compares the Rescue IDs marked completed in the CRM with
those marked completed in the admin rescue export, in both directions.`,
		Example: `  rescuesync find discrepancies --rescues rescues.csv`,
		Args:    cobra.NoArgs,
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
			crm, err := store.Query(ctx, findings.QueryRescueStates)
			if err != nil {
				return err
			}

			arts := artifacts(app)
			var found []finding
			for _, m := range []struct {
				mode findings.Mode
				name string
			}{
				{findings.ModeCRMOnly, findings.ArtifactCRMOnly},
				{findings.ModeAdminOnly, findings.ArtifactAdminOnly},
			} {
				ids, err := findings.RescueDiscrepancies(crm, admin, m.mode)
				if err != nil {
					return err
				}
				f, err := record(arts, m.name, ids)
				if err != nil {
					return err
				}
				found = append(found, f)
			}
			return report(cmd, app, found)
		},
	}
	flags = cmdutil.AddReportFlags(cmd, reports.Rescues)
	return cmd
}
