package find

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/lastmilefood/rescuesync/internal/cmd/application"
	"github.com/lastmilefood/rescuesync/internal/cmd/cmdutil"
	"github.com/lastmilefood/rescuesync/pkg/findings"
	"github.com/lastmilefood/rescuesync/pkg/reports"
)

// now is the local clock. Staleness is judged by the operator's calendar
// day, not the UTC one.
var now = time.Now

// NewIncompleteCommand creates the find incomplete subcommand.
func NewIncompleteCommand(app application.Application) *cobra.Command {
	var flags *cmdutil.ReportFlags
	cmd := &cobra.Command{
		Use:   "incomplete",
		Short: "List past rescues that were never completed or canceled",
		Long: `Incomplete reads the admin rescue export and lists rescues whose pickup
day is before today but whose state is neither completed nor canceled.
No CRM access is needed.`,
		Example: `  rescuesync find incomplete --rescues rescues.csv`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.Require(reports.Rescues); err != nil {
				return err
			}
			rescues, err := flags.Load(reports.Rescues)
			if err != nil {
				return err
			}
			stale, err := findings.IncompleteRescues(rescues, now())
			if err != nil {
				return err
			}
			f, err := record(artifacts(app), findings.ArtifactIncomplete, stale)
			if err != nil {
				return err
			}
			return report(cmd, app, []finding{f})
		},
	}
	flags = cmdutil.AddReportFlags(cmd, reports.Rescues)
	return cmd
}
