package find

import (
	"github.com/spf13/cobra"

	"github.com/lastmilefood/rescuesync/internal/cmd/application"
	"github.com/lastmilefood/rescuesync/internal/config"
	"github.com/lastmilefood/rescuesync/pkg/errors"
	"github.com/lastmilefood/rescuesync/pkg/findings"
	"github.com/lastmilefood/rescuesync/pkg/reconcile"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

// NewDuplicatesCommand creates the find duplicates subcommand.
func NewDuplicatesCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicates",
		Short: "List CRM donors, partners and volunteers sharing a name",
		Long: `Duplicates queries CRM accounts and contacts and lists every record
whose normalized name occurs more than once within its record type.`,
		Example: `  rescuesync find duplicates
  rescuesync find duplicates --out-dir reports/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDuplicates(cmd, app)
		},
	}
}

func runDuplicates(cmd *cobra.Command, app application.Application) error {
	ctx := cmd.Context()
	settings, err := app.Settings()
	if err != nil {
		return err
	}
	donorRT, err := settings.RecordTypeID(config.Donor)
	if err != nil {
		return err
	}
	partnerRT, err := settings.RecordTypeID(config.Partner)
	if err != nil {
		return err
	}
	volAcct, err := settings.VolunteersAccount()
	if err != nil {
		return err
	}

	store, err := app.Store(ctx)
	if err != nil {
		return err
	}
	accounts, err := store.Query(ctx, reconcile.QueryAccounts)
	if err != nil {
		return err
	}
	contacts, err := store.Query(ctx, reconcile.QueryContacts)
	if err != nil {
		return err
	}

	checks := []struct {
		name string
		find func() (*table.Table, error)
	}{
		{findings.ArtifactDuplicateDonors, func() (*table.Table, error) { return findings.DuplicateAccounts(accounts, donorRT) }},
		{findings.ArtifactDuplicatePartners, func() (*table.Table, error) { return findings.DuplicateAccounts(accounts, partnerRT) }},
		{findings.ArtifactDuplicateVols, func() (*table.Table, error) { return findings.DuplicateVolunteers(contacts, volAcct) }},
	}

	arts := artifacts(app)
	logger := app.Logger()
	var found []finding
	for _, c := range checks {
		dups, err := c.find()
		if errors.Is(err, findings.ErrNoDuplicates) {
			logger.Info().Str("finding", c.name).Msg("No duplicates")
			found = append(found, finding{Name: c.name})
			continue
		}
		if err != nil {
			return err
		}
		f, err := record(arts, c.name, dups)
		if err != nil {
			return err
		}
		found = append(found, f)
	}
	return report(cmd, app, found)
}
