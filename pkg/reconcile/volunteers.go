package reconcile

import (
	"context"
	"strings"

	"github.com/lastmilefood/rescuesync/pkg/constants"
	"github.com/lastmilefood/rescuesync/pkg/normalize"
	"github.com/lastmilefood/rescuesync/pkg/reports"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

// VolunteerBatchColumns is the column order of contact insert batches.
var VolunteerBatchColumns = []string{
	"FirstName", "LastName", "Email", "Phone", "MailingStreet",
	"MailingCity", "MailingState", "MailingPostalCode", "AccountId",
}

// SplitName splits a full name on whitespace: the last token is the last
// name and the rest form the first name. "Cher" has an empty first name.
func SplitName(name string) (first, last string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
}

// PlanVolunteers returns the contact insert batch for admin volunteers
// (shaped as reports.VolunteerColumns) whose name matches no contact under
// the volunteers account.
func PlanVolunteers(crm, admin *table.Table, volunteersAccountID string) (*table.Table, error) {
	if err := crm.Require("Id", "Name", "AccountId"); err != nil {
		return nil, err
	}
	if err := admin.Require(reports.VolunteerColumns...); err != nil {
		return nil, err
	}

	vols, err := crm.Where("AccountId", table.Text(volunteersAccountID)).Select("Id", "Name")
	if err != nil {
		return nil, err
	}
	existing, err := nameLookup(vols, "Name")
	if err != nil {
		return nil, err
	}

	adm := admin.Clone()
	if err := reports.Coerce(adm, reports.Volunteers); err != nil {
		return nil, err
	}
	if err := normalize.Column(adm, "Name"); err != nil {
		return nil, err
	}

	account := table.Text(volunteersAccountID)
	out := table.New(VolunteerBatchColumns...).Named(constants.ObjectContact)
	for i := 0; i < adm.Len(); i++ {
		row := adm.Row(i)
		name := row.Str("Name")
		if name == "" {
			continue
		}
		if _, ok := existing[name]; ok {
			continue
		}
		first, last := SplitName(name)
		out.AppendRecord(map[string]table.Value{
			"FirstName":         table.Text(first),
			"LastName":          table.Text(last),
			"Email":             row.Get("Email"),
			"Phone":             row.Get("Phone"),
			"MailingStreet":     street(row.Get("Line1"), row.Get("Line2")),
			"MailingCity":       row.Get("City"),
			"MailingState":      row.Get("State"),
			"MailingPostalCode": row.Get("Zip"),
			"AccountId":         account,
		})
	}

	return out.Distinct(), nil
}

// Volunteers inserts the admin volunteers missing from the contacts snapshot.
func (r *Reconciler) Volunteers(ctx context.Context, contacts, admin *table.Table) (*Outcome, error) {
	account, err := r.settings.VolunteersAccount()
	if err != nil {
		return nil, err
	}
	for _, name := range duplicateNames(contacts, "AccountId", account) {
		r.logger().Warn().Str("name", name).Msg("Volunteer name is not unique in the CRM")
	}

	batch, err := PlanVolunteers(contacts, admin, account)
	if err != nil {
		return nil, err
	}
	r.logger().Info().Int("rows", batch.Len()).Msg("Planned new volunteers")

	out := &Outcome{Object: constants.ObjectContact}
	err = r.insert(ctx, out, batch, constants.ObjectContact)
	return out, err
}
