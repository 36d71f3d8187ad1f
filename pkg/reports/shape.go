package reports

import (
	"github.com/lastmilefood/rescuesync/pkg/errors"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

// ActiveAccounts keeps the Active rows of a donor or partner export and maps
// them to the admin account shape: the organization name becomes the parent
// name and the location name becomes the account name.
func ActiveAccounts(t *table.Table, kind Kind) (*table.Table, error) {
	var org string
	switch kind {
	case Donors:
		org = colDonorOrg
	case Partners:
		org = colRecipientOrg
	default:
		return nil, &errors.ValidationError{Field: "kind", Value: kind, Message: "not an account export"}
	}
	if err := Validate(t, kind); err != nil {
		return nil, err
	}

	active := t.Where(ColStatus, table.Text(statusActive))
	sel, err := active.Select(org, colLocationName, "Phone", colLine1, colLine2, "City", "State", "Zip")
	if err != nil {
		return nil, err
	}
	return sel.Relabel(AccountColumns...)
}

// VolunteerRows selects the volunteer export columns in VolunteerColumns
// order, adding an all-Null Line2 when the export lacks it.
func VolunteerRows(t *table.Table) (*table.Table, error) {
	if err := Validate(t, Volunteers); err != nil {
		return nil, err
	}
	if !t.Has(colLine2) {
		t = t.Clone()
		t.Fill(colLine2, table.Null())
	}
	return t.Select(VolunteerColumns...)
}

// CommentRows selects the rescue id and comment columns.
func CommentRows(t *table.Table) (*table.Table, error) {
	if err := Validate(t, Comments); err != nil {
		return nil, err
	}
	return t.Select(ColRescueID, ColComments)
}
