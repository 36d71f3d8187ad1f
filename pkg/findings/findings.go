// Package findings holds the read-only analyses run against admin exports
// and CRM snapshots: duplicate records, stale open rescues, rescues completed
// in only one system, and field-level differences.
package findings

import (
	"strconv"
	"time"

	"github.com/lastmilefood/rescuesync/pkg/constants"
	"github.com/lastmilefood/rescuesync/pkg/errors"
	"github.com/lastmilefood/rescuesync/pkg/normalize"
	"github.com/lastmilefood/rescuesync/pkg/reports"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

// ErrNoDuplicates is returned by Duplicates when every key is unique. It
// separates "ran and found nothing" from an error.
var ErrNoDuplicates = errors.New("no duplicates were found")

// QueryRescueStates is the CRM snapshot RescueDiscrepancies compares.
const QueryRescueStates = "SELECT Rescue_Id__c, State__c FROM Food_Rescue__c"

// Artifact names, one per finding.
const (
	ArtifactDuplicateDonors   = "duplicate_food_donors"
	ArtifactDuplicatePartners = "duplicate_nonprofit_partners"
	ArtifactDuplicateVols     = "duplicate_volunteers"
	ArtifactIncomplete        = "incomplete_rescues"
	ArtifactCRMOnly           = "discrepancies_salesforce_only"
	ArtifactAdminOnly         = "discrepancies_admin_only"
	ArtifactDifferences       = "rescue_field_differences"
)

// Duplicates returns every row whose key value occurs more than once,
// grouped by key in key order. Null keys are ignored.
func Duplicates(t *table.Table, key string) (*table.Table, error) {
	groups, err := t.GroupBy(key)
	if err != nil {
		return nil, err
	}
	out := table.New(t.Columns()...).Named(t.Name())
	for _, g := range groups {
		if g.Key.IsNull() || g.Rows.Len() < 2 {
			continue
		}
		if out, err = out.Concat(g.Rows); err != nil {
			return nil, err
		}
	}
	if out.Len() == 0 {
		return nil, ErrNoDuplicates
	}
	return out, nil
}

// DuplicateAccounts finds accounts of one record type sharing a name.
// Names are compared after whitespace normalization.
func DuplicateAccounts(accounts *table.Table, recordTypeID string) (*table.Table, error) {
	return duplicatesWhere(accounts, "RecordTypeId", recordTypeID)
}

// DuplicateVolunteers finds volunteer contacts sharing a name.
func DuplicateVolunteers(contacts *table.Table, volunteersAccountID string) (*table.Table, error) {
	return duplicatesWhere(contacts, "AccountId", volunteersAccountID)
}

func duplicatesWhere(t *table.Table, col, val string) (*table.Table, error) {
	if err := t.Require(col, "Name"); err != nil {
		return nil, err
	}
	sub := t.Where(col, table.Text(val)).Clone()
	if err := normalize.Column(sub, "Name"); err != nil {
		return nil, err
	}
	// Normalization turns Null into "", which must not group.
	_ = sub.Map("Name", func(v table.Value) table.Value {
		if v.String() == "" {
			return table.Null()
		}
		return v
	})
	return Duplicates(sub, "Name")
}

// IncompleteColumns is the shape returned by IncompleteRescues.
var IncompleteColumns = []string{
	reports.ColRescueID, reports.ColPickupDay, reports.ColRescueState, reports.ColDetailURL,
}

// IncompleteRescues returns rescues still open (neither completed nor
// canceled) whose pickup day is before today's date.
func IncompleteRescues(rescues *table.Table, today time.Time) (*table.Table, error) {
	if err := rescues.Require(IncompleteColumns...); err != nil {
		return nil, err
	}
	y, m, d := today.Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	out := table.New(IncompleteColumns...).Named(rescues.Name())
	for i := 0; i < rescues.Len(); i++ {
		row := rescues.Row(i)
		state := row.Str(reports.ColRescueState)
		if state == constants.StateCompleted || state == constants.StateCanceled {
			continue
		}
		raw := row.Get(reports.ColPickupDay)
		day, ok := table.ParseDate(raw)
		if !ok {
			// Line counts the header as line 1.
			return nil, &errors.ParseError{
				Format:  "date",
				File:    rescues.Name(),
				Line:    i + 2,
				Message: "unparseable " + reports.ColPickupDay + " " + strconv.Quote(raw.String()),
			}
		}
		if t, _ := day.Time(); !t.Before(cutoff) {
			continue
		}
		_ = out.AppendRow(row.Get(reports.ColRescueID), day, row.Get(reports.ColRescueState), row.Get(reports.ColDetailURL))
	}
	return out.Distinct(), nil
}

// Mode selects which side of a discrepancy to report.
type Mode int

// Discrepancy modes.
const (
	// ModeCRMOnly reports rescues completed in the CRM but not in the admin tool.
	ModeCRMOnly Mode = 1
	// ModeAdminOnly reports rescues completed in the admin tool but not in the CRM.
	ModeAdminOnly Mode = 2
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeCRMOnly:
		return "salesforce-only"
	case ModeAdminOnly:
		return "admin-only"
	default:
		return "unknown"
	}
}

// RescueDiscrepancies compares the sets of completed Rescue IDs. The result
// has one Rescue ID column, sorted and distinct. Only presence is compared.
func RescueDiscrepancies(crm, admin *table.Table, mode Mode) (*table.Table, error) {
	if err := crm.Require("Rescue_Id__c", "State__c"); err != nil {
		return nil, err
	}
	if err := admin.Require(reports.ColRescueID, reports.ColRescueState); err != nil {
		return nil, err
	}

	crmIDs, err := completedIDs(crm, "Rescue_Id__c", "State__c")
	if err != nil {
		return nil, err
	}
	adminIDs, err := completedIDs(admin, reports.ColRescueID, reports.ColRescueState)
	if err != nil {
		return nil, err
	}

	var from, other *table.Table
	switch mode {
	case ModeCRMOnly:
		from, other = crmIDs, adminIDs
	case ModeAdminOnly:
		from, other = adminIDs, crmIDs
	default:
		return nil, &errors.ValidationError{Field: "mode", Value: mode, Message: "must be 1 or 2"}
	}
	diff, err := table.AntiJoin(from, other, reports.ColRescueID)
	if err != nil {
		return nil, err
	}
	return diff.Distinct().SortBy(reports.ColRescueID)
}

func completedIDs(t *table.Table, idCol, stateCol string) (*table.Table, error) {
	ids, err := t.Where(stateCol, table.Text(constants.StateCompleted)).Select(idCol)
	if err != nil {
		return nil, err
	}
	return ids.Relabel(reports.ColRescueID)
}
