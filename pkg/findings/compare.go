package findings

import (
	"github.com/lastmilefood/rescuesync/pkg/errors"
	"github.com/lastmilefood/rescuesync/pkg/normalize"
	"github.com/lastmilefood/rescuesync/pkg/reports"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

// QueryRescueDetails fetches the CRM side of Compare and RescueDiscrepancies.
// Links are read through their relationship names so they compare against
// the names in the admin export.
const QueryRescueDetails = "SELECT Id, Rescue_Id__c, Food_Type__c, Day_of_Pickup__c, State__c, Weight__c, " +
	"Rescue_Detail_URL__c, Food_Donor_Account_Name__r.Name, Agency_Name__r.Name, Volunteer_Name__r.Name " +
	"FROM Food_Rescue__c"

// Field is a tracked rescue field and its column on each side.
type Field struct {
	Name  string
	Admin string
	CRM   string
	date  bool
}

// TrackedFields are the fields Compare checks, in output order.
var TrackedFields = []Field{
	{Name: "Date", Admin: reports.ColPickupDay, CRM: "Day_of_Pickup__c", date: true},
	{Name: "Donor", Admin: reports.ColDonorLocation, CRM: "Food_Donor_Account_Name__r.Name"},
	{Name: "Partner", Admin: reports.ColRecipientLoc, CRM: "Agency_Name__r.Name"},
	{Name: "Volunteer", Admin: reports.ColVolunteerName, CRM: "Volunteer_Name__r.Name"},
	{Name: "State", Admin: reports.ColRescueState, CRM: "State__c"},
	{Name: "Weight", Admin: reports.ColWeight, CRM: "Weight__c"},
	{Name: "Detail URL", Admin: reports.ColDetailURL, CRM: "Rescue_Detail_URL__c"},
}

// JoinMode selects which rescues Compare considers.
type JoinMode int

// Join modes.
const (
	// JoinInner compares rescues present on both sides.
	JoinInner JoinMode = iota
	// JoinOuter also reports rescues present on one side only.
	JoinOuter
)

// Layout selects how differences are laid out.
type Layout int

// Layouts.
const (
	// LayoutInterleaved gives one row per rescue with an Admin and a
	// Salesforce column per differing field.
	LayoutInterleaved Layout = iota
	// LayoutStacked gives two rows per rescue, one per source.
	LayoutStacked
)

// Sources named in the stacked layout and in interleaved column labels.
const (
	SourceAdmin      = "Admin"
	SourceSalesforce = "Salesforce"
)

// CompareOptions configures Compare.
type CompareOptions struct {
	Join   JoinMode
	Layout Layout
}

// compareKey identifies a rescue on both sides. Food Type is part of the key
// because one Rescue ID can carry several food types.
var compareKey = []string{reports.ColRescueID, reports.ColFoodType}

// Compare joins admin and CRM rescues and reports the rescues where any
// tracked field differs. Null and "" compare equal, dates compare as
// 2006-01-02 and numbers canonically, so 12 and 12.0 match. Cells of fields
// that agree on a row are left empty. No differences gives an empty table.
func Compare(admin, crm *table.Table, opts CompareOptions) (*table.Table, error) {
	adminCols := append([]string{}, compareKey...)
	crmCols := []string{"Rescue_Id__c", "Food_Type__c"}
	for _, f := range TrackedFields {
		adminCols = append(adminCols, f.Admin)
		crmCols = append(crmCols, f.CRM)
	}
	a, err := admin.Select(adminCols...)
	if err != nil {
		return nil, err
	}
	c, err := crm.Select(crmCols...)
	if err != nil {
		return nil, err
	}

	aLabels := append([]string{}, compareKey...)
	cLabels := append([]string{}, compareKey...)
	for _, f := range TrackedFields {
		aLabels = append(aLabels, label(f, SourceAdmin))
		cLabels = append(cLabels, label(f, SourceSalesforce))
	}
	if a, err = a.Relabel(aLabels...); err != nil {
		return nil, err
	}
	if c, err = c.Relabel(cLabels...); err != nil {
		return nil, err
	}

	kind := table.JoinInner
	switch opts.Join {
	case JoinInner:
	case JoinOuter:
		kind = table.JoinOuter
	default:
		return nil, &errors.ValidationError{Field: "join", Value: opts.Join, Message: "must be inner or outer"}
	}
	joined, err := table.Join(kind, a.Distinct(), c.Distinct(), compareKey...)
	if err != nil {
		return nil, err
	}
	if joined, err = joined.SortBy(reports.ColRescueID); err != nil {
		return nil, err
	}

	type diffRow struct {
		row   table.Row
		diffs []bool
	}
	var rows []diffRow
	anyDiff := make([]bool, len(TrackedFields))
	for i := 0; i < joined.Len(); i++ {
		row := joined.Row(i)
		d := diffRow{row: row, diffs: make([]bool, len(TrackedFields))}
		found := false
		for fi, f := range TrackedFields {
			if canonical(f, row.Get(label(f, SourceAdmin))) != canonical(f, row.Get(label(f, SourceSalesforce))) {
				d.diffs[fi] = true
				anyDiff[fi] = true
				found = true
			}
		}
		if found {
			rows = append(rows, d)
		}
	}

	var fields []int
	for fi, differs := range anyDiff {
		if differs {
			fields = append(fields, fi)
		}
	}

	switch opts.Layout {
	case LayoutInterleaved:
		cols := append([]string{}, compareKey...)
		for _, fi := range fields {
			cols = append(cols, label(TrackedFields[fi], SourceAdmin), label(TrackedFields[fi], SourceSalesforce))
		}
		out := table.New(cols...).Named(ArtifactDifferences)
		for _, d := range rows {
			rec := keyRecord(d.row)
			for _, fi := range fields {
				if d.diffs[fi] {
					f := TrackedFields[fi]
					rec[label(f, SourceAdmin)] = display(f, d.row.Get(label(f, SourceAdmin)))
					rec[label(f, SourceSalesforce)] = display(f, d.row.Get(label(f, SourceSalesforce)))
				}
			}
			out.AppendRecord(rec)
		}
		return out, nil

	case LayoutStacked:
		cols := append(append([]string{}, compareKey...), "Source")
		for _, fi := range fields {
			cols = append(cols, TrackedFields[fi].Name)
		}
		out := table.New(cols...).Named(ArtifactDifferences)
		for _, d := range rows {
			for _, src := range []string{SourceAdmin, SourceSalesforce} {
				rec := keyRecord(d.row)
				rec["Source"] = table.Text(src)
				for _, fi := range fields {
					if d.diffs[fi] {
						f := TrackedFields[fi]
						rec[f.Name] = display(f, d.row.Get(label(f, src)))
					}
				}
				out.AppendRecord(rec)
			}
		}
		return out, nil

	default:
		return nil, &errors.ValidationError{Field: "layout", Value: opts.Layout, Message: "must be interleaved or stacked"}
	}
}

func label(f Field, source string) string {
	return f.Name + " (" + source + ")"
}

func keyRecord(row table.Row) map[string]table.Value {
	rec := make(map[string]table.Value, len(compareKey))
	for _, k := range compareKey {
		rec[k] = row.Get(k)
	}
	return rec
}

// display renders a cell for output with dates in 2006-01-02 form.
func display(f Field, v table.Value) table.Value {
	if f.date {
		if d, ok := table.ParseDate(v); ok {
			return d
		}
	}
	return v
}

// canonical is the comparison form of a cell.
func canonical(f Field, v table.Value) string {
	v = display(f, v)
	if v.IsNull() {
		return table.Text("").Key()
	}
	return normalize.Value(v).Key()
}
