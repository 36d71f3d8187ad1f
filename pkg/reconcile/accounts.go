package reconcile

import (
	"context"

	"github.com/lastmilefood/rescuesync/internal/config"
	"github.com/lastmilefood/rescuesync/pkg/constants"
	"github.com/lastmilefood/rescuesync/pkg/errors"
	"github.com/lastmilefood/rescuesync/pkg/normalize"
	"github.com/lastmilefood/rescuesync/pkg/reports"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

// AccountBatchColumns is the column order of account insert batches.
var AccountBatchColumns = []string{
	"Name", "Phone", "ShippingCity", "ShippingState", "ShippingPostalCode",
	"ShippingStreet", "ParentId", "RecordTypeId",
}

// AccountPlan is the two-batch insert plan for one account record type.
type AccountPlan struct {
	RecordTypeID string

	// First holds self-parented accounts, accounts whose parent is already
	// in the CRM, and synthesized parents. Columns are AccountBatchColumns.
	First *table.Table

	// Deferred holds children of synthesized parents. Their ParentId is
	// Null and the extra leading Parent Name column names the parent.
	Deferred *table.Table

	// Skipped counts admin rows dropped for having no name.
	Skipped int
}

// PlanAccounts computes the admin accounts of one record type that are not
// in the CRM and partitions them into two ordered batches. Every new row
// lands in exactly one place: First (self-parented or parent already in the
// CRM) or Deferred (parent synthesized into First).
func PlanAccounts(crm, admin *table.Table, recordTypeID string) (*AccountPlan, error) {
	if err := crm.Require("Id", "Name", "RecordTypeId"); err != nil {
		return nil, err
	}
	if err := admin.Require(reports.AccountColumns...); err != nil {
		return nil, err
	}

	existing, err := accountLookup(crm, recordTypeID)
	if err != nil {
		return nil, err
	}
	adm, err := admin.Select(reports.AccountColumns...)
	if err != nil {
		return nil, err
	}
	if err := reports.CoerceFields(adm, reports.AccountFieldSpecs); err != nil {
		return nil, err
	}
	if err := normalize.Columns(adm, reports.AccountParentName, reports.AccountName); err != nil {
		return nil, err
	}

	plan := &AccountPlan{RecordTypeID: recordTypeID}
	cols := append([]string{reports.AccountParentName}, AccountBatchColumns...)
	first := table.New(cols...).Named(constants.ObjectAccount)
	deferred := table.New(cols...).Named(constants.ObjectAccount)

	var fresh []table.Row
	inFirst := map[string]bool{}
	for i := 0; i < adm.Len(); i++ {
		row := adm.Row(i)
		name := row.Str(reports.AccountName)
		if name == "" {
			plan.Skipped++
			continue
		}
		if _, ok := existing[name]; ok {
			continue
		}
		fresh = append(fresh, row)
		if parent := row.Str(reports.AccountParentName); parent == "" || parent == name {
			inFirst[name] = true
		} else if _, ok := existing[parent]; ok {
			inFirst[name] = true
		}
	}

	rt := table.Text(recordTypeID)
	for _, row := range fresh {
		name := row.Str(reports.AccountName)
		parent := row.Str(reports.AccountParentName)
		rec := accountRecord(row, rt)

		switch id, known := existing[parent]; {
		case parent == "" || parent == name:
			first.AppendRecord(rec)
		case known:
			rec["ParentId"] = table.Text(id)
			first.AppendRecord(rec)
		default:
			if !inFirst[parent] {
				first.AppendRecord(map[string]table.Value{
					reports.AccountParentName: table.Text(parent),
					"Name":                    table.Text(parent),
					"RecordTypeId":            rt,
				})
			}
			deferred.AppendRecord(rec)
		}
	}

	plan.First = first.Distinct().Drop(reports.AccountParentName)
	plan.Deferred = deferred
	return plan, nil
}

// ResolveParents fills ParentId of every deferred row from a refreshed CRM
// snapshot taken after the first batch was inserted. A parent that is still
// missing violates the plan and is reported as a LookupError.
func ResolveParents(plan *AccountPlan, refreshed *table.Table) (*table.Table, error) {
	if err := refreshed.Require("Id", "Name", "RecordTypeId"); err != nil {
		return nil, err
	}
	lookup, err := accountLookup(refreshed, plan.RecordTypeID)
	if err != nil {
		return nil, err
	}

	ids := make([]table.Value, plan.Deferred.Len())
	for i := range ids {
		parent := plan.Deferred.Get(i, reports.AccountParentName).String()
		id, ok := lookup[parent]
		if !ok {
			return nil, &errors.LookupError{Entity: "parent account", Key: parent}
		}
		ids[i] = table.Text(id)
	}
	out := plan.Deferred.Clone()
	if err := out.SetColumn("ParentId", ids); err != nil {
		return nil, err
	}
	return out.Select(AccountBatchColumns...)
}

// Accounts inserts the admin accounts of kind missing from crm: batch 1,
// then a fresh account query, then batch 2 with resolved parents.
func (r *Reconciler) Accounts(ctx context.Context, crm, admin *table.Table, kind config.AccountKind) (*Outcome, error) {
	rt, err := r.settings.RecordTypeID(kind)
	if err != nil {
		return nil, err
	}
	log := r.logger().With().Str("kind", string(kind)).Logger()

	for _, name := range duplicateNames(crm, "RecordTypeId", rt) {
		log.Warn().Str("name", name).Msg("Account name is not unique in the CRM")
	}

	plan, err := PlanAccounts(crm, admin, rt)
	if err != nil {
		return nil, err
	}
	if plan.Skipped > 0 {
		log.Warn().Int("rows", plan.Skipped).Msg("Skipped admin accounts without a name")
	}
	log.Info().
		Int("first", plan.First.Len()).
		Int("deferred", plan.Deferred.Len()).
		Msg("Planned new accounts")

	out := &Outcome{Object: constants.ObjectAccount}
	if err := r.insert(ctx, out, plan.First, constants.ObjectAccount); err != nil {
		return out, err
	}
	if plan.Deferred.Len() == 0 {
		return out, nil
	}
	if r.options.dryRun {
		out.Deferred = plan.Deferred.Len()
		return out, nil
	}

	refreshed, err := r.query(ctx, QueryAccounts)
	if err != nil {
		return out, err
	}
	second, err := ResolveParents(plan, refreshed)
	if err != nil {
		return out, err
	}
	err = r.insert(ctx, out, second, constants.ObjectAccount)
	return out, err
}

// accountLookup maps normalized names of accounts with the record type to
// their Id. Empty names are dropped; the first Id wins on duplicates.
func accountLookup(crm *table.Table, recordTypeID string) (map[string]string, error) {
	sel, err := crm.Where("RecordTypeId", table.Text(recordTypeID)).Select("Id", "Name")
	if err != nil {
		return nil, err
	}
	return nameLookup(sel, "Name")
}

// nameLookup maps the normalized nameCol of t to its Id column.
func nameLookup(t *table.Table, nameCol string) (map[string]string, error) {
	t = t.Clone()
	if err := normalize.Column(t, nameCol); err != nil {
		return nil, err
	}
	out := make(map[string]string, t.Len())
	for i := 0; i < t.Len(); i++ {
		name := t.Get(i, nameCol).String()
		if name == "" {
			continue
		}
		if _, dup := out[name]; !dup {
			out[name] = t.Get(i, "Id").String()
		}
	}
	return out, nil
}

// accountRecord maps an admin account row to batch columns.
func accountRecord(row table.Row, rt table.Value) map[string]table.Value {
	return map[string]table.Value{
		reports.AccountParentName: row.Get(reports.AccountParentName),
		"Name":                    row.Get(reports.AccountName),
		"Phone":                   row.Get(reports.AccountPhone),
		"ShippingCity":            row.Get(reports.AccountCity),
		"ShippingState":           row.Get(reports.AccountState),
		"ShippingPostalCode":      row.Get(reports.AccountPostalCode),
		"ShippingStreet":          street(row.Get(reports.AccountLine1), row.Get(reports.AccountLine2)),
		"ParentId":                table.Null(),
		"RecordTypeId":            rt,
	}
}

// street joins two address lines. A Null second line leaves the first alone.
func street(line1, line2 table.Value) table.Value {
	if line2.IsNull() || line1.IsNull() {
		return line1
	}
	return table.Text(line1.String() + " " + line2.String())
}

// duplicateNames lists normalized names that occur more than once among rows
// where filterCol equals filterVal.
func duplicateNames(t *table.Table, filterCol, filterVal string) []string {
	if !t.Has(filterCol) || !t.Has("Name") {
		return nil
	}
	sub := t.Where(filterCol, table.Text(filterVal)).Clone()
	if err := normalize.Column(sub, "Name"); err != nil {
		return nil
	}
	groups, err := sub.GroupBy("Name")
	if err != nil {
		return nil
	}
	var out []string
	for _, g := range groups {
		if g.Rows.Len() > 1 && g.Key.String() != "" {
			out = append(out, g.Key.String())
		}
	}
	return out
}
