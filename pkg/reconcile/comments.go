package reconcile

import (
	"context"

	"github.com/lastmilefood/rescuesync/pkg/bulk"
	"github.com/lastmilefood/rescuesync/pkg/constants"
	"github.com/lastmilefood/rescuesync/pkg/reports"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

// PlanComments returns an update batch (Id, Comments__c) that copies admin
// comments onto CRM rescues with no comment yet. Existing CRM comments are
// never overwritten; the first admin comment per Rescue ID wins.
func PlanComments(crm, comments *table.Table) (*table.Table, error) {
	if err := crm.Require("Id", "Rescue_Id__c", "Comments__c"); err != nil {
		return nil, err
	}
	if err := comments.Require(reports.ColRescueID, reports.ColComments); err != nil {
		return nil, err
	}

	byRescue := map[string]table.Value{}
	for i := 0; i < comments.Len(); i++ {
		c := comments.Get(i, reports.ColComments)
		if c.IsNull() {
			continue
		}
		key := comments.Get(i, reports.ColRescueID).Key()
		if _, ok := byRescue[key]; !ok {
			byRescue[key] = c
		}
	}

	out := table.New("Id", "Comments__c").Named(constants.ObjectFoodRescue)
	seen := map[string]bool{}
	for i := 0; i < crm.Len(); i++ {
		row := crm.Row(i)
		if !row.Get("Comments__c").IsNull() {
			continue
		}
		c, ok := byRescue[row.Get("Rescue_Id__c").Key()]
		if !ok || seen[row.Str("Id")] {
			continue
		}
		seen[row.Str("Id")] = true
		_ = out.AppendRow(row.Get("Id"), c)
	}
	return out, nil
}

// Comments updates CRM rescues that have no comment with the admin comment
// for the same Rescue ID.
func (r *Reconciler) Comments(ctx context.Context, comments *table.Table) (*Outcome, error) {
	crm, err := r.query(ctx, QueryRescueComments)
	if err != nil {
		return nil, err
	}
	batch, err := PlanComments(crm, comments)
	if err != nil {
		return nil, err
	}
	r.logger().Info().Int("rows", batch.Len()).Msg("Planned comment updates")

	out := &Outcome{Object: constants.ObjectFoodRescue}
	err = r.submit(ctx, out, bulk.OpUpdate, batch, constants.ObjectFoodRescue)
	return out, err
}
