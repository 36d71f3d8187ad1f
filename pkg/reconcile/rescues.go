package reconcile

import (
	"context"

	"github.com/lastmilefood/rescuesync/internal/config"
	"github.com/lastmilefood/rescuesync/pkg/constants"
	"github.com/lastmilefood/rescuesync/pkg/normalize"
	"github.com/lastmilefood/rescuesync/pkg/reports"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

// RescueBatchColumns is the column order of rescue insert batches.
var RescueBatchColumns = []string{
	"Rescue_Id__c", "Day_of_Pickup__c", "State__c", "Description__c",
	"Food_Type__c", "Weight__c", "Rescue_Detail_URL__c",
	"Food_Donor_Account_Name__c", "Agency_Name__c", "Volunteer_Name__c",
}

// RescueKey is the composite key deciding whether a rescue is already in
// the CRM. Rescue ID alone is not unique in the admin tool.
var RescueKey = []string{reports.ColRescueID, reports.ColFoodType, reports.ColWeight}

// Link names a rescue foreign key.
type Link string

// Rescue links.
const (
	LinkDonor     Link = "donor"
	LinkPartner   Link = "partner"
	LinkVolunteer Link = "volunteer"
)

// UnresolvedColumns is the shape of RescuePlan.Unresolved.
var UnresolvedColumns = []string{reports.ColRescueID, "Link", "Name"}

// RescuePlan is the insert batch for new rescues.
type RescuePlan struct {
	Batch *table.Table

	// Unresolved has one row per link whose name matched no CRM record.
	// A rescue without a volunteer is not unresolved.
	Unresolved *table.Table

	// Dropped counts rows removed under strict linking.
	Dropped int
}

// RescueLinks holds the ids that scope the rescue lookups.
type RescueLinks struct {
	DonorRecordTypeID   string
	PartnerRecordTypeID string
	VolunteersAccountID string
	// Strict drops rescues with an unresolved donor or partner.
	Strict bool
}

// NewRescues returns the admin rescues whose (Rescue ID, Food Type, Weight)
// matches no CRM rescue. Weights compare numerically, so 12 and 12.0 match.
func NewRescues(admin, crm *table.Table) (*table.Table, error) {
	if err := admin.Require(RescueKey...); err != nil {
		return nil, err
	}
	keys, err := crm.Select("Rescue_Id__c", "Food_Type__c", "Weight__c")
	if err != nil {
		return nil, err
	}
	keys, err = keys.Distinct().Relabel(RescueKey...)
	if err != nil {
		return nil, err
	}
	return table.AntiJoin(admin, keys, RescueKey...)
}

// PlanRescues maps completed and canceled admin rescues to CRM rows,
// resolving donor, partner and volunteer names to Ids.
func PlanRescues(rescues, accounts, contacts *table.Table, links RescueLinks) (*RescuePlan, error) {
	if err := reports.Validate(rescues, reports.Rescues); err != nil {
		return nil, err
	}
	if err := accounts.Require("Id", "Name", "RecordTypeId"); err != nil {
		return nil, err
	}
	if err := contacts.Require("Id", "Name", "AccountId"); err != nil {
		return nil, err
	}

	done := rescues.Drop(reports.ColDonorName, reports.ColRecipientName).Filter(func(r table.Row) bool {
		s := r.Str(reports.ColRescueState)
		return s == constants.StateCompleted || s == constants.StateCanceled
	})
	sel, err := done.Select(
		reports.ColRescueID, reports.ColPickupDay, reports.ColRescueState, reports.ColDescription,
		reports.ColFoodType, reports.ColWeight, reports.ColDetailURL,
		reports.ColDonorLocation, reports.ColRecipientLoc, reports.ColVolunteerName,
	)
	if err != nil {
		return nil, err
	}
	if err := reports.Coerce(sel, reports.Rescues); err != nil {
		return nil, err
	}
	if err := normalize.Columns(sel, reports.ColDonorLocation, reports.ColRecipientLoc, reports.ColVolunteerName); err != nil {
		return nil, err
	}

	donors, err := accountLookup(accounts, links.DonorRecordTypeID)
	if err != nil {
		return nil, err
	}
	partners, err := accountLookup(accounts, links.PartnerRecordTypeID)
	if err != nil {
		return nil, err
	}
	vols, err := contacts.Where("AccountId", table.Text(links.VolunteersAccountID)).Select("Id", "Name")
	if err != nil {
		return nil, err
	}
	volunteers, err := nameLookup(vols, "Name")
	if err != nil {
		return nil, err
	}

	plan := &RescuePlan{
		Batch:      table.New(RescueBatchColumns...).Named(constants.ObjectFoodRescue),
		Unresolved: table.New(UnresolvedColumns...),
	}
	for i := 0; i < sel.Len(); i++ {
		row := sel.Row(i)
		id := row.Get(reports.ColRescueID)

		resolve := func(lookup map[string]string, col string, link Link, optional bool) (table.Value, bool) {
			name := row.Str(col)
			if v, ok := lookup[name]; ok {
				return table.Text(v), true
			}
			if optional && name == "" {
				return table.Null(), true
			}
			plan.Unresolved.AppendRecord(map[string]table.Value{
				reports.ColRescueID: id,
				"Link":              table.Text(string(link)),
				"Name":              table.Text(name),
			})
			return table.Null(), false
		}
		donor, okDonor := resolve(donors, reports.ColDonorLocation, LinkDonor, false)
		partner, okPartner := resolve(partners, reports.ColRecipientLoc, LinkPartner, false)
		volunteer, _ := resolve(volunteers, reports.ColVolunteerName, LinkVolunteer, true)

		if links.Strict && !(okDonor && okPartner) {
			plan.Dropped++
			continue
		}
		_ = plan.Batch.AppendRow(
			id,
			row.Get(reports.ColPickupDay),
			row.Get(reports.ColRescueState),
			row.Get(reports.ColDescription),
			row.Get(reports.ColFoodType),
			row.Get(reports.ColWeight),
			row.Get(reports.ColDetailURL),
			donor, partner, volunteer,
		)
	}
	return plan, nil
}

// Rescues inserts the completed and canceled admin rescues not yet in the
// CRM. Accounts and contacts are queried fresh so that records inserted by
// earlier stages resolve.
func (r *Reconciler) Rescues(ctx context.Context, admin *table.Table) (*Outcome, error) {
	links, err := r.rescueLinks()
	if err != nil {
		return nil, err
	}

	existing, err := r.query(ctx, QueryRescueKeys)
	if err != nil {
		return nil, err
	}
	fresh, err := NewRescues(admin, existing)
	if err != nil {
		return nil, err
	}
	accounts, err := r.query(ctx, QueryAccounts)
	if err != nil {
		return nil, err
	}
	contacts, err := r.query(ctx, QueryContacts)
	if err != nil {
		return nil, err
	}

	plan, err := PlanRescues(fresh, accounts, contacts, links)
	if err != nil {
		return nil, err
	}
	log := r.logger()
	for i := 0; i < plan.Unresolved.Len(); i++ {
		row := plan.Unresolved.Row(i)
		log.Warn().
			Str("rescue_id", row.Str(reports.ColRescueID)).
			Str("link", row.Str("Link")).
			Str("name", row.Str("Name")).
			Msg("Rescue link did not resolve")
	}
	if plan.Dropped > 0 {
		log.Warn().Int("rows", plan.Dropped).Msg("Dropped rescues with unresolved donor or partner")
	}
	log.Info().Int("new", fresh.Len()).Int("rows", plan.Batch.Len()).Msg("Planned new rescues")

	out := &Outcome{Object: constants.ObjectFoodRescue, Unresolved: plan.Unresolved}
	err = r.insert(ctx, out, plan.Batch, constants.ObjectFoodRescue)
	return out, err
}

func (r *Reconciler) rescueLinks() (RescueLinks, error) {
	donor, err := r.settings.RecordTypeID(config.Donor)
	if err != nil {
		return RescueLinks{}, err
	}
	partner, err := r.settings.RecordTypeID(config.Partner)
	if err != nil {
		return RescueLinks{}, err
	}
	vols, err := r.settings.VolunteersAccount()
	if err != nil {
		return RescueLinks{}, err
	}
	return RescueLinks{
		DonorRecordTypeID:   donor,
		PartnerRecordTypeID: partner,
		VolunteersAccountID: vols,
		Strict:              r.options.strictLinks,
	}, nil
}
