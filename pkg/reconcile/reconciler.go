// Package reconcile computes the admin-tool records missing from the CRM and
// submits them through a Store.
//
// Each reconciler is split into a pure planning function (PlanAccounts,
// PlanRescues, PlanVolunteers, PlanComments) that works on tables only, and
// a Reconciler method that fetches snapshots, plans, and submits ingest jobs.
package reconcile

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lastmilefood/rescuesync/internal/config"
	"github.com/lastmilefood/rescuesync/pkg/bulk"
	"github.com/lastmilefood/rescuesync/pkg/errors"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

// CRM snapshot queries.
const (
	QueryAccounts       = "SELECT Id, Name, RecordTypeId FROM Account"
	QueryContacts       = "SELECT Id, Name, AccountId FROM Contact"
	QueryRescueKeys     = "SELECT Id, Rescue_Id__c, Food_Type__c, Weight__c FROM Food_Rescue__c"
	QueryRescueComments = "SELECT Id, Rescue_Id__c, Comments__c FROM Food_Rescue__c"
)

// Store is the remote record store. *bulk.Client implements it.
type Store interface {
	Query(ctx context.Context, soql string) (*table.Table, error)
	Ingest(ctx context.Context, op bulk.Operation, data *table.Table, object string) (*bulk.JobResult, error)
}

// Reconciler submits reconciliation batches to a Store.
type Reconciler struct {
	store    Store
	settings *config.Settings
	options  *options
}

// New creates a Reconciler.
func New(store Store, settings *config.Settings, opts ...Option) (*Reconciler, error) {
	if store == nil {
		return nil, &errors.ValidationError{Field: "store", Message: "cannot be nil"}
	}
	if settings == nil {
		return nil, &errors.ValidationError{Field: "settings", Message: "cannot be nil"}
	}
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Reconciler{store: store, settings: settings, options: o}, nil
}

// DryRun reports whether the reconciler only plans.
func (r *Reconciler) DryRun() bool { return r.options.dryRun }

func (r *Reconciler) logger() *zerolog.Logger { return &r.options.logger }

// insert submits a batch unless it is empty or this is a dry run.
func (r *Reconciler) insert(ctx context.Context, out *Outcome, batch *table.Table, object string) error {
	return r.submit(ctx, out, bulk.OpInsert, batch, object)
}

func (r *Reconciler) submit(ctx context.Context, out *Outcome, op bulk.Operation, batch *table.Table, object string) error {
	out.Batches = append(out.Batches, batch)
	out.Planned += batch.Len()
	if batch.Len() == 0 {
		r.logger().Debug().Str("object", object).Msg("Nothing to submit")
		return nil
	}
	if r.options.dryRun {
		r.logger().Info().
			Str("object", object).
			Str("operation", string(op)).
			Int("rows", batch.Len()).
			Msg("Dry run, batch not submitted")
		return nil
	}
	res, err := r.store.Ingest(ctx, op, batch, object)
	if err != nil {
		return err
	}
	out.Jobs = append(out.Jobs, res)
	return nil
}

// query fetches a snapshot and names the resulting table after the query.
func (r *Reconciler) query(ctx context.Context, soql string) (*table.Table, error) {
	t, err := r.store.Query(ctx, soql)
	if err != nil {
		return nil, err
	}
	r.logger().Debug().Str("query", soql).Int("rows", t.Len()).Msg("Fetched snapshot")
	return t, nil
}
