package sync

import (
	"context"

	"github.com/agentstation/utc"

	"github.com/lastmilefood/rescuesync/internal/config"
	"github.com/lastmilefood/rescuesync/pkg/errors"
	"github.com/lastmilefood/rescuesync/pkg/logging"
	"github.com/lastmilefood/rescuesync/pkg/reconcile"
	"github.com/lastmilefood/rescuesync/pkg/reports"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

// Stage names one step of a run.
type Stage string

// Stages in execution order.
const (
	StageSnapshot   Stage = "snapshot"
	StageDonors     Stage = "donors"
	StagePartners   Stage = "partners"
	StageVolunteers Stage = "volunteers"
	StageRescues    Stage = "rescues"
	StageComments   Stage = "comments"
)

// Inputs are the admin-tool exports for a run, as read from disk. A nil
// export skips its stage.
type Inputs struct {
	Donors     *table.Table
	Partners   *table.Table
	Volunteers *table.Table
	Rescues    *table.Table
	Comments   *table.Table
}

// Empty reports whether no export was supplied.
func (in Inputs) Empty() bool {
	return in.Donors == nil && in.Partners == nil && in.Volunteers == nil &&
		in.Rescues == nil && in.Comments == nil
}

// ConfigKeys lists the settings the supplied exports need. Rescues resolve
// donors, partners and volunteers, so they need all three ids.
func (in Inputs) ConfigKeys() []string {
	need := map[string]bool{}
	if in.Donors != nil || in.Rescues != nil {
		need[config.KeyDonorRecordType] = true
	}
	if in.Partners != nil || in.Rescues != nil {
		need[config.KeyPartnerRecordType] = true
	}
	if in.Volunteers != nil || in.Rescues != nil {
		need[config.KeyVolunteersAccount] = true
	}
	keys := []string{config.KeyURI}
	for _, k := range []string{config.KeyDonorRecordType, config.KeyPartnerRecordType, config.KeyVolunteersAccount} {
		if need[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

// Run executes the stages that have input: donors, partners, volunteers,
// rescues, then comments. The first fatal error stops the run and is
// returned as a StageError together with the partial result.
func Run(ctx context.Context, store reconcile.Store, settings *config.Settings, in Inputs, opts ...Option) (*Result, error) {
	o := Defaults().Apply(opts...)
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if in.Empty() {
		return nil, &errors.ValidationError{Field: "inputs", Message: "no admin export supplied"}
	}
	if settings == nil {
		return nil, &errors.ValidationError{Field: "settings", Message: "settings are required"}
	}
	if err := settings.Require(in.ConfigKeys()...); err != nil {
		return nil, err
	}
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	ctx = logging.WithLogger(ctx, &o.Logger)
	ctx = logging.WithRunID(ctx, o.RunID)

	res := &Result{RunID: o.RunID, DryRun: o.DryRun, StartedAt: utc.Now()}
	defer func() { res.FinishedAt = utc.Now() }()

	r := &runner{store: store, settings: settings, opts: o, res: res}
	if err := r.run(ctx, in); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Run stopped")
		return res, err
	}
	logging.Ctx(ctx).Info().Str("summary", res.Summary()).Msg("Run complete")
	return res, nil
}

type runner struct {
	store    reconcile.Store
	settings *config.Settings
	opts     *Options
	res      *Result
}

func (r *runner) run(ctx context.Context, in Inputs) error {
	var accounts, contacts *table.Table
	if in.Donors != nil || in.Partners != nil {
		t, err := r.store.Query(logging.WithStage(ctx, string(StageSnapshot)), reconcile.QueryAccounts)
		if err != nil {
			return errors.WrapStage(string(StageSnapshot), err)
		}
		accounts = t
	}
	if in.Volunteers != nil {
		t, err := r.store.Query(logging.WithStage(ctx, string(StageSnapshot)), reconcile.QueryContacts)
		if err != nil {
			return errors.WrapStage(string(StageSnapshot), err)
		}
		contacts = t
	}

	if in.Donors != nil {
		err := r.stage(ctx, StageDonors, func(ctx context.Context, rec *reconcile.Reconciler) (*reconcile.Outcome, error) {
			admin, err := reports.ActiveAccounts(in.Donors, reports.Donors)
			if err != nil {
				return nil, err
			}
			return rec.Accounts(ctx, accounts, admin, config.Donor)
		})
		if err != nil {
			return err
		}
	}
	if in.Partners != nil {
		err := r.stage(ctx, StagePartners, func(ctx context.Context, rec *reconcile.Reconciler) (*reconcile.Outcome, error) {
			admin, err := reports.ActiveAccounts(in.Partners, reports.Partners)
			if err != nil {
				return nil, err
			}
			return rec.Accounts(ctx, accounts, admin, config.Partner)
		})
		if err != nil {
			return err
		}
	}
	if in.Volunteers != nil {
		err := r.stage(ctx, StageVolunteers, func(ctx context.Context, rec *reconcile.Reconciler) (*reconcile.Outcome, error) {
			admin, err := reports.VolunteerRows(in.Volunteers)
			if err != nil {
				return nil, err
			}
			return rec.Volunteers(ctx, contacts, admin)
		})
		if err != nil {
			return err
		}
	}
	if in.Rescues != nil {
		err := r.stage(ctx, StageRescues, func(ctx context.Context, rec *reconcile.Reconciler) (*reconcile.Outcome, error) {
			if err := reports.Validate(in.Rescues, reports.Rescues); err != nil {
				return nil, err
			}
			return rec.Rescues(ctx, in.Rescues)
		})
		if err != nil {
			return err
		}
	}
	if in.Comments != nil {
		err := r.stage(ctx, StageComments, func(ctx context.Context, rec *reconcile.Reconciler) (*reconcile.Outcome, error) {
			rows, err := reports.CommentRows(in.Comments)
			if err != nil {
				return nil, err
			}
			return rec.Comments(ctx, rows)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// stage runs fn with a reconciler whose logger carries the stage name and
// records its outcome, even a partial one.
func (r *runner) stage(ctx context.Context, stage Stage, fn func(context.Context, *reconcile.Reconciler) (*reconcile.Outcome, error)) error {
	ctx = logging.WithStage(ctx, string(stage))
	log := logging.Ctx(ctx)

	opts := []reconcile.Option{
		reconcile.WithDryRun(r.opts.DryRun),
		reconcile.WithLogger(*log),
	}
	if r.opts.StrictLinks {
		opts = append(opts, reconcile.WithStrictLinks())
	}
	rec, err := reconcile.New(r.store, r.settings, opts...)
	if err != nil {
		return errors.WrapStage(string(stage), err)
	}

	log.Info().Msg("Stage started")
	out, err := fn(ctx, rec)
	if out != nil {
		r.res.Stages = append(r.res.Stages, &StageResult{Stage: stage, Outcome: out})
	}
	if err != nil {
		return errors.WrapStage(string(stage), err)
	}
	log.Info().Str("summary", out.String()).Msg("Stage complete")
	return nil
}
