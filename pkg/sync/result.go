package sync

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/utc"

	"github.com/lastmilefood/rescuesync/pkg/bulk"
	"github.com/lastmilefood/rescuesync/pkg/reconcile"
)

// Result represents the complete result of a run.
type Result struct {
	RunID  string
	DryRun bool

	// Stages in execution order. A stage without input is absent.
	Stages []*StageResult

	StartedAt  utc.Time
	FinishedAt utc.Time
}

// StageResult is the outcome of one stage.
type StageResult struct {
	Stage   Stage
	Outcome *reconcile.Outcome
}

// Stage returns the result for stage, or nil.
func (r *Result) Stage(stage Stage) *StageResult {
	for _, s := range r.Stages {
		if s.Stage == stage {
			return s
		}
	}
	return nil
}

// Jobs returns every ingest job of the run in submission order.
func (r *Result) Jobs() []*bulk.JobResult {
	var out []*bulk.JobResult
	for _, s := range r.Stages {
		out = append(out, s.Outcome.Jobs...)
	}
	return out
}

// Written counts records written successfully across all stages.
func (r *Result) Written() int {
	n := 0
	for _, s := range r.Stages {
		n += s.Outcome.Succeeded()
	}
	return n
}

// Failed counts rejected records across all stages.
func (r *Result) Failed() int {
	n := 0
	for _, s := range r.Stages {
		n += s.Outcome.Failed()
	}
	return n
}

// Planned counts planned rows across all stages.
func (r *Result) Planned() int {
	n := 0
	for _, s := range r.Stages {
		n += s.Outcome.Planned
	}
	return n
}

// HasFailures reports whether any record was rejected.
func (r *Result) HasFailures() bool {
	return r.Failed() > 0
}

// Duration is the wall time of the run.
func (r *Result) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Time.Sub(r.StartedAt.Time)
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	if len(r.Stages) == 0 {
		return "No stages ran"
	}
	summary := fmt.Sprintf("%d planned, %d written, %d failed across %d stages",
		r.Planned(), r.Written(), r.Failed(), len(r.Stages))
	if r.DryRun {
		summary += " (Dry run)"
	}
	return summary
}

// Summary returns a human-readable summary of the stage.
func (s *StageResult) Summary() string {
	return fmt.Sprintf("%s: %s", s.Stage, strings.TrimPrefix(s.Outcome.String(), s.Outcome.Object+": "))
}
