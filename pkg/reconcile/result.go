package reconcile

import (
	"fmt"

	"github.com/lastmilefood/rescuesync/pkg/bulk"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

// Outcome is the result of one reconciler stage.
type Outcome struct {
	// Object is the CRM object written.
	Object string

	// Batches are the planned batches in submission order, including empty
	// ones.
	Batches []*table.Table

	// Planned counts rows across all batches.
	Planned int

	// Deferred counts rows that could not be planned yet. Only a dry account
	// run defers rows: their parents do not exist until batch 1 is inserted.
	Deferred int

	// Unresolved lists rows uploaded (or dropped) with an unresolved link.
	Unresolved *table.Table

	// Jobs are the completed ingest jobs.
	Jobs []*bulk.JobResult
}

// Processed sums processed records over all jobs.
func (o *Outcome) Processed() int {
	n := 0
	for _, j := range o.Jobs {
		n += j.Processed
	}
	return n
}

// Failed sums failed records over all jobs.
func (o *Outcome) Failed() int {
	n := 0
	for _, j := range o.Jobs {
		n += j.Failed
	}
	return n
}

// Succeeded is Processed minus Failed.
func (o *Outcome) Succeeded() int {
	return o.Processed() - o.Failed()
}

// String returns a one-line summary.
func (o *Outcome) String() string {
	s := fmt.Sprintf("%s: %d planned, %d written, %d failed", o.Object, o.Planned, o.Succeeded(), o.Failed())
	if o.Deferred > 0 {
		s += fmt.Sprintf(", %d deferred", o.Deferred)
	}
	if o.Unresolved != nil && o.Unresolved.Len() > 0 {
		s += fmt.Sprintf(", %d with unresolved links", o.Unresolved.Len())
	}
	return s
}
