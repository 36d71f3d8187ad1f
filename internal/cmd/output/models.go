package output

import (
	"strconv"

	"github.com/lastmilefood/rescuesync/internal/auth"
	"github.com/lastmilefood/rescuesync/pkg/sync"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

// TableData converts a table to Data, rendering nulls as empty cells.
func TableData(t *table.Table) *Data {
	d := &Data{Title: t.Name(), Headers: t.Columns()}
	for i := 0; i < t.Len(); i++ {
		vals := t.Values(i)
		row := make([]string, len(vals))
		for j, v := range vals {
			row[j] = v.String()
		}
		d.Rows = append(d.Rows, row)
	}
	return d
}

// Records converts a table to one map per row for JSON and YAML output.
func Records(t *table.Table) []map[string]string {
	cols := t.Columns()
	out := make([]map[string]string, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		rec := make(map[string]string, len(cols))
		for j, v := range t.Values(i) {
			rec[cols[j]] = v.String()
		}
		out = append(out, rec)
	}
	return out
}

// StageSummary is the per-stage view of a run.
type StageSummary struct {
	Stage      string `json:"stage" yaml:"stage"`
	Object     string `json:"object" yaml:"object"`
	Planned    int    `json:"planned" yaml:"planned"`
	Written    int    `json:"written" yaml:"written"`
	Failed     int    `json:"failed" yaml:"failed"`
	Deferred   int    `json:"deferred" yaml:"deferred"`
	Unresolved int    `json:"unresolved" yaml:"unresolved"`
}

// RunSummary is the structured view of a run.
type RunSummary struct {
	RunID    string         `json:"run_id" yaml:"run_id"`
	DryRun   bool           `json:"dry_run" yaml:"dry_run"`
	Duration string         `json:"duration" yaml:"duration"`
	Summary  string         `json:"summary" yaml:"summary"`
	Stages   []StageSummary `json:"stages" yaml:"stages"`
}

// Run builds the structured summary of a run result.
func Run(res *sync.Result) RunSummary {
	s := RunSummary{
		RunID:    res.RunID,
		DryRun:   res.DryRun,
		Duration: res.Duration().String(),
		Summary:  res.Summary(),
	}
	for _, st := range res.Stages {
		o := st.Outcome
		s.Stages = append(s.Stages, StageSummary{
			Stage:      string(st.Stage),
			Object:     o.Object,
			Planned:    o.Planned,
			Written:    o.Succeeded(),
			Failed:     o.Failed(),
			Deferred:   o.Deferred,
			Unresolved: o.Unresolved.Len(),
		})
	}
	return s
}

// RunData converts a run result to a per-stage table.
func RunData(res *sync.Result) Data {
	d := Data{
		Title:           "Run " + res.RunID,
		Headers:         []string{"Stage", "Object", "Planned", "Written", "Failed", "Deferred", "Unresolved"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight},
	}
	for _, st := range Run(res).Stages {
		d.Rows = append(d.Rows, []string{
			st.Stage,
			st.Object,
			strconv.Itoa(st.Planned),
			strconv.Itoa(st.Written),
			strconv.Itoa(st.Failed),
			strconv.Itoa(st.Deferred),
			strconv.Itoa(st.Unresolved),
		})
	}
	return d
}

// AuthData converts a credential check to a key-value table.
func AuthData(status *auth.Status) Data {
	method := string(status.Method)
	if method == "" {
		method = "-"
	}
	return Data{
		Headers: []string{"State", "Method", "Details"},
		Rows:    [][]string{{status.State.String(), method, status.Summary}},
	}
}
