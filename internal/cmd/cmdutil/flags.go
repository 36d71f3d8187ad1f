// Package cmdutil provides shared flags and helpers for rescuesync commands.
package cmdutil

import (
	"github.com/spf13/cobra"

	"github.com/lastmilefood/rescuesync/internal/cmd/application"
	"github.com/lastmilefood/rescuesync/internal/cmd/output"
	"github.com/lastmilefood/rescuesync/pkg/errors"
	"github.com/lastmilefood/rescuesync/pkg/reports"
	"github.com/lastmilefood/rescuesync/pkg/sync"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

// ReportFlags holds the paths of admin-tool exports, keyed by kind.
type ReportFlags struct {
	Paths map[reports.Kind]*string
}

// AddReportFlags adds one --<kind> path flag per export kind.
func AddReportFlags(cmd *cobra.Command, kinds ...reports.Kind) *ReportFlags {
	flags := &ReportFlags{Paths: make(map[reports.Kind]*string, len(kinds))}
	for _, kind := range kinds {
		p := new(string)
		cmd.Flags().StringVar(p, string(kind), "", "path to the admin "+string(kind)+" export (CSV)")
		flags.Paths[kind] = p
	}
	return flags
}

// Path returns the path given for kind, or "".
func (f *ReportFlags) Path(kind reports.Kind) string {
	if p, ok := f.Paths[kind]; ok && p != nil {
		return *p
	}
	return ""
}

// Require fails unless a path was given for every kind.
func (f *ReportFlags) Require(kinds ...reports.Kind) error {
	for _, kind := range kinds {
		if f.Path(kind) == "" {
			return &errors.ValidationError{Field: "--" + string(kind), Message: "export path is required"}
		}
	}
	return nil
}

// Load reads and validates the export of kind. A kind without a path
// returns nil.
func (f *ReportFlags) Load(kind reports.Kind) (*table.Table, error) {
	path := f.Path(kind)
	if path == "" {
		return nil, nil
	}
	return reports.Load(path, kind)
}

// Inputs loads every given export into run inputs. Every file is read
// before any network call is made.
func (f *ReportFlags) Inputs() (sync.Inputs, error) {
	var in sync.Inputs
	targets := map[reports.Kind]**table.Table{
		reports.Donors:     &in.Donors,
		reports.Partners:   &in.Partners,
		reports.Volunteers: &in.Volunteers,
		reports.Rescues:    &in.Rescues,
		reports.Comments:   &in.Comments,
	}
	for kind := range f.Paths {
		t, err := f.Load(kind)
		if err != nil {
			return sync.Inputs{}, err
		}
		*targets[kind] = t
	}
	if in.Empty() {
		return in, &errors.ValidationError{Field: "inputs", Message: "no admin export given"}
	}
	return in, nil
}

// Print writes data to the command's output in the application's format.
func Print(cmd *cobra.Command, app application.Application, data any) error {
	format := output.DetectFormat(app.OutputFormat())
	return output.NewFormatter(format).Format(cmd.OutOrStdout(), data)
}
