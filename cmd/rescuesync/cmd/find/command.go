// Package find provides the read-only analysis commands. Each finding is
// written as a TSV artifact and summarized on stdout.
package find

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lastmilefood/rescuesync/internal/cmd/application"
	"github.com/lastmilefood/rescuesync/internal/cmd/cmdutil"
	"github.com/lastmilefood/rescuesync/internal/cmd/output"
	"github.com/lastmilefood/rescuesync/pkg/table"
)

// NewCommand creates the find command with its subcommands.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "find",
		GroupID: "analysis",
		Short:   "Report duplicates, stale rescues and mismatches",
		Long: `Find runs read-only analyses against the CRM and the admin exports.

Every finding is written to --out-dir as a tab-separated file named for
the finding. A finding with no rows writes no file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		NewDuplicatesCommand(app),
		NewIncompleteCommand(app),
		NewDiscrepanciesCommand(app),
		NewDifferencesCommand(app),
	)
	return cmd
}

// finding is one line of the summary printed after a find command.
type finding struct {
	Name     string `json:"finding" yaml:"finding"`
	Rows     int    `json:"rows" yaml:"rows"`
	Artifact string `json:"artifact,omitempty" yaml:"artifact,omitempty"`
}

// record writes t under name and returns its summary line.
func record(arts *output.Artifacts, name string, t *table.Table) (finding, error) {
	path, err := arts.Write(name, t)
	if err != nil {
		return finding{}, err
	}
	return finding{Name: name, Rows: t.Len(), Artifact: path}, nil
}

func report(cmd *cobra.Command, app application.Application, found []finding) error {
	switch output.DetectFormat(app.OutputFormat()) {
	case output.FormatJSON, output.FormatYAML:
		return cmdutil.Print(cmd, app, found)
	}
	d := output.Data{
		Headers:         []string{"Finding", "Rows", "Artifact"},
		ColumnAlignment: []output.Align{output.AlignLeft, output.AlignRight, output.AlignLeft},
	}
	for _, f := range found {
		artifact := f.Artifact
		if artifact == "" {
			artifact = "-"
		}
		d.Rows = append(d.Rows, []string{f.Name, strconv.Itoa(f.Rows), artifact})
	}
	return cmdutil.Print(cmd, app, d)
}

func artifacts(app application.Application) *output.Artifacts {
	return output.NewArtifacts(app.OutDir(), *app.Logger())
}
