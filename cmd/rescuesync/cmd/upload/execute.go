package upload

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lastmilefood/rescuesync/internal/cmd/application"
	"github.com/lastmilefood/rescuesync/internal/cmd/cmdutil"
	"github.com/lastmilefood/rescuesync/internal/cmd/output"
	"github.com/lastmilefood/rescuesync/pkg/sync"
)

// Execute runs the stages for in, writes the run's artifacts and prints a
// per-stage summary. Artifacts and the summary are produced for a partial
// run too, before its error is returned.
func Execute(cmd *cobra.Command, app application.Application, in sync.Inputs) error {
	ctx := cmd.Context()
	logger := app.Logger()

	settings, err := app.Settings()
	if err != nil {
		return err
	}
	store, err := app.Store(ctx)
	if err != nil {
		return err
	}

	opts := append(app.RunOptions(), sync.WithLogger(*logger))
	res, runErr := sync.Run(ctx, store, settings, in, opts...)
	if res == nil {
		return runErr
	}

	arts := output.NewArtifacts(app.OutDir(), *logger)
	if _, err := arts.WriteRun(res); err != nil {
		if runErr != nil {
			logger.Error().Err(err).Msg("Failed to write artifacts")
			return runErr
		}
		return err
	}

	if err := printResult(cmd, app, res); err != nil && runErr == nil {
		return err
	}
	if runErr == nil && res.HasFailures() {
		logger.Warn().Int("failed", res.Failed()).Msg("Some records were rejected, see failed_*.tsv")
	}
	return runErr
}

func printResult(cmd *cobra.Command, app application.Application, res *sync.Result) error {
	switch output.DetectFormat(app.OutputFormat()) {
	case output.FormatJSON, output.FormatYAML:
		return cmdutil.Print(cmd, app, output.Run(res))
	}
	if err := cmdutil.Print(cmd, app, output.RunData(res)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), res.Summary())
	return err
}
