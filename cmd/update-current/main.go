// Command update-current asserts the current-entity type on every person in
// the HR extract and retracts it from everyone else in VIVO.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mconlon17/vivo-person-ingest/pkg/app"
	"github.com/mconlon17/vivo-person-ingest/pkg/ingest"
)

type options struct {
	envFile string
	source  string
	input   string
	addPath string
	subPath string
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "update-current",
		Short:         "Mark current and former UF people in VIVO",
		Args:          cobra.NoArgs,
		Version:       ingest.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.envFile, "env-file", ".env", "Environment file loaded before the process environment")
	cmd.Flags().StringVar(&opts.source, "source", app.SourceFile, "Extract source: file or snowflake")
	cmd.Flags().StringVar(&opts.input, "input", "position_data.csv", "HR extract listing the current people")
	cmd.Flags().StringVar(&opts.addPath, "add", ingest.CurrentAddFile, "Output document of assertions")
	cmd.Flags().StringVar(&opts.subPath, "sub", ingest.CurrentSubFile, "Output document of retractions")
	return cmd
}

func run(ctx context.Context, opts options) error {
	a, err := app.New(ctx, opts.envFile)
	if err != nil {
		return err
	}
	defer a.Close()

	source, err := a.Source(ctx, opts.source, opts.input)
	if err != nil {
		return err
	}

	logger := a.Logger.Named("update-current")
	metrics := ingest.NewRunMetrics("update_current", logger)
	sweep := ingest.NewCurrentStatus(a.KB, metrics, a.Config.Ingest.ProgressEvery, logger)

	if _, err := ingest.UpdateCurrent(ctx, source, sweep, opts.addPath, opts.subPath, logger); err != nil {
		if !ingest.IsExternal(err) && !ingest.IsOutput(err) {
			err = app.WithCode(app.ExitValidation, err)
		}
		return err
	}

	metrics.Complete()
	if err := metrics.WriteTextfile(a.Config.MetricsTextfile); err != nil {
		logger.Warn("Failed to write metrics", zap.Error(err))
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		code := app.ExitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
