package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mconlon17/vivo-person-ingest/pkg/app"
	"github.com/mconlon17/vivo-person-ingest/pkg/ingest"
)

const defaultInput = "position_data.csv"

type runOptions struct {
	envFile   string
	source    string
	outputDir string
	debug     bool
}

func newRootCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:           "person-ingest [input]",
		Short:         "Reconcile an HR position extract against VIVO",
		Args:          cobra.MaximumNArgs(1),
		Version:       ingest.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := defaultInput
			if len(args) == 1 {
				input = args[0]
			}
			return runIngest(cmd.Context(), opts, input)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Environment file loaded before the process environment")
	cmd.Flags().StringVar(&opts.source, "source", app.SourceFile, "Extract source: file or snowflake")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "Directory for the add, sub and exception files (default: beside the input)")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Log every record considered")

	cmd.AddCommand(newLookupsCmd(&opts))
	return cmd
}

func runIngest(ctx context.Context, opts runOptions, input string) error {
	a, err := app.New(ctx, opts.envFile)
	if err != nil {
		return err
	}
	defer a.Close()

	source, err := a.Source(ctx, opts.source, input)
	if err != nil {
		return err
	}

	lookups, err := a.OpenLookups(ctx)
	if err != nil {
		return err
	}
	defer lookups.Close()

	validator, err := a.Validator(ctx, lookups, time.Now())
	if err != nil {
		return err
	}

	metrics := ingest.NewRunMetrics("person_ingest", a.Logger)
	pipeline := &ingest.Pipeline{
		Source:    source,
		Validator: validator,
		Store:     a.KB,
		Metrics:   metrics,
		Logger:    a.Logger.Named("person-ingest"),
		Debug:     opts.debug,
	}

	job := ingest.NewJob(source.Name()).WithOutputDir(opts.outputDir)
	report, err := pipeline.Run(ctx, job)
	if err != nil {
		if !ingest.IsExternal(err) && !ingest.IsOutput(err) {
			err = app.WithCode(app.ExitValidation, err)
		}
		return err
	}

	if err := metrics.WriteTextfile(a.Config.MetricsTextfile); err != nil {
		a.Logger.Warn("Failed to write metrics", zap.Error(err))
	}
	a.Logger.Info("Run written",
		zap.String("add", report.Job.AddPath),
		zap.String("sub", report.Job.SubPath),
		zap.String("exceptions", report.Job.ExcPath),
		zap.Int("people", report.People),
		zap.Int("voided", report.Voided))
	return nil
}

// Execute runs the command and exits with its exit code on failure
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		code := app.ExitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
