// pkg/ingest/run.go

// Package ingest reconciles an HR position extract with the people held by
// the knowledge base.
package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mconlon17/vivo-person-ingest/pkg/extract"
	"github.com/mconlon17/vivo-person-ingest/pkg/model"
	"github.com/mconlon17/vivo-person-ingest/pkg/rdf"
)

// Version is reported in the run banner
var Version = "2.00"

// OutputError marks a failure to write one of the run's files
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *OutputError) Unwrap() error {
	return e.Err
}

// IsOutput reports whether err is, or wraps, an OutputError
func IsOutput(err error) bool {
	var out *OutputError
	return errors.As(err, &out)
}

// Pipeline wires the stages of one ingest run
type Pipeline struct {
	Source    extract.Source
	Validator *Validator
	Store     Store
	Metrics   *RunMetrics
	Logger    *zap.Logger
	Debug     bool
}

// Report summarizes a finished run
type Report struct {
	Job       Job
	Changeset *rdf.Changeset
	Rows      int
	People    int
	Voided    int
}

// Run reads the extract, keeps one row per person, validates every row,
// reconciles the valid records and finally writes the add and sub documents.
// The diagnostics file is written as rows are validated and is closed on
// every path; the documents are only written when the run succeeds.
func (p *Pipeline) Run(ctx context.Context, job Job) (report *Report, err error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("job", job.ID))
	metrics := p.Metrics
	if metrics == nil {
		metrics = NewRunMetrics("person_ingest", logger)
	}

	logger.Info("Start", zap.String("input", job.Input))
	logger.Info("Person Ingest Version", zap.String("version", Version))

	excFile, err := os.Create(job.ExcPath)
	if err != nil {
		return nil, &OutputError{Path: job.ExcPath, Err: err}
	}
	excBuf := bufio.NewWriter(excFile)
	defer func() {
		flushErr := excBuf.Flush()
		closeErr := excFile.Close()
		if err == nil && flushErr != nil {
			err = &OutputError{Path: job.ExcPath, Err: flushErr}
		}
		if err == nil && closeErr != nil {
			err = &OutputError{Path: job.ExcPath, Err: closeErr}
		}
		if err != nil {
			report = nil
		}
	}()
	diagLog := NewDiagnosticLog(excBuf, logger.Named("diagnostics"))

	logger.Info("Read Position Data", zap.String("source", p.Source.Name()))
	rows, err := p.Source.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p.Source.Name(), err)
	}
	selected := SelectRows(rows)
	metrics.RecordRows(len(rows), len(selected))

	people, err := p.validate(ctx, selected, diagLog, metrics)
	if err != nil {
		return nil, err
	}
	diagLog.LogSummary()
	logger.Info("Position data has people", zap.Int("people", len(people)))

	changeset := rdf.NewChangeset()
	dispatcher := NewDispatcher(p.Store, changeset, metrics, logger.Named("dispatcher")).WithDebug(p.Debug)
	for _, rec := range people {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := dispatcher.Dispatch(ctx, rec); err != nil {
			return nil, err
		}
	}

	if err := rdf.WriteFile(job.AddPath, changeset.Additions); err != nil {
		return nil, &OutputError{Path: job.AddPath, Err: err}
	}
	if err := rdf.WriteFile(job.SubPath, changeset.Retractions); err != nil {
		return nil, &OutputError{Path: job.SubPath, Err: err}
	}

	metrics.Complete()
	logger.Info("Finished",
		zap.String("add", job.AddPath),
		zap.String("sub", job.SubPath),
		zap.String("exc", job.ExcPath))

	return &Report{
		Job:       job,
		Changeset: changeset,
		Rows:      len(rows),
		People:    len(people),
		Voided:    diagLog.VoidedRows(),
	}, nil
}

func (p *Pipeline) validate(ctx context.Context, rows []model.PositionRow, diagLog *DiagnosticLog, metrics *RunMetrics) ([]*model.PersonUpdate, error) {
	people := make([]*model.PersonUpdate, 0, len(rows))
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := p.Validator.Validate(ctx, row)
		if err != nil {
			return nil, err
		}
		if !result.Valid() {
			metrics.RecordDiagnostics(result.Diagnostics)
			if err := diagLog.Record(result.Diagnostics); err != nil {
				return nil, err
			}
			continue
		}
		metrics.RecordValid()
		people = append(people, result.Record)
	}
	return people, nil
}

// UpdateCurrent runs the current-status sweep against the identifiers of
// source, writing the assertions to addPath and the retractions to subPath
func UpdateCurrent(ctx context.Context, source extract.Source, sweep *CurrentStatus, addPath, subPath string, logger *zap.Logger) (*rdf.Changeset, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("Start", zap.String("source", source.Name()))

	rows, err := source.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source.Name(), err)
	}
	roster := Identifiers(rows)
	logger.Info("HR roster read", zap.Int("rows", len(rows)), zap.Int("identifiers", len(roster)))

	changeset, err := sweep.Sweep(ctx, roster)
	if err != nil {
		return nil, err
	}

	if err := rdf.WriteFile(addPath, changeset.Additions); err != nil {
		return nil, &OutputError{Path: addPath, Err: err}
	}
	if err := rdf.WriteFile(subPath, changeset.Retractions); err != nil {
		return nil, &OutputError{Path: subPath, Err: err}
	}
	logger.Info("Finished",
		zap.Int("current", len(changeset.Additions)),
		zap.Int("notCurrent", len(changeset.Retractions)))
	return changeset, nil
}
