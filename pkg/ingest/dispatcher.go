// pkg/ingest/dispatcher.go
package ingest

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/mconlon17/vivo-person-ingest/pkg/model"
	"github.com/mconlon17/vivo-person-ingest/pkg/rdf"
	"github.com/mconlon17/vivo-person-ingest/pkg/store"
)

// Store is the knowledge base as seen by the dispatcher
type Store interface {
	FindReference(ctx context.Context, tag, value string) (string, error)
	FetchEntity(ctx context.Context, ref string) (*store.Entity, error)
	CreateEntity(ctx context.Context, rec *model.PersonUpdate) ([]rdf.Triple, string, error)
	ApplyUpdate(ctx context.Context, snap *store.Entity, rec *model.PersonUpdate) ([]rdf.Triple, []rdf.Triple, error)
}

// Dispatcher routes valid records to add or update and accumulates the
// resulting fragments. People known to the knowledge base but missing from
// HR are left to the current-status sweep.
type Dispatcher struct {
	store     Store
	changeset *rdf.Changeset
	metrics   *RunMetrics
	logger    *zap.Logger
	debug     bool
}

// NewDispatcher creates a dispatcher appending to changeset
func NewDispatcher(s Store, changeset *rdf.Changeset, metrics *RunMetrics, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		store:     s,
		changeset: changeset,
		metrics:   metrics,
		logger:    logger,
	}
}

// WithDebug logs every record before it is dispatched
func (d *Dispatcher) WithDebug(debug bool) *Dispatcher {
	d.debug = debug
	return d
}

// Dispatch reconciles one record. Any error is an external failure.
func (d *Dispatcher) Dispatch(ctx context.Context, rec *model.PersonUpdate) error {
	if d.debug {
		d.logRecord(rec)
	}

	if rec.URI != "" {
		return d.update(ctx, rec)
	}
	return d.add(ctx, rec)
}

func (d *Dispatcher) update(ctx context.Context, rec *model.PersonUpdate) error {
	d.logger.Info("Updating person",
		zap.String("ufid", rec.UFID),
		zap.String("uri", rec.URI))

	snap, err := d.store.FetchEntity(ctx, rec.URI)
	if err != nil {
		return External("fetch "+rec.URI, err)
	}
	add, sub, err := d.store.ApplyUpdate(ctx, snap, rec)
	if err != nil {
		return External("update "+rec.URI, err)
	}

	d.changeset.Add(add...)
	d.changeset.Retract(sub...)
	if d.metrics != nil {
		d.metrics.RecordUpdated()
	}
	return nil
}

func (d *Dispatcher) add(ctx context.Context, rec *model.PersonUpdate) error {
	d.logger.Info("Adding person", zap.String("ufid", rec.UFID))

	add, uri, err := d.store.CreateEntity(ctx, rec)
	if err != nil {
		return External("create "+rec.UFID, err)
	}

	d.changeset.Add(add...)
	if d.metrics != nil {
		d.metrics.RecordAdded()
	}
	d.logger.Debug("Person created",
		zap.String("ufid", rec.UFID),
		zap.String("uri", uri),
		zap.Int("triples", len(add)))
	return nil
}

// logRecord renders the record as JSON with ISO-8601 dates
func (d *Dispatcher) logRecord(rec *model.PersonUpdate) {
	view := struct {
		*model.PersonUpdate
		StartDate string `json:"start_date,omitempty"`
		EndDate   string `json:"end_date,omitempty"`
	}{PersonUpdate: rec}
	if rec.StartDate != nil {
		view.StartDate = rec.StartDate.Format(time.RFC3339)
	}
	if rec.EndDate != nil {
		view.EndDate = rec.EndDate.Format(time.RFC3339)
	}

	data, err := json.MarshalIndent(view, "", "    ")
	if err != nil {
		d.logger.Warn("Failed to render record", zap.String("ufid", rec.UFID), zap.Error(err))
		return
	}
	d.logger.Info("Consider", zap.String("ufid", rec.UFID), zap.ByteString("record", data))
}
