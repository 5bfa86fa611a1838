// pkg/ingest/current.go
package ingest

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/mconlon17/vivo-person-ingest/pkg/rdf"
	"github.com/mconlon17/vivo-person-ingest/pkg/vivo"
)

// IdentifierIndex lists every person identifier held by the knowledge base
type IdentifierIndex interface {
	IdentifierIndex(ctx context.Context) (map[string]string, error)
}

// CurrentStatus asserts or retracts the current-entity class of every person
// in the knowledge base according to the HR roster
type CurrentStatus struct {
	index         IdentifierIndex
	metrics       *RunMetrics
	logger        *zap.Logger
	progressEvery int
}

// NewCurrentStatus creates a sweep logging progress every progressEvery
// identifiers
func NewCurrentStatus(index IdentifierIndex, metrics *RunMetrics, progressEvery int, logger *zap.Logger) *CurrentStatus {
	if logger == nil {
		logger = zap.NewNop()
	}
	if progressEvery <= 0 {
		progressEvery = 1000
	}
	return &CurrentStatus{
		index:         index,
		metrics:       metrics,
		logger:        logger,
		progressEvery: progressEvery,
	}
}

// Sweep visits every knowledge-base identifier once, in ascending order.
// Identifiers in roster are marked current in the additions; all others are
// marked not current in the retractions.
func (c *CurrentStatus) Sweep(ctx context.Context, roster map[string]struct{}) (*rdf.Changeset, error) {
	index, err := c.index.IdentifierIndex(ctx)
	if err != nil {
		return nil, External("read identifier index", err)
	}

	ids := make([]string, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	c.logger.Info("Current status sweep",
		zap.Int("knowledgeBase", len(ids)),
		zap.Int("roster", len(roster)))

	changeset := rdf.NewChangeset()
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i > 0 && i%c.progressEvery == 0 {
			c.logger.Info("Progress", zap.Int("visited", i), zap.Int("total", len(ids)))
		}

		assertion := rdf.Resource(index[id], vivo.PredType, vivo.TypeUFCurrentEntity)
		_, current := roster[id]
		if current {
			changeset.Add(assertion)
		} else {
			changeset.Retract(assertion)
		}
		if c.metrics != nil {
			c.metrics.RecordCurrent(current)
		}
	}
	return changeset, nil
}
