package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mconlon17/vivo-person-ingest/pkg/rdf"
	"github.com/mconlon17/vivo-person-ingest/pkg/vivo"
)

type staticIndex map[string]string

func (s staticIndex) IdentifierIndex(context.Context) (map[string]string, error) {
	return s, nil
}

type brokenIndex struct{}

func (brokenIndex) IdentifierIndex(context.Context) (map[string]string, error) {
	return nil, errors.New("timeout")
}

func current(ref string) rdf.Triple {
	return rdf.Resource(ref, vivo.PredType, vivo.TypeUFCurrentEntity)
}

func TestSweepMarksEveryIdentifierOnce(t *testing.T) {
	index := staticIndex{
		"3": prefix + "c",
		"1": prefix + "a",
		"2": prefix + "b",
	}
	roster := map[string]struct{}{"1": {}, "3": {}, "99": {}}
	metrics := NewRunMetrics("update_current", nil)

	changeset, err := NewCurrentStatus(index, metrics, 1000, nil).Sweep(context.Background(), roster)
	require.NoError(t, err)

	assert.Equal(t, []rdf.Triple{current(prefix + "a"), current(prefix + "c")}, changeset.Additions)
	assert.Equal(t, []rdf.Triple{current(prefix + "b")}, changeset.Retractions)
	assert.Equal(t, 2, metrics.Current)
	assert.Equal(t, 1, metrics.NotCurrent)
}

func TestSweepNotCurrent(t *testing.T) {
	changeset, err := NewCurrentStatus(staticIndex{"12345": prefix + "jane"}, nil, 0, nil).
		Sweep(context.Background(), map[string]struct{}{})
	require.NoError(t, err)
	assert.Empty(t, changeset.Additions)
	assert.Equal(t, []rdf.Triple{current(prefix + "jane")}, changeset.Retractions)
}

func TestSweepIsRepeatable(t *testing.T) {
	index := staticIndex{}
	roster := map[string]struct{}{}
	for i := 0; i < 200; i++ {
		id := string(rune('a'+i%26)) + string(rune('a'+i/26))
		index[id] = prefix + id
		if i%3 == 0 {
			roster[id] = struct{}{}
		}
	}

	sweep := NewCurrentStatus(index, nil, 50, nil)
	first, err := sweep.Sweep(context.Background(), roster)
	require.NoError(t, err)
	second, err := sweep.Sweep(context.Background(), roster)
	require.NoError(t, err)

	assert.Equal(t, rdf.Document(first.Additions), rdf.Document(second.Additions))
	assert.Equal(t, rdf.Document(first.Retractions), rdf.Document(second.Retractions))
	assert.Equal(t, len(index), len(first.Additions)+len(first.Retractions))
}

func TestSweepLogsProgress(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	index := staticIndex{}
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		index[id] = prefix + id
	}

	_, err := NewCurrentStatus(index, nil, 2, zap.New(core)).Sweep(context.Background(), nil)
	require.NoError(t, err)

	progress := logs.FilterMessage("Progress").All()
	require.Len(t, progress, 2)
	assert.Equal(t, int64(2), progress[0].ContextMap()["visited"])
	assert.Equal(t, int64(4), progress[1].ContextMap()["visited"])
}

func TestSweepIndexFailureIsExternal(t *testing.T) {
	_, err := NewCurrentStatus(brokenIndex{}, nil, 0, nil).Sweep(context.Background(), nil)
	assert.True(t, IsExternal(err))
}

func TestSweepAgainstKnowledgeBase(t *testing.T) {
	kb, _ := newKnowledgeBase(
		rdf.Literal(prefix+"jane", vivo.PredUFID, "12345"),
		rdf.Literal(prefix+"john", vivo.PredUFID, "67890"),
	)

	changeset, err := NewCurrentStatus(kb, nil, 0, nil).Sweep(context.Background(), map[string]struct{}{"12345": {}})
	require.NoError(t, err)
	assert.Equal(t, []rdf.Triple{current(prefix + "jane")}, changeset.Additions)
	assert.Equal(t, []rdf.Triple{current(prefix + "john")}, changeset.Retractions)
}
