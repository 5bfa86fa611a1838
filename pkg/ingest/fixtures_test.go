package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mconlon17/vivo-person-ingest/pkg/cleaner"
	"github.com/mconlon17/vivo-person-ingest/pkg/exceptions"
	"github.com/mconlon17/vivo-person-ingest/pkg/lookup"
	"github.com/mconlon17/vivo-person-ingest/pkg/model"
	"github.com/mconlon17/vivo-person-ingest/pkg/rdf"
	"github.com/mconlon17/vivo-person-ingest/pkg/store"
	"github.com/mconlon17/vivo-person-ingest/pkg/vivo"
)

const (
	prefix  = "http://vivo.example.edu/individual/n"
	deptURI = "http://vivo.example.edu/individual/dept64100000"
	homeURI = "http://vivo.example.edu/individual/dept64110000"
)

var harvestTime = time.Date(2014, 9, 1, 10, 0, 0, 0, time.UTC)

// newKnowledgeBase returns a knowledge base holding two departments
func newKnowledgeBase(extra ...rdf.Triple) (*store.KnowledgeBase, *store.MemoryStore) {
	triples := append([]rdf.Triple{
		rdf.Literal(deptURI, vivo.PredDeptID, "64100000"),
		rdf.Literal(homeURI, vivo.PredDeptID, "64110000"),
	}, extra...)
	mem := store.NewMemoryStore(triples...)
	return store.NewKnowledgeBase(mem, prefix, vivo.DefaultPositionTypes(), nil), mem
}

func date(s string) *time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func janeRow() model.PositionRow {
	return model.PositionRow{
		Line:               1,
		UFID:               "12345",
		HRPosition:         true,
		DeptID:             "64100000",
		SalaryPlan:         "9AF",
		JobCodeDescription: "ASST PROFESSOR",
		StartDate:          "2014-08-07",
	}
}

func janeContact() map[string]string {
	return map[string]string{
		model.FieldFirstName: "jane",
		model.FieldLastName:  "doe",
		model.FieldEmail:     "jdoe@example.edu",
		model.FieldHomeDept:  "64110000",
	}
}

// fixture bundles the collaborators of a validator so tests can adjust them
type fixture struct {
	deptPatterns []string
	identifiers  []string
	references   []string
	labels       []string
	contact      map[string]map[string]string
	privacy      map[string]map[string]string
	finder       ReferenceFinder
}

func newFixture(finder ReferenceFinder) *fixture {
	return &fixture{
		contact: map[string]map[string]string{"12345": janeContact()},
		privacy: map[string]map[string]string{"12345": {model.FieldProtectFlag: "N"}},
		finder:  finder,
	}
}

func (f *fixture) validator(t *testing.T) *Validator {
	t.Helper()
	registry, err := exceptions.New(f.deptPatterns, f.identifiers, f.references, f.labels)
	require.NoError(t, err)
	fc, err := cleaner.NewFieldCleaner("352", zap.NewNop())
	require.NoError(t, err)

	v, err := NewValidator(ValidatorConfig{
		Registry:    registry,
		Finder:      f.finder,
		Contact:     lookup.NewMemoryStore(lookup.Contact, f.contact),
		Privacy:     lookup.NewMemoryStore(lookup.Privacy, f.privacy),
		Positions:   vivo.DefaultPositionTypes(),
		Cleaner:     fc,
		HarvestedAt: harvestTime,
		HarvestedBy: "Go Person Ingest test",
	}, nil)
	require.NoError(t, err)
	return v
}

// countingFinder counts lookups per tag
type countingFinder struct {
	ReferenceFinder
	calls map[string]int
}

func newCountingFinder(f ReferenceFinder) *countingFinder {
	return &countingFinder{ReferenceFinder: f, calls: make(map[string]int)}
}

func (c *countingFinder) FindReference(ctx context.Context, tag, value string) (string, error) {
	c.calls[tag]++
	return c.ReferenceFinder.FindReference(ctx, tag, value)
}

type failingFinder struct{ err error }

func (f failingFinder) FindReference(context.Context, string, string) (string, error) {
	return "", f.err
}

func messages(diags []Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Message
	}
	return out
}
