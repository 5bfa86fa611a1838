package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mconlon17/vivo-person-ingest/pkg/model"
	"github.com/mconlon17/vivo-person-ingest/pkg/rdf"
	"github.com/mconlon17/vivo-person-ingest/pkg/vivo"
)

const (
	prefix = "http://vivo.example.edu/individual/n"
	dept   = "http://vivo.example.edu/individual/dept64100000"
)

type KnowledgeBaseSuite struct {
	suite.Suite
	ctx   context.Context
	store *MemoryStore
	kb    *KnowledgeBase
}

func TestKnowledgeBaseSuite(t *testing.T) {
	suite.Run(t, new(KnowledgeBaseSuite))
}

func (s *KnowledgeBaseSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewMemoryStore(
		rdf.Literal(dept, vivo.PredDeptID, "64100000"),
		rdf.Resource(dept, vivo.PredType, "foaf:Organization"),
	)
	s.kb = NewKnowledgeBase(s.store, prefix, vivo.DefaultPositionTypes(), nil)
}

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func record() *model.PersonUpdate {
	return &model.PersonUpdate{
		UFID:           "12345",
		HRPosition:     true,
		PositionDeptID: "64100000",
		PositionOrgURI: dept,
		PositionType:   "faculty",
		PersonType:     "vivo:FacultyMember",
		PositionLabel:  "Assistant Professor",
		StartDate:      date("2014-08-07"),
		GivenName:      "Jane",
		FamilyName:     "Doe",
		DisplayName:    "Doe, Jane",
		PrimaryEmail:   "jdoe@example.edu",
		HomeDeptID:     "64100000",
		HomeDeptURI:    dept,
		DateHarvested:  time.Date(2014, 9, 1, 10, 0, 0, 0, time.UTC),
		HarvestedBy:    "test",
	}
}

func (s *KnowledgeBaseSuite) TestFindReference() {
	ref, err := s.kb.FindReference(s.ctx, vivo.PredDeptID, "64100000")
	s.Require().NoError(err)
	s.Equal(dept, ref)

	ref, err = s.kb.FindReference(s.ctx, vivo.PredDeptID, "99999999")
	s.Require().NoError(err)
	s.Empty(ref)
}

func (s *KnowledgeBaseSuite) TestFetchEntityNotFound() {
	_, err := s.kb.FetchEntity(s.ctx, prefix+"missing")
	s.ErrorIs(err, ErrNotFound)
}

func (s *KnowledgeBaseSuite) TestCreateEntity() {
	add, uri, err := s.kb.CreateEntity(s.ctx, record())
	s.Require().NoError(err)
	s.True(strings.HasPrefix(uri, prefix))
	s.NotEmpty(add)

	ref, err := s.kb.FindReference(s.ctx, vivo.PredUFID, "12345")
	s.Require().NoError(err)
	s.Equal(uri, ref, "additions are applied to the store")

	entity, err := s.kb.FetchEntity(s.ctx, uri)
	s.Require().NoError(err)
	s.Require().Len(entity.Positions, 1)

	pos := entity.Positions[0]
	s.Equal(dept, pos.OrgURI)
	s.Equal("Assistant Professor", pos.Label)
	s.Equal("2014-08-07T00:00:00", pos.Start)
	s.Empty(pos.End)
	s.Empty(pos.EndRef)

	s.Contains(entity.Triples, rdf.Resource(uri, vivo.PredType, vivo.TypeUFCurrentEntity))
	s.Contains(entity.Triples, rdf.Resource(uri, vivo.PredType, "vivo:FacultyMember"))

	posTriples, err := s.kb.Triples(s.ctx, pos.URI)
	s.Require().NoError(err)
	s.Contains(posTriples, rdf.Resource(pos.URI, vivo.PredType, "vivo:FacultyPosition"))
}

func (s *KnowledgeBaseSuite) TestCreateEntityWithoutPosition() {
	rec := record()
	rec.HRPosition = false
	rec.PositionType = ""
	rec.PersonType = ""

	add, uri, err := s.kb.CreateEntity(s.ctx, rec)
	s.Require().NoError(err)
	for _, t := range add {
		s.Equal(uri, t.Subject, "only person triples are created")
	}
}

func (s *KnowledgeBaseSuite) TestUpdateIsIdempotent() {
	_, uri, err := s.kb.CreateEntity(s.ctx, record())
	s.Require().NoError(err)

	entity, err := s.kb.FetchEntity(s.ctx, uri)
	s.Require().NoError(err)

	rec := record()
	rec.DateHarvested = rec.DateHarvested.Add(24 * time.Hour)
	add, sub, err := s.kb.ApplyUpdate(s.ctx, entity, rec)
	s.Require().NoError(err)
	s.Empty(add)
	s.Empty(sub)
}

func (s *KnowledgeBaseSuite) TestUpdateChangedValues() {
	_, uri, err := s.kb.CreateEntity(s.ctx, record())
	s.Require().NoError(err)
	entity, err := s.kb.FetchEntity(s.ctx, uri)
	s.Require().NoError(err)

	rec := record()
	rec.PrimaryEmail = "jane.doe@example.edu"
	rec.Phone = "(352) 273-0000"
	rec.FamilyName = ""
	rec.HarvestedBy = "second run"

	add, sub, err := s.kb.ApplyUpdate(s.ctx, entity, rec)
	s.Require().NoError(err)

	s.Contains(add, rdf.Literal(uri, vivo.PredPrimaryEmail, "jane.doe@example.edu"))
	s.Contains(add, rdf.Literal(uri, vivo.PredPhoneNumber, "(352) 273-0000"))
	s.Contains(add, rdf.Literal(uri, vivo.PredHarvestedBy, "second run"))
	s.Contains(sub, rdf.Literal(uri, vivo.PredPrimaryEmail, "jdoe@example.edu"))
	s.Contains(sub, rdf.Literal(uri, vivo.PredHarvestedBy, "test"))
	s.NotContains(sub, rdf.Literal(uri, vivo.PredLastName, "Doe"), "absent values are left alone")

	after, err := s.kb.Triples(s.ctx, uri)
	s.Require().NoError(err)
	s.Contains(after, rdf.Literal(uri, vivo.PredLastName, "Doe"))
	s.NotContains(after, rdf.Literal(uri, vivo.PredPrimaryEmail, "jdoe@example.edu"))
}

func (s *KnowledgeBaseSuite) TestUpdateKeepsUnchangedProvenance() {
	_, uri, err := s.kb.CreateEntity(s.ctx, record())
	s.Require().NoError(err)
	entity, err := s.kb.FetchEntity(s.ctx, uri)
	s.Require().NoError(err)

	rec := record()
	rec.PrimaryEmail = "jane.doe@example.edu"
	rec.DateHarvested = rec.DateHarvested.Add(24 * time.Hour)

	add, sub, err := s.kb.ApplyUpdate(s.ctx, entity, rec)
	s.Require().NoError(err)

	harvestedBy := rdf.Literal(uri, vivo.PredHarvestedBy, "test")
	s.NotContains(add, harvestedBy)
	s.NotContains(sub, harvestedBy)
	s.Contains(add, rdf.Typed(uri, vivo.PredDateHarvested, "2014-09-02T10:00:00", rdf.XSDDateTime))
	s.Contains(sub, rdf.Typed(uri, vivo.PredDateHarvested, "2014-09-01T10:00:00", rdf.XSDDateTime))

	removed := make(map[string]bool, len(sub))
	for _, t := range sub {
		removed[t.Key()] = true
	}
	for _, t := range add {
		s.False(removed[t.Key()], "triple both added and retracted: %v", t)
	}

	after, err := s.kb.Triples(s.ctx, uri)
	s.Require().NoError(err)
	s.Contains(after, harvestedBy)
}

func (s *KnowledgeBaseSuite) TestUpdateAddsMissingClasses() {
	uri := prefix + "existing"
	s.Require().NoError(s.store.Add(s.ctx, []rdf.Triple{
		rdf.Resource(uri, vivo.PredType, vivo.TypePerson),
		rdf.Literal(uri, vivo.PredUFID, "12345"),
	}))
	entity, err := s.kb.FetchEntity(s.ctx, uri)
	s.Require().NoError(err)

	add, _, err := s.kb.ApplyUpdate(s.ctx, entity, record())
	s.Require().NoError(err)
	s.Contains(add, rdf.Resource(uri, vivo.PredType, vivo.TypeUFCurrentEntity))
	s.Contains(add, rdf.Resource(uri, vivo.PredType, vivo.TypeUFEntity))
	s.Contains(add, rdf.Resource(uri, vivo.PredType, "vivo:FacultyMember"))
	s.NotContains(add, rdf.Resource(uri, vivo.PredType, vivo.TypePerson))
	s.Contains(add, rdf.Resource(uri, vivo.PredPersonInPosition, findObject(add, uri, vivo.PredPersonInPosition)))
}

func (s *KnowledgeBaseSuite) TestUpdateNewPosition() {
	_, uri, err := s.kb.CreateEntity(s.ctx, record())
	s.Require().NoError(err)
	entity, err := s.kb.FetchEntity(s.ctx, uri)
	s.Require().NoError(err)

	rec := record()
	rec.PositionLabel = "Associate Professor"
	rec.StartDate = date("2019-07-01")

	_, _, err = s.kb.ApplyUpdate(s.ctx, entity, rec)
	s.Require().NoError(err)

	entity, err = s.kb.FetchEntity(s.ctx, uri)
	s.Require().NoError(err)
	s.Len(entity.Positions, 2, "the earlier position is kept")
}

func (s *KnowledgeBaseSuite) TestUpdateEndDate() {
	_, uri, err := s.kb.CreateEntity(s.ctx, record())
	s.Require().NoError(err)
	entity, err := s.kb.FetchEntity(s.ctx, uri)
	s.Require().NoError(err)

	rec := record()
	rec.EndDate = date("2015-05-31")
	add, sub, err := s.kb.ApplyUpdate(s.ctx, entity, rec)
	s.Require().NoError(err)
	s.Empty(findObject(sub, uri, vivo.PredPersonInPosition))
	s.NotEmpty(add)

	entity, err = s.kb.FetchEntity(s.ctx, uri)
	s.Require().NoError(err)
	s.Require().Len(entity.Positions, 1)
	s.Equal("2015-05-31T00:00:00", entity.Positions[0].End)

	// a later correction moves the value on the same node
	rec.EndDate = date("2015-06-30")
	add, sub, err = s.kb.ApplyUpdate(s.ctx, entity, rec)
	s.Require().NoError(err)
	endRef := entity.Positions[0].EndRef
	s.Contains(sub, rdf.Typed(endRef, vivo.PredDateTime, "2015-05-31T00:00:00", rdf.XSDDateTime))
	s.Contains(add, rdf.Typed(endRef, vivo.PredDateTime, "2015-06-30T00:00:00", rdf.XSDDateTime))
}

func (s *KnowledgeBaseSuite) TestIdentifierIndex() {
	_, uri, err := s.kb.CreateEntity(s.ctx, record())
	s.Require().NoError(err)

	index, err := s.kb.IdentifierIndex(s.ctx)
	s.Require().NoError(err)
	s.Equal(map[string]string{"12345": uri}, index)
}

func findObject(triples []rdf.Triple, subject, tag string) string {
	pred := rdf.Untag(tag)
	for _, t := range triples {
		if t.Subject == subject && t.Predicate == pred {
			return t.Object
		}
	}
	return ""
}

func TestExpand(t *testing.T) {
	kb := NewKnowledgeBase(NewMemoryStore(), prefix, nil, nil)
	assert.Equal(t, "http://vivo.example.edu/individual/n25674", kb.Expand("n25674"))
	assert.Equal(t, "https://other/x", kb.Expand("https://other/x"))
}

func TestMintAvoidsUsedReferences(t *testing.T) {
	kb := NewKnowledgeBase(NewMemoryStore(), prefix, nil, nil)
	m := kb.minter()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		ref, err := m.mint(context.Background())
		require.NoError(t, err)
		require.False(t, seen[ref])
		seen[ref] = true
	}
}
