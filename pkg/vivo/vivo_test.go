package vivo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mconlon17/vivo-person-ingest/pkg/model"
	"github.com/mconlon17/vivo-person-ingest/pkg/rdf"
)

func TestDefaultPositionTypes(t *testing.T) {
	pt := DefaultPositionTypes()

	positionType, ok := pt.Classify("9AF")
	require.True(t, ok)
	assert.Equal(t, "faculty", positionType)

	positionType, ok = pt.Classify(" 9af ")
	require.True(t, ok)
	assert.Equal(t, "faculty", positionType)

	_, ok = pt.Classify("ZZZ")
	assert.False(t, ok)

	personType, ok := pt.PersonType("faculty")
	require.True(t, ok)
	assert.Equal(t, "vivo:FacultyMember", personType)

	// every position type in the default table must resolve to a person class
	for code, positionType := range pt.SalaryPlans {
		_, ok := pt.PersonType(positionType)
		assert.True(t, ok, "plan %s maps to %s which has no person type", code, positionType)
		assert.NotEmpty(t, pt.PositionClass(positionType), positionType)
	}
}

func TestPersonTypeTable(t *testing.T) {
	pt := DefaultPositionTypes()
	want := map[string]string{
		"faculty":          "vivo:FacultyMember",
		"postdoc":          "vivo:Postdoc",
		"courtesy-faculty": "vivo:CourtesyFaculty",
		"clinical-faculty": "ufVivo:ClinicalFaculty",
		"housestaff":       "ufVivo:Housestaff",
		"temp-faculty":     "ufVivo:TemporaryFaculty",
		"non-academic":     "vivo:NonAcademic",
	}
	for positionType, personType := range want {
		got, ok := pt.PersonType(positionType)
		assert.True(t, ok, positionType)
		assert.Equal(t, personType, got)
	}
}

func TestLoadPositionTypes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "types.yaml")
	require.NoError(t, os.WriteFile(path, []byte("salary_plans:\n  xyz: postdoc\nperson_types:\n  postdoc: vivo:Postdoc\n"), 0o600))

	pt, err := LoadPositionTypes(path)
	require.NoError(t, err)
	positionType, ok := pt.Classify("XYZ")
	assert.True(t, ok)
	assert.Equal(t, "postdoc", positionType)

	_, err = LoadPositionTypes(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = ParsePositionTypes([]byte("person_types: {}\n"))
	assert.Error(t, err)

	pt, err = LoadPositionTypes("")
	require.NoError(t, err)
	assert.NotEmpty(t, pt.SalaryPlans)
}

func TestPersonTriples(t *testing.T) {
	uri := "http://vivo.example.edu/individual/n1"
	rec := &model.PersonUpdate{
		UFID:          "12345",
		PersonType:    "vivo:FacultyMember",
		GivenName:     "Jane",
		FamilyName:    "Doe",
		PrimaryEmail:  "jdoe@example.edu",
		Title:         "Assistant Professor",
		HomeDeptURI:   "http://vivo.example.edu/individual/dept",
		HarvestedBy:   "test harvest",
		DateHarvested: time.Date(2014, 8, 30, 10, 0, 0, 0, time.UTC),
	}

	triples := PersonTriples(uri, rec)

	assert.Contains(t, triples, rdf.Resource(uri, PredType, TypePerson))
	assert.Contains(t, triples, rdf.Resource(uri, PredType, "vivo:FacultyMember"))
	assert.Contains(t, triples, rdf.Resource(uri, PredType, TypeUFEntity))
	assert.Contains(t, triples, rdf.Resource(uri, PredType, TypeUFCurrentEntity))
	assert.Contains(t, triples, rdf.Literal(uri, PredFirstName, "Jane"))
	assert.Contains(t, triples, rdf.Literal(uri, PredPreferredTitle, "Assistant Professor"))
	assert.Contains(t, triples, rdf.Resource(uri, PredHomeDept, rec.HomeDeptURI))
	assert.Contains(t, triples, rdf.Typed(uri, PredDateHarvested, "2014-08-30T10:00:00", rdf.XSDDateTime))

	for _, tr := range triples {
		assert.NotEqual(t, rdf.Untag(PredMiddleName), tr.Predicate, "absent fields are omitted")
		assert.NotEqual(t, rdf.Untag(PredLabel), tr.Predicate, "no display name, no label")
	}
}

func TestPositionTriples(t *testing.T) {
	person := "http://vivo.example.edu/individual/p"
	start := time.Date(2014, 8, 7, 0, 0, 0, 0, time.UTC)
	rec := &model.PersonUpdate{
		HRPosition:     true,
		PositionOrgURI: "http://vivo.example.edu/individual/org",
		PositionType:   "faculty",
		PositionLabel:  "Assistant Professor",
		StartDate:      &start,
	}
	refs := PositionRefs{Position: "http://x/pos", Interval: "http://x/int", Start: "http://x/start"}

	triples := PositionTriples(person, refs, rec, "vivo:FacultyPosition")

	assert.Contains(t, triples, rdf.Resource(refs.Position, PredType, TypePosition))
	assert.Contains(t, triples, rdf.Resource(refs.Position, PredType, "vivo:FacultyPosition"))
	assert.Contains(t, triples, rdf.Literal(refs.Position, PredLabel, "Assistant Professor"))
	assert.Contains(t, triples, rdf.Resource(refs.Position, PredPositionInOrg, rec.PositionOrgURI))
	assert.Contains(t, triples, rdf.Resource(person, PredPersonInPosition, refs.Position))
	assert.Contains(t, triples, rdf.Resource(refs.Interval, PredStart, refs.Start))
	assert.Contains(t, triples, rdf.Typed(refs.Start, PredDateTime, "2014-08-07T00:00:00", rdf.XSDDateTime))
	for _, tr := range triples {
		assert.NotEqual(t, rdf.Untag(PredEnd), tr.Predicate)
	}
}
