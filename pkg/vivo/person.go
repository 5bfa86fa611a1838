// pkg/vivo/person.go
package vivo

import (
	"time"

	"github.com/mconlon17/vivo-person-ingest/pkg/model"
	"github.com/mconlon17/vivo-person-ingest/pkg/rdf"
)

// PersonTriples returns everything asserted for a newly created person
func PersonTriples(uri string, rec *model.PersonUpdate) []rdf.Triple {
	var triples []rdf.Triple
	for _, class := range Classes(rec, true) {
		triples = append(triples, rdf.Resource(uri, PredType, class))
	}
	triples = append(triples, ManagedTriples(uri, rec)...)
	return append(triples, ProvenanceTriples(uri, rec)...)
}

// Classes returns the tagged classes a person carries. Current status is
// only asserted on creation or update; retraction is the differ's job.
func Classes(rec *model.PersonUpdate, current bool) []string {
	classes := []string{TypePerson}
	if rec.PersonType != "" {
		classes = append(classes, rec.PersonType)
	}
	classes = append(classes, TypeUFEntity)
	if current {
		classes = append(classes, TypeUFCurrentEntity)
	}
	return classes
}

// ManagedPredicates are the single-valued person properties this ingest owns
var ManagedPredicates = []string{
	PredUFID,
	PredLabel,
	PredFirstName,
	PredLastName,
	PredMiddleName,
	PredPrefixName,
	PredSuffixName,
	PredGatorlink,
	PredPrimaryEmail,
	PredPhoneNumber,
	PredFaxNumber,
	PredPreferredTitle,
	PredHomeDept,
}

// ManagedTriples returns one triple per managed predicate that rec has a
// value for, in ManagedPredicates order
func ManagedTriples(uri string, rec *model.PersonUpdate) []rdf.Triple {
	literals := []struct {
		pred  string
		value string
	}{
		{PredUFID, rec.UFID},
		{PredLabel, rec.DisplayName},
		{PredFirstName, rec.GivenName},
		{PredLastName, rec.FamilyName},
		{PredMiddleName, rec.AdditionalName},
		{PredPrefixName, rec.HonorificPrefix},
		{PredSuffixName, rec.HonorificSuffix},
		{PredGatorlink, rec.Gatorlink},
		{PredPrimaryEmail, rec.PrimaryEmail},
		{PredPhoneNumber, rec.Phone},
		{PredFaxNumber, rec.Fax},
		{PredPreferredTitle, rec.BestTitle()},
	}

	triples := make([]rdf.Triple, 0, len(literals)+1)
	for _, l := range literals {
		if l.value != "" {
			triples = append(triples, rdf.Literal(uri, l.pred, l.value))
		}
	}
	if rec.HomeDeptURI != "" {
		triples = append(triples, rdf.Resource(uri, PredHomeDept, rec.HomeDeptURI))
	}
	return triples
}

// ProvenanceTriples stamps who harvested the entity and when
func ProvenanceTriples(uri string, rec *model.PersonUpdate) []rdf.Triple {
	var triples []rdf.Triple
	if rec.HarvestedBy != "" {
		triples = append(triples, rdf.Literal(uri, PredHarvestedBy, rec.HarvestedBy))
	}
	if !rec.DateHarvested.IsZero() {
		triples = append(triples, rdf.Typed(uri, PredDateHarvested, FormatDateTime(rec.DateHarvested), rdf.XSDDateTime))
	}
	return triples
}

// PositionRefs are the references minted for one position
type PositionRefs struct {
	Position string
	Interval string // empty when the record has no dates
	Start    string // empty when the record has no start date
	End      string // empty when the record has no end date
}

// PositionTriples describes the person's position in rec's organization
func PositionTriples(personURI string, refs PositionRefs, rec *model.PersonUpdate, positionClass string) []rdf.Triple {
	pos := refs.Position
	triples := []rdf.Triple{rdf.Resource(pos, PredType, TypePosition)}
	if positionClass != "" && positionClass != TypePosition {
		triples = append(triples, rdf.Resource(pos, PredType, positionClass))
	}
	if rec.PositionLabel != "" {
		triples = append(triples, rdf.Literal(pos, PredLabel, rec.PositionLabel))
	}
	triples = append(triples,
		rdf.Resource(pos, PredPositionInOrg, rec.PositionOrgURI),
		rdf.Resource(pos, PredPositionForPerson, personURI),
		rdf.Resource(personURI, PredPersonInPosition, pos),
		rdf.Resource(rec.PositionOrgURI, PredOrgForPosition, pos),
	)
	triples = append(triples, ProvenanceTriples(pos, rec)...)

	if refs.Interval == "" {
		return triples
	}
	triples = append(triples,
		rdf.Resource(pos, PredDateTimeInterval, refs.Interval),
		rdf.Resource(refs.Interval, PredType, TypeDateTimeInterval),
	)
	if refs.Start != "" && rec.StartDate != nil {
		triples = append(triples, rdf.Resource(refs.Interval, PredStart, refs.Start))
		triples = append(triples, DateTimeValueTriples(refs.Start, *rec.StartDate)...)
	}
	if refs.End != "" && rec.EndDate != nil {
		triples = append(triples, rdf.Resource(refs.Interval, PredEnd, refs.End))
		triples = append(triples, DateTimeValueTriples(refs.End, *rec.EndDate)...)
	}
	return triples
}

// DateTimeValueTriples describes a day-precision date node
func DateTimeValueTriples(uri string, t time.Time) []rdf.Triple {
	return []rdf.Triple{
		rdf.Resource(uri, PredType, TypeDateTimeValue),
		rdf.Typed(uri, PredDateTime, FormatDateTime(t), rdf.XSDDateTime),
		rdf.Resource(uri, PredDateTimePrecision, PrecisionYearMonthDay),
	}
}

// FormatDateTime renders t the way VIVO stores xsd:dateTime values
func FormatDateTime(t time.Time) string {
	return t.Format(dateTimeLayout)
}
