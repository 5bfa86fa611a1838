// pkg/store/knowledgebase.go
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mconlon17/vivo-person-ingest/pkg/model"
	"github.com/mconlon17/vivo-person-ingest/pkg/rdf"
	"github.com/mconlon17/vivo-person-ingest/pkg/vivo"
)

// Entity is the snapshot of one person as held by the knowledge base
type Entity struct {
	URI       string
	Triples   []rdf.Triple
	Positions []PositionSnapshot
}

// PositionSnapshot is one position of a person. Start and End hold the
// xsd:dateTime values of the interval nodes, empty when absent.
type PositionSnapshot struct {
	URI      string
	OrgURI   string
	Label    string
	Interval string
	StartRef string
	Start    string
	EndRef   string
	End      string
}

// KnowledgeBase implements the person operations of the reconciliation on
// top of a TripleStore. Every fragment it returns has already been applied
// to the store.
type KnowledgeBase struct {
	store     TripleStore
	prefix    string
	positions *vivo.PositionTypes
	logger    *zap.Logger
}

// NewKnowledgeBase creates a knowledge base minting references under prefix
func NewKnowledgeBase(store TripleStore, prefix string, positions *vivo.PositionTypes, logger *zap.Logger) *KnowledgeBase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KnowledgeBase{
		store:     store,
		prefix:    prefix,
		positions: positions,
		logger:    logger,
	}
}

// FindReference returns the entity carrying value under the tagged
// predicate, or "" when there is none
func (kb *KnowledgeBase) FindReference(ctx context.Context, tag, value string) (string, error) {
	subjects, err := kb.store.Subjects(ctx, rdf.Untag(tag), value)
	if err != nil {
		return "", err
	}
	switch len(subjects) {
	case 0:
		return "", nil
	case 1:
		return subjects[0], nil
	default:
		kb.logger.Warn("Multiple references share a value",
			zap.String("predicate", tag),
			zap.String("value", value),
			zap.Strings("references", subjects))
		return subjects[0], nil
	}
}

// FetchEntity reads the person at ref together with its positions
func (kb *KnowledgeBase) FetchEntity(ctx context.Context, ref string) (*Entity, error) {
	triples, err := kb.store.Triples(ctx, ref)
	if err != nil {
		return nil, err
	}
	if len(triples) == 0 {
		return nil, fmt.Errorf("%s: %w", ref, ErrNotFound)
	}

	entity := &Entity{URI: ref, Triples: triples}
	inPosition := rdf.Untag(vivo.PredPersonInPosition)
	for _, t := range triples {
		if t.Predicate != inPosition || t.Literal {
			continue
		}
		pos, err := kb.fetchPosition(ctx, t.Object)
		if err != nil {
			return nil, err
		}
		entity.Positions = append(entity.Positions, pos)
	}
	return entity, nil
}

func (kb *KnowledgeBase) fetchPosition(ctx context.Context, ref string) (PositionSnapshot, error) {
	pos := PositionSnapshot{URI: ref}
	triples, err := kb.store.Triples(ctx, ref)
	if err != nil {
		return pos, err
	}
	pos.OrgURI = object(triples, vivo.PredPositionInOrg)
	pos.Label = object(triples, vivo.PredLabel)
	pos.Interval = object(triples, vivo.PredDateTimeInterval)
	if pos.Interval == "" {
		return pos, nil
	}

	interval, err := kb.store.Triples(ctx, pos.Interval)
	if err != nil {
		return pos, err
	}
	pos.StartRef = object(interval, vivo.PredStart)
	pos.EndRef = object(interval, vivo.PredEnd)
	if pos.Start, err = kb.dateTimeValue(ctx, pos.StartRef); err != nil {
		return pos, err
	}
	if pos.End, err = kb.dateTimeValue(ctx, pos.EndRef); err != nil {
		return pos, err
	}
	return pos, nil
}

func (kb *KnowledgeBase) dateTimeValue(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	triples, err := kb.store.Triples(ctx, ref)
	if err != nil {
		return "", err
	}
	return object(triples, vivo.PredDateTime), nil
}

// CreateEntity mints a new person, and a position when the record carries
// one, and returns the additions with the new reference
func (kb *KnowledgeBase) CreateEntity(ctx context.Context, rec *model.PersonUpdate) ([]rdf.Triple, string, error) {
	m := kb.minter()
	uri, err := m.mint(ctx)
	if err != nil {
		return nil, "", err
	}

	add := vivo.PersonTriples(uri, rec)
	if rec.HasPosition() {
		pos, err := kb.newPosition(ctx, m, uri, rec)
		if err != nil {
			return nil, "", err
		}
		add = append(add, pos...)
	}

	if err := kb.store.Add(ctx, add); err != nil {
		return nil, "", err
	}
	return add, uri, nil
}

// ApplyUpdate brings the person in snap into agreement with rec and returns
// the additions and retractions. Managed values missing from rec and
// positions missing from HR are left as they are.
func (kb *KnowledgeBase) ApplyUpdate(ctx context.Context, snap *Entity, rec *model.PersonUpdate) ([]rdf.Triple, []rdf.Triple, error) {
	var add, sub []rdf.Triple
	uri := snap.URI

	// classes
	have := make(map[string]bool)
	for _, t := range snap.Triples {
		if t.Predicate == rdf.Untag(vivo.PredType) {
			have[t.Object] = true
		}
	}
	for _, class := range vivo.Classes(rec, true) {
		if !have[rdf.Untag(class)] {
			add = append(add, rdf.Resource(uri, vivo.PredType, class))
		}
	}

	// single-valued properties
	for _, want := range vivo.ManagedTriples(uri, rec) {
		a, s := replaceValue(snap.Triples, want)
		add = append(add, a...)
		sub = append(sub, s...)
	}

	m := kb.minter()
	posAdd, posSub, err := kb.reconcilePosition(ctx, m, snap, rec)
	if err != nil {
		return nil, nil, err
	}
	add = append(add, posAdd...)
	sub = append(sub, posSub...)

	// provenance only moves when something else did, so unchanged input
	// yields an empty changeset
	if len(add) > 0 || len(sub) > 0 {
		for _, want := range vivo.ProvenanceTriples(uri, rec) {
			a, s := replaceValue(snap.Triples, want)
			add = append(add, a...)
			sub = append(sub, s...)
		}
	}

	if err := kb.store.Remove(ctx, sub); err != nil {
		return nil, nil, err
	}
	if err := kb.store.Add(ctx, add); err != nil {
		return nil, nil, err
	}
	return add, sub, nil
}

// replaceValue compares the values held under want's predicate with want.
// It returns want when no held value matches and every held value that
// differs from it.
func replaceValue(held []rdf.Triple, want rdf.Triple) ([]rdf.Triple, []rdf.Triple) {
	found := false
	var stale []rdf.Triple
	for _, t := range held {
		if t.Predicate != want.Predicate {
			continue
		}
		if t.Object == want.Object && t.Literal == want.Literal {
			found = true
			continue
		}
		stale = append(stale, t)
	}
	if found {
		return nil, stale
	}
	return []rdf.Triple{want}, stale
}

// reconcilePosition adds the record's position when the person has none
// with the same organization, label and start, and otherwise moves the end
// date of the matching position to the one HR reports
func (kb *KnowledgeBase) reconcilePosition(ctx context.Context, m *minter, snap *Entity, rec *model.PersonUpdate) ([]rdf.Triple, []rdf.Triple, error) {
	if !rec.HasPosition() {
		return nil, nil, nil
	}

	start := ""
	if rec.StartDate != nil {
		start = vivo.FormatDateTime(*rec.StartDate)
	}

	var match *PositionSnapshot
	for i := range snap.Positions {
		p := &snap.Positions[i]
		if p.OrgURI == rec.PositionOrgURI && p.Label == rec.PositionLabel && p.Start == start {
			match = p
			break
		}
	}
	if match == nil {
		add, err := kb.newPosition(ctx, m, snap.URI, rec)
		return add, nil, err
	}

	if rec.EndDate == nil {
		return nil, nil, nil
	}
	end := vivo.FormatDateTime(*rec.EndDate)
	if match.End == end {
		return nil, nil, nil
	}

	var add, sub []rdf.Triple
	if match.EndRef != "" {
		sub = append(sub, rdf.Typed(match.EndRef, vivo.PredDateTime, match.End, rdf.XSDDateTime))
		add = append(add, rdf.Typed(match.EndRef, vivo.PredDateTime, end, rdf.XSDDateTime))
		return add, sub, nil
	}

	interval := match.Interval
	if interval == "" {
		var err error
		if interval, err = m.mint(ctx); err != nil {
			return nil, nil, err
		}
		add = append(add,
			rdf.Resource(match.URI, vivo.PredDateTimeInterval, interval),
			rdf.Resource(interval, vivo.PredType, vivo.TypeDateTimeInterval))
	}
	endRef, err := m.mint(ctx)
	if err != nil {
		return nil, nil, err
	}
	add = append(add, rdf.Resource(interval, vivo.PredEnd, endRef))
	add = append(add, vivo.DateTimeValueTriples(endRef, *rec.EndDate)...)
	return add, nil, nil
}

func (kb *KnowledgeBase) newPosition(ctx context.Context, m *minter, personURI string, rec *model.PersonUpdate) ([]rdf.Triple, error) {
	var refs vivo.PositionRefs
	var err error
	if refs.Position, err = m.mint(ctx); err != nil {
		return nil, err
	}
	if rec.StartDate != nil || rec.EndDate != nil {
		if refs.Interval, err = m.mint(ctx); err != nil {
			return nil, err
		}
	}
	if rec.StartDate != nil {
		if refs.Start, err = m.mint(ctx); err != nil {
			return nil, err
		}
	}
	if rec.EndDate != nil {
		if refs.End, err = m.mint(ctx); err != nil {
			return nil, err
		}
	}
	class := ""
	if kb.positions != nil {
		class = kb.positions.PositionClass(rec.PositionType)
	}
	return vivo.PositionTriples(personURI, refs, rec, class), nil
}

// IdentifierIndex maps every person identifier in the knowledge base to its
// reference. An identifier held by several references keeps the first.
func (kb *KnowledgeBase) IdentifierIndex(ctx context.Context) (map[string]string, error) {
	triples, err := kb.store.ByPredicate(ctx, rdf.Untag(vivo.PredUFID))
	if err != nil {
		return nil, err
	}
	index := make(map[string]string, len(triples))
	for _, t := range triples {
		if prev, dup := index[t.Object]; dup {
			kb.logger.Warn("Identifier held by several references",
				zap.String("ufid", t.Object),
				zap.String("kept", prev),
				zap.String("ignored", t.Subject))
			continue
		}
		index[t.Object] = t.Subject
	}
	return index, nil
}

// Triples returns every triple of ref
func (kb *KnowledgeBase) Triples(ctx context.Context, ref string) ([]rdf.Triple, error) {
	return kb.store.Triples(ctx, ref)
}

// Expand turns a local name into a reference in the knowledge base's
// namespace; full URIs are returned unchanged
func (kb *KnowledgeBase) Expand(name string) string {
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		return name
	}
	ns, _ := rdf.SplitURI(kb.prefix)
	return ns + name
}

// minter hands out unused references. It remembers what it minted so
// references of one fragment never collide before the fragment is stored.
type minter struct {
	kb    *KnowledgeBase
	taken map[string]bool
}

func (kb *KnowledgeBase) minter() *minter {
	return &minter{kb: kb, taken: make(map[string]bool)}
}

func (m *minter) mint(ctx context.Context) (string, error) {
	for {
		ref := m.kb.prefix + uuid.NewString()
		if m.taken[ref] {
			continue
		}
		used, err := m.kb.store.Exists(ctx, ref)
		if err != nil {
			return "", fmt.Errorf("failed to mint reference: %w", err)
		}
		if !used {
			m.taken[ref] = true
			return ref, nil
		}
	}
}

// object returns the first object of the tagged predicate in triples
func object(triples []rdf.Triple, tag string) string {
	pred := rdf.Untag(tag)
	for _, t := range triples {
		if t.Predicate == pred {
			return t.Object
		}
	}
	return ""
}
