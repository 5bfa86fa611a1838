// pkg/store/store.go

// Package store keeps the knowledge-base triples and implements the person
// operations the reconciliation needs on top of them.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/mconlon17/vivo-person-ingest/pkg/rdf"
)

// ErrNotFound is returned when a reference has no triples
var ErrNotFound = errors.New("entity not found")

// TripleStore is the primitive query/assert surface of a triple backend.
// Predicates and objects are full URIs.
type TripleStore interface {
	// Subjects returns, ascending, every subject having predicate with the
	// given object value
	Subjects(ctx context.Context, predicate, object string) ([]string, error)

	// Triples returns every triple of subject sorted by predicate and object
	Triples(ctx context.Context, subject string) ([]rdf.Triple, error)

	// ByPredicate returns every triple with predicate sorted by subject
	ByPredicate(ctx context.Context, predicate string) ([]rdf.Triple, error)

	// Exists reports whether uri is used as a subject or resource object
	Exists(ctx context.Context, uri string) (bool, error)

	// Add asserts triples; already present triples are ignored
	Add(ctx context.Context, triples []rdf.Triple) error

	// Remove retracts triples; absent triples are ignored
	Remove(ctx context.Context, triples []rdf.Triple) error

	Close() error
}

// MemoryStore is a TripleStore held in memory, indexed by subject, by
// predicate and by predicate/object value
type MemoryStore struct {
	mu          sync.RWMutex
	bySubject   map[string]map[string]rdf.Triple
	byPredicate map[string]map[string]rdf.Triple
	byValue     map[valueKey]map[string]int // subject -> triples carrying the value
	refs        map[string]int              // resource objects -> use count
}

type valueKey struct {
	predicate string
	object    string
}

// NewMemoryStore creates a store holding triples
func NewMemoryStore(triples ...rdf.Triple) *MemoryStore {
	s := &MemoryStore{
		bySubject:   make(map[string]map[string]rdf.Triple),
		byPredicate: make(map[string]map[string]rdf.Triple),
		byValue:     make(map[valueKey]map[string]int),
		refs:        make(map[string]int),
	}
	s.add(triples)
	return s
}

// Subjects implements TripleStore
func (s *MemoryStore) Subjects(_ context.Context, predicate, object string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	holders := s.byValue[valueKey{predicate, object}]
	subjects := make([]string, 0, len(holders))
	for subject := range holders {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)
	return subjects, nil
}

// Triples implements TripleStore
func (s *MemoryStore) Triples(_ context.Context, subject string) ([]rdf.Triple, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]rdf.Triple, 0, len(s.bySubject[subject]))
	for _, t := range s.bySubject[subject] {
		out = append(out, t)
	}
	rdf.Sort(out)
	return out, nil
}

// ByPredicate implements TripleStore
func (s *MemoryStore) ByPredicate(_ context.Context, predicate string) ([]rdf.Triple, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]rdf.Triple, 0, len(s.byPredicate[predicate]))
	for _, t := range s.byPredicate[predicate] {
		out = append(out, t)
	}
	rdf.Sort(out)
	return out, nil
}

// Exists implements TripleStore
func (s *MemoryStore) Exists(_ context.Context, uri string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, subject := s.bySubject[uri]
	return subject || s.refs[uri] > 0, nil
}

// Add implements TripleStore
func (s *MemoryStore) Add(_ context.Context, triples []rdf.Triple) error {
	s.add(triples)
	return nil
}

// Remove implements TripleStore
func (s *MemoryStore) Remove(_ context.Context, triples []rdf.Triple) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range triples {
		key := t.Key()
		bucket := s.bySubject[t.Subject]
		if _, ok := bucket[key]; !ok {
			continue
		}
		delete(bucket, key)
		if len(bucket) == 0 {
			delete(s.bySubject, t.Subject)
		}

		preds := s.byPredicate[t.Predicate]
		delete(preds, key)
		if len(preds) == 0 {
			delete(s.byPredicate, t.Predicate)
		}

		vk := valueKey{t.Predicate, t.Object}
		holders := s.byValue[vk]
		if holders[t.Subject]--; holders[t.Subject] <= 0 {
			delete(holders, t.Subject)
		}
		if len(holders) == 0 {
			delete(s.byValue, vk)
		}

		if !t.Literal {
			if s.refs[t.Object]--; s.refs[t.Object] <= 0 {
				delete(s.refs, t.Object)
			}
		}
	}
	return nil
}

// Len returns the number of triples held
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, triples := range s.bySubject {
		n += len(triples)
	}
	return n
}

// Close implements TripleStore
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) add(triples []rdf.Triple) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range triples {
		bucket, ok := s.bySubject[t.Subject]
		if !ok {
			bucket = make(map[string]rdf.Triple)
			s.bySubject[t.Subject] = bucket
		}
		key := t.Key()
		if _, dup := bucket[key]; dup {
			continue
		}
		bucket[key] = t

		preds, ok := s.byPredicate[t.Predicate]
		if !ok {
			preds = make(map[string]rdf.Triple)
			s.byPredicate[t.Predicate] = preds
		}
		preds[key] = t

		vk := valueKey{t.Predicate, t.Object}
		holders, ok := s.byValue[vk]
		if !ok {
			holders = make(map[string]int)
			s.byValue[vk] = holders
		}
		holders[t.Subject]++

		if !t.Literal {
			s.refs[t.Object]++
		}
	}
}
