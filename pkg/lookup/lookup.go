// pkg/lookup/lookup.go

// Package lookup provides the read-only keyed stores consulted during
// validation: contact and privacy records, and the exception lists.
package lookup

import (
	"context"
	"sort"
)

// Store names
const (
	Contact            = "contact"
	Privacy            = "privacy"
	DeptExceptions     = "deptid_exceptions"
	UFIDExceptions     = "ufid_exceptions"
	URIExceptions      = "uri_exceptions"
	PositionExceptions = "position_exceptions"
)

// Store is a keyed, read-only store. List stores return an empty field map
// for members.
type Store interface {
	// Name identifies the store in logs and errors
	Name() string

	// Get returns the fields stored under key
	Get(ctx context.Context, key string) (map[string]string, bool, error)

	// Keys returns every key in ascending order
	Keys(ctx context.Context) ([]string, error)

	// Close releases the store
	Close() error
}

// MemoryStore is a Store held entirely in memory
type MemoryStore struct {
	name    string
	records map[string]map[string]string
}

// NewMemoryStore creates a store over records
func NewMemoryStore(name string, records map[string]map[string]string) *MemoryStore {
	if records == nil {
		records = make(map[string]map[string]string)
	}
	return &MemoryStore{name: name, records: records}
}

// NewList creates a membership-only store
func NewList(name string, keys []string) *MemoryStore {
	records := make(map[string]map[string]string, len(keys))
	for _, k := range keys {
		records[k] = map[string]string{}
	}
	return NewMemoryStore(name, records)
}

// Name implements Store
func (s *MemoryStore) Name() string { return s.name }

// Get implements Store
func (s *MemoryStore) Get(_ context.Context, key string) (map[string]string, bool, error) {
	fields, ok := s.records[key]
	return fields, ok, nil
}

// Keys implements Store
func (s *MemoryStore) Keys(_ context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Len returns the number of keys
func (s *MemoryStore) Len() int { return len(s.records) }

// Close implements Store
func (s *MemoryStore) Close() error { return nil }
