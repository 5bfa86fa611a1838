// pkg/exceptions/registry.go

// Package exceptions holds the policy lists that keep people, references,
// departments and position labels out of the knowledge base.
package exceptions

import (
	"context"
	"fmt"
	"regexp"

	"github.com/mconlon17/vivo-person-ingest/pkg/lookup"
)

// Registry is the read-only set of exclusion lists for one run
type Registry struct {
	deptPatterns []*regexp.Regexp
	identifiers  map[string]struct{}
	references   map[string]struct{}
	labels       map[string]struct{}
}

// New compiles a registry. Department patterns are regular expressions
// matched anywhere in a department id.
func New(deptPatterns, identifiers, references, labels []string) (*Registry, error) {
	r := &Registry{
		deptPatterns: make([]*regexp.Regexp, 0, len(deptPatterns)),
		identifiers:  toSet(identifiers),
		references:   toSet(references),
		labels:       toSet(labels),
	}
	for _, p := range deptPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid department exception pattern %q: %w", p, err)
		}
		r.deptPatterns = append(r.deptPatterns, re)
	}
	return r, nil
}

// Load reads the four lists from their stores
func Load(ctx context.Context, depts, identifiers, references, labels lookup.Store) (*Registry, error) {
	lists := make([][]string, 4)
	for i, s := range []lookup.Store{depts, identifiers, references, labels} {
		keys, err := s.Keys(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", s.Name(), err)
		}
		lists[i] = keys
	}
	return New(lists[0], lists[1], lists[2], lists[3])
}

// IsDepartmentAllowed reports whether deptID matches none of the
// department exception patterns
func (r *Registry) IsDepartmentAllowed(deptID string) bool {
	for _, re := range r.deptPatterns {
		if re.MatchString(deptID) {
			return false
		}
	}
	return true
}

// IsIdentifierExcluded reports whether the person identifier is excluded
func (r *Registry) IsIdentifierExcluded(id string) bool {
	_, ok := r.identifiers[id]
	return ok
}

// IsReferenceExcluded reports whether the knowledge-base reference is
// excluded
func (r *Registry) IsReferenceExcluded(ref string) bool {
	_, ok := r.references[ref]
	return ok
}

// IsLabelExcluded reports whether the position label is excluded
func (r *Registry) IsLabelExcluded(label string) bool {
	_, ok := r.labels[label]
	return ok
}

// Sizes returns the number of entries of each list, for logging
func (r *Registry) Sizes() (depts, identifiers, references, labels int) {
	return len(r.deptPatterns), len(r.identifiers), len(r.references), len(r.labels)
}

func toSet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}
