// pkg/store/seed.go
package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mconlon17/vivo-person-ingest/pkg/rdf"
)

// LoadTriples reads a YAML list of triples. Tagged predicates and resource
// objects are expanded.
func LoadTriples(path string) ([]rdf.Triple, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read triples: %w", err)
	}
	var triples []rdf.Triple
	if err := yaml.Unmarshal(data, &triples); err != nil {
		return nil, fmt.Errorf("%s: failed to parse triples: %w", path, err)
	}
	for i, t := range triples {
		if t.Subject == "" || t.Predicate == "" {
			return nil, fmt.Errorf("%s: triple %d lacks a subject or predicate", path, i+1)
		}
		triples[i].Predicate = rdf.Untag(t.Predicate)
		if !t.Literal {
			triples[i].Object = rdf.Untag(t.Object)
		}
		if t.Datatype != "" {
			triples[i].Datatype = rdf.Untag(t.Datatype)
		}
	}
	return triples, nil
}
