// pkg/rdf/triple.go

// Package rdf holds the triple model shared by the knowledge-base store and
// the changeset writer, plus RDF/XML rendering.
package rdf

import (
	"sort"
	"strings"
)

// XSD datatypes used by the person model
const (
	XSDDateTime = "http://www.w3.org/2001/XMLSchema#dateTime"
	XSDString   = "http://www.w3.org/2001/XMLSchema#string"
)

// Triple represents a single assertion. Object is a URI unless Literal is
// set, in which case Datatype may name an XSD type.
type Triple struct {
	Subject   string `json:"subject" yaml:"subject"`
	Predicate string `json:"predicate" yaml:"predicate"`
	Object    string `json:"object" yaml:"object"`
	Literal   bool   `json:"literal,omitempty" yaml:"literal,omitempty"`
	Datatype  string `json:"datatype,omitempty" yaml:"datatype,omitempty"`
}

// Resource builds a triple whose object is a URI. Tagged names such as
// "rdf:type" are expanded.
func Resource(subject, predicate, object string) Triple {
	return Triple{Subject: subject, Predicate: Untag(predicate), Object: Untag(object)}
}

// Literal builds a plain literal triple
func Literal(subject, predicate, value string) Triple {
	return Triple{Subject: subject, Predicate: Untag(predicate), Object: value, Literal: true}
}

// Typed builds a datatyped literal triple
func Typed(subject, predicate, value, datatype string) Triple {
	return Triple{Subject: subject, Predicate: Untag(predicate), Object: value, Literal: true, Datatype: Untag(datatype)}
}

// Key identifies a triple for set comparisons
func (t Triple) Key() string {
	kind := "r"
	if t.Literal {
		kind = "l"
	}
	return t.Subject + "\x00" + t.Predicate + "\x00" + kind + "\x00" + t.Object
}

// Namespaces maps prefixes to namespace URIs. ufv and ufVivo are the same
// namespace.
var Namespaces = map[string]string{
	"rdf":    "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
	"rdfs":   "http://www.w3.org/2000/01/rdf-schema#",
	"xsd":    "http://www.w3.org/2001/XMLSchema#",
	"owl":    "http://www.w3.org/2002/07/owl#",
	"vitro":  "http://vitro.mannlib.cornell.edu/ns/vitro/0.7#",
	"bibo":   "http://purl.org/ontology/bibo/",
	"foaf":   "http://xmlns.com/foaf/0.1/",
	"vivo":   "http://vivoweb.org/ontology/core#",
	"ufVivo": "http://vivo.ufl.edu/ontology/vivo-ufl/",
	"ufv":    "http://vivo.ufl.edu/ontology/vivo-ufl/",
}

// prefixOrder fixes the order namespaces are declared in and the preferred
// prefix when tagging
var prefixOrder = []string{"rdf", "rdfs", "xsd", "owl", "vitro", "bibo", "foaf", "vivo", "ufVivo"}

// Untag expands a prefixed name ("vivo:Position") to a full URI. Anything
// that is not a known prefixed name is returned unchanged.
func Untag(name string) string {
	prefix, local, ok := strings.Cut(name, ":")
	if !ok || strings.HasPrefix(local, "//") {
		return name
	}
	ns, known := Namespaces[prefix]
	if !known {
		return name
	}
	return ns + local
}

// Tag shortens a URI to prefix:local when its namespace is known
func Tag(uri string) string {
	for _, prefix := range prefixOrder {
		ns := Namespaces[prefix]
		if strings.HasPrefix(uri, ns) && len(uri) > len(ns) {
			return prefix + ":" + uri[len(ns):]
		}
	}
	return uri
}

// SplitURI splits a URI into namespace and local name at the last '#' or '/'
func SplitURI(uri string) (string, string) {
	i := strings.LastIndexAny(uri, "#/")
	if i < 0 || i == len(uri)-1 {
		return "", uri
	}
	return uri[:i+1], uri[i+1:]
}

// Sort orders triples by subject, predicate, object
func Sort(triples []Triple) {
	sort.SliceStable(triples, func(i, j int) bool {
		a, b := triples[i], triples[j]
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		if a.Predicate != b.Predicate {
			return a.Predicate < b.Predicate
		}
		return a.Object < b.Object
	})
}
