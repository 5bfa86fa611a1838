// pkg/rdf/xml.go
package rdf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// Header returns the RDF/XML document opening with the namespace
// declarations
func Header() string {
	var sb strings.Builder
	sb.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	sb.WriteString("<rdf:RDF")
	for _, prefix := range prefixOrder {
		fmt.Fprintf(&sb, "\n    xmlns:%s=\"%s\"", prefix, Namespaces[prefix])
	}
	sb.WriteString(">\n")
	return sb.String()
}

// Footer closes the document opened by Header
func Footer() string {
	return "</rdf:RDF>\n"
}

// Fragment renders triples as rdf:Description blocks. Consecutive triples
// with the same subject share a block; order is otherwise preserved.
func Fragment(triples []Triple) string {
	var sb strings.Builder
	for i := 0; i < len(triples); {
		subject := triples[i].Subject
		fmt.Fprintf(&sb, "<rdf:Description rdf:about=\"%s\">\n", xmlEscaper.Replace(subject))
		for ; i < len(triples) && triples[i].Subject == subject; i++ {
			sb.WriteString("    ")
			sb.WriteString(property(triples[i]))
			sb.WriteByte('\n')
		}
		sb.WriteString("</rdf:Description>\n")
	}
	return sb.String()
}

func property(t Triple) string {
	name, decl := qname(t.Predicate)
	switch {
	case !t.Literal:
		return fmt.Sprintf("<%s%s rdf:resource=\"%s\"/>", name, decl, xmlEscaper.Replace(t.Object))
	case t.Datatype != "":
		return fmt.Sprintf("<%s%s rdf:datatype=\"%s\">%s</%s>",
			name, decl, xmlEscaper.Replace(t.Datatype), xmlEscaper.Replace(t.Object), name)
	default:
		return fmt.Sprintf("<%s%s>%s</%s>", name, decl, xmlEscaper.Replace(t.Object), name)
	}
}

// qname returns the element name for a predicate and, when its namespace is
// not declared in the header, an inline declaration
func qname(predicate string) (string, string) {
	tagged := Tag(predicate)
	if tagged != predicate {
		return tagged, ""
	}
	ns, local := SplitURI(predicate)
	return "j.0:" + local, fmt.Sprintf(" xmlns:j.0=\"%s\"", xmlEscaper.Replace(ns))
}

// Document renders a complete RDF/XML document
func Document(triples []Triple) string {
	return Header() + Fragment(triples) + Footer()
}

// WriteDocument writes a complete document to w, escaping non-ASCII runes as
// numeric character references
func WriteDocument(w io.Writer, triples []Triple) error {
	aw := NewASCIIWriter(w)
	if _, err := aw.WriteString(Header()); err != nil {
		return err
	}
	if _, err := aw.WriteString(Fragment(triples)); err != nil {
		return err
	}
	_, err := aw.WriteString(Footer())
	return err
}

// WriteFile writes a complete document to path
func WriteFile(path string, triples []Triple) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	bw := bufio.NewWriter(f)
	if err := WriteDocument(bw, triples); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return f.Close()
}
