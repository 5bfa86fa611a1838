// pkg/rdf/changeset.go
package rdf

// Changeset accumulates additions and retractions across a run. Fragments
// keep the order they were appended in.
type Changeset struct {
	Additions   []Triple
	Retractions []Triple
}

// NewChangeset creates an empty changeset
func NewChangeset() *Changeset {
	return &Changeset{
		Additions:   make([]Triple, 0),
		Retractions: make([]Triple, 0),
	}
}

// Add appends an addition fragment
func (c *Changeset) Add(fragment ...Triple) {
	c.Additions = append(c.Additions, fragment...)
}

// Retract appends a retraction fragment
func (c *Changeset) Retract(fragment ...Triple) {
	c.Retractions = append(c.Retractions, fragment...)
}

// Empty reports whether nothing has been accumulated
func (c *Changeset) Empty() bool {
	return len(c.Additions) == 0 && len(c.Retractions) == 0
}

// WriteFiles writes the additions and retractions documents
func (c *Changeset) WriteFiles(addPath, subPath string) error {
	if err := WriteFile(addPath, c.Additions); err != nil {
		return err
	}
	return WriteFile(subPath, c.Retractions)
}
