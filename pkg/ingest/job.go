// pkg/ingest/job.go
package ingest

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Output file names of the current-status sweep
const (
	CurrentAddFile = "current_add.rdf"
	CurrentSubFile = "current_sub.rdf"
)

// Job describes one ingest run and where its outputs go
type Job struct {
	ID        string    // Unique run identifier, logged with every banner line
	Input     string    // HR extract path or source name
	BaseName  string    // Input path without its extension
	AddPath   string    // Additions document
	SubPath   string    // Retractions document
	ExcPath   string    // Diagnostics file
	CreatedAt time.Time // Harvest time stamped on every record
}

// NewJob derives the output paths from the extract path: positions.csv
// gives positions_add.rdf, positions_sub.rdf and positions_exc.txt next to
// the input
func NewJob(input string) Job {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return Job{
		ID:        uuid.New().String(),
		Input:     input,
		BaseName:  base,
		AddPath:   base + "_add.rdf",
		SubPath:   base + "_sub.rdf",
		ExcPath:   base + "_exc.txt",
		CreatedAt: time.Now(),
	}
}

// WithOutputDir places the outputs in dir, keeping their file names
func (j Job) WithOutputDir(dir string) Job {
	if dir == "" {
		return j
	}
	j.AddPath = filepath.Join(dir, filepath.Base(j.AddPath))
	j.SubPath = filepath.Join(dir, filepath.Base(j.SubPath))
	j.ExcPath = filepath.Join(dir, filepath.Base(j.ExcPath))
	return j
}
