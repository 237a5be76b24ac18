package domain

import "fmt"

// Provenance records where a generation task originated.
type Provenance string

const (
	ProvenanceDeclared  Provenance = "declared"
	ProvenanceReference Provenance = "reference"
)

// GenerationTask is one atomic unit of generation work. Tasks are derived
// at decomposition time, consumed by the executor and never persisted.
type GenerationTask struct {
	Category    string
	Subcategory string
	Filename    string
	Description string
	Index       int
	Resolution  string
	Provenance  Provenance
}

// Key returns the lookup key used for reference prompt and image maps.
func (t GenerationTask) Key() string {
	return fmt.Sprintf("%s.%s.%s", t.Category, t.Subcategory, t.Filename)
}

// Identity returns the unique identity of the task within a module's task
// set, including the expansion index.
func (t GenerationTask) Identity() string {
	return fmt.Sprintf("%s.%s.%s.%d", t.Category, t.Subcategory, t.Filename, t.Index)
}
