package assets

import (
	"sync"

	"github.com/Minalinnski/ai-art-generation/internal/domain"
)

// JobIndex is the in-memory record of finished jobs, kept so outputs
// can be bundled for download after the synchronous response went out.
// Entries live for the process lifetime.
type JobIndex struct {
	mu   sync.RWMutex
	jobs map[string][]domain.GenerationResult
}

func NewJobIndex() *JobIndex {
	return &JobIndex{jobs: make(map[string][]domain.GenerationResult)}
}

// Record stores one module job's outputs under its job ID.
func (x *JobIndex) Record(res domain.ModuleJobResult) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.jobs[res.JobID] = res.Outputs
}

// RecordComposite stores the composite job under its own ID and each
// member module under its module job ID.
func (x *JobIndex) RecordComposite(res domain.CompositeJobResult) {
	x.mu.Lock()
	defer x.mu.Unlock()
	var all []domain.GenerationResult
	for _, m := range res.Modules {
		if m.JobID != "" {
			x.jobs[m.JobID] = m.Outputs
		}
		all = append(all, m.Outputs...)
	}
	x.jobs[res.JobID] = all
}

// Outputs returns the recorded outputs for a job ID.
func (x *JobIndex) Outputs(jobID string) ([]domain.GenerationResult, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	outputs, ok := x.jobs[jobID]
	return outputs, ok
}
