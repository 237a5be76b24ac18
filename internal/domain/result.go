package domain

import "time"

// JobStatus is the aggregated outcome of a module or composite job.
type JobStatus string

const (
	StatusCompleted        JobStatus = "completed"
	StatusPartialCompleted JobStatus = "partial_completed"
	StatusFailed           JobStatus = "failed"
)

// StatusFor applies the aggregation rule: completed iff every task
// succeeded and at least one ran, failed iff none succeeded, partial
// otherwise.
func StatusFor(successes, total int) JobStatus {
	switch {
	case total > 0 && successes == total:
		return StatusCompleted
	case successes == 0:
		return StatusFailed
	default:
		return StatusPartialCompleted
	}
}

// GenerationResult is the per-task output record handed back to the
// caller for persistence bookkeeping.
type GenerationResult struct {
	StorageKey  string `json:"storage_key"`
	URL         string `json:"url"`
	FileSize    int64  `json:"file_size"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Filename    string `json:"filename"`
	Index       int    `json:"index"`
	Resolution  string `json:"resolution"`
}

// ModuleJobResult aggregates one module's generation run.
type ModuleJobResult struct {
	JobID        string             `json:"job_id"`
	Module       string             `json:"module"`
	Status       JobStatus          `json:"status"`
	Outputs      []GenerationResult `json:"outputs"`
	SuccessCount int                `json:"completed_tasks"`
	TotalCount   int                `json:"total_tasks"`
	Style        StyleDescriptor    `json:"art_style_used"`
	Duration     time.Duration      `json:"-"`
	Error        string             `json:"error,omitempty"`
}

// CompositeJobResult aggregates a complete-game job across modules.
type CompositeJobResult struct {
	JobID        string                     `json:"job_id"`
	Status       JobStatus                  `json:"status"`
	TotalOutputs int                        `json:"total_outputs"`
	Modules      map[string]ModuleJobResult `json:"module_results"`
	Duration     time.Duration              `json:"-"`
}

// CompositeStatusFor aggregates module statuses: completed iff every
// module completed, partial if any module produced output, failed
// otherwise.
func CompositeStatusFor(modules map[string]ModuleJobResult) JobStatus {
	if len(modules) == 0 {
		return StatusFailed
	}
	allCompleted := true
	anyProgress := false
	for _, m := range modules {
		switch m.Status {
		case StatusCompleted:
			anyProgress = true
		case StatusPartialCompleted:
			anyProgress = true
			allCompleted = false
		default:
			allCompleted = false
		}
	}
	switch {
	case allCompleted:
		return StatusCompleted
	case anyProgress:
		return StatusPartialCompleted
	default:
		return StatusFailed
	}
}
