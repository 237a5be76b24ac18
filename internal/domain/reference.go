package domain

import (
	"sort"
	"strings"
)

// CategoryCoverage describes how well one archive category matched the
// module's expected subcategory vocabulary.
type CategoryCoverage struct {
	Expected        []string `json:"expected"`
	Actual          []string `json:"actual"`
	CoveragePercent float64  `json:"coverage_percentage"`
	ItemCount       int      `json:"asset_items_count"`
	ImageCount      int      `json:"image_items_count"`
}

// CoverageReport is the non-fatal structural report produced by archive
// ingestion. It annotates the bundle and never blocks processing.
type CoverageReport struct {
	MissingCategories    []string                    `json:"missing_categories"`
	UnexpectedCategories []string                    `json:"unexpected_categories"`
	Warnings             []string                    `json:"warnings"`
	Categories           map[string]CategoryCoverage `json:"coverage"`
}

// ReferenceBundle is the parsed form of an uploaded reference archive:
// an asset tree shaped like declared content, plus prompt and signed-URL
// lookup maps keyed by "category.subcategory.filename" (with coarser
// "category.subcategory" and "category" fallback entries, first seen
// wins). Temporary storage objects behind the signed URLs are owned by
// the request that built the bundle.
type ReferenceBundle struct {
	Description string
	Items       ContentTree
	Prompts     map[string]string
	ImageURLs   map[string]string
	TempKeys    []string
	Coverage    CoverageReport
}

// PromptFor returns the best-match reference prompt for a task: exact
// key first, then subcategory, then category.
func (b *ReferenceBundle) PromptFor(task GenerationTask) string {
	if b == nil || len(b.Prompts) == 0 {
		return ""
	}
	for _, key := range lookupKeys(task) {
		if prompt, ok := b.Prompts[key]; ok {
			return prompt
		}
	}
	return ""
}

// ImageURLFor returns the best-match reference image URL for a task
// using the same three-level lookup as PromptFor.
func (b *ReferenceBundle) ImageURLFor(task GenerationTask) string {
	if b == nil || len(b.ImageURLs) == 0 {
		return ""
	}
	for _, key := range lookupKeys(task) {
		if url, ok := b.ImageURLs[key]; ok {
			return url
		}
	}
	// Last resort: substring scan, in sorted key order so the match is
	// deterministic.
	keys := make([]string, 0, len(b.ImageURLs))
	for key := range b.ImageURLs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if strings.Contains(key, task.Category+"."+task.Subcategory) || strings.Contains(key, task.Filename) {
			return b.ImageURLs[key]
		}
	}
	return ""
}

func lookupKeys(task GenerationTask) [3]string {
	return [3]string{
		task.Category + "." + task.Subcategory + "." + task.Filename,
		task.Category + "." + task.Subcategory,
		task.Category,
	}
}
