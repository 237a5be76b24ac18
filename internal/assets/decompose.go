package assets

import (
	"fmt"
	"sort"

	"github.com/Minalinnski/ai-art-generation/internal/domain"
)

const defaultResolution = "1024x1024"

// Decomposer expands declared content trees into flat generation task
// lists against the module registry.
type Decomposer struct {
	registry *Registry
}

func NewDecomposer(registry *Registry) *Decomposer {
	return &Decomposer{registry: registry}
}

// Decompose flattens a request's content and custom content into the
// ordered task list for one module. Categories and subcategories are
// walked in sorted order so the same request always yields the same
// task sequence.
func (d *Decomposer) Decompose(req domain.GenerationRequest) ([]domain.GenerationTask, error) {
	schema, ok := d.registry.Module(req.Module)
	if !ok {
		return nil, fmt.Errorf("%w: unknown module %q, available: %v", domain.ErrConfiguration, req.Module, d.registry.Names())
	}
	if req.Content.Empty() && len(req.CustomContent) == 0 {
		return nil, fmt.Errorf("%w: module %s request declares no content", domain.ErrValidation, req.Module)
	}

	fallbackRes := req.DefaultResolution
	if fallbackRes == "" {
		fallbackRes = schema.DefaultResolution
	}
	if fallbackRes == "" {
		fallbackRes = defaultResolution
	}

	tasks, err := ExpandTree(req.Content, fallbackRes, domain.ProvenanceDeclared)
	if err != nil {
		return nil, err
	}
	for _, category := range sortedKeys(req.CustomContent) {
		items := req.CustomContent[category]
		custom, err := expandItems("custom", category, items, fallbackRes, domain.ProvenanceDeclared)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, custom...)
	}

	seen := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		id := t.Identity()
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate asset %s in module %s", domain.ErrValidation, id, req.Module)
		}
		seen[id] = struct{}{}
	}
	return tasks, nil
}

// ExpandTree flattens one content tree into tasks. It is shared by the
// request path and by reference archive ingestion, which replays the
// coverage it found as a tree of its own.
func ExpandTree(tree domain.ContentTree, fallbackRes string, provenance domain.Provenance) ([]domain.GenerationTask, error) {
	var tasks []domain.GenerationTask
	for _, category := range sortedKeys(tree) {
		subcategories := tree[category]
		for _, subcategory := range sortedKeys(subcategories) {
			expanded, err := expandItems(category, subcategory, subcategories[subcategory], fallbackRes, provenance)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, expanded...)
		}
	}
	return tasks, nil
}

func expandItems(category, subcategory string, items []domain.AssetItem, fallbackRes string, provenance domain.Provenance) ([]domain.GenerationTask, error) {
	tasks := make([]domain.GenerationTask, 0, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("%s/%s: %w", category, subcategory, err)
		}
		resolution := item.Resolution
		if resolution == "" {
			resolution = fallbackRes
		}
		for i := 1; i <= item.Count; i++ {
			tasks = append(tasks, domain.GenerationTask{
				Category:    category,
				Subcategory: subcategory,
				Filename:    item.Filename,
				Description: item.Description,
				Index:       i,
				Resolution:  resolution,
				Provenance:  provenance,
			})
		}
	}
	return tasks, nil
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
