package handlers

import "net/http"

// Modules handles GET /v1/assets/modules: the declared module schemas.
func (a *App) Modules(w http.ResponseWriter, r *http.Request) {
	registry := a.Orchestrator.Registry()
	modules := make([]map[string]any, 0)
	for _, schema := range registry.Schemas() {
		categories := make([]map[string]any, 0, len(schema.Categories))
		for _, c := range schema.Categories {
			categories = append(categories, map[string]any{
				"name":          c.Name,
				"subcategories": c.Subcategories,
			})
		}
		modules = append(modules, map[string]any{
			"name":               schema.Name,
			"description":        schema.Description,
			"categories":         categories,
			"default_provider":   schema.DefaultProvider,
			"default_model":      schema.DefaultModel,
			"supported_models":   schema.SupportedModels,
			"default_resolution": schema.DefaultResolution,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"modules": modules})
}
