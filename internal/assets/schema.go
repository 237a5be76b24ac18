package assets

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Minalinnski/ai-art-generation/internal/domain"
)

// CategorySchema describes one content category and the subcategories
// it accepts, in declaration order.
type CategorySchema struct {
	Name          string   `yaml:"name"`
	Subcategories []string `yaml:"subcategories"`
}

// ModuleSchema is the content contract of one asset module.
type ModuleSchema struct {
	Name              string           `yaml:"name"`
	Description       string           `yaml:"description"`
	Categories        []CategorySchema `yaml:"categories"`
	DefaultProvider   string           `yaml:"default_provider"`
	DefaultModel      string           `yaml:"default_model"`
	SupportedModels   []string         `yaml:"supported_models"`
	DefaultResolution string           `yaml:"default_resolution"`
}

// Category returns the schema for name, if declared.
func (m ModuleSchema) Category(name string) (CategorySchema, bool) {
	for _, c := range m.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return CategorySchema{}, false
}

// HasSubcategory reports whether category/subcategory is a declared pair.
func (m ModuleSchema) HasSubcategory(category, subcategory string) bool {
	c, ok := m.Category(category)
	if !ok {
		return false
	}
	for _, s := range c.Subcategories {
		if s == subcategory {
			return true
		}
	}
	return false
}

// SupportsModel reports whether model is usable for this module. An
// empty supported list accepts any model.
func (m ModuleSchema) SupportsModel(model string) bool {
	if len(m.SupportedModels) == 0 {
		return true
	}
	for _, s := range m.SupportedModels {
		if s == model {
			return true
		}
	}
	return false
}

// Registry holds the known asset modules in a stable order.
type Registry struct {
	modules map[string]ModuleSchema
	order   []string
}

// NewRegistry builds the registry from the compiled-in module schemas.
func NewRegistry() *Registry {
	r := &Registry{modules: make(map[string]ModuleSchema)}
	for _, m := range defaultModules {
		r.modules[m.Name] = m
		r.order = append(r.order, m.Name)
	}
	return r
}

// LoadRegistry reads module schemas from a YAML file. Declaration order
// is preserved.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read module registry: %v", domain.ErrConfiguration, err)
	}
	var doc struct {
		Modules []ModuleSchema `yaml:"modules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse module registry %s: %v", domain.ErrConfiguration, path, err)
	}
	if len(doc.Modules) == 0 {
		return nil, fmt.Errorf("%w: module registry %s declares no modules", domain.ErrConfiguration, path)
	}
	r := &Registry{modules: make(map[string]ModuleSchema, len(doc.Modules))}
	for _, m := range doc.Modules {
		if m.Name == "" {
			return nil, fmt.Errorf("%w: module registry %s has a module without a name", domain.ErrConfiguration, path)
		}
		if _, dup := r.modules[m.Name]; dup {
			return nil, fmt.Errorf("%w: module %q declared twice in %s", domain.ErrConfiguration, m.Name, path)
		}
		r.modules[m.Name] = m
		r.order = append(r.order, m.Name)
	}
	return r, nil
}

// Module returns the schema for name.
func (r *Registry) Module(name string) (ModuleSchema, bool) {
	m, ok := r.modules[name]
	return m, ok
}

// Names lists module names in declaration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Schemas lists module schemas in declaration order.
func (r *Registry) Schemas() []ModuleSchema {
	out := make([]ModuleSchema, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.modules[name])
	}
	return out
}

var defaultModules = []ModuleSchema{
	{
		Name:        "symbols",
		Description: "Slot machine symbol artwork",
		Categories: []CategorySchema{
			{Name: "base_symbols", Subcategories: []string{"low_value", "high_value"}},
			{Name: "special_symbols", Subcategories: []string{"wild", "scatter", "bonus"}},
		},
		DefaultProvider:   "openai",
		DefaultModel:      "gpt-image-1",
		SupportedModels:   []string{"gpt-image-1", "dall-e-3", "flux-schnell", "sdxl"},
		DefaultResolution: "1024x1024",
	},
	{
		Name:        "ui",
		Description: "Game interface controls and panels",
		Categories: []CategorySchema{
			{Name: "buttons", Subcategories: []string{"main_controls", "toggle_controls", "icon_buttons"}},
			{Name: "panels", Subcategories: []string{"info_panels", "game_area"}},
		},
		DefaultProvider:   "openai",
		DefaultModel:      "gpt-image-1",
		SupportedModels:   []string{"gpt-image-1", "dall-e-3", "flux-schnell", "sdxl"},
		DefaultResolution: "1024x1024",
	},
	{
		Name:        "backgrounds",
		Description: "Scene backgrounds and framing artwork",
		Categories: []CategorySchema{
			{Name: "background_set", Subcategories: []string{"background_scene", "panel_frame", "filled_panel_frame", "tile_area"}},
		},
		DefaultProvider:   "openai",
		DefaultModel:      "gpt-image-1",
		SupportedModels:   []string{"gpt-image-1", "dall-e-3", "flux-schnell", "sdxl"},
		DefaultResolution: "1024x1024",
	},
}
