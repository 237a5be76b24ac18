package ai

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ModelCatalog maps provider id -> model name -> model info. It mirrors
// the layout of the optional models YAML file.
type ModelCatalog map[string]map[string]ModelInfo

// LoadModelCatalog reads a provider model table from a YAML file. An
// empty path returns a nil catalog, meaning compiled-in defaults apply.
func LoadModelCatalog(path string) (ModelCatalog, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model catalog: %w", err)
	}
	var wrapper struct {
		Providers ModelCatalog `yaml:"providers"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parse model catalog: %w", err)
	}
	return wrapper.Providers, nil
}

// ModelsFor returns the catalog entry for a provider, or nil when the
// catalog does not override it.
func (c ModelCatalog) ModelsFor(provider string) map[string]ModelInfo {
	if c == nil {
		return nil
	}
	return c[provider]
}
