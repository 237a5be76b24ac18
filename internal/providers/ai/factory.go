package ai

import (
	"fmt"
	"sort"

	"github.com/Minalinnski/ai-art-generation/internal/domain"
)

// Factory resolves inference providers by id. Providers are registered
// once at startup; lookup never probes capabilities at runtime.
type Factory struct {
	providers map[string]Provider
	fallback  string
}

func NewFactory(defaultProvider string) *Factory {
	return &Factory{
		providers: make(map[string]Provider),
		fallback:  defaultProvider,
	}
}

// Register adds a provider under its own name.
func (f *Factory) Register(p Provider) {
	f.providers[p.Name()] = p
}

// Get resolves a provider id. An empty id resolves to the configured
// default.
func (f *Factory) Get(id string) (Provider, error) {
	if id == "" {
		id = f.fallback
	}
	p, ok := f.providers[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown ai provider %q, available: %v", domain.ErrConfiguration, id, f.Names())
	}
	return p, nil
}

// Names lists registered provider ids in stable order.
func (f *Factory) Names() []string {
	names := make([]string, 0, len(f.providers))
	for name := range f.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
