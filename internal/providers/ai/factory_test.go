package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Minalinnski/ai-art-generation/internal/domain"
)

type stubProvider struct {
	name  string
	calls int
	run   func(ctx context.Context, model string, params Params) (string, error)
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) ValidateModel(model string) bool { return model == "stub-model" }

func (s *stubProvider) ModelInfo(model string) (ModelInfo, bool) {
	if model != "stub-model" {
		return ModelInfo{}, false
	}
	return ModelInfo{Type: ModelTypeText, Capabilities: []string{CapabilityTextGeneration}}, true
}

func (s *stubProvider) RunInference(ctx context.Context, model string, params Params) (string, error) {
	s.calls++
	return s.run(ctx, model, params)
}

func TestFactoryGet(t *testing.T) {
	f := NewFactory("openai")
	openai := &stubProvider{name: "openai"}
	replicate := &stubProvider{name: "replicate"}
	f.Register(openai)
	f.Register(replicate)

	p, err := f.Get("")
	if err != nil {
		t.Fatalf("Get(\"\") error = %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("default provider = %q, want openai", p.Name())
	}

	p, err = f.Get("replicate")
	if err != nil {
		t.Fatalf("Get(replicate) error = %v", err)
	}
	if p.Name() != "replicate" {
		t.Errorf("provider = %q, want replicate", p.Name())
	}

	_, err = f.Get("gemini")
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("Get(gemini) error = %v, want configuration error", err)
	}
	if !strings.Contains(err.Error(), "openai") || !strings.Contains(err.Error(), "replicate") {
		t.Errorf("error should list available providers, got %q", err)
	}
}

func TestFactoryNamesSorted(t *testing.T) {
	f := NewFactory("openai")
	f.Register(&stubProvider{name: "replicate"})
	f.Register(&stubProvider{name: "openai"})

	names := f.Names()
	if len(names) != 2 || names[0] != "openai" || names[1] != "replicate" {
		t.Fatalf("Names() = %v, want sorted [openai replicate]", names)
	}
}
