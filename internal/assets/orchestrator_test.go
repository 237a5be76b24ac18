package assets

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Minalinnski/ai-art-generation/internal/artstyle"
	"github.com/Minalinnski/ai-art-generation/internal/domain"
	"github.com/Minalinnski/ai-art-generation/internal/providers/ai"
)

func newTestOrchestrator(provider *fakeProvider, store *memStore) *Orchestrator {
	factory := testFactory(provider)
	registry := NewRegistry()
	resolver := artstyle.NewResolver(artstyle.Options{
		Catalog:   artstyle.NewCatalog(),
		Providers: factory,
		Store:     store,
		Logger:    zerolog.Nop(),
	})
	executor := NewExecutor(ExecutorOptions{
		Providers:  factory,
		Store:      store,
		OutputBase: "generated",
		MaxWorkers: 3,
		Logger:     zerolog.Nop(),
	})
	return NewOrchestrator(registry, resolver, executor, zerolog.Nop())
}

func presetRequest(module string, content domain.ContentTree) domain.GenerationRequest {
	return domain.GenerationRequest{
		Module:  module,
		Style:   domain.StyleConfig{Mode: domain.StyleModePreset, PresetTheme: "fantasy_medieval"},
		Content: content,
	}
}

func TestRunModuleCompleted(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("png"))
	store := newMemStore()
	o := newTestOrchestrator(imageProvider(func(ctx context.Context, model string, params ai.Params) (string, error) {
		return payload, nil
	}), store)

	res, err := o.RunModule(context.Background(), presetRequest("symbols", domain.ContentTree{
		"base_symbols": {"low_value": {{Filename: "ace", Description: "Ace card", Count: 2}}},
	}), nil, nil)
	if err != nil {
		t.Fatalf("RunModule() error = %v", err)
	}
	if res.Status != domain.StatusCompleted {
		t.Errorf("status = %q, want completed", res.Status)
	}
	if res.SuccessCount != 2 || res.TotalCount != 2 {
		t.Errorf("counts = %d/%d, want 2/2", res.SuccessCount, res.TotalCount)
	}
	if !strings.HasPrefix(res.JobID, "symbols_") {
		t.Errorf("job id = %q, want symbols_ prefix", res.JobID)
	}
	if res.Style.Mode != domain.StyleModePreset {
		t.Errorf("style mode = %q, want preset", res.Style.Mode)
	}
	if !strings.Contains(res.Style.StylePrompt, "rich gold, deep red, royal blue, ancient bronze") {
		t.Errorf("preset palette missing from style prompt: %s", res.Style.StylePrompt)
	}
}

func TestRunModuleStyleFailureDegradesToFallback(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("png"))
	store := newMemStore()
	o := newTestOrchestrator(imageProvider(func(ctx context.Context, model string, params ai.Params) (string, error) {
		if params.JSONResponse {
			return "", fmt.Errorf("%w: text model unavailable", domain.ErrUpstreamAI)
		}
		return payload, nil
	}), store)

	req := domain.GenerationRequest{
		Module: "symbols",
		Style:  domain.StyleConfig{Mode: domain.StyleModeAIEnhanced, CustomPrompt: "neon cyberpunk"},
		Content: domain.ContentTree{
			"base_symbols": {"low_value": {{Filename: "ace", Description: "Ace card", Count: 1}}},
		},
	}
	res, err := o.RunModule(context.Background(), req, nil, nil)
	if err != nil {
		t.Fatalf("RunModule() error = %v", err)
	}
	if res.Status != domain.StatusCompleted {
		t.Errorf("status = %q, want completed despite style failure", res.Status)
	}
	if res.Style.Mode != domain.StyleModeFallback {
		t.Errorf("style mode = %q, want fallback", res.Style.Mode)
	}
	if res.Style.Components.BasePrompt != "high quality artwork" {
		t.Errorf("fallback base prompt = %q", res.Style.Components.BasePrompt)
	}
}

func TestRunModuleReferenceImageStyle(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("png"))
	analysis := `{"style_description":"hand painted watercolor","components":{"base_prompt":"watercolor painting","color_palette":"soft pastels"}}`
	store := newMemStore()
	o := newTestOrchestrator(imageProvider(func(ctx context.Context, model string, params ai.Params) (string, error) {
		if params.JSONResponse {
			return analysis, nil
		}
		return payload, nil
	}), store)

	req := domain.GenerationRequest{
		Module: "symbols",
		Style:  domain.StyleConfig{Mode: domain.StyleModeReferenceImage},
		Content: domain.ContentTree{
			"base_symbols": {"low_value": {{Filename: "ace", Description: "Ace card", Count: 1}}},
		},
	}
	images := []artstyle.ReferenceImage{
		{Filename: "swatch.png", ContentType: "image/png", Data: []byte("swatch")},
	}
	res, err := o.RunModule(context.Background(), req, nil, images)
	if err != nil {
		t.Fatalf("RunModule() error = %v", err)
	}
	if res.Status != domain.StatusCompleted {
		t.Errorf("status = %q, want completed", res.Status)
	}
	if res.Style.Mode != domain.StyleModeReferenceImage {
		t.Errorf("style mode = %q, want reference_image", res.Style.Mode)
	}
	if !strings.HasPrefix(res.Style.StylePrompt, "hand painted watercolor") {
		t.Errorf("style prompt = %q, want analysis description lead", res.Style.StylePrompt)
	}
}

func TestRunModuleReferenceImageStyleRequiresImages(t *testing.T) {
	o := newTestOrchestrator(imageProvider(func(ctx context.Context, model string, params ai.Params) (string, error) {
		t.Error("no inference should run without style images")
		return "", nil
	}), newMemStore())

	req := domain.GenerationRequest{
		Module: "symbols",
		Style:  domain.StyleConfig{Mode: domain.StyleModeReferenceImage},
		Content: domain.ContentTree{
			"base_symbols": {"low_value": {{Filename: "ace", Description: "Ace card", Count: 1}}},
		},
	}
	res, err := o.RunModule(context.Background(), req, nil, nil)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("RunModule() error = %v, want validation error", err)
	}
	if res.Style.Mode == domain.StyleModeFallback {
		t.Error("missing style images must fail the job, not degrade to fallback")
	}
}

func TestRunModuleUnsupportedModel(t *testing.T) {
	o := newTestOrchestrator(imageProvider(func(ctx context.Context, model string, params ai.Params) (string, error) {
		return "", nil
	}), newMemStore())

	req := presetRequest("symbols", domain.ContentTree{
		"base_symbols": {"low_value": {{Filename: "ace", Description: "Ace", Count: 1}}},
	})
	req.Model = "imaginary-model"
	if _, err := o.RunModule(context.Background(), req, nil, nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("RunModule() error = %v, want validation error", err)
	}
}

func TestRunModuleFromReferenceBundle(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("png"))
	store := newMemStore()
	o := newTestOrchestrator(imageProvider(func(ctx context.Context, model string, params ai.Params) (string, error) {
		return payload, nil
	}), store)

	bundle := &domain.ReferenceBundle{
		Items: domain.ContentTree{
			"base_symbols": {"low_value": {{Filename: "cherry", Description: "Cherry", Count: 1}}},
		},
	}
	res, err := o.RunModule(context.Background(), presetRequest("symbols", nil), bundle, nil)
	if err != nil {
		t.Fatalf("RunModule() error = %v", err)
	}
	if res.TotalCount != 1 {
		t.Fatalf("total tasks = %d, want 1 derived from bundle", res.TotalCount)
	}
	if res.Outputs[0].Filename != "cherry" {
		t.Errorf("output filename = %q, want cherry", res.Outputs[0].Filename)
	}
}

func TestRunCompositeAggregation(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("png"))
	store := newMemStore()
	o := newTestOrchestrator(imageProvider(func(ctx context.Context, model string, params ai.Params) (string, error) {
		if strings.Contains(params.Prompt, "Spin button") {
			return "", fmt.Errorf("%w: refused", domain.ErrUpstreamAI)
		}
		return payload, nil
	}), store)

	req := domain.CompositeRequest{
		GlobalStyle: domain.StyleConfig{Mode: domain.StyleModePreset, PresetTheme: "fantasy_medieval"},
		Modules: map[string]domain.ModuleContent{
			"symbols": {Content: domain.ContentTree{
				"base_symbols": {"low_value": {{Filename: "ace", Description: "Ace card", Count: 1}}},
			}},
			"ui": {Content: domain.ContentTree{
				"buttons": {"main_controls": {
					{Filename: "spin", Description: "Spin button", Count: 1},
					{Filename: "stop", Description: "Stop button", Count: 1},
				}},
			}},
		},
	}
	res, err := o.RunComposite(context.Background(), req)
	if err != nil {
		t.Fatalf("RunComposite() error = %v", err)
	}
	if res.Status != domain.StatusPartialCompleted {
		t.Errorf("composite status = %q, want partial_completed", res.Status)
	}
	if res.Modules["symbols"].Status != domain.StatusCompleted {
		t.Errorf("symbols status = %q, want completed", res.Modules["symbols"].Status)
	}
	if res.Modules["ui"].Status != domain.StatusPartialCompleted {
		t.Errorf("ui status = %q, want partial_completed", res.Modules["ui"].Status)
	}
	if res.TotalOutputs != 2 {
		t.Errorf("total outputs = %d, want 2", res.TotalOutputs)
	}
	if !strings.HasPrefix(res.JobID, "game_") {
		t.Errorf("composite job id = %q, want game_ prefix", res.JobID)
	}
}

func TestRunCompositeValidatesUpFront(t *testing.T) {
	o := newTestOrchestrator(imageProvider(func(ctx context.Context, model string, params ai.Params) (string, error) {
		t.Error("no inference should run when validation fails")
		return "", nil
	}), newMemStore())

	req := domain.CompositeRequest{
		GlobalStyle: domain.StyleConfig{Mode: domain.StyleModePreset, PresetTheme: "fantasy_medieval"},
		Modules: map[string]domain.ModuleContent{
			"symbols": {Content: domain.ContentTree{
				"base_symbols": {"low_value": {{Filename: "ace", Description: "Ace", Count: 1}}},
			}},
			"vehicles": {Content: domain.ContentTree{
				"cars": {"fast": {{Filename: "car", Description: "Car", Count: 1}}},
			}},
		},
	}
	if _, err := o.RunComposite(context.Background(), req); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("RunComposite() error = %v, want configuration error for unknown module", err)
	}
}

func TestValidateSummary(t *testing.T) {
	o := newTestOrchestrator(imageProvider(func(ctx context.Context, model string, params ai.Params) (string, error) {
		return "", nil
	}), newMemStore())

	summary, err := o.Validate(presetRequest("symbols", domain.ContentTree{
		"base_symbols":    {"low_value": {{Filename: "ace", Description: "Ace", Count: 2}}},
		"special_symbols": {"wild": {{Filename: "wild", Description: "Wild", Count: 1}}},
	}))
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if summary.TotalTasks != 3 {
		t.Errorf("total tasks = %d, want 3", summary.TotalTasks)
	}
	if summary.Provider != "openai" || summary.Model != "gpt-image-1" {
		t.Errorf("defaults = %s/%s, want openai/gpt-image-1", summary.Provider, summary.Model)
	}
	if summary.ByCategory["base_symbols"] != 2 {
		t.Errorf("base_symbols count = %d, want 2", summary.ByCategory["base_symbols"])
	}
}
