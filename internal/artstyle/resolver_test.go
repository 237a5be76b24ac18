package artstyle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Minalinnski/ai-art-generation/internal/domain"
	"github.com/Minalinnski/ai-art-generation/internal/providers/ai"
	"github.com/Minalinnski/ai-art-generation/internal/storage"
)

type fakeProvider struct {
	mu    sync.Mutex
	calls int
	run   func(ctx context.Context, model string, params ai.Params) (string, error)
}

func (f *fakeProvider) Name() string { return "openai" }

func (f *fakeProvider) ValidateModel(model string) bool {
	_, ok := fakeModels[model]
	return ok
}

func (f *fakeProvider) ModelInfo(model string) (ai.ModelInfo, bool) {
	info, ok := fakeModels[model]
	return info, ok
}

func (f *fakeProvider) RunInference(ctx context.Context, model string, params ai.Params) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.run(ctx, model, params)
}

var fakeModels = map[string]ai.ModelInfo{
	"gpt-4o": {
		Type:         ai.ModelTypeText,
		Capabilities: []string{ai.CapabilityTextGeneration, ai.CapabilityImageAnalysis, ai.CapabilityMultimodal},
	},
	"gpt-4o-mini": {
		Type:         ai.ModelTypeText,
		Capabilities: []string{ai.CapabilityTextGeneration},
	},
}

type recordingStore struct {
	mu      sync.Mutex
	uploads []string
	deleted []string
	objects map[string][]byte
}

func newRecordingStore() *recordingStore {
	return &recordingStore{objects: make(map[string][]byte)}
}

func (s *recordingStore) Upload(ctx context.Context, data []byte, key, contentType string, metadata map[string]string) (storage.UploadInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, key)
	s.objects[key] = data
	return storage.UploadInfo{Key: key, URL: "http://store.test/" + key, Size: int64(len(data))}, nil
}

func (s *recordingStore) SignedURL(key string, ttl time.Duration) (string, error) {
	return "http://store.test/" + key + "?signature=x", nil
}

func (s *recordingStore) Delete(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	delete(s.objects, key)
	return true, nil
}

func (s *recordingStore) List(ctx context.Context, prefix string) ([]storage.Entry, error) {
	return nil, nil
}

func (s *recordingStore) Read(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, key)
	}
	return data, nil
}

func newTestResolver(provider *fakeProvider, store *recordingStore) *Resolver {
	factory := ai.NewFactory("openai")
	if provider != nil {
		factory.Register(provider)
	}
	return NewResolver(Options{
		Catalog:   NewCatalog(),
		Providers: factory,
		Store:     store,
		MaxImages: 3,
		Logger:    zerolog.Nop(),
	})
}

func TestPresetFantasyMedieval(t *testing.T) {
	r := newTestResolver(nil, newRecordingStore())
	got, err := r.Preset("fantasy_medieval")
	if err != nil {
		t.Fatalf("Preset() error = %v", err)
	}
	if got.Mode != domain.StyleModePreset || got.ThemeName != "fantasy_medieval" {
		t.Errorf("descriptor mode/theme = %q/%q", got.Mode, got.ThemeName)
	}
	if got.Components.ColorPalette != "rich gold, deep red, royal blue, ancient bronze" {
		t.Errorf("palette = %q", got.Components.ColorPalette)
	}
	if !strings.Contains(got.StylePrompt, "rich gold, deep red, royal blue, ancient bronze") {
		t.Errorf("style prompt missing palette: %s", got.StylePrompt)
	}
	for _, clause := range []string{
		"isolated on transparent background",
		"centered design, game asset style",
		"high quality, professional design",
	} {
		if !strings.Contains(got.StylePrompt, clause) {
			t.Errorf("style prompt missing suffix clause %q: %s", clause, got.StylePrompt)
		}
	}
	if got.QualityTags != "high quality, game asset style, professional design" {
		t.Errorf("quality tags = %q", got.QualityTags)
	}
}

func TestPresetUnknownTheme(t *testing.T) {
	r := newTestResolver(nil, newRecordingStore())
	_, err := r.Preset("vaporwave")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Preset() error = %v, want not found", err)
	}
	if !strings.Contains(err.Error(), "fantasy_medieval") {
		t.Errorf("error should list available themes: %v", err)
	}
}

func TestDirectRequiresBasePrompt(t *testing.T) {
	r := newTestResolver(nil, newRecordingStore())
	if _, err := r.Direct(domain.StyleComponents{ColorPalette: "red"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Direct() error = %v, want validation error", err)
	}

	got, err := r.Direct(domain.StyleComponents{BasePrompt: "pixel art", Lighting: "soft glow"})
	if err != nil {
		t.Fatalf("Direct() error = %v", err)
	}
	if !strings.HasPrefix(got.StylePrompt, "pixel art, soft glow") {
		t.Errorf("style prompt = %q, want base then lighting", got.StylePrompt)
	}
}

func TestAIEnhanced(t *testing.T) {
	response, _ := json.Marshal(map[string]any{
		"components": map[string]string{
			"base_prompt":   "neon cyberpunk style",
			"color_palette": "electric blue, magenta",
		},
		"enhanced_prompt": "neon cyberpunk style, electric blue, magenta",
	})
	provider := &fakeProvider{run: func(ctx context.Context, model string, params ai.Params) (string, error) {
		if !params.JSONResponse {
			t.Error("enhancement call should request JSON response")
		}
		return string(response), nil
	}}
	r := newTestResolver(provider, newRecordingStore())

	got, err := r.AIEnhanced(context.Background(), "cyberpunk city", "", "")
	if err != nil {
		t.Fatalf("AIEnhanced() error = %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("inference calls = %d, want exactly 1", provider.calls)
	}
	if got.Components.BasePrompt != "neon cyberpunk style" {
		t.Errorf("base prompt = %q", got.Components.BasePrompt)
	}
	if got.Mode != domain.StyleModeAIEnhanced {
		t.Errorf("mode = %q", got.Mode)
	}
}

func TestAIEnhancedPromptTooLong(t *testing.T) {
	provider := &fakeProvider{run: func(ctx context.Context, model string, params ai.Params) (string, error) {
		return "", nil
	}}
	r := newTestResolver(provider, newRecordingStore())
	if _, err := r.AIEnhanced(context.Background(), strings.Repeat("x", 501), "", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("AIEnhanced() error = %v, want validation error", err)
	}
	if provider.calls != 0 {
		t.Errorf("inference calls = %d, want 0", provider.calls)
	}
}

func TestAIEnhancedBadResponses(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json", "style: neon"},
		{"missing components", `{"enhanced_prompt": "x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{run: func(ctx context.Context, model string, params ai.Params) (string, error) {
				return tt.response, nil
			}}
			r := newTestResolver(provider, newRecordingStore())
			if _, err := r.AIEnhanced(context.Background(), "neon", "", ""); !errors.Is(err, domain.ErrUpstreamAI) {
				t.Fatalf("AIEnhanced() error = %v, want upstream ai error", err)
			}
		})
	}
}

func TestAIEnhancedEmptyBasePromptSubstituted(t *testing.T) {
	provider := &fakeProvider{run: func(ctx context.Context, model string, params ai.Params) (string, error) {
		return `{"components": {"color_palette": "gold"}, "enhanced_prompt": "x"}`, nil
	}}
	r := newTestResolver(provider, newRecordingStore())
	got, err := r.AIEnhanced(context.Background(), "royal casino", "", "")
	if err != nil {
		t.Fatalf("AIEnhanced() error = %v", err)
	}
	if got.Components.BasePrompt != "royal casino" {
		t.Errorf("base prompt = %q, want raw input substituted", got.Components.BasePrompt)
	}
}

func TestReferenceImagesEmptyList(t *testing.T) {
	store := newRecordingStore()
	provider := &fakeProvider{run: func(ctx context.Context, model string, params ai.Params) (string, error) {
		return "", nil
	}}
	r := newTestResolver(provider, store)

	if _, err := r.ReferenceImages(context.Background(), nil, "", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("ReferenceImages() error = %v, want validation error", err)
	}
	if len(store.uploads) != 0 || provider.calls != 0 {
		t.Errorf("empty image list touched store (%d uploads) or provider (%d calls)", len(store.uploads), provider.calls)
	}
}

func TestReferenceImagesStagesAndCleansUp(t *testing.T) {
	store := newRecordingStore()
	response, _ := json.Marshal(map[string]any{
		"style_description": "hand painted watercolor",
		"components": map[string]string{
			"base_prompt": "watercolor illustration",
		},
	})
	provider := &fakeProvider{run: func(ctx context.Context, model string, params ai.Params) (string, error) {
		if len(params.ImageURLs) != 2 {
			t.Errorf("image urls = %d, want 2", len(params.ImageURLs))
		}
		return string(response), nil
	}}
	r := newTestResolver(provider, store)

	images := []ReferenceImage{
		{Filename: "a.png", ContentType: "image/png", Data: []byte("a")},
		{Filename: "b.png", ContentType: "image/png", Data: []byte("b")},
	}
	got, err := r.ReferenceImages(context.Background(), images, "", "")
	if err != nil {
		t.Fatalf("ReferenceImages() error = %v", err)
	}
	if got.Mode != domain.StyleModeReferenceImage {
		t.Errorf("mode = %q", got.Mode)
	}
	if !strings.HasPrefix(got.StylePrompt, "hand painted watercolor") {
		t.Errorf("style prompt = %q, want style description lead", got.StylePrompt)
	}
	if len(store.uploads) != 2 {
		t.Fatalf("uploads = %d, want 2", len(store.uploads))
	}
	if len(store.deleted) != 2 {
		t.Fatalf("deleted = %d, want staged objects removed", len(store.deleted))
	}
}

func TestReferenceImagesCleanupOnFailure(t *testing.T) {
	store := newRecordingStore()
	provider := &fakeProvider{run: func(ctx context.Context, model string, params ai.Params) (string, error) {
		return "", fmt.Errorf("%w: refused", domain.ErrUpstreamAI)
	}}
	r := newTestResolver(provider, store)

	images := []ReferenceImage{{Filename: "a.png", ContentType: "image/png", Data: []byte("a")}}
	if _, err := r.ReferenceImages(context.Background(), images, "", ""); !errors.Is(err, domain.ErrUpstreamAI) {
		t.Fatalf("ReferenceImages() error = %v, want upstream ai error", err)
	}
	if len(store.deleted) != 1 {
		t.Fatalf("deleted = %d, want staged object removed on failure", len(store.deleted))
	}
}

func TestReferenceImagesTruncatedToLimit(t *testing.T) {
	store := newRecordingStore()
	response, _ := json.Marshal(map[string]any{
		"style_description": "flat vector",
		"components":        map[string]string{"base_prompt": "flat vector"},
	})
	provider := &fakeProvider{run: func(ctx context.Context, model string, params ai.Params) (string, error) {
		return string(response), nil
	}}
	r := newTestResolver(provider, store)

	images := make([]ReferenceImage, 5)
	for i := range images {
		images[i] = ReferenceImage{Filename: fmt.Sprintf("img%d.png", i), ContentType: "image/png", Data: []byte{byte(i)}}
	}
	if _, err := r.ReferenceImages(context.Background(), images, "", ""); err != nil {
		t.Fatalf("ReferenceImages() error = %v", err)
	}
	// Resolver was built with MaxImages 3.
	if len(store.uploads) != 3 {
		t.Fatalf("uploads = %d, want 3 after truncation", len(store.uploads))
	}
}

func TestResolveDispatch(t *testing.T) {
	r := newTestResolver(nil, newRecordingStore())
	if _, err := r.Resolve(context.Background(), domain.StyleConfig{Mode: "freehand"}, nil); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("Resolve() error = %v, want configuration error for unknown mode", err)
	}

	got, err := r.Resolve(context.Background(), domain.StyleConfig{Mode: domain.StyleModePreset, PresetTheme: "space_scifi"}, nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.ThemeName != "space_scifi" {
		t.Errorf("theme = %q, want space_scifi", got.ThemeName)
	}
}

func TestFallbackDescriptor(t *testing.T) {
	got := Fallback()
	if got.Mode != domain.StyleModeFallback {
		t.Errorf("mode = %q", got.Mode)
	}
	if got.Components.BasePrompt != "high quality artwork" {
		t.Errorf("base prompt = %q, want high quality artwork", got.Components.BasePrompt)
	}
	if got.QualityTags != "high quality, professional design" {
		t.Errorf("quality tags = %q", got.QualityTags)
	}
}
