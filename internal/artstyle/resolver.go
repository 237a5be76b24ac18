package artstyle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Minalinnski/ai-art-generation/internal/domain"
	"github.com/Minalinnski/ai-art-generation/internal/providers/ai"
	"github.com/Minalinnski/ai-art-generation/internal/storage"
)

const (
	qualityTags = "high quality, game asset style, professional design"

	maxCustomPromptLen = 500
	// Hard ceiling on reference images per style call; the configured
	// limit may only lower it.
	maxReferenceImages = 10

	defaultSignedURLTTL = time.Hour
)

var styleSuffixClauses = []string{
	"isolated on transparent background",
	"centered design, game asset style",
	"high quality, professional design",
}

// ReferenceImage is one uploaded style reference.
type ReferenceImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Options configures the style resolver.
type Options struct {
	Catalog    *Catalog
	Providers  *ai.Factory
	Store      storage.ObjectStore
	MaxImages  int
	TempPrefix string
	SignTTL    time.Duration
	Logger     zerolog.Logger
}

// Resolver normalizes the four style strategies into one StyleDescriptor.
// When called directly every failure surfaces; the orchestrator applies
// its own degrade-not-fail policy on top.
type Resolver struct {
	catalog    *Catalog
	providers  *ai.Factory
	store      storage.ObjectStore
	maxImages  int
	tempPrefix string
	signTTL    time.Duration
	logger     zerolog.Logger
}

func NewResolver(opts Options) *Resolver {
	maxImages := opts.MaxImages
	if maxImages <= 0 || maxImages > maxReferenceImages {
		maxImages = maxReferenceImages
	}
	tempPrefix := opts.TempPrefix
	if tempPrefix == "" {
		tempPrefix = "art-style/temp"
	}
	ttl := opts.SignTTL
	if ttl <= 0 {
		ttl = defaultSignedURLTTL
	}
	return &Resolver{
		catalog:    opts.Catalog,
		providers:  opts.Providers,
		store:      opts.Store,
		maxImages:  maxImages,
		tempPrefix: tempPrefix,
		signTTL:    ttl,
		logger:     opts.Logger.With().Str("component", "artstyle").Logger(),
	}
}

// Catalog exposes the preset registry for listing endpoints.
func (r *Resolver) Catalog() *Catalog { return r.catalog }

// Resolve dispatches to the strategy selected by cfg.Mode. images is
// only consulted in reference_image mode.
func (r *Resolver) Resolve(ctx context.Context, cfg domain.StyleConfig, images []ReferenceImage) (domain.StyleDescriptor, error) {
	switch cfg.Mode {
	case domain.StyleModePreset:
		return r.Preset(cfg.PresetTheme)
	case domain.StyleModeDirect:
		if cfg.Components == nil {
			return domain.StyleDescriptor{}, fmt.Errorf("%w: direct mode requires components", domain.ErrValidation)
		}
		return r.Direct(*cfg.Components)
	case domain.StyleModeAIEnhanced:
		return r.AIEnhanced(ctx, cfg.CustomPrompt, cfg.AIProvider, cfg.AIModel)
	case domain.StyleModeReferenceImage:
		return r.ReferenceImages(ctx, images, cfg.AIProvider, cfg.AIModel)
	default:
		return domain.StyleDescriptor{}, fmt.Errorf("%w: unsupported art style mode %q", domain.ErrConfiguration, cfg.Mode)
	}
}

// Preset looks the theme up in the catalog.
func (r *Resolver) Preset(theme string) (domain.StyleDescriptor, error) {
	entry, ok := r.catalog.Theme(theme)
	if !ok {
		return domain.StyleDescriptor{}, fmt.Errorf("%w: unknown preset theme %q, available: %v",
			domain.ErrNotFound, theme, r.catalog.Names())
	}
	return domain.StyleDescriptor{
		Mode:        domain.StyleModePreset,
		ThemeName:   theme,
		StylePrompt: buildStylePrompt(entry.Components.BasePrompt, entry.Components),
		Components:  entry.Components,
		QualityTags: qualityTags,
	}, nil
}

// Direct accepts caller-supplied components verbatim.
func (r *Resolver) Direct(components domain.StyleComponents) (domain.StyleDescriptor, error) {
	if strings.TrimSpace(components.BasePrompt) == "" {
		return domain.StyleDescriptor{}, fmt.Errorf("%w: base_prompt must not be empty", domain.ErrValidation)
	}
	return domain.StyleDescriptor{
		Mode:        domain.StyleModeDirect,
		StylePrompt: buildStylePrompt(components.BasePrompt, components),
		Components:  components,
		QualityTags: qualityTags,
	}, nil
}

type enhancedStylePayload struct {
	Components     *domain.StyleComponents `json:"components"`
	EnhancedPrompt string                  `json:"enhanced_prompt"`
}

// AIEnhanced expands free text into structured components with exactly
// one JSON-mode text inference call.
func (r *Resolver) AIEnhanced(ctx context.Context, customPrompt, providerID, model string) (domain.StyleDescriptor, error) {
	customPrompt = strings.TrimSpace(customPrompt)
	if customPrompt == "" {
		return domain.StyleDescriptor{}, fmt.Errorf("%w: custom_prompt must not be empty", domain.ErrValidation)
	}
	if len(customPrompt) > maxCustomPromptLen {
		return domain.StyleDescriptor{}, fmt.Errorf("%w: custom_prompt exceeds %d characters", domain.ErrValidation, maxCustomPromptLen)
	}
	provider, model, err := r.textModel(providerID, model)
	if err != nil {
		return domain.StyleDescriptor{}, err
	}

	raw, err := provider.RunInference(ctx, model, ai.Params{
		Prompt:       enhancementPrompt(customPrompt),
		SystemPrompt: "You are an expert art director specializing in game asset visual styles.",
		MaxTokens:    500,
		Temperature:  0.7,
		JSONResponse: true,
	})
	if err != nil {
		return domain.StyleDescriptor{}, err
	}

	var payload enhancedStylePayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &payload); err != nil {
		return domain.StyleDescriptor{}, fmt.Errorf("%w: enhanced style response is not valid JSON: %v", domain.ErrUpstreamAI, err)
	}
	if payload.Components == nil {
		return domain.StyleDescriptor{}, fmt.Errorf("%w: enhanced style response is missing components", domain.ErrUpstreamAI)
	}
	components := *payload.Components
	if strings.TrimSpace(components.BasePrompt) == "" {
		components.BasePrompt = customPrompt
	}
	return domain.StyleDescriptor{
		Mode:        domain.StyleModeAIEnhanced,
		StylePrompt: buildStylePrompt(components.BasePrompt, components),
		Components:  components,
		QualityTags: qualityTags,
	}, nil
}

type imageAnalysisPayload struct {
	StyleDescription string                  `json:"style_description"`
	Components       *domain.StyleComponents `json:"components"`
}

// ReferenceImages stages the uploads to temporary storage, signs a
// time-bounded URL for each, and runs one multimodal call asking for a
// common style across all images. Every staged object is deleted before
// return on all exit paths.
func (r *Resolver) ReferenceImages(ctx context.Context, images []ReferenceImage, providerID, model string) (_ domain.StyleDescriptor, err error) {
	if len(images) == 0 {
		return domain.StyleDescriptor{}, fmt.Errorf("%w: at least one reference image is required", domain.ErrValidation)
	}
	if len(images) > r.maxImages {
		r.logger.Warn().Int("provided", len(images)).Int("limit", r.maxImages).Msg("reference images over limit, truncating")
		images = images[:r.maxImages]
	}
	provider, model, err := r.multimodalModel(providerID, model)
	if err != nil {
		return domain.StyleDescriptor{}, err
	}

	taskID := uuid.NewString()
	prefix := fmt.Sprintf("%s/%s/%s", r.tempPrefix, time.Now().UTC().Format("2006-01-02"), taskID)

	var stagedKeys []string
	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)
		for _, key := range stagedKeys {
			if _, delErr := r.store.Delete(cleanupCtx, key); delErr != nil {
				r.logger.Warn().Err(delErr).Str("key", key).Msg("temp reference image cleanup failed")
			}
		}
	}()

	urls := make([]string, 0, len(images))
	for i, img := range images {
		key := fmt.Sprintf("%s/%s", prefix, suffixedFilename(img.Filename, fmt.Sprintf("_img_%d", i)))
		info, upErr := r.store.Upload(ctx, img.Data, key, img.ContentType, map[string]string{
			"purpose":           "art-style-temp-image",
			"original_filename": img.Filename,
			"task_id":           taskID,
		})
		if upErr != nil {
			return domain.StyleDescriptor{}, fmt.Errorf("%w: stage reference image %s: %v", domain.ErrStorage, img.Filename, upErr)
		}
		stagedKeys = append(stagedKeys, info.Key)
		signed, signErr := r.store.SignedURL(info.Key, r.signTTL)
		if signErr != nil {
			return domain.StyleDescriptor{}, fmt.Errorf("%w: sign reference image %s: %v", domain.ErrStorage, img.Filename, signErr)
		}
		urls = append(urls, signed)
	}

	raw, err := provider.RunInference(ctx, model, ai.Params{
		Prompt:       imageAnalysisPrompt(len(urls)),
		SystemPrompt: imageAnalysisSystemPrompt,
		MaxTokens:    600,
		Temperature:  0.3,
		JSONResponse: true,
		ImageURLs:    urls,
	})
	if err != nil {
		return domain.StyleDescriptor{}, err
	}

	var payload imageAnalysisPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &payload); err != nil {
		return domain.StyleDescriptor{}, fmt.Errorf("%w: image analysis response is not valid JSON: %v", domain.ErrUpstreamAI, err)
	}
	if payload.Components == nil || strings.TrimSpace(payload.StyleDescription) == "" {
		return domain.StyleDescriptor{}, fmt.Errorf("%w: image analysis response is missing components or style_description", domain.ErrUpstreamAI)
	}
	components := *payload.Components
	if strings.TrimSpace(components.BasePrompt) == "" {
		components.BasePrompt = payload.StyleDescription
	}
	return domain.StyleDescriptor{
		Mode:        domain.StyleModeReferenceImage,
		StylePrompt: buildStylePrompt(payload.StyleDescription, components),
		Components:  components,
		QualityTags: qualityTags,
	}, nil
}

// Fallback returns the fixed generic descriptor substituted by the
// orchestration layer when style resolution fails mid-job.
func Fallback() domain.StyleDescriptor {
	return domain.StyleDescriptor{
		Mode:        domain.StyleModeFallback,
		StylePrompt: "high quality, detailed artwork",
		Components: domain.StyleComponents{
			BasePrompt:  "high quality artwork",
			Description: "generic fallback style",
		},
		QualityTags: "high quality, professional design",
	}
}

func (r *Resolver) textModel(providerID, model string) (ai.Provider, string, error) {
	provider, err := r.providers.Get(providerID)
	if err != nil {
		return nil, "", err
	}
	if model == "" {
		model = "gpt-4o"
	}
	info, ok := provider.ModelInfo(model)
	if !ok {
		return nil, "", fmt.Errorf("%w: model %q is not available for provider %s", domain.ErrConfiguration, model, provider.Name())
	}
	if !info.HasCapability(ai.CapabilityTextGeneration) {
		return nil, "", fmt.Errorf("%w: model %q does not support text generation", domain.ErrConfiguration, model)
	}
	return provider, model, nil
}

func (r *Resolver) multimodalModel(providerID, model string) (ai.Provider, string, error) {
	provider, err := r.providers.Get(providerID)
	if err != nil {
		return nil, "", err
	}
	if model == "" {
		model = "gpt-4o"
	}
	info, ok := provider.ModelInfo(model)
	if !ok {
		return nil, "", fmt.Errorf("%w: model %q is not available for provider %s", domain.ErrConfiguration, model, provider.Name())
	}
	if !info.HasCapability(ai.CapabilityImageAnalysis) && !info.HasCapability(ai.CapabilityMultimodal) {
		return nil, "", fmt.Errorf("%w: model %q does not support image analysis", domain.ErrConfiguration, model)
	}
	return provider, model, nil
}

// buildStylePrompt joins the lead clause, the remaining components and
// the standard suffix clauses, skipping empties.
func buildStylePrompt(lead string, c domain.StyleComponents) string {
	parts := []string{lead, c.ColorPalette, c.Effects, c.Materials, c.Lighting}
	parts = append(parts, styleSuffixClauses...)
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

func suffixedFilename(name, suffix string) string {
	if name == "" {
		name = "image"
	}
	if dot := strings.LastIndex(name, "."); dot > 0 {
		return name[:dot] + suffix + name[dot:]
	}
	return name + suffix
}
