package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Minalinnski/ai-art-generation/internal/domain"
)

const openAIProviderName = "openai"

const openAIDefaultTimeout = 120 * time.Second

// DefaultOpenAIModels is the compiled-in model table used when no YAML
// catalog overrides it.
var DefaultOpenAIModels = map[string]ModelInfo{
	"gpt-image-1": {
		Type:           ModelTypeImage,
		Capabilities:   []string{CapabilityImageGeneration, CapabilityMultimodal},
		SupportedSizes: []string{"1024x1024", "1536x1024", "1024x1536"},
	},
	"dall-e-3": {
		Type:           ModelTypeImage,
		Capabilities:   []string{CapabilityImageGeneration},
		SupportedSizes: []string{"1024x1024", "1792x1024", "1024x1792"},
	},
	"gpt-4o": {
		Type:         ModelTypeText,
		Capabilities: []string{CapabilityTextGeneration, CapabilityImageAnalysis, CapabilityMultimodal},
		MaxTokens:    4096,
	},
	"gpt-4o-mini": {
		Type:         ModelTypeText,
		Capabilities: []string{CapabilityTextGeneration},
		MaxTokens:    4096,
	},
}

// OpenAIOptions configures the OpenAI client.
type OpenAIOptions struct {
	APIKey     string
	BaseURL    string
	Models     map[string]ModelInfo
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// OpenAIClient talks to an OpenAI-compatible API: chat completions for
// text/multimodal models and the images endpoint for image models.
type OpenAIClient struct {
	apiKey string
	base   string
	models map[string]ModelInfo
	client *http.Client
	logger zerolog.Logger
}

func NewOpenAIClient(opts OpenAIOptions) (*OpenAIClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	models := opts.Models
	if len(models) == 0 {
		models = DefaultOpenAIModels
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	return &OpenAIClient{
		apiKey: strings.TrimSpace(opts.APIKey),
		base:   base,
		models: models,
		client: client,
		logger: opts.Logger.With().Str("provider", openAIProviderName).Logger(),
	}, nil
}

func (c *OpenAIClient) Name() string { return openAIProviderName }

func (c *OpenAIClient) ValidateModel(model string) bool {
	_, ok := c.models[model]
	return ok
}

func (c *OpenAIClient) ModelInfo(model string) (ModelInfo, bool) {
	info, ok := c.models[model]
	return info, ok
}

func (c *OpenAIClient) modelNames() []string {
	names := make([]string, 0, len(c.models))
	for name := range c.models {
		names = append(names, name)
	}
	return names
}

func (c *OpenAIClient) RunInference(ctx context.Context, model string, params Params) (string, error) {
	info, ok := c.models[model]
	if !ok {
		return "", fmt.Errorf("%w: model %q is not available for provider %s, available: %v",
			domain.ErrConfiguration, model, openAIProviderName, c.modelNames())
	}
	switch info.Type {
	case ModelTypeImage:
		return c.runImage(ctx, model, info, params)
	case ModelTypeText:
		return c.runText(ctx, model, info, params)
	default:
		return "", fmt.Errorf("%w: model %q has unsupported type %q", domain.ErrConfiguration, model, info.Type)
	}
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type openAIContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
}

type openAIImageURL struct {
	URL string `json:"url"`
}

type openAIFormat struct {
	Type string `json:"type"`
}

type openAIChatRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature,omitempty"`
	ResponseFormat *openAIFormat   `json:"response_format,omitempty"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *OpenAIClient) runText(ctx context.Context, model string, info ModelInfo, params Params) (string, error) {
	messages := make([]openAIMessage, 0, 2)
	if params.SystemPrompt != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: params.SystemPrompt})
	}

	multimodal := info.HasCapability(CapabilityImageAnalysis) || info.HasCapability(CapabilityMultimodal)
	if multimodal && len(params.ImageURLs) > 0 {
		parts := []openAIContentPart{{Type: "text", Text: params.Prompt}}
		for _, url := range params.ImageURLs {
			parts = append(parts, openAIContentPart{Type: "image_url", ImageURL: &openAIImageURL{URL: url}})
		}
		messages = append(messages, openAIMessage{Role: "user", Content: parts})
	} else {
		messages = append(messages, openAIMessage{Role: "user", Content: params.Prompt})
	}

	maxTokens := params.MaxTokens
	if info.MaxTokens > 0 && (maxTokens == 0 || maxTokens > info.MaxTokens) {
		maxTokens = info.MaxTokens
	}
	payload := openAIChatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: params.Temperature,
	}
	if params.JSONResponse {
		payload.ResponseFormat = &openAIFormat{Type: "json_object"}
	}

	var out openAIChatResponse
	if err := c.post(ctx, "/chat/completions", payload, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: openai returned no choices", domain.ErrUpstreamAI)
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: openai returned an empty response", domain.ErrUpstreamAI)
	}
	return text, nil
}

type openAIImageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size,omitempty"`
	Quality        string `json:"quality,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
}

type openAIImageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *OpenAIClient) runImage(ctx context.Context, model string, info ModelInfo, params Params) (string, error) {
	size := params.Size
	if len(info.SupportedSizes) > 0 && !contains(info.SupportedSizes, size) {
		c.logger.Warn().Str("model", model).Str("requested", size).
			Str("used", info.SupportedSizes[0]).Msg("unsupported size, using model default")
		size = info.SupportedSizes[0]
	}
	payload := openAIImageRequest{
		Model:   model,
		Prompt:  params.Prompt,
		N:       1,
		Size:    size,
		Quality: params.Quality,
	}
	if model == "dall-e-3" {
		payload.ResponseFormat = "b64_json"
	}

	var out openAIImageResponse
	if err := c.post(ctx, "/images/generations", payload, &out); err != nil {
		return "", err
	}
	if len(out.Data) == 0 {
		detail := "no image data in response"
		if out.Error != nil {
			detail = out.Error.Message
		}
		return "", fmt.Errorf("%w: openai image generation failed: %s", domain.ErrUpstreamAI, detail)
	}
	if b64 := out.Data[0].B64JSON; b64 != "" {
		return b64, nil
	}
	if url := out.Data[0].URL; url != "" {
		return c.downloadAsBase64(ctx, url)
	}
	return "", fmt.Errorf("%w: openai response carried neither b64_json nor url", domain.ErrUpstreamAI)
}

func (c *OpenAIClient) post(ctx context.Context, path string, payload, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return fmt.Errorf("%w: encode request: %v", domain.ErrUpstreamAI, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, &buf)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", domain.ErrUpstreamAI, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: openai request: %v", domain.ErrUpstreamAI, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%w: openai status %d: %s", domain.ErrUpstreamAI, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrUpstreamAI, err)
	}
	return nil
}

func (c *OpenAIClient) downloadAsBase64(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build download request: %v", domain.ErrUpstreamAI, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: download generated image: %v", domain.ErrUpstreamAI, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: download generated image: status %d", domain.ErrUpstreamAI, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read generated image: %v", domain.ErrUpstreamAI, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

var _ Provider = (*OpenAIClient)(nil)
