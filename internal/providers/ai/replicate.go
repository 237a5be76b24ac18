package ai

import (
	"bytes"
	"context"
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

const replicateProviderName = "replicate"

const (
	replicateDefaultTimeout = 300 * time.Second
	replicatePollInterval   = 2 * time.Second
)

// DefaultReplicateModels is the compiled-in model table used when no
// YAML catalog overrides it. Models are keyed by the short ids the
// module schemas advertise; replicateModelPaths maps them to the
// namespaced ids the API expects.
var DefaultReplicateModels = map[string]ModelInfo{
	"flux-schnell": {
		Type:           ModelTypeImage,
		Capabilities:   []string{CapabilityImageGeneration},
		SupportedSizes: []string{"1024x1024"},
	},
	"sdxl": {
		Type:           ModelTypeImage,
		Capabilities:   []string{CapabilityImageGeneration},
		SupportedSizes: []string{"1024x1024", "512x512"},
	},
	"llava-13b": {
		Type:         ModelTypeText,
		Capabilities: []string{CapabilityTextGeneration, CapabilityImageAnalysis, CapabilityMultimodal},
		MaxTokens:    1024,
	},
}

var replicateModelPaths = map[string]string{
	"flux-schnell": "black-forest-labs/flux-schnell",
	"sdxl":         "stability-ai/sdxl",
	"llava-13b":    "yorickvp/llava-13b",
}

// ReplicateOptions configures the Replicate client.
type ReplicateOptions struct {
	APIToken     string
	BaseURL      string
	Models       map[string]ModelInfo
	HTTPClient   *http.Client
	PollInterval time.Duration
	Logger       zerolog.Logger
}

// ReplicateClient runs predictions through a Replicate-compatible API:
// create the prediction, then poll until it settles.
type ReplicateClient struct {
	token        string
	base         string
	models       map[string]ModelInfo
	client       *http.Client
	pollInterval time.Duration
	logger       zerolog.Logger
}

func NewReplicateClient(opts ReplicateOptions) (*ReplicateClient, error) {
	if strings.TrimSpace(opts.APIToken) == "" {
		return nil, errors.New("replicate api token is required")
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.replicate.com"
	}
	models := opts.Models
	if len(models) == 0 {
		models = DefaultReplicateModels
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: replicateDefaultTimeout}
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = replicatePollInterval
	}
	return &ReplicateClient{
		token:        strings.TrimSpace(opts.APIToken),
		base:         base,
		models:       models,
		client:       client,
		pollInterval: interval,
		logger:       opts.Logger.With().Str("provider", replicateProviderName).Logger(),
	}, nil
}

func (c *ReplicateClient) Name() string { return replicateProviderName }

func (c *ReplicateClient) ValidateModel(model string) bool {
	_, ok := c.models[model]
	return ok
}

func (c *ReplicateClient) ModelInfo(model string) (ModelInfo, bool) {
	info, ok := c.models[model]
	return info, ok
}

// replicateModelPath resolves a short model id to the owner/name path
// the API expects. Catalog overrides may already carry the full path.
func replicateModelPath(model string) string {
	if path, ok := replicateModelPaths[model]; ok {
		return path
	}
	return model
}

type replicatePredictionRequest struct {
	Input map[string]any `json:"input"`
}

type replicatePrediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

func (c *ReplicateClient) RunInference(ctx context.Context, model string, params Params) (string, error) {
	if _, ok := c.models[model]; !ok {
		names := make([]string, 0, len(c.models))
		for name := range c.models {
			names = append(names, name)
		}
		return "", fmt.Errorf("%w: model %q is not available for provider %s, available: %v",
			domain.ErrConfiguration, model, replicateProviderName, names)
	}

	input := map[string]any{"prompt": params.Prompt}
	if params.Size != "" {
		input["size"] = params.Size
	}
	if len(params.ImageURLs) > 0 {
		input["image"] = params.ImageURLs[0]
	}

	created, err := c.createPrediction(ctx, model, replicatePredictionRequest{Input: input})
	if err != nil {
		return "", err
	}

	prediction := created
	for prediction.Status == "starting" || prediction.Status == "processing" || prediction.Status == "" {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: replicate prediction %s: %v", domain.ErrUpstreamAI, prediction.ID, ctx.Err())
		case <-time.After(c.pollInterval):
		}
		prediction, err = c.getPrediction(ctx, created)
		if err != nil {
			return "", err
		}
	}

	if prediction.Status != "succeeded" {
		detail := prediction.Error
		if detail == "" {
			detail = "status " + prediction.Status
		}
		return "", fmt.Errorf("%w: replicate prediction %s failed: %s", domain.ErrUpstreamAI, prediction.ID, detail)
	}
	return decodeReplicateOutput(prediction.Output)
}

// decodeReplicateOutput normalizes the prediction output: a bare string,
// or a list of strings where the last entry is the final artifact.
func decodeReplicateOutput(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: replicate returned an empty result", domain.ErrUpstreamAI)
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return "", fmt.Errorf("%w: replicate returned an empty result", domain.ErrUpstreamAI)
		}
		return list[len(list)-1], nil
	}
	return "", fmt.Errorf("%w: replicate returned an unrecognized output shape", domain.ErrUpstreamAI)
}

func (c *ReplicateClient) createPrediction(ctx context.Context, model string, payload replicatePredictionRequest) (replicatePrediction, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return replicatePrediction{}, fmt.Errorf("%w: encode request: %v", domain.ErrUpstreamAI, err)
	}
	endpoint := fmt.Sprintf("%s/v1/models/%s/predictions", c.base, replicateModelPath(model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return replicatePrediction{}, fmt.Errorf("%w: build request: %v", domain.ErrUpstreamAI, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	return c.doPrediction(req)
}

func (c *ReplicateClient) getPrediction(ctx context.Context, created replicatePrediction) (replicatePrediction, error) {
	endpoint := created.URLs.Get
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/v1/predictions/%s", c.base, created.ID)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return replicatePrediction{}, fmt.Errorf("%w: build poll request: %v", domain.ErrUpstreamAI, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	return c.doPrediction(req)
}

func (c *ReplicateClient) doPrediction(req *http.Request) (replicatePrediction, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return replicatePrediction{}, fmt.Errorf("%w: replicate request: %v", domain.ErrUpstreamAI, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return replicatePrediction{}, fmt.Errorf("%w: replicate status %d: %s",
			domain.ErrUpstreamAI, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var prediction replicatePrediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return replicatePrediction{}, fmt.Errorf("%w: decode response: %v", domain.ErrUpstreamAI, err)
	}
	return prediction, nil
}

var _ Provider = (*ReplicateClient)(nil)
