package ai

import "context"

// Model capability tags.
const (
	CapabilityTextGeneration  = "text_generation"
	CapabilityImageGeneration = "image_generation"
	CapabilityImageAnalysis   = "image_analysis"
	CapabilityMultimodal      = "multimodal"
)

// Model type discriminators.
const (
	ModelTypeText  = "text_generation"
	ModelTypeImage = "image_generation"
)

// ModelInfo describes one model offered by a provider.
type ModelInfo struct {
	Type           string   `yaml:"model_type"`
	Capabilities   []string `yaml:"capabilities"`
	MaxTokens      int      `yaml:"max_tokens,omitempty"`
	SupportedSizes []string `yaml:"supported_sizes,omitempty"`
}

// HasCapability reports whether the model carries the given tag.
func (m ModelInfo) HasCapability(capability string) bool {
	for _, c := range m.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// Params is the normalized inference input shared by all providers.
type Params struct {
	Prompt       string
	SystemPrompt string
	Size         string
	Quality      string
	MaxTokens    int
	Temperature  float64
	JSONResponse bool
	ImageURLs    []string
}

// Provider is the contract implemented by all inference backends. Text
// models return the generated text; image models return the encoded
// payload (base64, optionally with a data: URI prefix).
type Provider interface {
	Name() string
	ValidateModel(model string) bool
	ModelInfo(model string) (ModelInfo, bool)
	RunInference(ctx context.Context, model string, params Params) (string, error)
}
