package domain

import (
	"fmt"
	"strings"
)

// StyleMode enumerates the four art style resolution strategies.
type StyleMode string

const (
	StyleModePreset         StyleMode = "preset"
	StyleModeDirect         StyleMode = "direct"
	StyleModeAIEnhanced     StyleMode = "ai_enhanced"
	StyleModeReferenceImage StyleMode = "reference_image"
	// StyleModeFallback marks the generic descriptor substituted when
	// resolution fails inside job orchestration.
	StyleModeFallback StyleMode = "fallback"
)

// StyleComponents holds the six structured fields of an art style.
type StyleComponents struct {
	BasePrompt   string `json:"base_prompt" yaml:"base_prompt"`
	ColorPalette string `json:"color_palette" yaml:"color_palette"`
	Effects      string `json:"effects" yaml:"effects"`
	Materials    string `json:"materials" yaml:"materials"`
	Lighting     string `json:"lighting" yaml:"lighting"`
	Description  string `json:"description" yaml:"description"`
}

// StyleDescriptor is the uniform output of all four style strategies. It
// is created once per job (or per module override) and held read-only for
// the job's lifetime.
type StyleDescriptor struct {
	Mode        StyleMode       `json:"mode"`
	ThemeName   string          `json:"theme_name,omitempty"`
	StylePrompt string          `json:"style_prompt"`
	Components  StyleComponents `json:"components"`
	QualityTags string          `json:"quality_tags"`
}

// StyleConfig is the caller-supplied style selection carried by a
// generation request. Exactly one mode's parameters are meaningful.
type StyleConfig struct {
	Mode         StyleMode        `json:"mode"`
	PresetTheme  string           `json:"preset_theme,omitempty"`
	Components   *StyleComponents `json:"components,omitempty"`
	CustomPrompt string           `json:"custom_prompt,omitempty"`
	AIProvider   string           `json:"ai_provider,omitempty"`
	AIModel      string           `json:"ai_model,omitempty"`
}

// Validate checks that the parameters required by the selected mode are
// present. Reference image payloads travel out of band and are checked by
// the resolver.
func (c StyleConfig) Validate() error {
	switch c.Mode {
	case StyleModePreset:
		if strings.TrimSpace(c.PresetTheme) == "" {
			return fmt.Errorf("%w: preset mode requires preset_theme", ErrValidation)
		}
	case StyleModeDirect:
		if c.Components == nil || strings.TrimSpace(c.Components.BasePrompt) == "" {
			return fmt.Errorf("%w: direct mode requires components.base_prompt", ErrValidation)
		}
	case StyleModeAIEnhanced:
		if strings.TrimSpace(c.CustomPrompt) == "" {
			return fmt.Errorf("%w: ai_enhanced mode requires custom_prompt", ErrValidation)
		}
	case StyleModeReferenceImage:
		// Image presence is validated at resolution time.
	default:
		return fmt.Errorf("%w: unsupported art style mode %q", ErrConfiguration, c.Mode)
	}
	return nil
}
