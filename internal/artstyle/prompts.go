package artstyle

import "fmt"

const imageAnalysisSystemPrompt = "You are an expert art director. You identify the shared visual style of a set of images and describe it in structured terms suitable for image generation prompts."

func enhancementPrompt(customPrompt string) string {
	return fmt.Sprintf(`Expand the following art style idea into structured components for game asset generation.

Style idea: %s

Respond with a JSON object of this shape:
{
  "components": {
    "base_prompt": "core style description",
    "color_palette": "dominant colors",
    "effects": "visual effects",
    "materials": "surface materials and textures",
    "lighting": "lighting characteristics",
    "description": "one sentence summary"
  },
  "enhanced_prompt": "single combined style prompt"
}

Keep each field concise and usable as an image generation prompt fragment.`, customPrompt)
}

func imageAnalysisPrompt(imageCount int) string {
	return fmt.Sprintf(`Analyze the %d attached image(s) and describe the visual style they share.

Respond with a JSON object of this shape:
{
  "style_description": "concise description of the common visual style",
  "components": {
    "base_prompt": "core style description",
    "color_palette": "dominant colors",
    "effects": "visual effects",
    "materials": "surface materials and textures",
    "lighting": "lighting characteristics",
    "description": "one sentence summary"
  }
}

Focus on the style shared across all images, not on the depicted subjects.`, imageCount)
}
