package artstyle

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Minalinnski/ai-art-generation/internal/domain"
)

// Theme is one entry of the preset style catalog.
type Theme struct {
	Name       string                 `yaml:"name"`
	Components domain.StyleComponents `yaml:"components"`
}

// Catalog is the read-only preset theme registry. It is built once at
// process start and safe for unlimited concurrent readers.
type Catalog struct {
	themes map[string]Theme
	order  []string
}

// NewCatalog returns the compiled-in preset catalog.
func NewCatalog() *Catalog {
	c := &Catalog{themes: make(map[string]Theme)}
	for _, entry := range defaultThemes {
		c.themes[entry.key] = entry.theme
		c.order = append(c.order, entry.key)
	}
	return c
}

// LoadCatalog reads preset themes from a YAML file, falling back to the
// compiled-in catalog when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return NewCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset catalog: %w", err)
	}
	var wrapper struct {
		Themes yaml.Node `yaml:"themes"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parse preset catalog: %w", err)
	}
	c := &Catalog{themes: make(map[string]Theme)}
	// Walk the mapping node pairwise to preserve declaration order.
	for i := 0; i+1 < len(wrapper.Themes.Content); i += 2 {
		var key string
		var theme Theme
		if err := wrapper.Themes.Content[i].Decode(&key); err != nil {
			return nil, fmt.Errorf("parse preset catalog: %w", err)
		}
		if err := wrapper.Themes.Content[i+1].Decode(&theme); err != nil {
			return nil, fmt.Errorf("parse preset theme %s: %w", key, err)
		}
		c.themes[key] = theme
		c.order = append(c.order, key)
	}
	if len(c.themes) == 0 {
		return NewCatalog(), nil
	}
	return c, nil
}

// Theme returns the catalog entry for key.
func (c *Catalog) Theme(key string) (Theme, bool) {
	t, ok := c.themes[key]
	return t, ok
}

// Names lists theme keys in declaration order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

var defaultThemes = []struct {
	key   string
	theme Theme
}{
	{"fantasy_medieval", Theme{
		Name: "Fantasy Medieval",
		Components: domain.StyleComponents{
			BasePrompt:   "fantasy art, medieval style, detailed illustration",
			ColorPalette: "rich gold, deep red, royal blue, ancient bronze",
			Effects:      "glowing magical effect, mystical aura",
			Materials:    "aged parchment, worn metal, mystical gems",
			Lighting:     "warm torchlight, mysterious shadows",
			Description:  "Medieval fantasy style with rich colors and magical elements",
		},
	}},
	{"cyberpunk_neon", Theme{
		Name: "Cyberpunk Neon",
		Components: domain.StyleComponents{
			BasePrompt:   "cyberpunk style, neon aesthetic, futuristic design",
			ColorPalette: "electric blue, hot pink, acid green, chrome silver",
			Effects:      "neon glow, holographic shimmer, digital distortion",
			Materials:    "sleek metal, glass panels, LED strips",
			Lighting:     "harsh neon lighting, dramatic shadows",
			Description:  "Futuristic cyberpunk with neon colors and high-tech aesthetics",
		},
	}},
	{"steampunk_bronze", Theme{
		Name: "Steampunk Bronze",
		Components: domain.StyleComponents{
			BasePrompt:   "steampunk style, Victorian era, mechanical design",
			ColorPalette: "brass, copper, bronze, dark leather brown",
			Effects:      "steam effects, gear mechanisms, clockwork details",
			Materials:    "polished brass, worn leather, riveted metal",
			Lighting:     "warm gas lamp glow, industrial shadows",
			Description:  "Victorian steampunk with brass and mechanical elements",
		},
	}},
	{"cosmic_space", Theme{
		Name: "Cosmic Space",
		Components: domain.StyleComponents{
			BasePrompt:   "cosmic space theme, sci-fi aesthetic, stellar design",
			ColorPalette: "deep purple, starlight blue, cosmic gold, void black",
			Effects:      "stellar glow, nebula patterns, cosmic energy",
			Materials:    "crystalline structures, energy fields, metallic hull",
			Lighting:     "starlight, cosmic radiation glow",
			Description:  "Space-themed design with cosmic colors and stellar effects",
		},
	}},
	{"nature_organic", Theme{
		Name: "Nature Organic",
		Components: domain.StyleComponents{
			BasePrompt:   "organic nature style, natural elements, earthy design",
			ColorPalette: "forest green, earth brown, sky blue, sunset orange",
			Effects:      "natural texture, organic growth patterns, flowing forms",
			Materials:    "wood grain, stone texture, flowing water",
			Lighting:     "natural sunlight, forest dappled light",
			Description:  "Natural organic style with earth tones and organic shapes",
		},
	}},
	{"dark_gothic", Theme{
		Name: "Dark Gothic",
		Components: domain.StyleComponents{
			BasePrompt:   "dark gothic style, ornate details, dramatic atmosphere",
			ColorPalette: "deep black, blood red, silver, dark purple",
			Effects:      "dramatic shadows, ornate patterns, gothic details",
			Materials:    "carved stone, wrought iron, stained glass",
			Lighting:     "candlelight, moonlight, dramatic chiaroscuro",
			Description:  "Gothic architecture style with dark colors and ornate details",
		},
	}},
	{"chinese_traditional", Theme{
		Name: "Chinese Traditional",
		Components: domain.StyleComponents{
			BasePrompt:   "traditional Chinese art style, ink painting, classical design",
			ColorPalette: "imperial red, golden yellow, jade green, ink black",
			Effects:      "ink wash effects, flowing brush strokes, traditional patterns",
			Materials:    "silk texture, bamboo elements, jade stones, rice paper",
			Lighting:     "soft natural light, traditional lantern glow",
			Description:  "Traditional Chinese art with classical colors and cultural elements",
		},
	}},
	{"space_scifi", Theme{
		Name: "Space Sci-Fi",
		Components: domain.StyleComponents{
			BasePrompt:   "space science fiction, futuristic technology, stellar environment",
			ColorPalette: "electric blue, plasma purple, tech silver, void black",
			Effects:      "energy fields, holographic displays, stellar phenomena",
			Materials:    "advanced alloys, energy crystals, quantum materials",
			Lighting:     "artificial tech lighting, star field glow, energy emissions",
			Description:  "Advanced sci-fi space theme with high-tech elements and cosmic setting",
		},
	}},
}
