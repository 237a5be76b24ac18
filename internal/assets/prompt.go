package assets

import (
	"fmt"
	"strings"

	"github.com/Minalinnski/ai-art-generation/internal/domain"
)

// ReferenceInfo carries the textual reference hints attached to one
// task, resolved from an ingested archive.
type ReferenceInfo struct {
	AssetDescription string
	ReferencePrompt  string
}

// moduleClauses is the per-module prompt vocabulary. Each module has a
// fixed set of base clauses plus requirement clauses keyed by category
// and subcategory.
type moduleClauses struct {
	leadFormat  string
	base        []string
	categories  map[string]map[string][]string
	subOrder    map[string][]string
	customNote  string
	customExtra []string
}

var clauseTable = map[string]moduleClauses{
	"symbols": {
		leadFormat: "Create a slot machine symbol: %s",
		base: []string{
			"high quality game asset",
			"centered composition",
			"clear silhouette",
			"suitable for slot machine gameplay",
		},
		categories: map[string]map[string][]string{
			"base_symbols": {
				"low_value": {
					"designed as a lower-value game symbol",
					"clean and recognizable design",
					"suitable for frequent appearance",
				},
				"high_value": {
					"designed as a high-value premium symbol",
					"ornate and eye-catching appearance",
					"detailed and luxurious design",
				},
			},
			"special_symbols": {
				"wild": {
					"designed as a WILD symbol with powerful visual impact",
					"magical or mystical elements",
					"glowing effects",
					"besides main element, should have a frame, may include 'WILD' text and optional multiplier values in the same row",
				},
				"scatter": {
					"designed as a SCATTER symbol with dynamic energy",
					"radiating or explosive visual elements",
					"sparkling effects",
					"conveys bonus trigger functionality",
					"besides main element, should have a frame",
				},
				"bonus": {
					"designed as a BONUS symbol representing rewards",
					"treasure or prize-like elements",
					"golden glow or valuable appearance",
				},
			},
		},
		subOrder: map[string][]string{
			"base_symbols":    {"low_value", "high_value"},
			"special_symbols": {"wild", "scatter", "bonus"},
		},
		customNote: "designed as a %s symbol",
		customExtra: []string{
			"distinctive and clear design",
			"optimized for game use",
		},
	},
	"ui": {
		leadFormat: "Create a game UI element: %s",
		base: []string{
			"modern and intuitive design",
			"suitable for slot machine games",
			"clean and functional appearance",
		},
		categories: map[string]map[string][]string{
			"buttons": {
				"main_controls": {
					"primary action button design",
					"includes Normal, Hover, and Press states",
					"prominent and easily clickable",
					"consistent shape and spacing",
				},
				"toggle_controls": {
					"toggle button showing On and Off states",
					"clear visual distinction between states",
					"includes appropriate icons",
				},
				"icon_buttons": {
					"icon-style button with clear symbol",
					"square or rounded base design",
					"clean silhouette for recognition",
				},
			},
			"panels": {
				"info_panels": {
					"information display panel design",
					"clear and readable layout",
					"suitable for displaying game statistics",
				},
				"game_area": {
					"game area background panel",
					"provides context without distraction",
					"balanced visual weight",
				},
			},
		},
		subOrder: map[string][]string{
			"buttons": {"main_controls", "toggle_controls", "icon_buttons"},
			"panels":  {"info_panels", "game_area"},
		},
		customNote: "designed as a %s UI element",
		customExtra: []string{
			"functional and user-friendly design",
			"game interface appropriate",
		},
	},
	"backgrounds": {
		leadFormat: "Create a game background: %s",
		base: []string{
			"atmospheric and immersive scene",
			"suitable for slot machine games",
			"detailed but not distracting",
		},
		categories: map[string]map[string][]string{
			"background_set": {
				"background_scene": {
					"main backdrop for slot machine game",
					"immersive and detailed environment",
					"consistent with all UI elements",
				},
				"panel_frame": {
					"panel frame with transparent center",
					"surrounds the game area like reels",
					"ornate symmetrical border",
					"designed to fit 3x5 tile layout",
				},
				"filled_panel_frame": {
					"panel frame with soft inner background fill",
					"identical shape to transparent version",
					"used as direct overlay panel",
					"maintain shape and proportions",
				},
				"tile_area": {
					"3x5 tile grid background",
					"fits seamlessly inside panel frame",
					"evenly sized tiles forming game grid",
					"textured and aligned with frame",
				},
			},
		},
		subOrder: map[string][]string{
			"background_set": {"background_scene", "panel_frame", "filled_panel_frame", "tile_area"},
		},
		customNote: "designed as a %s background",
		customExtra: []string{
			"atmospheric and engaging",
			"game-appropriate composition",
		},
	},
}

var genericClauses = moduleClauses{
	leadFormat: "Create a game asset: %s",
	base: []string{
		"high quality game asset",
		"clean and professional design",
	},
	customNote: "designed as a %s asset",
	customExtra: []string{
		"distinctive and clear design",
		"optimized for game use",
	},
}

// ComposePrompt builds the full generation prompt for one task. The
// clause order is fixed: content description, art style, taxonomy,
// optional reference hints, technical specs, quality tags. Composition
// is pure, so composing the same task twice yields the same prompt.
func ComposePrompt(module string, task domain.GenerationTask, style domain.StyleDescriptor, ref *ReferenceInfo) string {
	clauses, ok := clauseTable[module]
	if !ok {
		clauses = genericClauses
	}

	description := task.Description
	if description == "" {
		description = task.Filename
	}

	parts := []string{fmt.Sprintf(clauses.leadFormat, description)}
	parts = append(parts, clauses.base...)
	parts = append(parts, requirementClauses(clauses, task.Category, task.Subcategory)...)

	stylePrompt := style.StylePrompt
	if stylePrompt == "" {
		stylePrompt = "high quality artwork"
	}
	parts = append(parts,
		fmt.Sprintf("Art style: %s", stylePrompt),
		fmt.Sprintf("Category: %s, Subcategory: %s", task.Category, task.Subcategory),
	)

	if ref != nil {
		if ref.AssetDescription != "" {
			parts = append(parts, fmt.Sprintf("Reference: %s", ref.AssetDescription))
		}
		if ref.ReferencePrompt != "" {
			parts = append(parts, fmt.Sprintf("Asset reference: %s", ref.ReferencePrompt))
		}
	}

	resolution := task.Resolution
	if resolution == "" {
		resolution = defaultResolution
	}
	qualityTags := style.QualityTags
	if qualityTags == "" {
		qualityTags = "high quality, professional design"
	}
	parts = append(parts,
		fmt.Sprintf("Technical specs: %s resolution, isolated on transparent background", resolution),
		fmt.Sprintf("Quality: %s", qualityTags),
	)

	return strings.Join(parts, ", ")
}

// requirementClauses picks the per-subcategory requirements. An unknown
// subcategory inside a known category falls back to that category's
// first declared subcategory; an unknown category gets the module's
// generic custom clauses.
func requirementClauses(clauses moduleClauses, category, subcategory string) []string {
	if subs, ok := clauses.categories[category]; ok {
		if reqs, ok := subs[subcategory]; ok {
			return reqs
		}
		if order := clauses.subOrder[category]; len(order) > 0 {
			return subs[order[0]]
		}
	}
	out := []string{fmt.Sprintf(clauses.customNote, category)}
	return append(out, clauses.customExtra...)
}
