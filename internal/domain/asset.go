package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	filenamePattern   = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	resolutionPattern = regexp.MustCompile(`^\d+x\d+$`)
)

// AssetItem is one declared asset inside a category/subcategory tree. An
// item with Count=N expands into N generation tasks.
type AssetItem struct {
	Filename    string `json:"filename" yaml:"filename"`
	Description string `json:"description" yaml:"description"`
	Count       int    `json:"count" yaml:"count"`
	Resolution  string `json:"resolution,omitempty" yaml:"resolution,omitempty"`
}

// Validate checks the item against the declared shape: short alnum
// identifier, non-empty description, positive count, WxH resolution.
func (a AssetItem) Validate() error {
	if strings.TrimSpace(a.Filename) == "" {
		return fmt.Errorf("%w: asset item filename is required", ErrValidation)
	}
	if !filenamePattern.MatchString(a.Filename) {
		return fmt.Errorf("%w: asset item filename %q must be alphanumeric with underscores or hyphens", ErrValidation, a.Filename)
	}
	if strings.TrimSpace(a.Description) == "" {
		return fmt.Errorf("%w: asset item %q description is required", ErrValidation, a.Filename)
	}
	if a.Count < 1 {
		return fmt.Errorf("%w: asset item %q count must be at least 1", ErrValidation, a.Filename)
	}
	if a.Resolution != "" && !resolutionPattern.MatchString(a.Resolution) {
		return fmt.Errorf("%w: asset item %q resolution %q must match WxH", ErrValidation, a.Filename, a.Resolution)
	}
	return nil
}

// ValidResolution reports whether s is a WxH resolution token.
func ValidResolution(s string) bool {
	return resolutionPattern.MatchString(s)
}

// ContentTree maps category -> subcategory -> declared items.
type ContentTree map[string]map[string][]AssetItem

// Empty reports whether the tree holds no items at all.
func (t ContentTree) Empty() bool {
	for _, subcategories := range t {
		for _, items := range subcategories {
			if len(items) > 0 {
				return false
			}
		}
	}
	return true
}
