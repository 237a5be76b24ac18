package domain

// GenerationRequest is the inbound record for a single-module job. The
// HTTP layer validates its shape before the core sees it.
type GenerationRequest struct {
	Module            string                 `json:"module"`
	Model             string                 `json:"model,omitempty"`
	Provider          string                 `json:"provider,omitempty"`
	Style             StyleConfig            `json:"art_style"`
	Content           ContentTree            `json:"content,omitempty"`
	CustomContent     map[string][]AssetItem `json:"custom_content,omitempty"`
	DefaultResolution string                 `json:"default_resolution,omitempty"`
}

// ModuleContent is one module's slice of a composite request.
type ModuleContent struct {
	Style             *StyleConfig           `json:"art_style,omitempty"`
	Content           ContentTree            `json:"content,omitempty"`
	CustomContent     map[string][]AssetItem `json:"custom_content,omitempty"`
	DefaultResolution string                 `json:"default_resolution,omitempty"`
}

// CompositeRequest describes a complete-game job: a global style and
// model propagated to every module lacking its own override.
type CompositeRequest struct {
	Model             string                   `json:"model,omitempty"`
	Provider          string                   `json:"provider,omitempty"`
	GlobalStyle       StyleConfig              `json:"global_art_style"`
	DefaultResolution string                   `json:"default_resolution,omitempty"`
	Modules           map[string]ModuleContent `json:"modules"`
}
