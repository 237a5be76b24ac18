package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/Minalinnski/ai-art-generation/internal/artstyle"
	"github.com/Minalinnski/ai-art-generation/internal/domain"
)

const maxStyleUploadBytes = 32 << 20

// StylePreview handles POST /v1/art-style/preview: resolve a style
// configuration without running any generation. JSON bodies cover
// preset, direct and ai_enhanced modes; reference_image mode uses a
// multipart form with a "config" field and "images" uploads.
func (a *App) StylePreview(w http.ResponseWriter, r *http.Request) {
	var cfg domain.StyleConfig
	var images []artstyle.ReferenceImage

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(maxStyleUploadBytes); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart form")
			return
		}
		if raw := r.FormValue("config"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
				a.error(w, http.StatusBadRequest, "bad_request", "invalid config field")
				return
			}
		}
		var err error
		if images, err = a.formImages(r, "images"); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "could not read image upload")
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
	}

	if err := cfg.Validate(); err != nil {
		a.domainError(w, err)
		return
	}
	descriptor, err := a.Resolver.Resolve(r.Context(), cfg, images)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, descriptor)
}

// formImages reads the named multipart file uploads as style reference
// images, capped at MaxStyleImages.
func (a *App) formImages(r *http.Request, field string) ([]artstyle.ReferenceImage, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	var images []artstyle.ReferenceImage
	for _, header := range r.MultipartForm.File[field] {
		if len(images) >= a.MaxStyleImages {
			break
		}
		file, err := header.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, err
		}
		images = append(images, artstyle.ReferenceImage{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return images, nil
}

// StylePresets handles GET /v1/art-style/presets.
func (a *App) StylePresets(w http.ResponseWriter, r *http.Request) {
	catalog := a.Resolver.Catalog()
	themes := make([]map[string]any, 0)
	for _, name := range catalog.Names() {
		theme, _ := catalog.Theme(name)
		themes = append(themes, map[string]any{
			"name":       name,
			"components": theme.Components,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"themes": themes})
}
