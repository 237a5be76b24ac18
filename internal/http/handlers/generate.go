package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Minalinnski/ai-art-generation/internal/domain"
)

const maxArchiveBytes = 128 << 20

// Generate handles POST /v1/assets/{module}/generate.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Module = chi.URLParam(r, "module")

	result, err := a.Orchestrator.RunModule(r.Context(), req, nil, nil)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.Jobs.Record(result)
	a.json(w, http.StatusOK, moduleJobResponse(result))
}

// Validate handles POST /v1/assets/{module}/validate: a dry run that
// reports the task plan without generating anything.
func (a *App) Validate(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Module = chi.URLParam(r, "module")

	summary, err := a.Orchestrator.Validate(req)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"valid": true, "summary": summary})
}

// GenerateWithReferences handles POST /v1/assets/{module}/generate-with-references.
// Multipart form: a "request" JSON field, an "archive" zip upload, and
// optional "style_images" uploads for the reference_image style mode.
func (a *App) GenerateWithReferences(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxArchiveBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart form")
		return
	}
	var req domain.GenerationRequest
	if raw := r.FormValue("request"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid request field")
			return
		}
	}
	req.Module = chi.URLParam(r, "module")

	file, _, err := r.FormFile("archive")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "archive file is required")
		return
	}
	defer file.Close()
	archive, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "could not read archive")
		return
	}

	styleImages, err := a.formImages(r, "style_images")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "could not read style image upload")
		return
	}

	bundle, err := a.Ingestor.Ingest(r.Context(), req.Module, archive)
	if err != nil {
		a.domainError(w, err)
		return
	}
	defer a.Ingestor.Cleanup(r.Context(), bundle)

	result, err := a.Orchestrator.RunModule(r.Context(), req, bundle, styleImages)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.Jobs.Record(result)

	resp := moduleJobResponse(result)
	resp["reference_coverage"] = bundle.Coverage
	a.json(w, http.StatusOK, resp)
}

// CompositeGenerate handles POST /v1/assets/complete-game/generate.
func (a *App) CompositeGenerate(w http.ResponseWriter, r *http.Request) {
	var req domain.CompositeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	result, err := a.Orchestrator.RunComposite(r.Context(), req)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.Jobs.RecordComposite(result)

	modules := make(map[string]any, len(result.Modules))
	for name, m := range result.Modules {
		modules[name] = moduleJobResponse(m)
	}
	a.json(w, http.StatusOK, map[string]any{
		"job_id":        result.JobID,
		"status":        result.Status,
		"total_outputs": result.TotalOutputs,
		"duration":      result.Duration.Seconds(),
		"modules":       modules,
	})
}

func moduleJobResponse(res domain.ModuleJobResult) map[string]any {
	resp := map[string]any{
		"job_id":          res.JobID,
		"module":          res.Module,
		"status":          res.Status,
		"completed_tasks": res.SuccessCount,
		"total_tasks":     res.TotalCount,
		"outputs":         res.Outputs,
		"art_style_used":  res.Style,
		"duration":        fmt.Sprintf("%.2fs", res.Duration.Seconds()),
	}
	if res.Error != "" {
		resp["error"] = res.Error
	}
	return resp
}
