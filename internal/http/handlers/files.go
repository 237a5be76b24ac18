package handlers

import (
	"fmt"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"

	zippkg "github.com/Minalinnski/ai-art-generation/pkg/zip"
)

// FileDownload handles GET /v1/files/{key...}. The URL must carry a
// valid, unexpired signature produced by the store.
func (a *App) FileDownload(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "file key required")
		return
	}
	expires, err := strconv.ParseInt(r.URL.Query().Get("expires"), 10, 64)
	if err != nil {
		a.error(w, http.StatusForbidden, "forbidden", "missing or invalid expiry")
		return
	}
	signature := r.URL.Query().Get("signature")
	if !a.Store.VerifySignature(key, expires, signature) {
		a.error(w, http.StatusForbidden, "forbidden", "invalid or expired signature")
		return
	}

	data, err := a.Store.Read(r.Context(), key)
	if err != nil {
		a.domainError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypeForKey(key))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// JobBundle handles GET /v1/jobs/{job_id}/bundle: every output of a
// recorded job zipped into one download.
func (a *App) JobBundle(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	outputs, ok := a.Jobs.Outputs(jobID)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "unknown job id")
		return
	}
	if len(outputs) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "job produced no outputs")
		return
	}

	bundle := make([]zippkg.Asset, 0, len(outputs))
	for _, out := range outputs {
		data, err := a.Store.Read(r.Context(), out.StorageKey)
		if err != nil {
			a.Logger.Warn().Err(err).Str("key", out.StorageKey).Msg("bundle member unreadable, skipping")
			continue
		}
		bundle = append(bundle, zippkg.Asset{
			Filename: fmt.Sprintf("%s/%s/%s", out.Category, out.Subcategory, path.Base(out.StorageKey)),
			MIME:     "image/png",
			Data:     data,
		})
	}
	if len(bundle) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no readable outputs for job")
		return
	}

	archive, err := zippkg.ArchiveAssets(bundle)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "could not build bundle")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", jobID+".zip"))
	_, _ = w.Write(archive)
}

func contentTypeForKey(key string) string {
	switch path.Ext(key) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".zip":
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}
