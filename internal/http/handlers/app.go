package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Minalinnski/ai-art-generation/internal/artstyle"
	"github.com/Minalinnski/ai-art-generation/internal/assets"
	"github.com/Minalinnski/ai-art-generation/internal/domain"
	"github.com/Minalinnski/ai-art-generation/internal/reference"
	"github.com/Minalinnski/ai-art-generation/internal/storage"
)

// App carries the handler dependencies.
type App struct {
	Orchestrator   *assets.Orchestrator
	Resolver       *artstyle.Resolver
	Ingestor       *reference.Ingestor
	Store          *storage.FileStore
	Jobs           *assets.JobIndex
	MaxStyleImages int
	Logger         zerolog.Logger
}

func NewApp(orchestrator *assets.Orchestrator, resolver *artstyle.Resolver, ingestor *reference.Ingestor, store *storage.FileStore, maxStyleImages int, logger zerolog.Logger) *App {
	return &App{
		Orchestrator:   orchestrator,
		Resolver:       resolver,
		Ingestor:       ingestor,
		Store:          store,
		Jobs:           assets.NewJobIndex(),
		MaxStyleImages: maxStyleImages,
		Logger:         logger.With().Str("component", "http").Logger(),
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]string{"error": code, "message": message})
}

// domainError maps the domain sentinel wrapped in err to an HTTP
// status: caller mistakes are 4xx, upstream and storage trouble is 502.
func (a *App) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, domain.ErrConfiguration):
		a.error(w, http.StatusBadRequest, "configuration_error", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrUpstreamAI):
		a.error(w, http.StatusBadGateway, "upstream_ai_error", err.Error())
	case errors.Is(err, domain.ErrStorage):
		a.error(w, http.StatusBadGateway, "storage_error", err.Error())
	default:
		a.error(w, http.StatusInternalServerError, "internal", err.Error())
	}
}
