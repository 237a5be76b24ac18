package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Minalinnski/ai-art-generation/internal/http/handlers"
	"github.com/Minalinnski/ai-art-generation/internal/middleware"
)

// RouterOptions configures the HTTP surface.
type RouterOptions struct {
	RateLimitPerMin int
	AllowedOrigins  []string
	Logger          zerolog.Logger
}

func NewRouter(app *handlers.App, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
	)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(opts.AllowedOrigins))
	}
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/healthz", app.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/assets", func(r chi.Router) {
			r.Get("/modules", app.Modules)
			r.Post("/complete-game/generate", app.CompositeGenerate)
			r.Route("/{module}", func(r chi.Router) {
				r.Post("/generate", app.Generate)
				r.Post("/validate", app.Validate)
				r.Post("/generate-with-references", app.GenerateWithReferences)
			})
		})

		r.Route("/art-style", func(r chi.Router) {
			r.Get("/presets", app.StylePresets)
			r.Post("/preview", app.StylePreview)
		})

		r.Get("/files/*", app.FileDownload)
		r.Get("/jobs/{job_id}/bundle", app.JobBundle)
	})

	return r
}
