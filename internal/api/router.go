package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Ininit/OpenTranslate/internal/api/handlers"
	"github.com/Ininit/OpenTranslate/internal/api/middleware"
	"github.com/Ininit/OpenTranslate/internal/auth"
	"github.com/Ininit/OpenTranslate/internal/config"
	"github.com/Ininit/OpenTranslate/internal/speech"
)

// Deps are the collaborators the routes need. DB, Redis and Synthesizer may
// be nil.
type Deps struct {
	DB          handlers.Pinger
	Redis       handlers.Pinger
	Service     handlers.TranslationService
	Synthesizer speech.Synthesizer
}

type Router struct {
	mux  *chi.Mux
	cfg  *config.Config
	deps Deps
	jwt  *auth.JWTMiddleware
}

func NewRouter(cfg *config.Config, deps Deps) *Router {
	rt := &Router{
		mux:  chi.NewRouter(),
		cfg:  cfg,
		deps: deps,
	}
	if cfg.Auth.JWTSecret != "" {
		rt.jwt = auth.NewJWTMiddleware(cfg.Auth.JWTSecret)
	}
	return rt
}

// Setup mounts the routes. ctx bounds background work such as rate limiter
// cleanup.
func (rt *Router) Setup(ctx context.Context) http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.Server.CORSOrigins))

	if rt.cfg.Server.RateLimitRPS > 0 {
		rl := middleware.NewRateLimiter(ctx, rt.cfg.Server.RateLimitRPS, rt.cfg.Server.RateLimitBurst)
		r.Use(rl.Limit)
	}

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.deps.DB, rt.deps.Redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	translateH := handlers.NewTranslateHandler(rt.deps.Service)
	jobH := handlers.NewJobHandler(rt.deps.Service)
	docH := handlers.NewDocumentHandler(rt.deps.Service, rt.cfg.Server.MaxUploadMB)
	speechH := handlers.NewSpeechHandler(rt.deps.Service, rt.deps.Synthesizer)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if rt.jwt != nil {
			r.Use(rt.jwt.Authenticate)
		}

		r.Get("/providers", translateH.Providers)
		r.Get("/providers/{name}/languages", translateH.Languages)

		r.Group(func(r chi.Router) {
			r.Use(rt.scope(auth.ScopeTranslate))
			r.Post("/translate", translateH.Translate)
			r.Post("/detect", translateH.Detect)
			r.Post("/documents/translate", docH.Translate)
		})

		r.Group(func(r chi.Router) {
			r.Use(rt.scope(auth.ScopeJobs))
			r.Post("/jobs", jobH.Create)
			r.Get("/jobs/{id}", jobH.Get)
		})

		r.With(rt.scope(auth.ScopeHistoryRead)).Get("/history", jobH.History)
		r.With(rt.scope(auth.ScopeSpeech)).Post("/speech", speechH.Speak)
	})

	return r
}

// scope enforces a token scope when authentication is enabled.
func (rt *Router) scope(s string) func(http.Handler) http.Handler {
	if rt.jwt == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return auth.RequireScope(s)
}
