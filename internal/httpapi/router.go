package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const defaultRequestTimeout = 30 * time.Second

type RouterConfig struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
}

func NewRouter(api *API, cfg RouterConfig) http.Handler {
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", api.HandleHealth)

	// The event feed outlives any request timeout.
	r.Get("/sessions/{session_id}/events", api.HandleSessionEvents)

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(timeout))

		r.Post("/sessions", api.HandleCreateSession)
		r.Get("/sessions/{session_id}", api.HandleGetSession)
		r.Post("/sessions/{session_id}/begin", api.HandleBegin)
		r.Put("/sessions/{session_id}/answers/{stat}", api.HandleSetAnswer)
		r.Post("/sessions/{session_id}/submit", api.HandleSubmit)
		r.Post("/sessions/{session_id}/advance", api.HandleAdvance)

		r.Get("/results/recent", api.HandleRecentResults)
		r.Get("/leaderboard", api.HandleLeaderboard)
	})

	return r
}
