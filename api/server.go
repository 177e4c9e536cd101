/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:      Request logging
  2. Recoverer:   Panic recovery (500 instead of crash)
  3. RequestID:   Unique ID per request for tracing
  4. CORS:        Cross-origin requests for UI collaborators

NOT-FOUND POLICY:
  Unknown routes and methods answer with the same {"error":"not found"}
  body the handlers use, so the remote backend classifies unknown
  requests uniformly as not-found.

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/server/main.go: server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Auth-Token"},
		AllowCredentials: false,
	}))

	notFound := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found"})
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.SignUp)
			r.Post("/signin", h.SignIn)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)

			r.Route("/habits", func(r chi.Router) {
				r.Get("/", h.ListHabits)
				r.Post("/", h.CreateHabit)
				r.Post("/log", h.UpsertLog)
				r.Get("/logs/{date}", h.ListLogsForDate)
				r.Delete("/{id}", h.DeleteHabit)
			})

			r.Route("/routines", func(r chi.Router) {
				r.Get("/", h.ListRoutines)
				r.Post("/", h.CreateRoutine)
				r.Delete("/{id}", h.DeleteRoutine)
			})

			r.Route("/stats", func(r chi.Router) {
				r.Get("/heatmap", h.Heatmap)
				r.Get("/streaks", h.Streaks)
			})
		})
	})

	return r
}
