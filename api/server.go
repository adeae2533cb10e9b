/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests from POS tablets and the portal

ROUTES:
  GET  /                   Health check
  POST /api/vip            Single dispatch entry point (type field)
  POST /api/scenarios/seed Demo data (dev only)

SECURITY NOTE:
  Owner credentials travel in the request body; the dispatch endpoint
  itself is public. Front it with TLS in production.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
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
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
	}))

	// Health check
	r.Get("/", h.Health)

	// All POS and portal operations dispatch through one endpoint; the
	// legacy clients cannot vary the URL, only the "type" field.
	r.Post("/api/vip", h.Dispatch)

	// Demo scenarios (dev only)
	r.Post("/api/scenarios/seed", h.SeedDemoData)

	return r
}
