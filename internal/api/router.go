package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// WebSocket authenticates via single-use ticket, not bearer token
		r.Get("/ws", s.handleWebSocket)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// WS ticket requires authentication - user must be logged in to request a ticket
			r.Post("/auth/ws-ticket", s.handleWSTicket)

			// Lifecycle status of every room
			r.Get("/status", s.handleStatusAll)

			// Room endpoints
			r.Route("/rooms", func(r chi.Router) {
				r.Get("/", s.handleListRooms)
				r.Post("/", s.handleCreateRoom)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetRoom)
					r.Patch("/", s.handleUpdateRoom)
					r.Delete("/", s.handleDeleteRoom)
					r.Get("/status", s.handleRoomStatus)
					r.Post("/start", s.handleStartActivity)
					r.Post("/stop", s.handleStopActivity)
					r.Get("/transitions", s.handleListTransitions)

					// Activity endpoints (scoped to their room)
					r.Route("/activities", func(r chi.Router) {
						r.Get("/", s.handleListActivities)
						r.Post("/", s.handleCreateActivity)

						r.Route("/{name}", func(r chi.Router) {
							r.Get("/", s.handleGetActivity)
							r.Patch("/", s.handleUpdateActivity)
							r.Delete("/", s.handleDeleteActivity)
						})
					})
				})
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
