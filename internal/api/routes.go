package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/login", s.handleLogin)
	r.Post("/api/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.userMiddleware)

		r.Get("/api/me", s.handleMe)
		r.Get("/api/history", s.handleHistory)

		r.Post("/api/games", s.handleStartGame)
		r.Get("/api/games/{id}", s.handleGetGame)
		r.Get("/api/games/{id}/ws", s.handleGameWS)
		r.Post("/api/games/{id}/primary", s.handlePrimary)
		r.Post("/api/games/{id}/secondary", s.handleSecondary)
		r.Post("/api/games/{id}/checkpoint", s.handleCheckpoint)
		r.Post("/api/games/{id}/checkpoint/back", s.handleCheckpointBack)
		r.Post("/api/games/{id}/submit", s.handleSubmit)
		r.Post("/api/games/{id}/quit", s.handleQuit)
	})

	return r
}
