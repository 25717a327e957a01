package api

import (
	"net/http"
	"strconv"

	"github.com/vytor/headcount/internal/logger"
	"github.com/vytor/headcount/internal/models"
	"github.com/vytor/headcount/internal/services"
)

type Server struct {
	Users    services.UserService
	Sessions services.SessionService
}

type loginRequest struct {
	Name string `json:"name"`
}

type userResponse struct {
	User    *models.User           `json:"user"`
	Summary *models.HistorySummary `json:"summary"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	user, err := s.Users.Login(r.Context(), req.Name)
	if err != nil {
		handleError(w, r, err)
		return
	}

	summary, err := s.Users.Summary(r.Context(), user.ID)
	if err != nil {
		log.Warn("failed to load summary for user %d: %v", user.ID, err)
		summary = nil
	}

	setUserCookie(w, user.ID)
	respondJSON(w, r, http.StatusOK, userResponse{User: user, Summary: summary})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearUserCookie(w)
	respondJSON(w, r, http.StatusNoContent, nil)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	summary, err := s.Users.Summary(r.Context(), user.ID)
	if err != nil {
		log.Warn("failed to load summary for user %d: %v", user.ID, err)
		summary = nil
	}
	respondJSON(w, r, http.StatusOK, userResponse{User: user, Summary: summary})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	filter := models.HistoryFilter{UserID: user.ID}
	if v := r.URL.Query().Get("correct"); v != "" {
		correct, err := strconv.ParseBool(v)
		if err == nil {
			filter.Correct = &correct
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	results, err := s.Users.History(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if results == nil {
		results = []models.GameResult{}
	}
	respondJSON(w, r, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]any{
		"status":          "ok",
		"active_sessions": s.Sessions.ActiveCount(),
	})
}
