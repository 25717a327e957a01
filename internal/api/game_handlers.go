package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vytor/headcount/internal/errors"
	"github.com/vytor/headcount/internal/game"
)

type actionRequest struct {
	Scratch *string `json:"scratch,omitempty"`
	Total   *string `json:"total,omitempty"`
}

// decodeAction tolerates an empty body: every field is optional.
func decodeAction(r *http.Request) (actionRequest, error) {
	var req actionRequest
	if r.Body == nil || r.ContentLength == 0 {
		return req, nil
	}
	if err := decodeJSON(r, &req); err != nil {
		return req, err
	}
	return req, nil
}

// sessionFromRequest resolves {id} to a live session owned by the cookie user.
func (s *Server) sessionFromRequest(r *http.Request) (*game.Session, error) {
	user := userFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return nil, errors.NewBadRequestError("invalid game id")
	}
	return s.Sessions.Get(r.Context(), id, user.ID)
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	session, err := s.Sessions.StartGame(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, session.Snapshot())
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromRequest(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, session.Snapshot())
}

// handlePrimary is the draw-or-checkpoint action. A scratch value in the body
// replaces the buffer first, so "type a partial sum and click" is one request.
func (s *Server) handlePrimary(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromRequest(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	req, err := decodeAction(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if req.Scratch != nil {
		session.SetScratch(*req.Scratch)
	}
	session.Primary()
	respondJSON(w, r, http.StatusOK, session.Snapshot())
}

func (s *Server) handleSecondary(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromRequest(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	session.Secondary()
	respondJSON(w, r, http.StatusOK, session.Snapshot())
}

func (s *Server) handleCheckpoint(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromRequest(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	req, err := decodeAction(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if req.Scratch != nil {
		session.SetScratch(*req.Scratch)
	}
	session.RecordCheckpoint()
	respondJSON(w, r, http.StatusOK, session.Snapshot())
}

func (s *Server) handleCheckpointBack(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromRequest(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	session.GoToLastCheckpoint()
	respondJSON(w, r, http.StatusOK, session.Snapshot())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessionFromRequest(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	req, err := decodeAction(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	total := ""
	if req.Total != nil {
		total = *req.Total
	}
	if _, err := session.Submit(total); err != nil {
		handleError(w, r, errors.NewValidationError("total", err.Error()))
		return
	}
	respondJSON(w, r, http.StatusOK, session.Snapshot())
}

func (s *Server) handleQuit(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid game id"))
		return
	}
	if err := s.Sessions.Quit(r.Context(), id, user.ID); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusNoContent, nil)
}
