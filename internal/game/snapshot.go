package game

import (
	"github.com/google/uuid"
	"github.com/vytor/headcount/internal/deck"
	"github.com/vytor/headcount/internal/models"
)

// CheckpointView is a checkpoint plus its display-time verdict.
type CheckpointView struct {
	Checkpoint
	Correct bool `json:"correct"`
}

// Snapshot is a consistent read of the whole session for the API layer. The
// target sum is only revealed once a result exists, alongside it.
type Snapshot struct {
	ID             uuid.UUID          `json:"id"`
	State          string             `json:"state"`
	CursorIndex    int                `json:"cursor_index"`
	CurrentCard    *deck.Card         `json:"current_card,omitempty"`
	CardsDrawn     int                `json:"cards_drawn"`
	CardsRemaining int                `json:"cards_remaining"`
	TotalCards     int                `json:"total_cards"`
	ElapsedSeconds int                `json:"elapsed_seconds"`
	Scratch        string             `json:"scratch"`
	Checkpoints    []CheckpointView   `json:"checkpoints"`
	Result         *models.GameResult `json:"result,omitempty"`
	CorrectSum     *int               `json:"correct_sum,omitempty"`
}

// Snapshot captures the session state under the lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:             s.id,
		State:          s.state.String(),
		CursorIndex:    s.cursor,
		CardsDrawn:     s.cursor + 1,
		CardsRemaining: len(s.cards) - 1 - s.cursor,
		TotalCards:     len(s.cards),
		ElapsedSeconds: s.elapsed,
		Scratch:        s.scratch,
		Checkpoints:    make([]CheckpointView, 0, len(s.checkpoints)),
	}
	if s.cursor >= 0 && s.cursor < len(s.cards) {
		card := s.cards[s.cursor]
		snap.CurrentCard = &card
	}
	for _, cp := range s.checkpoints {
		snap.Checkpoints = append(snap.Checkpoints, CheckpointView{Checkpoint: cp, Correct: cp.IsCorrect()})
	}
	if s.result != nil {
		res := *s.result
		snap.Result = &res
		target := s.targetSum
		snap.CorrectSum = &target
	}
	return snap
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cursor returns the current cursor index; -1 means no card drawn yet.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Elapsed returns the timer value in whole seconds.
func (s *Session) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// Checkpoints returns a copy of the checkpoint ledger, oldest first.
func (s *Session) Checkpoints() []Checkpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Checkpoint, len(s.checkpoints))
	copy(out, s.checkpoints)
	return out
}
