package game

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/headcount/internal/deck"
	"github.com/vytor/headcount/internal/logger"
	"github.com/vytor/headcount/internal/models"
)

// State is the lifecycle phase of a session.
type State int

const (
	StateLoading State = iota
	StatePlaying
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Checkpoint is one self-reported partial sum. CorrectPartialSum is computed
// from the authoritative deck at recording time, never from the player's own
// running total. Entries are immutable once appended.
type Checkpoint struct {
	CursorIndex       int `json:"cursor_index"`
	UserValue         int `json:"user_value"`
	CorrectPartialSum int `json:"correct_partial_sum"`
	ElapsedSeconds    int `json:"elapsed_seconds"`
}

// IsCorrect reports whether the player's value matched the true partial sum.
// Display-time only; it never feeds into final scoring.
func (c Checkpoint) IsCorrect() bool {
	return c.UserValue == c.CorrectPartialSum
}

// Session is a single play-through of the head counting game: a truncated
// shuffled deck, a traversal cursor, a checkpoint ledger, a seconds timer and
// a one-shot final score. All state is guarded by one mutex because the
// ticker goroutine races request handlers.
type Session struct {
	id        uuid.UUID
	cards     deck.Deck
	targetSum int

	mu          sync.Mutex
	state       State
	cursor      int
	elapsed     int
	scratch     string
	checkpoints []Checkpoint
	result      *models.GameResult

	onEnd          func(models.GameResult)
	scratchRestore bool
	tickInterval   time.Duration
	manualTimer    bool

	stopOnce sync.Once
	stop     chan struct{}

	log *logger.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithOnEnd registers the callback fired exactly once, when the final answer
// is first submitted.
func WithOnEnd(fn func(models.GameResult)) SessionOption {
	return func(s *Session) {
		s.onEnd = fn
	}
}

// WithScratchRestore controls whether jumping back to the last checkpoint
// restores the scratch buffer to that checkpoint's recorded value.
func WithScratchRestore(enabled bool) SessionOption {
	return func(s *Session) {
		s.scratchRestore = enabled
	}
}

// WithTickInterval overrides the one-second timer tick.
func WithTickInterval(d time.Duration) SessionOption {
	return func(s *Session) {
		s.tickInterval = d
	}
}

// WithManualTimer disables the internal ticker goroutine; the caller drives
// time by calling Tick. Used by tests.
func WithManualTimer() SessionOption {
	return func(s *Session) {
		s.manualTimer = true
	}
}

// New creates a session over the given session deck. The target sum is
// computed here, once, and never recomputed. The session starts in the
// loading state; call Start to begin play.
func New(cards deck.Deck, opts ...SessionOption) *Session {
	s := &Session{
		id:             uuid.New(),
		cards:          cards,
		targetSum:      deck.Sum(cards),
		state:          StateLoading,
		cursor:         -1,
		scratchRestore: true,
		tickInterval:   time.Second,
		stop:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logger.Default().WithPrefix("game").WithField("session_id", s.id)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// TargetSum returns the precomputed sum of the session deck.
func (s *Session) TargetSum() int {
	return s.targetSum
}

// Start moves the session from loading to playing and starts the timer.
// No-op if the session already left the loading state.
func (s *Session) Start() {
	s.mu.Lock()
	if s.state != StateLoading {
		s.mu.Unlock()
		return
	}
	s.state = StatePlaying
	s.mu.Unlock()

	s.log.Debug("session started: cards=%d target=%d", len(s.cards), s.targetSum)
	if !s.manualTimer {
		go s.run()
	}
}

func (s *Session) run() {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if !s.Tick() {
				return
			}
		}
	}
}

// Tick advances the elapsed-seconds counter by one if the session is still
// playing, and reports whether it was. The timer never counts outside the
// playing state and never resets.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return false
	}
	s.elapsed++
	return true
}

// Advance reveals the next card. Advancing past the last card is the only
// transition into the finished state and stops the timer. No-op outside the
// playing state.
func (s *Session) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return
	}
	s.advanceLocked()
}

func (s *Session) advanceLocked() {
	if s.cursor < len(s.cards)-1 {
		s.cursor++
		return
	}
	s.state = StateFinished
	s.stopTimer()
	s.log.Debug("deck exhausted after %ds", s.elapsed)
}

// Retreat flips the current card back onto the deck. No-op before the first
// draw and outside the playing state; never changes state, never scores.
func (s *Session) Retreat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return
	}
	if s.cursor >= 0 {
		s.cursor--
	}
}

// SetScratch replaces the scratch input buffer.
func (s *Session) SetScratch(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return
	}
	s.scratch = value
}

// Scratch returns the scratch input buffer.
func (s *Session) Scratch() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scratch
}

// RecordCheckpoint appends the scratch buffer to the checkpoint ledger,
// tagged with the current cursor position, the true partial sum up to it and
// the elapsed time. Silently ignored unless the buffer parses as a
// non-negative integer; the buffer is cleared only on success.
func (s *Session) RecordCheckpoint() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordCheckpointLocked()
}

func (s *Session) recordCheckpointLocked() {
	if s.state != StatePlaying || s.scratch == "" {
		return
	}
	value, err := strconv.Atoi(s.scratch)
	if err != nil || value < 0 {
		return
	}
	s.checkpoints = append(s.checkpoints, Checkpoint{
		CursorIndex:       s.cursor,
		UserValue:         value,
		CorrectPartialSum: deck.Sum(s.cards[:s.cursor+1]),
		ElapsedSeconds:    s.elapsed,
	})
	s.scratch = ""
}

// LastCheckpoint returns the most recently recorded checkpoint, if any.
func (s *Session) LastCheckpoint() (Checkpoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.checkpoints) == 0 {
		return Checkpoint{}, false
	}
	return s.checkpoints[len(s.checkpoints)-1], true
}

// GoToLastCheckpoint jumps the cursor straight to the last checkpoint's
// position, the one sanctioned bypass of single-step traversal. No-op on an
// empty ledger. Depending on the scratch-restore policy the scratch buffer
// is reset to the checkpoint's recorded value or left alone.
func (s *Session) GoToLastCheckpoint() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying || len(s.checkpoints) == 0 {
		return
	}
	last := s.checkpoints[len(s.checkpoints)-1]
	s.cursor = last.CursorIndex
	if s.scratchRestore {
		s.scratch = strconv.Itoa(last.UserValue)
	}
}

// Primary is the draw-or-checkpoint action: a non-empty scratch buffer is
// recorded first, then the cursor advances. The checkpoint therefore tags
// the pre-advance position.
func (s *Session) Primary() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return
	}
	s.recordCheckpointLocked()
	s.advanceLocked()
}

// Secondary is the retreat action.
func (s *Session) Secondary() {
	s.Retreat()
}

// ErrNotFinished is returned by Submit while the deck is still being played.
var ErrNotFinished = errNotFinished{}

type errNotFinished struct{}

func (errNotFinished) Error() string { return "session is not finished" }

// Submit scores the player's final total against the target sum. Only valid
// once the deck is exhausted. The first call fixes the result and fires the
// onEnd callback; every later call returns that same result and has no
// further effect. An unparseable total scores as incorrect, not as an error.
func (s *Session) Submit(userTotal string) (models.GameResult, error) {
	s.mu.Lock()
	if s.state != StateFinished {
		s.mu.Unlock()
		return models.GameResult{}, ErrNotFinished
	}
	if s.result != nil {
		res := *s.result
		s.mu.Unlock()
		return res, nil
	}

	parsed, err := strconv.Atoi(userTotal)
	correct := err == nil && parsed == s.targetSum

	res := models.GameResult{
		Date:           time.Now(),
		ElapsedSeconds: s.elapsed,
		Correct:        correct,
	}
	s.result = &res
	onEnd := s.onEnd
	s.mu.Unlock()

	s.log.Info("final answer submitted: correct=%t elapsed=%ds", correct, res.ElapsedSeconds)
	if onEnd != nil {
		onEnd(res)
	}
	return res, nil
}

// Close tears the session down: the timer goroutine is stopped whatever the
// state. Safe to call multiple times and required on every exit path,
// including abandonment, so no ticker outlives its session.
func (s *Session) Close() {
	s.stopTimer()
}

func (s *Session) stopTimer() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}
