package services

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/headcount/internal/deck"
	"github.com/vytor/headcount/internal/errors"
	"github.com/vytor/headcount/internal/game"
	"github.com/vytor/headcount/internal/logger"
	"github.com/vytor/headcount/internal/models"
)

// SessionService owns the table of live game sessions. Sessions live in
// memory only; what survives them is the GameResult written through the
// UserService when the final answer lands.
type SessionService interface {
	// StartGame builds a fresh session deck and begins play. One active
	// session per user.
	StartGame(ctx context.Context, userID int64) (*game.Session, error)
	// Get returns a live session, verifying ownership.
	Get(ctx context.Context, id uuid.UUID, userID int64) (*game.Session, error)
	// Quit abandons a session with no result recorded.
	Quit(ctx context.Context, id uuid.UUID, userID int64) error
	// Touch refreshes a session's idle stamp so continuous play over a
	// long-lived connection is not mistaken for abandonment.
	Touch(id uuid.UUID)
	// Start launches the idle-session reaper.
	Start(ctx context.Context)
	// Stop halts the reaper and closes every remaining session.
	Stop()
	// ActiveCount reports how many sessions are currently held.
	ActiveCount() int
}

type sessionEntry struct {
	session    *game.Session
	userID     int64
	lastActive time.Time
}

type sessionService struct {
	users    UserService
	cutRange deck.CutRange

	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionEntry
	byUser   map[int64]uuid.UUID
	rng      *rand.Rand

	scratchRestore bool
	idleTimeout    time.Duration
	reapInterval   time.Duration
	gameOpts       []game.SessionOption

	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    *logger.Logger
}

// SessionServiceOption configures the session service.
type SessionServiceOption func(*sessionService)

// WithScratchRestorePolicy sets whether jumping back to a checkpoint restores
// the scratch buffer.
func WithScratchRestorePolicy(enabled bool) SessionServiceOption {
	return func(s *sessionService) {
		s.scratchRestore = enabled
	}
}

// WithIdleTimeout sets how long an untouched session survives before the
// reaper closes it.
func WithIdleTimeout(d time.Duration) SessionServiceOption {
	return func(s *sessionService) {
		s.idleTimeout = d
	}
}

// WithReapInterval sets how often the reaper scans. Mostly for tests.
func WithReapInterval(d time.Duration) SessionServiceOption {
	return func(s *sessionService) {
		s.reapInterval = d
	}
}

// WithRand sets the deck-shuffling randomness source. Mostly for tests.
func WithRand(rng *rand.Rand) SessionServiceOption {
	return func(s *sessionService) {
		s.rng = rng
	}
}

// WithGameOptions appends options to every created session. Used by tests to
// run sessions on a manual timer.
func WithGameOptions(opts ...game.SessionOption) SessionServiceOption {
	return func(s *sessionService) {
		s.gameOpts = opts
	}
}

// NewSessionService creates a SessionService. The cut range must already be
// validated; see config.Validate.
func NewSessionService(users UserService, cutRange deck.CutRange, opts ...SessionServiceOption) SessionService {
	s := &sessionService{
		users:          users,
		cutRange:       cutRange,
		sessions:       make(map[uuid.UUID]*sessionEntry),
		byUser:         make(map[int64]uuid.UUID),
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
		scratchRestore: true,
		idleTimeout:    30 * time.Minute,
		reapInterval:   time.Minute,
		log:            logger.Default().WithPrefix("sessions"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *sessionService) StartGame(ctx context.Context, userID int64) (*game.Session, error) {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	if existing, ok := s.byUser[userID]; ok {
		s.mu.Unlock()
		log.Warn("user %d already has active session %s", userID, existing)
		return nil, errors.NewConflictError("an active game session already exists")
	}

	sessionDeck := deck.Cut(deck.Shuffle(deck.New(), s.rng), s.rng, s.cutRange)

	opts := append([]game.SessionOption{
		game.WithScratchRestore(s.scratchRestore),
		game.WithOnEnd(s.persistResult(userID)),
	}, s.gameOpts...)
	session := game.New(sessionDeck, opts...)

	s.sessions[session.ID()] = &sessionEntry{
		session:    session,
		userID:     userID,
		lastActive: time.Now(),
	}
	s.byUser[userID] = session.ID()
	s.mu.Unlock()

	session.Start()
	log.Info("game session started: id=%s user_id=%d cards=%d", session.ID(), userID, len(sessionDeck))
	return session, nil
}

// persistResult wires a session's one-shot end callback to the user store.
// The write is synchronous and not retried; a failure is logged and the
// session result stands as reported to the player.
func (s *sessionService) persistResult(userID int64) func(models.GameResult) {
	return func(res models.GameResult) {
		res.UserID = userID
		if _, err := s.users.RecordResult(context.Background(), res); err != nil {
			s.log.Error("failed to persist result for user %d: %v", userID, err)
		}

		// The user's active slot frees up immediately; the finished session
		// stays readable until quit or reaped.
		s.mu.Lock()
		if id, ok := s.byUser[userID]; ok {
			if entry, ok := s.sessions[id]; ok && entry.session.State() == game.StateFinished {
				delete(s.byUser, userID)
			}
		}
		s.mu.Unlock()
	}
}

func (s *sessionService) Get(ctx context.Context, id uuid.UUID, userID int64) (*game.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok || entry.userID != userID {
		return nil, errors.NewNotFoundError("game session", id)
	}
	entry.lastActive = time.Now()
	return entry.session, nil
}

func (s *sessionService) Touch(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.sessions[id]; ok {
		entry.lastActive = time.Now()
	}
}

func (s *sessionService) Quit(ctx context.Context, id uuid.UUID, userID int64) error {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	entry, ok := s.sessions[id]
	if !ok || entry.userID != userID {
		s.mu.Unlock()
		return errors.NewNotFoundError("game session", id)
	}
	delete(s.sessions, id)
	if s.byUser[userID] == id {
		delete(s.byUser, userID)
	}
	s.mu.Unlock()

	entry.session.Close()
	log.Info("game session quit: id=%s user_id=%d", id, userID)
	return nil
}

func (s *sessionService) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.reapInterval)
		defer ticker.Stop()
		s.log.Debug("session reaper started: idle_timeout=%v", s.idleTimeout)
		for {
			select {
			case <-ctx.Done():
				s.log.Debug("session reaper stopped")
				return
			case <-ticker.C:
				s.reap()
			}
		}
	}()
}

// reap closes sessions nobody has touched within the idle timeout. This is
// the backstop for browsers that vanish without quitting: without it their
// tickers would leak for the life of the process.
func (s *sessionService) reap() {
	cutoff := time.Now().Add(-s.idleTimeout)

	s.mu.Lock()
	var expired []*sessionEntry
	for id, entry := range s.sessions {
		if entry.lastActive.Before(cutoff) {
			expired = append(expired, entry)
			delete(s.sessions, id)
			if s.byUser[entry.userID] == id {
				delete(s.byUser, entry.userID)
			}
		}
	}
	s.mu.Unlock()

	for _, entry := range expired {
		entry.session.Close()
		s.log.Info("reaped idle session: id=%s user_id=%d", entry.session.ID(), entry.userID)
	}
}

func (s *sessionService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	s.mu.Lock()
	entries := make([]*sessionEntry, 0, len(s.sessions))
	for id, entry := range s.sessions {
		entries = append(entries, entry)
		delete(s.sessions, id)
	}
	s.byUser = make(map[int64]uuid.UUID)
	s.mu.Unlock()

	for _, entry := range entries {
		entry.session.Close()
	}
	s.log.Info("session service stopped, closed %d sessions", len(entries))
}

func (s *sessionService) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
