package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fpang/birthday-surprise/internal/ambient"
	"github.com/fpang/birthday-surprise/internal/gateway"
	"github.com/fpang/birthday-surprise/internal/scene"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 2 * time.Hour

// Store keeps live sessions in memory, keyed by ID.
type Store struct {
	gw         *gateway.Gateway
	player     *ambient.Player
	secretCode string
	ttl        time.Duration
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL sets how long an idle session survives.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) { s.ttl = ttl }
}

// WithPlayer sets the ambient player sessions acquire handles from.
func WithPlayer(p *ambient.Player) StoreOption {
	return func(s *Store) { s.player = p }
}

// WithSecretCode overrides the code that unlocks the Secret scene.
func WithSecretCode(code string) StoreOption {
	return func(s *Store) { s.secretCode = code }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store whose sessions generate through gw.
func NewStore(gw *gateway.Gateway, opts ...StoreOption) *Store {
	s := &Store{
		gw:         gw,
		player:     ambient.Default(),
		secretCode: scene.DefaultSecretCode,
		ttl:        DefaultTTL,
		now:        time.Now,
		sessions:   make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new session at the Intro scene.
func (s *Store) Create() *Session {
	sess := newSession(uuid.NewString(), s.gw, s.player, s.secretCode, s.now)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	log.Info().Str("session", sess.ID).Int("live", n).Msg("Session created")
	return sess
}

// Get returns the session with id. Expired sessions are closed and
// reported as ErrNotFound.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok && s.expired(sess) {
		delete(s.sessions, id)
		s.mu.Unlock()
		sess.Close()
		log.Info().Str("session", id).Msg("Session expired")
		return nil, ErrNotFound
	}
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Delete closes and removes the session. Unknown IDs return ErrNotFound.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	sess.Close()
	log.Info().Str("session", id).Msg("Session deleted")
	return nil
}

// Len returns the number of sessions held, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep closes every expired session and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	var stale []*Session
	for id, sess := range s.sessions {
		if s.expired(sess) {
			stale = append(stale, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		sess.Close()
	}
	if len(stale) > 0 {
		log.Info().Int("removed", len(stale)).Msg("Swept expired sessions")
	}
	return len(stale)
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Close closes every session.
func (s *Store) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}

func (s *Store) expired(sess *Session) bool {
	return s.ttl > 0 && s.now().Sub(sess.LastSeen()) > s.ttl
}
