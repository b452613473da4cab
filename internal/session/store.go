package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cristianadrielbraun/qrcreator/internal/render"
)

// Store keeps sessions in memory and drops the ones idle for longer than ttl.
type Store struct {
	pipeline     *render.Pipeline
	maxLogoBytes int64
	ttl          time.Duration
	log          *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore returns an empty store. A nil logger discards output.
func NewStore(p *render.Pipeline, maxLogoBytes int64, ttl time.Duration, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		pipeline:     p,
		maxLogoBytes: maxLogoBytes,
		ttl:          ttl,
		log:          log,
		sessions:     make(map[string]*Session),
	}
}

// Get returns the session for id. Unknown or malformed ids get a fresh
// session with a new id, rendered once; created reports that case.
func (st *Store) Get(ctx context.Context, id string) (s *Session, created bool) {
	if _, err := uuid.Parse(id); err == nil {
		st.mu.Lock()
		s, ok := st.sessions[id]
		st.mu.Unlock()
		if ok {
			s.touch()
			return s, false
		}
	}

	s = New(uuid.NewString(), st.pipeline, st.maxLogoBytes)
	st.mu.Lock()
	st.sessions[s.ID()] = s
	n := len(st.sessions)
	st.mu.Unlock()

	if _, err := s.Regenerate(ctx); err != nil {
		st.log.Warn("initial render failed", zap.String("session", s.ID()), zap.Error(err))
	}
	st.log.Debug("session created", zap.String("session", s.ID()), zap.Int("sessions", n))
	return s, true
}

// Len is the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep removes sessions idle since before now-ttl and returns how many.
func (st *Store) Sweep(now time.Time) int {
	if st.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-st.ttl)

	st.mu.Lock()
	var expired []*Session
	for id, s := range st.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		st.log.Info("expired idle sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			st.Sweep(now)
		}
	}
}
