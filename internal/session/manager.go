package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long an untouched session survives.
const DefaultTTL = 30 * time.Minute

// Manager tracks live sessions by ID.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewManager creates a Manager. A non-positive ttl uses DefaultTTL.
func NewManager(ttl time.Duration, logger *slog.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		logger:   logger.With("component", "session"),
		now:      time.Now,
	}
}

// Create starts an empty session with a fresh random ID.
func (m *Manager) Create() *Session {
	s := newSession(uuid.NewString(), m.now())
	m.mu.Lock()
	m.sessions[s.ID] = s
	n := len(m.sessions)
	m.mu.Unlock()
	m.logger.Debug("session created", "session_id", s.ID, "active", n)
	return s
}

// Get looks a session up and marks it used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch(m.now())
	return s, nil
}

// GetOrCreate returns the session for id, or a new one when id is unknown.
// created tells the caller to hand out the new ID.
func (m *Manager) GetOrCreate(id string) (s *Session, created bool) {
	if id != "" {
		if s, err := m.Get(id); err == nil {
			return s, false
		}
	}
	return m.Create(), true
}

// Upload loads a file into the session with the given ID.
func (m *Manager) Upload(id, filename string, data []byte) (*Session, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	t, err := s.Upload(filename, data)
	if err != nil {
		m.logger.Info("upload rejected", "session_id", id, "file", filename, "error", err)
		return nil, err
	}
	m.logger.Info("file loaded", "session_id", id, "file", filename, "rows", t.NumRows(), "cols", t.NumCols())
	return s, nil
}

// Delete drops a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ReapIdle drops idle sessions every interval until ctx is done.
func (m *Manager) ReapIdle(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.reapOnce()
		}
	}
}

func (m *Manager) reapOnce() int {
	cutoff := m.now().Add(-m.ttl)
	m.mu.Lock()
	reaped := 0
	for id, s := range m.sessions {
		if s.getLastUsed().Before(cutoff) {
			delete(m.sessions, id)
			reaped++
		}
	}
	m.mu.Unlock()
	if reaped > 0 {
		m.logger.Info("reaped idle sessions", "count", reaped)
	}
	return reaped
}

// CloseAll drops every session. Called on server shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	n := len(m.sessions)
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	m.logger.Debug("sessions closed", "count", n)
}
