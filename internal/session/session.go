// Package session keeps the per-browser dataset state of the dashboards.
package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KaramelBytes/tidyloom/internal/cleaning"
	"github.com/KaramelBytes/tidyloom/internal/loader"
	"github.com/KaramelBytes/tidyloom/internal/table"
)

var (
	// ErrNotFound is returned for unknown or reaped session IDs.
	ErrNotFound = errors.New("session not found")
	// ErrNoTable is returned when an action needs an uploaded table.
	ErrNoTable = errors.New("no file uploaded")
)

// Session holds one uploaded table and its cleaned working copy. Tables are
// never modified after they are stored, so snapshots may be read without
// holding the session lock.
type Session struct {
	ID        string
	createdAt time.Time
	lastUsed  atomic.Value // time.Time

	mu       sync.Mutex
	filename string
	loaded   *table.Table
	working  *table.Table
}

// Snapshot is a consistent view of a session's tables.
type Snapshot struct {
	ID       string
	Filename string
	Loaded   *table.Table
	Working  *table.Table
}

// HasTable reports whether a file has been uploaded.
func (s Snapshot) HasTable() bool { return s.Loaded != nil }

func newSession(id string, now time.Time) *Session {
	s := &Session{ID: id, createdAt: now}
	s.touch(now)
	return s
}

func (s *Session) touch(now time.Time) { s.lastUsed.Store(now) }

func (s *Session) getLastUsed() time.Time {
	if v := s.lastUsed.Load(); v != nil {
		return v.(time.Time)
	}
	return s.createdAt
}

// Snapshot returns the current tables.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{ID: s.ID, Filename: s.filename, Loaded: s.loaded, Working: s.working}
}

// Upload parses data and replaces both tables. The working table starts over
// as a copy of the new upload. On error the session is unchanged.
func (s *Session) Upload(filename string, data []byte) (*table.Table, error) {
	t, err := loader.Load(filename, data)
	if err != nil {
		return nil, err
	}
	s.Set(filename, t)
	return t, nil
}

// Set stores an already loaded table as if it had been uploaded.
func (s *Session) Set(filename string, t *table.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filename = filename
	s.loaded = t
	s.working = t.Clone()
	s.touch(time.Now())
}

// Clean applies op to the working table and keeps the result. A failed
// action leaves the working table as it was.
func (s *Session) Clean(op cleaning.Op) (*cleaning.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(time.Now())
	if s.working == nil {
		return nil, ErrNoTable
	}
	out, err := cleaning.Apply(s.working, op)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", s.ID, err)
	}
	s.working = out.Table
	return out, nil
}

// ResetWorking discards every cleaning step.
func (s *Session) ResetWorking() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded == nil {
		return ErrNoTable
	}
	s.working = s.loaded.Clone()
	return nil
}
