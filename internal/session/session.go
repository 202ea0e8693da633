// Package session tracks map pages. Each page load owns one session with its own scene,
// and clicks inside a session are ordered by token so late answers never overwrite newer ones.
package session

import (
	"sync"
	"sync/atomic"

	"github.com/UnknownOlympus/helios/internal/models"
	"github.com/UnknownOlympus/helios/internal/scene"
)

// Session is the server-side state of one map page.
type Session struct {
	ID string

	scene  *scene.Scene
	issued atomic.Uint64 // issued is the token of the most recent click.
	seen   atomic.Int64  // seen is the unix-nano time of the last access.

	mu        sync.Mutex // mu serializes commits.
	version   uint64
	committed uint64
}

// View is what the browser receives: the scene plus ordering information.
type View struct {
	ID      string `json:"id"`
	Version uint64 `json:"version"` // Version increases on every commit.
	Token   uint64 `json:"token"`   // Token of the click whose result is shown.
	Issued  uint64 `json:"issued"`  // Issued is the latest click token handed out.
	Outcome string `json:"outcome,omitempty"`
	scene.Snapshot
}

func newSession(id string, maxDiagnostics int) *Session {
	return &Session{ID: id, scene: scene.New(maxDiagnostics)}
}

// Begin registers a click and returns it with a fresh token.
func (s *Session) Begin(location models.Coordinate) models.Click {
	return models.Click{Token: s.issued.Add(1), Location: location}
}

// Current reports whether token still belongs to the latest click.
func (s *Session) Current(token uint64) bool {
	return s.issued.Load() == token
}

// Commit runs apply against the scene if token is still the latest click, and reports
// whether it did. A result whose click has been superseded is dropped.
func (s *Session) Commit(token uint64, apply func(sc *scene.Scene)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Current(token) {
		return false
	}

	apply(s.scene)
	s.version++
	s.committed = token

	return true
}

// Scene exposes the underlying scene for read-only use.
func (s *Session) Scene() *scene.Scene {
	return s.scene
}

// View returns a consistent copy of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return View{
		ID:       s.ID,
		Version:  s.version,
		Token:    s.committed,
		Issued:   s.issued.Load(),
		Snapshot: s.scene.Snapshot(),
	}
}
