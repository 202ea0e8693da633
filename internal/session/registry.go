package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/UnknownOlympus/helios/internal/metrics"
	"github.com/google/uuid"
)

// DefaultTTL is how long an untouched session survives.
const DefaultTTL = 30 * time.Minute

// Registry holds live sessions in memory. Nothing is persisted: a restart or an idle
// timeout forgets every session.
type Registry struct {
	mu             sync.RWMutex
	sessions       map[string]*Session
	ttl            time.Duration
	maxDiagnostics int
	now            func() time.Time
	log            *slog.Logger
	metrics        *metrics.Metrics
}

// NewRegistry creates an empty registry.
func NewRegistry(ttl time.Duration, maxDiagnostics int, log *slog.Logger, m *metrics.Metrics) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Registry{
		sessions:       make(map[string]*Session),
		ttl:            ttl,
		maxDiagnostics: maxDiagnostics,
		now:            time.Now,
		log:            log,
		metrics:        m,
	}
}

// Create starts a new session with a random id.
func (r *Registry) Create() *Session {
	sess := newSession(uuid.NewString(), r.maxDiagnostics)
	sess.seen.Store(r.now().UnixNano())

	r.mu.Lock()
	r.sessions[sess.ID] = sess
	count := len(r.sessions)
	r.mu.Unlock()

	r.setGauge(count)
	r.log.Debug("Session created", "session", sess.ID)

	return sess
}

// Get returns a live session and marks it as used.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	sess, ok := r.sessions[id]
	r.mu.RUnlock()

	if ok {
		sess.seen.Store(r.now().UnixNano())
	}

	return sess, ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Evict drops sessions idle for longer than the TTL and returns how many were removed.
func (r *Registry) Evict() int {
	cutoff := r.now().Add(-r.ttl).UnixNano()

	r.mu.Lock()
	removed := 0
	for id, sess := range r.sessions {
		if sess.seen.Load() < cutoff {
			delete(r.sessions, id)
			removed++
		}
	}
	count := len(r.sessions)
	r.mu.Unlock()

	if removed > 0 {
		r.setGauge(count)
		r.log.Debug("Evicted idle sessions", "removed", removed, "remaining", count)
	}

	return removed
}

// minSweepInterval bounds how often the janitor runs for very short TTLs.
const minSweepInterval = 10 * time.Millisecond

// Run evicts idle sessions periodically until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) {
	const divider = 2
	ticker := time.NewTicker(max(r.ttl/divider, minSweepInterval))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Evict()
		}
	}
}

func (r *Registry) setGauge(count int) {
	if r.metrics != nil {
		r.metrics.ActiveSessions.Set(float64(count))
	}
}
