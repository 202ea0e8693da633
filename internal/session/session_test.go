package session_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/UnknownOlympus/helios/internal/metrics"
	"github.com/UnknownOlympus/helios/internal/models"
	"github.com/UnknownOlympus/helios/internal/scene"
	"github.com/UnknownOlympus/helios/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(ttl time.Duration) (*session.Registry, *metrics.Metrics) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	return session.NewRegistry(ttl, 10, slog.Default(), m), m
}

func TestSession_LatestClickWins(t *testing.T) {
	t.Parallel()
	reg, _ := newRegistry(time.Minute)
	sess := reg.Create()

	first := sess.Begin(models.Coordinate{Latitude: 1, Longitude: 1})
	second := sess.Begin(models.Coordinate{Latitude: 2, Longitude: 2})
	assert.Less(t, first.Token, second.Token)
	assert.False(t, sess.Current(first.Token))
	assert.True(t, sess.Current(second.Token))

	applied := sess.Commit(second.Token, func(sc *scene.Scene) { sc.SetInfo("second") })
	require.True(t, applied)

	// The first answer arrives late and must not overwrite the second.
	applied = sess.Commit(first.Token, func(sc *scene.Scene) { sc.SetInfo("first") })
	require.False(t, applied)

	view := sess.View()
	assert.Equal(t, "second", view.Info)
	assert.Equal(t, uint64(1), view.Version)
	assert.Equal(t, second.Token, view.Token)
	assert.Equal(t, second.Token, view.Issued)
	assert.Equal(t, sess.ID, view.ID)
}

func TestSession_ConcurrentClicks(t *testing.T) {
	t.Parallel()
	reg, _ := newRegistry(time.Minute)
	sess := reg.Create()

	var wg sync.WaitGroup
	tokens := make(chan uint64, 50)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens <- sess.Begin(models.Coordinate{}).Token
		}()
	}
	wg.Wait()
	close(tokens)

	seen := map[uint64]bool{}
	for tok := range tokens {
		assert.False(t, seen[tok], "token %d issued twice", tok)
		seen[tok] = true
	}
	assert.Len(t, seen, 50)
	assert.True(t, sess.Current(50))
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("create and get", func(t *testing.T) {
		t.Parallel()
		reg, m := newRegistry(time.Minute)

		sess := reg.Create()
		got, ok := reg.Get(sess.ID)

		require.True(t, ok)
		assert.Same(t, sess, got)
		assert.Equal(t, 1, reg.Len())
		assert.InDelta(t, 1.0, testutil.ToFloat64(m.ActiveSessions), 0)

		_, ok = reg.Get("missing")
		assert.False(t, ok)
	})

	t.Run("evicts idle sessions only", func(t *testing.T) {
		t.Parallel()
		reg, m := newRegistry(time.Minute)
		now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		reg.SetClock(func() time.Time { return now })

		idle := reg.Create()
		now = now.Add(45 * time.Second)
		active := reg.Create()
		now = now.Add(30 * time.Second)

		removed := reg.Evict()

		assert.Equal(t, 1, removed)
		_, ok := reg.Get(idle.ID)
		assert.False(t, ok)
		_, ok = reg.Get(active.ID)
		assert.True(t, ok)
		assert.InDelta(t, 1.0, testutil.ToFloat64(m.ActiveSessions), 0)
	})

	t.Run("get refreshes the session", func(t *testing.T) {
		t.Parallel()
		reg, _ := newRegistry(time.Minute)
		now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		reg.SetClock(func() time.Time { return now })

		sess := reg.Create()
		now = now.Add(50 * time.Second)
		_, _ = reg.Get(sess.ID)
		now = now.Add(50 * time.Second)

		assert.Zero(t, reg.Evict())
	})

	t.Run("run stops with context", func(t *testing.T) {
		t.Parallel()
		reg, _ := newRegistry(10 * time.Millisecond)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		reg.Run(ctx)
	})

	t.Run("run tolerates a nanosecond ttl", func(t *testing.T) {
		t.Parallel()
		reg, _ := newRegistry(time.Nanosecond)
		reg.Create()
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		assert.NotPanics(t, func() { reg.Run(ctx) })
		assert.Zero(t, reg.Len())
	})
}
