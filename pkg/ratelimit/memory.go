package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/appforge-ai/appforge-engine/pkg/apperrors"
)

// MemoryLimiter is a per-process sliding-window limiter. Each key keeps the
// timestamps of its accepted requests inside the trailing window; a janitor
// evicts keys that have gone quiet so the map cannot grow without bound.
//
// State is per-instance: horizontally scaled deployments get an approximate
// limit per replica, not a global one. Use RedisLimiter when the limit must
// hold across instances.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string][]time.Time
	window  time.Duration
	ceiling int
	now     func() time.Time

	stop chan struct{}
	once sync.Once
}

// NewMemoryLimiter creates a limiter admitting up to ceiling requests per key
// per window and starts its eviction janitor.
func NewMemoryLimiter(window time.Duration, ceiling int) *MemoryLimiter {
	l := &MemoryLimiter{
		entries: make(map[string][]time.Time),
		window:  window,
		ceiling: ceiling,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go l.janitor()
	return l
}

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.entries[key][:0]
	for _, ts := range l.entries[key] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= l.ceiling {
		l.entries[key] = recent
		return apperrors.ErrRateLimited
	}

	l.entries[key] = append(recent, now)
	return nil
}

// Close stops the eviction janitor.
func (l *MemoryLimiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

func (l *MemoryLimiter) janitor() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.evictStale()
		}
	}
}

// evictStale drops keys whose every timestamp has aged out of the window.
func (l *MemoryLimiter) evictStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	for key, timestamps := range l.entries {
		stale := true
		for _, ts := range timestamps {
			if ts.After(cutoff) {
				stale = false
				break
			}
		}
		if stale {
			delete(l.entries, key)
		}
	}
}

var _ Limiter = (*MemoryLimiter)(nil)
