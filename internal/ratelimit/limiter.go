// Package ratelimit implements a fixed-window message counter keyed by
// session identity. The limiter is an explicit object injected into the
// room service; its lifecycle is tied to server startup, not package
// state.
package ratelimit

import (
	"sync"
	"time"
)

const (
	// DefaultWindow is the fixed window length.
	DefaultWindow = 5 * time.Second
	// DefaultLimit is the number of messages admitted per window: the
	// first message plus three more.
	DefaultLimit = 4
)

type windowState struct {
	start time.Time
	count int
}

// FixedWindow counts messages per identity inside a fixed window. The
// window starts at the first message after the prior window fully
// elapsed; messages beyond the limit within it are rejected.
type FixedWindow struct {
	mu      sync.Mutex
	window  time.Duration
	limit   int
	entries map[string]*windowState
	now     func() time.Time
}

func NewFixedWindow(window time.Duration, limit int) *FixedWindow {
	if window <= 0 {
		window = DefaultWindow
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &FixedWindow{
		window:  window,
		limit:   limit,
		entries: make(map[string]*windowState),
		now:     time.Now,
	}
}

// Allow reports whether identity may post now and records the attempt.
func (l *FixedWindow) Allow(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	state, ok := l.entries[identity]
	if !ok || now.Sub(state.start) >= l.window {
		l.entries[identity] = &windowState{start: now, count: 1}
		return true
	}

	state.count++
	return state.count <= l.limit
}

// Forget drops the window state for identity, typically on disconnect.
func (l *FixedWindow) Forget(identity string) {
	l.mu.Lock()
	delete(l.entries, identity)
	l.mu.Unlock()
}
