package worker

import (
	"sync"
	"time"
)

// limiter caps how many requests per key are admitted within a window.
type limiter struct {
	mu      sync.Mutex
	clients map[string]*clientInfo
	limit   int
	window  time.Duration
	now     func() time.Time
}

type clientInfo struct {
	windowStart time.Time
	requests    int
}

func newLimiter(limit int, window time.Duration) *limiter {
	return &limiter{
		clients: make(map[string]*clientInfo),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow reports whether one more request for key fits the current window.
func (l *limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	client, exists := l.clients[key]
	if !exists || now.Sub(client.windowStart) >= l.window {
		l.clients[key] = &clientInfo{windowStart: now, requests: 1}
		return true
	}

	if client.requests >= l.limit {
		return false
	}
	client.requests++
	return true
}
