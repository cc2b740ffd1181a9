// Package ratelimit throttles completion and CRUD writes per client IP.
// Reads are never limited; the summary caches make them cheap anyway.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter counts write requests per client over a fixed one-minute window.
type Limiter struct {
	mu           sync.Mutex
	clients      map[string]*window
	stopCleanup  chan struct{}
	shutdownOnce sync.Once

	writesPerMinute int
	cleanupInterval time.Duration
}

type window struct {
	start  time.Time
	writes int
}

type Config struct {
	WritesPerMinute int
	CleanupInterval time.Duration
}

// DefaultConfig allows one write per second sustained, which is far above
// anything a habit app client produces by hand.
func DefaultConfig() Config {
	return Config{
		WritesPerMinute: 60,
		CleanupInterval: 5 * time.Minute,
	}
}

func NewLimiter(config Config) *Limiter {
	if config.WritesPerMinute <= 0 {
		config.WritesPerMinute = DefaultConfig().WritesPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultConfig().CleanupInterval
	}

	l := &Limiter{
		clients:         make(map[string]*window),
		stopCleanup:     make(chan struct{}),
		writesPerMinute: config.WritesPerMinute,
		cleanupInterval: config.CleanupInterval,
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether a write from clientIP fits in the current window.
func (l *Limiter) Allow(clientIP string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.clients[clientIP]
	if !ok || now.Sub(w.start) > time.Minute {
		l.clients[clientIP] = &window{start: now, writes: 1}
		return true
	}

	w.writes++
	return w.writes <= l.writesPerMinute
}

// ActiveClients returns how many IPs have an open window.
func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Stop terminates the cleanup goroutine. Idempotent.
func (l *Limiter) Stop() {
	l.shutdownOnce.Do(func() {
		close(l.stopCleanup)
	})
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.dropStale()
		case <-l.stopCleanup:
			return
		}
	}
}

// dropStale forgets clients whose window closed more than ten minutes ago.
func (l *Limiter) dropStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, w := range l.clients {
		if w.start.Before(cutoff) {
			delete(l.clients, ip)
		}
	}
}
