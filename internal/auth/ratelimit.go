package auth

import (
	"strings"
	"sync"
	"time"
)

// RateLimitConfig is a named fixed-window budget.
type RateLimitConfig struct {
	MaxAttempts int
	Window      time.Duration
}

// Predefined configurations, keyed by the normalized email address.
var (
	LoginRateLimit    = RateLimitConfig{MaxAttempts: 3, Window: 15 * time.Minute}
	RegisterRateLimit = RateLimitConfig{MaxAttempts: 1, Window: 60 * time.Minute}
	APIRateLimit      = RateLimitConfig{MaxAttempts: 100, Window: 15 * time.Minute}
)

type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

type rateLimitEntry struct {
	count   int
	resetAt time.Time
}

// RateLimiter is a process-local fixed-window counter. A burst straddling
// the window edge can exceed the nominal rate by up to 2x; that is an
// accepted property of the fixed window, not something to compensate for.
// The limiter deters abuse, it is not a hard security boundary.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*rateLimitEntry
	now     func() time.Time
	done    chan struct{}
	once    sync.Once
}

// NewRateLimiter constructs an isolated limiter. Pass a nil clock to use
// wall time.
func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}

	rl := &RateLimiter{
		entries: make(map[string]*rateLimitEntry),
		now:     now,
		done:    make(chan struct{}),
	}

	go rl.cleanupLoop(5 * time.Minute)

	return rl
}

// Check counts one attempt against the identifier's window. Checking always
// counts, whatever the outcome.
func (rl *RateLimiter) Check(identifier string, cfg RateLimitConfig) RateLimitResult {
	key := strings.ToLower(identifier)
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.entries[key]
	if !ok || entry.resetAt.Before(now) {
		entry = &rateLimitEntry{resetAt: now.Add(cfg.Window)}
		rl.entries[key] = entry
	}

	entry.count++

	remaining := cfg.MaxAttempts - entry.count
	if remaining < 0 {
		remaining = 0
	}

	return RateLimitResult{
		Allowed:   entry.count <= cfg.MaxAttempts,
		Remaining: remaining,
		ResetAt:   entry.resetAt,
	}
}

// Reset forgets the identifier's window.
func (rl *RateLimiter) Reset(identifier string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.entries, strings.ToLower(identifier))
}

// Status reports the identifier's current window without counting an
// attempt. Returns nil when no live window exists.
func (rl *RateLimiter) Status(identifier string) *RateLimitResult {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.entries[strings.ToLower(identifier)]
	if !ok || entry.resetAt.Before(rl.now()) {
		return nil
	}

	return &RateLimitResult{Allowed: true, ResetAt: entry.resetAt}
}

// Stop terminates the cleanup goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.done) })
}

// cleanupLoop removes expired windows to bound memory. It has no
// correctness role: Check resets stale entries on its own.
func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			now := rl.now()
			rl.mu.Lock()
			for key, entry := range rl.entries {
				if entry.resetAt.Before(now) {
					delete(rl.entries, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}
