package services

import (
	"sync"
	"time"

	"github.com/Miguel-Bento-Github/vale-bookings-sub002/internal/models"
	"github.com/google/uuid"
)

type limitWindow struct {
	count   int
	resetAt time.Time
}

// RateLimiter enforces the rate-limit configuration carried by each
// credential. Fixed-window counting: a window opens on the first request
// and all requests inside it share one counter. Counters are in-process;
// running multiple instances multiplies the effective limit by the
// instance count.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*limitWindow
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{windows: make(map[string]*limitWindow)}
}

// Allow reports whether a request for the credential/endpoint pair fits
// inside the rule's current window. Rules without a positive MaxRequests
// are unlimited.
func (rl *RateLimiter) Allow(credentialID uuid.UUID, endpoint models.Endpoint, rule models.RateLimitRule) bool {
	if rule.MaxRequests <= 0 || rule.Window() <= 0 {
		return true
	}

	key := credentialID.String() + ":" + string(endpoint)
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok || now.After(w.resetAt) {
		rl.windows[key] = &limitWindow{count: 1, resetAt: now.Add(rule.Window())}
		return true
	}

	if w.count >= rule.MaxRequests {
		return false
	}
	w.count++
	return true
}

// Reset clears all counters. Test hook.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.windows = make(map[string]*limitWindow)
}
