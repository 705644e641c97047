package middleware

import (
	"sync"
	"time"
)

const rateLimitWindow = time.Minute

// InvalidAuthRateLimiter counts rejected credentials per client IP. Valid
// requests never touch it.
type InvalidAuthRateLimiter struct {
	mu       sync.Mutex
	limit    int
	attempts map[string]*attemptInfo
	now      func() time.Time
}

type attemptInfo struct {
	count   int
	firstAt time.Time
}

// NewInvalidAuthRateLimiter allows limit rejected attempts per IP per minute.
func NewInvalidAuthRateLimiter(limit int) *InvalidAuthRateLimiter {
	if limit <= 0 {
		limit = 5
	}
	rl := &InvalidAuthRateLimiter{
		limit:    limit,
		attempts: make(map[string]*attemptInfo),
		now:      time.Now,
	}
	go rl.cleanup()
	return rl
}

// Allow records an attempt and reports whether the IP is still under the limit.
func (r *InvalidAuthRateLimiter) Allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	info, exists := r.attempts[ip]
	if !exists || now.Sub(info.firstAt) > rateLimitWindow {
		r.attempts[ip] = &attemptInfo{count: 1, firstAt: now}
		return true
	}

	if info.count >= r.limit {
		return false
	}
	info.count++
	return true
}

func (r *InvalidAuthRateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		r.mu.Lock()
		now := r.now()
		for ip, info := range r.attempts {
			if now.Sub(info.firstAt) > rateLimitWindow {
				delete(r.attempts, ip)
			}
		}
		r.mu.Unlock()
	}
}
