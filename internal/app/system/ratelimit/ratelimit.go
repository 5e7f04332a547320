// Package ratelimit throttles login attempts with fixed windows per key.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts requests per key in fixed windows.
// It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int           // max requests per window
	duration time.Duration // window duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a limiter that allows limit requests per duration for each key
// and starts a background sweep of expired windows. Call Stop to end it.
func New(limit int, duration time.Duration) *Limiter {
	l := newLimiter(limit, duration, time.Now)
	go l.cleanupLoop(duration * 2)
	return l
}

func newLimiter(limit int, duration time.Duration, now func() time.Time) *Limiter {
	return &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      now,
		stop:     make(chan struct{}),
	}
}

// Allow reports whether a request for key fits in the current window and
// counts it if so.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, exists := l.windows[key]
	if !exists || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many requests are left for key in the current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, exists := l.windows[key]
	if !exists || l.now().After(w.expiresAt) {
		return l.limit
	}
	if remaining := l.limit - w.count; remaining > 0 {
		return remaining
	}
	return 0
}

// Reset clears the window for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Stop ends the background sweep. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	for key, w := range l.windows {
		if now.After(w.expiresAt) {
			delete(l.windows, key)
		}
	}
}

// ClientIP extracts the client IP from an HTTP request.
// X-Forwarded-For (first hop) and X-Real-IP win over RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter throttles login attempts per client IP and per username.
// A limit of zero or less disables throttling.
type LoginLimiter struct {
	ip       *Limiter
	username *Limiter
}

// NewLoginLimiter allows limit attempts per window for each IP and for each
// username.
func NewLoginLimiter(limit int, window time.Duration) *LoginLimiter {
	if limit <= 0 {
		return &LoginLimiter{}
	}
	return &LoginLimiter{
		ip:       New(limit, window),
		username: New(limit, window),
	}
}

// Check reports whether a login attempt should proceed; when it should not,
// reason is a client-facing message.
func (ll *LoginLimiter) Check(r *http.Request, username string) (allowed bool, reason string) {
	if ll == nil || ll.ip == nil {
		return true, ""
	}
	if !ll.ip.Allow(ClientIP(r)) {
		return false, "Too many login attempts. Please wait before trying again."
	}
	if key := usernameKey(username); key != "" && !ll.username.Allow(key) {
		return false, "Too many login attempts for this account. Please wait before trying again."
	}
	return true, ""
}

// ResetUsername clears the per-account window after a successful login.
func (ll *LoginLimiter) ResetUsername(username string) {
	if ll == nil || ll.username == nil {
		return
	}
	if key := usernameKey(username); key != "" {
		ll.username.Reset(key)
	}
}

// Stop ends the background sweeps.
func (ll *LoginLimiter) Stop() {
	if ll == nil || ll.ip == nil {
		return
	}
	ll.ip.Stop()
	ll.username.Stop()
}

func usernameKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
