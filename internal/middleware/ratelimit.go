package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tanvir/cardforge/internal/metrics"
)

// CounterStore counts events per key within a sliding window. The
// interface exists so the in-memory implementation below can be swapped
// for a shared store (e.g. Redis) in a multi-process deployment without
// touching the middleware.
type CounterStore interface {
	// Increment bumps the counter for key and returns the count of events
	// within the last window, including this one.
	Increment(key string, window time.Duration) (int, error)
}

// MemoryCounterStore is a process-local CounterStore. Timestamps older
// than the window are pruned on each increment, so memory stays bounded
// by active keys times events-per-window.
type MemoryCounterStore struct {
	mu     sync.Mutex
	events map[string][]time.Time
	now    func() time.Time
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		events: make(map[string][]time.Time),
		now:    time.Now,
	}
}

var _ CounterStore = (*MemoryCounterStore)(nil)

func (s *MemoryCounterStore) Increment(key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-window)

	kept := s.events[key][:0]
	for _, t := range s.events[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, now)
	s.events[key] = kept

	return len(kept), nil
}

// RateLimit limits each client IP to limit requests per window. Exceeding
// it returns 429 with a Retry-After hint.
//
// Keyed by RemoteAddr's host part — chi's RealIP middleware runs earlier
// and rewrites RemoteAddr from proxy headers.
func RateLimit(store CounterStore, limit int, window time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			count, err := store.Increment(clientIP(r), window)
			if err != nil {
				// A broken counter must not take the API down.
				logger.Error("rate limit counter failed", slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			if count > limit {
				metrics.RateLimited.Inc()
				logger.Warn("rate limit exceeded",
					slog.String("ip", clientIP(r)),
					slog.String("path", r.URL.Path),
					slog.Int("count", count),
				)
				w.Header().Set("Retry-After", retryAfter(window))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"success":false,"error":{"code":"rate_limited","message":"too many requests, slow down"}}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoginLimiter throttles the login endpoint per IP with a token bucket —
// the brute-force shape (steady stream of attempts) is exactly what a
// bucket handles better than a windowed counter.
type LoginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewLoginLimiter allows r attempts per second with the given burst.
func NewLoginLimiter(r rate.Limit, burst int) *LoginLimiter {
	return &LoginLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     r,
		burst:    burst,
	}
}

func (l *LoginLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.rate, l.burst)
		l.limiters[key] = lim
	}
	return lim
}

// Middleware rejects requests once the caller's bucket is empty.
func (l *LoginLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.limiter(clientIP(r)).Allow() {
			metrics.RateLimited.Inc()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"success":false,"error":{"code":"rate_limited","message":"too many login attempts, try again later"}}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func retryAfter(window time.Duration) string {
	secs := int(window.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
