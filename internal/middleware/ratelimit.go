package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// limiterStore holds one token bucket per client IP.
type limiterStore struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	every    rate.Limit
	burst    int
	idle     time.Duration
	// swept is when idle visitors were last dropped.
	swept time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterStore(perMinute, burst int) *limiterStore {
	return &limiterStore{
		limiters: make(map[string]*visitor),
		every:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		idle:     10 * time.Minute,
	}
}

const sweepInterval = time.Minute

// getLimiter returns the limiter for ip, creating one if needed. At most once
// per sweepInterval, visitors idle for longer than s.idle are dropped.
func (s *limiterStore) getLimiter(ip string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.swept) >= sweepInterval {
		for key, v := range s.limiters {
			if now.Sub(v.lastSeen) > s.idle {
				delete(s.limiters, key)
			}
		}
		s.swept = now
	}

	v, ok := s.limiters[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.every, s.burst)}
		s.limiters[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

// RateLimit throttles unsafe requests per client IP, taken from RemoteAddr.
// Forwarding headers are ignored here; behind a trusted proxy, run chi's
// RealIP first so RemoteAddr already holds the client address. Safe methods
// pass untouched so the sign-in form itself always renders.
func RateLimit(perMinute, burst int, logger *zap.Logger) func(http.Handler) http.Handler {
	store := newLimiterStore(perMinute, burst)
	retryAfter := strconv.Itoa(int((time.Minute / time.Duration(perMinute)).Seconds()) + 1)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			if !store.getLimiter(ip, time.Now()).Allow() {
				logger.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", r.URL.Path))
				rateLimited.Inc()
				w.Header().Set("Retry-After", retryAfter)
				http.Error(w, "Terlalu banyak percobaan masuk. Coba lagi nanti.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
