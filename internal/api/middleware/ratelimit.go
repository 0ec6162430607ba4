package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/lexiloop/lexiloop-api/internal/api/shared"
	"github.com/lexiloop/lexiloop-api/internal/platform/logger"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a token bucket per authenticated user, falling back to
// the client address for anonymous requests.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	now     func() time.Time
	sweptAt time.Time
}

// NewRateLimiter creates a RateLimiter allowing perSecond requests with the
// given burst. A perSecond of zero or less disables limiting.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		now:     time.Now,
	}
}

// Limit is the middleware handler.
func (l *RateLimiter) Limit(next http.Handler) http.Handler {
	if l.limit <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !l.allow(key) {
			log := logger.FromContextOrDefault(r.Context(), slog.Default())
			log.Debug("rate limit exceeded", slog.String("client", key))
			shared.RespondWithError(w, r, http.StatusTooManyRequests, "Too many requests",
				shared.WithHeader("Retry-After", strconv.Itoa(l.retryAfterSeconds())))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.sweptAt) > limiterIdleTTL {
		for k, e := range l.entries {
			if now.Sub(e.lastSeen) > limiterIdleTTL {
				delete(l.entries, k)
			}
		}
		l.sweptAt = now
	}

	entry, ok := l.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (l *RateLimiter) retryAfterSeconds() int {
	secs := int(1 / float64(l.limit))
	if secs < 1 {
		return 1
	}
	return secs
}

func clientKey(r *http.Request) string {
	if userID, ok := shared.UserIDFromContext(r.Context()); ok {
		return "user:" + userID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}
