package middleware

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gnosis118/paper-n-print-sub000/pkg"

	"github.com/gin-gonic/gin"
)

// RateLimiter bounds request rates per client identifier. Implementations
// must be safe for concurrent use; the Redis-backed one is also correct
// across horizontally scaled instances, which a process-local map is not.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

var errRateLimited = pkg.NewDomainErrorSimple("RATE_LIMITED", "Too many requests", http.StatusTooManyRequests)

// RateLimit rejects callers that exceed the limiter's window before any
// business logic runs. A limiter backend failure fails open: throttling is an
// abuse bound, not a correctness guarantee, and must not take the API down.
func RateLimit(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Printf("[security][middleware] rate limiter unavailable client=%s err=%v", c.ClientIP(), err)
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(errRateLimited.HTTPStatus, errRateLimited.ToHTTPError())
			return
		}
		c.Next()
	}
}

// SlidingWindowLimiter is the in-process fallback used when no Redis address
// is configured (single-instance and local development only).
type SlidingWindowLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
}

var _ RateLimiter = (*SlidingWindowLimiter)(nil)

func NewSlidingWindowLimiter(limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
	}
}

func (l *SlidingWindowLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.hits[key][:0]
	for _, t := range l.hits[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	if len(recent) >= l.limit {
		l.hits[key] = recent
		return false, nil
	}
	l.hits[key] = append(recent, now)
	return true, nil
}
