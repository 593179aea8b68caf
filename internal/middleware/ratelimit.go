package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Clients idle longer than this are dropped from the limiter map.
const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter tracks a token bucket per client IP. Idle entries are swept
// so the map stays bounded under scans from many source addresses.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*limiterEntry
	rps       rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
}

// NewRateLimiter constructs a RateLimiter allowing rps requests per second
// with the given burst per client.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients:   make(map[string]*limiterEntry),
		rps:       rate.Limit(rps),
		burst:     burst,
		idleTTL:   limiterIdleTTL,
		lastSweep: time.Now(),
	}
}

func (l *RateLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastSweep) > l.idleTTL {
		l.sweepLocked(now)
	}

	entry, ok := l.clients[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// sweepLocked drops entries not seen within idleTTL. Callers hold l.mu.
func (l *RateLimiter) sweepLocked(now time.Time) {
	for key, entry := range l.clients {
		if now.Sub(entry.lastSeen) > l.idleTTL {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

// Middleware rejects requests exceeding the per-client budget.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
