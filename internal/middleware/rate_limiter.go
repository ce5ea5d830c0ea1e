package middleware

import (
	"net/http"
	"sync"
	"time"

	"shopinventory/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	purgeInterval = 5 * time.Minute
	idleTTL       = 10 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastPurge time.Time
	now       func() time.Time
}

func NewIPRateLimiter(limit rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		visitors:  make(map[string]*visitor),
		limit:     limit,
		burst:     burst,
		lastPurge: time.Now(),
		now:       time.Now,
	}
}

// Allow reports whether ip may make a request now.
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastPurge) > purgeInterval {
		l.purge(now)
	}
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// purge drops idle visitors so the map does not grow with one-off IPs. Caller holds mu.
func (l *IPRateLimiter) purge(now time.Time) {
	purged := 0
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > idleTTL {
			delete(l.visitors, ip)
			purged++
		}
	}
	l.lastPurge = now
	if purged > 0 {
		log.Debug().Int("purged", purged).Int("remaining", len(l.visitors)).Msg("rate limiter purged")
	}
}

// Middleware answers 429 once the client's bucket is empty.
func (l *IPRateLimiter) Middleware(msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// RateLimiter is the general API limiter: rps sustained requests per IP with the given burst.
func RateLimiter(rps float64, burst int) gin.HandlerFunc {
	return NewIPRateLimiter(rate.Limit(rps), burst).Middleware("Too many requests, try again shortly")
}

// LoginRateLimiter allows 20 login attempts per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return NewIPRateLimiter(rate.Every(time.Minute/20), 20).Middleware("Too many login attempts, try again in a minute")
}
