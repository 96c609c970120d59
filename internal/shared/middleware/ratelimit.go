package middleware

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"content-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterCleanupEvery = time.Minute
	limiterIdleAfter    = 3 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     rate.Limit
	burst    int
}

// NewIPRateLimiter starts a janitor that drops idle buckets until ctx ends.
func NewIPRateLimiter(ctx context.Context, rps float64, burst int) *IPRateLimiter {
	if burst < 1 {
		burst = 1
	}
	l := &IPRateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
	go l.cleanupLoop(ctx)
	return l
}

func (l *IPRateLimiter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(limiterCleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.cleanup(time.Now())
		}
	}
}

func (l *IPRateLimiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > limiterIdleAfter {
			delete(l.visitors, ip)
		}
	}
}

func (l *IPRateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// Middleware rejects with 429 once the caller's bucket is empty.
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lim := l.limiter(ClientIP(c))

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.burst))
		if !lim.Allow() {
			r := lim.Reserve()
			delay := r.Delay()
			r.Cancel()

			retry := int(math.Ceil(delay.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.Header("X-RateLimit-Remaining", "0")
			response.TooManyRequests(c, "rate limit exceeded")
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(lim.Tokens())))
		c.Next()
	}
}
