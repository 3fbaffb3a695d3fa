package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pharmatrust/docvault/internal/pkg/errcode"
	"github.com/pharmatrust/docvault/internal/pkg/response"
)

type rateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
}

// RateLimit allows one request per window per client IP. Used on the login
// endpoint to slow credential guessing.
func RateLimit(window time.Duration) gin.HandlerFunc {
	limiter := &rateLimiter{
		window: window,
		last:   make(map[string]time.Time),
	}
	return limiter.handle
}

func (l *rateLimiter) handle(c *gin.Context) {
	if l.window <= 0 {
		c.Next()
		return
	}
	key := c.ClientIP()
	now := time.Now()
	l.mu.Lock()
	last, seen := l.last[key]
	if seen && now.Sub(last) < l.window {
		l.mu.Unlock()
		response.Error(c, http.StatusTooManyRequests, errcode.ErrTooMany, "too many requests")
		c.Abort()
		return
	}
	l.last[key] = now
	if len(l.last) > 10000 {
		for k, t := range l.last {
			if now.Sub(t) > l.window {
				delete(l.last, k)
			}
		}
	}
	l.mu.Unlock()
	c.Next()
}
