package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/prezentenergy/caasweb/internal/pkg/response"
)

const rateLimitKeys = 10000

type windowState struct {
	start time.Time
	count int
}

// rateLimiter counts requests per client and route in fixed windows. Idle keys age out of the LRU.
type rateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	entries *expirable.LRU[string, *windowState]
	now     func() time.Time
}

func RateLimit(window time.Duration, max int) gin.HandlerFunc {
	return newRateLimiter(window, max).handle
}

func newRateLimiter(window time.Duration, max int) *rateLimiter {
	if max <= 0 {
		max = 1
	}
	return &rateLimiter{
		window:  window,
		max:     max,
		entries: expirable.NewLRU[string, *windowState](rateLimitKeys, nil, window),
		now:     time.Now,
	}
}

func (l *rateLimiter) handle(c *gin.Context) {
	if l.window <= 0 {
		c.Next()
		return
	}
	ip := c.ClientIP()
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	key := strings.Join([]string{ip, path}, "|")
	if !l.allow(key) {
		logutil.GetLogger(c.Request.Context()).Warn("rate limit hit",
			zap.String("ip", ip),
			zap.String("path", path),
		)
		response.Fail(c, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}
	c.Next()
}

func (l *rateLimiter) allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	state, ok := l.entries.Get(key)
	if !ok || now.Sub(state.start) >= l.window {
		l.entries.Add(key, &windowState{start: now, count: 1})
		return true
	}
	if state.count >= l.max {
		return false
	}
	state.count++
	return true
}
