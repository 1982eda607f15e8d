package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sirosfoundation/go-http-component/pkg/config"
)

// ClientRateLimiter keeps one token bucket per client identifier
type ClientRateLimiter struct {
	config config.RateLimitConfig
	logger *zap.Logger

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	idleTTL         time.Duration
	cleanupInterval time.Duration
	lastCleanup     time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewClientRateLimiter creates a rate limiter from cfg
func NewClientRateLimiter(cfg config.RateLimitConfig, logger *zap.Logger) *ClientRateLimiter {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	return &ClientRateLimiter{
		config:          cfg,
		logger:          logger.Named("ratelimit"),
		limiters:        make(map[string]*clientLimiter),
		idleTTL:         30 * time.Minute,
		cleanupInterval: 10 * time.Minute,
		lastCleanup:     time.Now(),
	}
}

// getLimiter returns the limiter for an identifier, creating if needed
func (r *ClientRateLimiter) getLimiter(identifier string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.Sub(r.lastCleanup) > r.cleanupInterval {
		r.cleanup(now)
	}

	if l, ok := r.limiters[identifier]; ok {
		l.lastSeen = now
		return l.limiter
	}

	l := &clientLimiter{
		limiter:  rate.NewLimiter(rate.Limit(r.config.RequestsPerSecond), r.config.Burst),
		lastSeen: now,
	}
	r.limiters[identifier] = l
	return l.limiter
}

// cleanup removes limiters that haven't been used recently. Caller holds mu.
func (r *ClientRateLimiter) cleanup(now time.Time) {
	cutoff := now.Add(-r.idleTTL)
	for key, l := range r.limiters {
		if l.lastSeen.Before(cutoff) {
			delete(r.limiters, key)
		}
	}
	r.lastCleanup = now
}

// Allow reports whether a request from identifier may proceed
func (r *ClientRateLimiter) Allow(identifier string) bool {
	if !r.config.Enabled {
		return true
	}
	return r.getLimiter(identifier).Allow()
}

// RateLimit returns a filter that rejects requests above the per-client rate
// with 429. Clients are identified by gin's ClientIP, which honours the
// engine's trusted proxy settings.
func RateLimit(rl *ClientRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.Allow(ip) {
			rl.logger.Warn("Rate limit exceeded",
				zap.String("client_ip", ip),
				zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many requests. Please try again later.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
