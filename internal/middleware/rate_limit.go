// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/marketsquare/storefront/internal/config"
	"github.com/marketsquare/storefront/internal/utils"
)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter keeps one token bucket per client IP and evicts buckets for
// clients that have gone quiet.
type clientLimiter struct {
	mtx     sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
}

func newClientLimiter(limit rate.Limit, burst int) *clientLimiter {
	cl := &clientLimiter{
		clients: make(map[string]*client),
		limit:   limit,
		burst:   burst,
	}
	go cl.evictStale()
	return cl
}

func (cl *clientLimiter) evictStale() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cl.mtx.Lock()
		for ip, c := range cl.clients {
			if time.Since(c.lastSeen) > 3*time.Minute {
				delete(cl.clients, ip)
			}
		}
		cl.mtx.Unlock()
	}
}

func (cl *clientLimiter) limiterFor(ip string) *rate.Limiter {
	cl.mtx.Lock()
	defer cl.mtx.Unlock()

	c, ok := cl.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(cl.limit, cl.burst)}
		cl.clients[ip] = c
	}
	c.lastSeen = time.Now()
	return c.limiter
}

func (cl *clientLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cl.limiterFor(c.ClientIP()).Allow() {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED",
				"Too many requests, slow down", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimits carries the per-tier limiters, sized from configuration. Catalog
// reads share the public tier; login/register and image uploads get their own
// much tighter budgets since those are the abuse targets.
type RateLimits struct {
	public *clientLimiter
	auth   *clientLimiter
	upload *clientLimiter
}

func NewRateLimits(cfg config.RateLimitConfig) *RateLimits {
	return &RateLimits{
		public: newClientLimiter(rate.Limit(cfg.PublicPerSecond), cfg.PublicBurst),
		auth:   newClientLimiter(perMinute(cfg.AuthPerMinute), cfg.AuthPerMinute),
		upload: newClientLimiter(perMinute(cfg.UploadPerMinute), cfg.UploadPerMinute),
	}
}

func perMinute(n int) rate.Limit {
	return rate.Every(time.Minute / time.Duration(n))
}

func (rl *RateLimits) Public() gin.HandlerFunc { return rl.public.middleware() }
func (rl *RateLimits) Auth() gin.HandlerFunc   { return rl.auth.middleware() }
func (rl *RateLimits) Upload() gin.HandlerFunc { return rl.upload.middleware() }
