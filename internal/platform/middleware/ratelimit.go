package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds the per-client limits. Auth limits apply to
// signup and signin on top of the general limit.
type RateLimitConfig struct {
	RequestsPerSecond     float64
	Burst                 int
	AuthRequestsPerSecond float64
	AuthBurst             int
	IdleTTL               time.Duration
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond:     20,
		Burst:                 40,
		AuthRequestsPerSecond: 1,
		AuthBurst:             5,
		IdleTTL:               10 * time.Minute,
	}
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// limiterPool keeps one token bucket per client key.
type limiterPool struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*clientLimiter
}

func newLimiterPool(rps float64, burst int) *limiterPool {
	return &limiterPool{
		limit:    rate.Limit(rps),
		burst:    burst,
		limiters: make(map[string]*clientLimiter),
	}
}

func (p *limiterPool) get(key string, now time.Time) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	cl, ok := p.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.limiters[key] = cl
	}
	cl.lastAccess = now
	return cl.limiter
}

func (p *limiterPool) evictIdle(cutoff time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, cl := range p.limiters {
		if cl.lastAccess.Before(cutoff) {
			delete(p.limiters, key)
		}
	}
}

func (p *limiterPool) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.limiters)
}

// RateLimiter enforces per-IP request rates.
type RateLimiter struct {
	cfg     RateLimitConfig
	general *limiterPool
	auth    *limiterPool
	stopCh  chan struct{}
	once    sync.Once
}

// NewRateLimiter starts a background sweep of idle clients; call Stop on
// shutdown.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * time.Minute
	}
	rl := &RateLimiter{
		cfg:     cfg,
		general: newLimiterPool(cfg.RequestsPerSecond, cfg.Burst),
		auth:    newLimiterPool(cfg.AuthRequestsPerSecond, cfg.AuthBurst),
		stopCh:  make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.cfg.IdleTTL)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stopCh:
			return
		case now := <-ticker.C:
			cutoff := now.Add(-rl.cfg.IdleTTL)
			rl.general.evictIdle(cutoff)
			rl.auth.evictIdle(cutoff)
		}
	}
}

// General limits every request by client IP.
func (rl *RateLimiter) General() echo.MiddlewareFunc {
	return limitWith(rl.general, rl.cfg.RequestsPerSecond)
}

// Auth limits credential endpoints by client IP.
func (rl *RateLimiter) Auth() echo.MiddlewareFunc {
	return limitWith(rl.auth, rl.cfg.AuthRequestsPerSecond)
}

func limitWith(pool *limiterPool, rps float64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limiter := pool.get(c.RealIP(), time.Now())
			if !limiter.Allow() {
				retryAfter := 1
				if rps > 0 {
					retryAfter = int(math.Ceil(1 / rps))
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
