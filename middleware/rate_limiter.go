// middleware/rate_limiter.go
package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/salus-app/salus_backend/apierror"
)

type endpointLimit struct {
	limit rate.Limit
	burst int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles clients by IP, with tighter budgets for the routes
// that send codes.
type RateLimiter struct {
	ips            map[string]*clientLimiter
	blockedIPs     map[string]time.Time
	mu             sync.Mutex
	defaultLimit   rate.Limit
	defaultBurst   int
	blockDuration  time.Duration
	idleAfter      time.Duration
	endpointLimits map[string]endpointLimit
	now            func() time.Time
}

// NewRateLimiter starts a janitor that stops with ctx.
func NewRateLimiter(ctx context.Context) *RateLimiter {
	r := &RateLimiter{
		ips:           make(map[string]*clientLimiter),
		blockedIPs:    make(map[string]time.Time),
		defaultLimit:  rate.Every(100 * time.Millisecond),
		defaultBurst:  20,
		blockDuration: 5 * time.Minute,
		idleAfter:     10 * time.Minute,
		endpointLimits: map[string]endpointLimit{
			"/api/v1/:role/auth/login":  {limit: rate.Every(2 * time.Second), burst: 5},
			"/api/v1/:role/auth/resend": {limit: rate.Every(10 * time.Second), burst: 3},
			"/api/v1/:role/auth/verify": {limit: rate.Every(time.Second), burst: 10},
			"/api/v1/:role/register":    {limit: rate.Every(500 * time.Millisecond), burst: 5},
		},
		now: time.Now,
	}
	go r.cleanup(ctx, time.Minute)
	return r
}

func (r *RateLimiter) cleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

// sweep drops expired blocks and limiters idle for longer than idleAfter.
// An idle limiter has refilled, so dropping it grants nothing back.
func (r *RateLimiter) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for ip, until := range r.blockedIPs {
		if now.After(until) {
			delete(r.blockedIPs, ip)
		}
	}
	for key, cl := range r.ips {
		if now.Sub(cl.lastSeen) > r.idleAfter {
			delete(r.ips, key)
		}
	}
}

func (r *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			now := r.now()

			r.mu.Lock()
			if until, blocked := r.blockedIPs[ip]; blocked {
				if now.Before(until) {
					r.mu.Unlock()
					c.Response().Header().Set("Retry-After", until.UTC().Format(http.TimeFormat))
					return apierror.TooManyRequests("IP address blocked due to too many requests")
				}
				delete(r.blockedIPs, ip)
			}

			key, limit, burst := ip, r.defaultLimit, r.defaultBurst
			if el, ok := r.endpointLimits[c.Path()]; ok {
				key, limit, burst = ip+"|"+c.Path(), el.limit, el.burst
			}
			cl, ok := r.ips[key]
			if !ok {
				cl = &clientLimiter{limiter: rate.NewLimiter(limit, burst)}
				r.ips[key] = cl
			}
			cl.lastSeen = now
			if !cl.limiter.AllowN(now, 1) {
				until := now.Add(r.blockDuration)
				r.blockedIPs[ip] = until
				r.mu.Unlock()
				c.Response().Header().Set("Retry-After", until.UTC().Format(http.TimeFormat))
				return apierror.TooManyRequests("Too many requests")
			}
			r.mu.Unlock()

			return next(c)
		}
	}
}
