package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Zeek-James/pem-zee/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// ── Per-IP token buckets ─────────────────────────────────────────────────────

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter hands out one token bucket per client IP.
type ipLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	every    rate.Limit
	burst    int
}

func newIPLimiter(perWindow int, window time.Duration) *ipLimiter {
	l := &ipLimiter{
		visitors: make(map[string]*visitor),
		every:    rate.Every(window / time.Duration(perWindow)),
		burst:    perWindow,
	}
	go l.purgeLoop(purgeInterval)
	return l
}

func (l *ipLimiter) allow(ip string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	r := v.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// ── Purge goroutine ───────────────────────────────────────────────────────────
// Periodically removes idle visitors so IPs that never return do not
// accumulate.

const purgeInterval = 5 * time.Minute

func (l *ipLimiter) purgeLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for now := range ticker.C {
		if n := l.purge(now.Add(-every)); n > 0 {
			log.Debug().Int("purged", n).Msg("rate limiter visitors purged")
		}
	}
}

func (l *ipLimiter) purge(idleSince time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	purged := 0
	for ip, v := range l.visitors {
		if v.lastSeen.Before(idleSince) {
			delete(l.visitors, ip)
			purged++
		}
	}
	return purged
}

func limit(l *ipLimiter, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := l.allow(c.ClientIP(), time.Now())
		if !ok {
			secs := int(wait.Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return limit(newIPLimiter(20, time.Minute), "Too many login attempts. Try again in a minute.")
}

// RateLimiter returns a general-purpose per-IP limiter allowing bursts of
// up to limit requests, refilled evenly over window.
func RateLimiter(limitPerWindow int, window time.Duration) gin.HandlerFunc {
	return limit(newIPLimiter(limitPerWindow, window), "Too many requests. Please try again shortly.")
}
