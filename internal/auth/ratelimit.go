package auth

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/almasmith/mercer-library/internal/problem"
)

// RateLimiter throttles requests per key with a token bucket each.
// Buckets idle for longer than the cleanup interval are dropped.
type RateLimiter struct {
	mu              sync.Mutex
	limiters        map[string]*keyedLimiter
	limit           rate.Limit
	burst           int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
	now             func() time.Time
}

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyFunc picks the bucket a request is charged to.
type KeyFunc func(c *gin.Context) string

// NewRateLimiter allows perMinute requests per key per minute, with bursts
// of the same size.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}

	rl := &RateLimiter{
		limiters:        make(map[string]*keyedLimiter),
		limit:           rate.Every(time.Minute / time.Duration(perMinute)),
		burst:           perMinute,
		cleanupInterval: 5 * time.Minute,
		stopCleanup:     make(chan struct{}),
		now:             time.Now,
	}

	go rl.cleanupLoop()

	return rl
}

// Stop stops the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

// Allow charges one request to key. When the bucket is empty it returns
// false and how long the caller should wait.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	now := rl.now()
	limiter := rl.get(key, now)

	reservation := limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, time.Minute
	}
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (rl *RateLimiter) get(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.limiters[key]
	if !exists {
		entry = &keyedLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// cleanupLoop periodically removes idle buckets.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > rl.cleanupInterval {
			delete(rl.limiters, key)
		}
	}
}

// Middleware answers 429 with Retry-After once a key's bucket is empty.
func (rl *RateLimiter) Middleware(key KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := rl.Allow(key(c))
		if !allowed {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			problem.Abort(c, http.StatusTooManyRequests, "too many requests")
			return
		}
		c.Next()
	}
}

// ClientIPKey charges requests to the client address.
func ClientIPKey(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// UserOrIPKey charges authenticated requests to the user and falls back to
// the client address.
func UserOrIPKey(c *gin.Context) string {
	if id := GetUserID(c); id != 0 {
		return "user:" + strconv.FormatUint(uint64(id), 10)
	}
	return ClientIPKey(c)
}
