package middleware

import (
	"hash/fnv"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/idgrid/user-service/internal/domain/dto"
	"github.com/idgrid/user-service/internal/i18n"
)

// defaultNumShards spreads callers across this many locks unless the
// caller asks for a specific count.
const defaultNumShards = 16

// bucket is the fixed-window quota for one caller.
type bucket struct {
	remaining   int
	windowStart time.Time
}

type limiterShard struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

// ShardedRateLimiter enforces a fixed-window request quota per caller.
// Callers hash onto shards so concurrent requests rarely contend on the
// same lock.
type ShardedRateLimiter struct {
	shards    []*limiterShard
	numShards int
	rate      int
	window    time.Duration
	stopCh    chan struct{}
}

// RateLimiter is the name most call sites use.
type RateLimiter = ShardedRateLimiter

// NewRateLimiter returns a limiter allowing rate requests per window,
// sharded with the default shard count.
func NewRateLimiter(rate int, window time.Duration) *ShardedRateLimiter {
	return NewShardedRateLimiter(rate, window, defaultNumShards)
}

// NewShardedRateLimiter returns a limiter with an explicit shard count.
// Non-positive counts fall back to the default.
func NewShardedRateLimiter(rate int, window time.Duration, numShards int) *ShardedRateLimiter {
	if numShards <= 0 {
		numShards = defaultNumShards
	}

	shards := make([]*limiterShard, numShards)
	for i := range shards {
		shards[i] = &limiterShard{buckets: make(map[string]*bucket)}
	}

	rl := &ShardedRateLimiter{
		shards:    shards,
		numShards: numShards,
		rate:      rate,
		window:    window,
		stopCh:    make(chan struct{}),
	}

	go rl.sweepLoop()
	return rl
}

func (rl *ShardedRateLimiter) shardFor(id string) *limiterShard {
	h := fnv.New32a()
	h.Write([]byte(id))
	return rl.shards[h.Sum32()%uint32(rl.numShards)]
}

// take consumes one token for id. A caller seen for the first time, or
// whose window has elapsed, starts a fresh bucket.
func (rl *ShardedRateLimiter) take(id string) (allowed bool, remaining int) {
	shard := rl.shardFor(id)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	now := time.Now()
	b, ok := shard.buckets[id]
	if !ok || now.Sub(b.windowStart) > rl.window {
		shard.buckets[id] = &bucket{remaining: rl.rate - 1, windowStart: now}
		return true, rl.rate - 1
	}

	if b.remaining <= 0 {
		return false, 0
	}

	b.remaining--
	return true, b.remaining
}

// limit builds the middleware around an identity function. Quota headers
// go out on every response; a drained bucket gets a 429 with Retry-After.
func (rl *ShardedRateLimiter) limit(identify func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, remaining := rl.take(identify(c))

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.rate))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.Header("Retry-After", rl.window.String())
			msg := i18n.GetTranslator().Translate(i18n.ErrKeyRateLimitExceeded, i18n.GetLocale(c))
			resp := dto.NewError(dto.ErrCodeRateLimit, msg).WithRequestID(GetRequestID(c))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, resp)
			return
		}

		c.Next()
	}
}

// RateLimit limits requests by client IP.
func (rl *ShardedRateLimiter) RateLimit() gin.HandlerFunc {
	return rl.limit(func(c *gin.Context) string { return c.ClientIP() })
}

// UserRateLimit limits requests by authenticated user, falling back to
// the client IP for anonymous traffic.
func (rl *ShardedRateLimiter) UserRateLimit() gin.HandlerFunc {
	return rl.limit(callerIdentity)
}

// callerIdentity keys the quota on the user id the JWT middleware stored,
// or the client IP when there is none.
func callerIdentity(c *gin.Context) string {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uint64); ok {
			return "user:" + strconv.FormatUint(id, 10)
		}
	}
	return "ip:" + c.ClientIP()
}

func (rl *ShardedRateLimiter) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stopCh:
			return
		}
	}
}

// sweep drops buckets idle for more than two windows.
func (rl *ShardedRateLimiter) sweep() {
	now := time.Now()
	threshold := rl.window * 2

	for _, shard := range rl.shards {
		shard.mu.Lock()
		for id, b := range shard.buckets {
			if now.Sub(b.windowStart) > threshold {
				delete(shard.buckets, id)
			}
		}
		shard.mu.Unlock()
	}
}

// Stop ends the background sweeper.
func (rl *ShardedRateLimiter) Stop() {
	close(rl.stopCh)
}

// Stats reports how many callers each shard is tracking.
func (rl *ShardedRateLimiter) Stats() (total int, perShard []int) {
	perShard = make([]int, rl.numShards)
	for i, shard := range rl.shards {
		shard.mu.Lock()
		perShard[i] = len(shard.buckets)
		total += perShard[i]
		shard.mu.Unlock()
	}
	return total, perShard
}
