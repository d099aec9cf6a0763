package lobby

import (
	"context"
	"sync"

	"github.com/go-redis/redis/v8"
)

// ipTracker enforces the per-IP concurrent connection cap of spec.md
// section 6.4. A Redis-backed implementation lets the cap hold across a
// multi-process deployment (SPEC_FULL.md's DOMAIN STACK); with no Redis
// address configured, an in-process map is used instead.
type ipTracker interface {
	// tryAcquire increments ip's count and reports whether it is still at
	// or under max. On false, the count is not incremented.
	tryAcquire(ip string, max int) bool
	release(ip string)
}

type memoryIPTracker struct {
	mu     sync.Mutex
	counts map[string]int
}

func newMemoryIPTracker() *memoryIPTracker {
	return &memoryIPTracker{counts: make(map[string]int)}
}

func (t *memoryIPTracker) tryAcquire(ip string, max int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.counts[ip] >= max {
		return false
	}
	t.counts[ip]++
	return true
}

func (t *memoryIPTracker) release(ip string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.counts[ip] <= 1 {
		delete(t.counts, ip)
		return
	}
	t.counts[ip]--
}

type redisIPTracker struct {
	client *redis.Client
}

func newRedisIPTracker(addr, password string, db int) *redisIPTracker {
	return &redisIPTracker{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (t *redisIPTracker) key(ip string) string {
	return "gomoku:ipconn:" + ip
}

func (t *redisIPTracker) tryAcquire(ip string, max int) bool {
	ctx := context.Background()
	n, err := t.client.Incr(ctx, t.key(ip)).Result()
	if err != nil {
		// Redis unavailable: fail open rather than block every connection
		// on an infrastructure outage.
		return true
	}
	if int(n) > max {
		t.client.Decr(ctx, t.key(ip))
		return false
	}
	return true
}

func (t *redisIPTracker) release(ip string) {
	ctx := context.Background()
	t.client.Decr(ctx, t.key(ip))
}
