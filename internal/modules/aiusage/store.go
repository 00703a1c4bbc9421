package aiusage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store counts calls per session. Use returns the count after this call;
// the counter starts its window on the first call.
type Store interface {
	Use(ctx context.Context, sessionID string, window time.Duration) (int64, error)
}

// incrWithTTL sets the expiry only on the first increment so the window is
// fixed from the first call.
var incrWithTTL = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Use(ctx context.Context, sessionID string, window time.Duration) (int64, error) {
	n, err := incrWithTTL.Run(ctx, s.client, []string{usageKey(sessionID)}, window.Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("count usage: %w", err)
	}
	return n, nil
}

func usageKey(sessionID string) string {
	return fmt.Sprintf("session:%s:ai_usage", sessionID)
}

type counter struct {
	n       int64
	expires time.Time
}

// MemoryStore keeps counters in process. Expired counters are swept at most
// once per window.
type MemoryStore struct {
	mu        sync.Mutex
	counters  map[string]counter
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]counter), now: time.Now}
}

func (s *MemoryStore) Use(_ context.Context, sessionID string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if now.Sub(s.lastSweep) >= window {
		s.sweep(now)
		s.lastSweep = now
	}
	c := s.counters[sessionID]
	if c.n == 0 || !now.Before(c.expires) {
		c = counter{expires: now.Add(window)}
	}
	c.n++
	s.counters[sessionID] = c
	return c.n, nil
}

func (s *MemoryStore) sweep(now time.Time) {
	for id, c := range s.counters {
		if !now.Before(c.expires) {
			delete(s.counters, id)
		}
	}
}
