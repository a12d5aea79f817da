package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/talentlane/marketplace_be/internal/models"
)

// Counter is the per-user integer counter backing the guard. Keys are
// plain integer strings.
type Counter interface {
	Get(ctx context.Context, key string) (int, error)
	Incr(ctx context.Context, key string, ttl time.Duration) error
}

type RedisCounter struct {
	RDB *redis.Client
}

func NewRedisCounter(rdb *redis.Client) *RedisCounter {
	return &RedisCounter{RDB: rdb}
}

func (c *RedisCounter) Get(ctx context.Context, key string) (int, error) {
	val, err := c.RDB.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (c *RedisCounter) Incr(ctx context.Context, key string, ttl time.Duration) error {
	n, err := c.RDB.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	// The window starts at the first action in it.
	if n == 1 && ttl > 0 {
		return c.RDB.Expire(ctx, key, ttl).Err()
	}
	return nil
}

// MemoryCounter is the in-process Counter used in tests and when
// running without Redis. TTLs are honored per key.
type MemoryCounter struct {
	mu      sync.Mutex
	counts  map[string]int
	expires map[string]time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		counts:  map[string]int{},
		expires: map[string]time.Time{},
	}
}

func (c *MemoryCounter) Get(_ context.Context, key string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expire(key)
	return c.counts[key], nil
}

func (c *MemoryCounter) Incr(_ context.Context, key string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expire(key)
	c.counts[key]++
	if c.counts[key] == 1 && ttl > 0 {
		c.expires[key] = time.Now().Add(ttl)
	}
	return nil
}

func (c *MemoryCounter) expire(key string) {
	if exp, ok := c.expires[key]; ok && time.Now().After(exp) {
		delete(c.counts, key)
		delete(c.expires, key)
	}
}

// Guard caps how many jobs a user may post and proposals they may
// submit inside the window. A zero window makes the caps lifetime.
type Guard struct {
	counter      Counter
	maxJobPosts  int
	maxProposals int
	window       time.Duration
}

func NewGuard(counter Counter, maxJobPosts, maxProposals int, window time.Duration) *Guard {
	return &Guard{
		counter:      counter,
		maxJobPosts:  maxJobPosts,
		maxProposals: maxProposals,
		window:       window,
	}
}

func jobKey(userID string) string      { return "user_jobs_count_" + userID }
func proposalKey(userID string) string { return "user_proposals_count_" + userID }

// CheckJobPost rejects when the user has hit the posting cap. Call
// before creating the job, RecordJobPost after it succeeded.
func (g *Guard) CheckJobPost(ctx context.Context, userID string) error {
	n, err := g.counter.Get(ctx, jobKey(userID))
	if err != nil {
		return err
	}
	if n >= g.maxJobPosts {
		return models.NewErrorResponse(http.StatusTooManyRequests,
			"You have reached the maximum number of job postings for today. Please try again tomorrow.")
	}
	return nil
}

func (g *Guard) RecordJobPost(ctx context.Context, userID string) error {
	return g.counter.Incr(ctx, jobKey(userID), g.window)
}

func (g *Guard) CheckProposal(ctx context.Context, userID string) error {
	n, err := g.counter.Get(ctx, proposalKey(userID))
	if err != nil {
		return err
	}
	if n >= g.maxProposals {
		return models.NewErrorResponse(http.StatusTooManyRequests,
			"You have reached the maximum number of proposals for today. Please try again tomorrow.")
	}
	return nil
}

func (g *Guard) RecordProposal(ctx context.Context, userID string) error {
	return g.counter.Incr(ctx, proposalKey(userID), g.window)
}
