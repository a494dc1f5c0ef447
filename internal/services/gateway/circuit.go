package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// CircuitStore tracks consecutive failure counts per external service.
// Counters must be updated atomically: concurrent requests recording
// failures for the same service must never lose increments.
type CircuitStore interface {
	// Failures returns the current consecutive failure count
	Failures(ctx context.Context, service string) (int, error)
	// RecordFailure atomically increments the counter and refreshes its TTL,
	// returning the new count
	RecordFailure(ctx context.Context, service string, ttl time.Duration) (int, error)
	// Reset clears the counter
	Reset(ctx context.Context, service string) error
}

// RedisCircuitStore keeps circuit state in Redis so all backend instances
// share one view of a failing dependency. INCR gives the atomicity a plain
// cache read-modify-write lacks.
type RedisCircuitStore struct {
	client *redis.Client
}

// NewRedisCircuitStore creates a Redis-backed circuit store
func NewRedisCircuitStore(client *redis.Client) *RedisCircuitStore {
	return &RedisCircuitStore{client: client}
}

func circuitKey(service string) string {
	return "circuit_breaker:" + service
}

// Failures returns the current consecutive failure count for a service
func (s *RedisCircuitStore) Failures(ctx context.Context, service string) (int, error) {
	count, err := s.client.Get(ctx, circuitKey(service)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read circuit state for %s: %w", service, err)
	}
	return count, nil
}

// RecordFailure atomically increments the failure counter and refreshes the
// TTL so the circuit stays open for the full cooldown after the last failure
func (s *RedisCircuitStore) RecordFailure(ctx context.Context, service string, ttl time.Duration) (int, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, circuitKey(service))
	pipe.Expire(ctx, circuitKey(service), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("record circuit failure for %s: %w", service, err)
	}
	return int(incr.Val()), nil
}

// Reset clears the failure counter for a service
func (s *RedisCircuitStore) Reset(ctx context.Context, service string) error {
	if err := s.client.Del(ctx, circuitKey(service)).Err(); err != nil {
		return fmt.Errorf("reset circuit for %s: %w", service, err)
	}
	return nil
}
