package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Duly330AI/Matheheftt-sub000/internal/session"
)

const stateKeyPrefix = "matheheft:session:"

// RedisStateCache implements StateCache on Redis. Each session's state is
// one JSON value that expires after ttl without writes.
type RedisStateCache struct {
	BaseProvider
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStateCache connects to Redis and verifies the connection
func NewRedisStateCache(address, password string, db int, ttl time.Duration) (*RedisStateCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStateCache{
		BaseProvider: BaseProvider{serviceType: "redis"},
		client:       client,
		ttl:          ttl,
	}, nil
}

func stateKey(sessionID string) string {
	return stateKeyPrefix + sessionID
}

// Save stores the state and refreshes its expiry
func (c *RedisStateCache) Save(ctx context.Context, sessionID string, state session.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := c.client.Set(ctx, stateKey(sessionID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache state: %w", err)
	}
	return nil
}

// Load reads the cached state, or ErrCacheMiss
func (c *RedisStateCache) Load(ctx context.Context, sessionID string) (session.State, error) {
	data, err := c.client.Get(ctx, stateKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.State{}, ErrCacheMiss
	}
	if err != nil {
		return session.State{}, fmt.Errorf("failed to read cached state: %w", err)
	}

	var state session.State
	if err := json.Unmarshal(data, &state); err != nil {
		return session.State{}, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return state, nil
}

// Delete drops the cached state
func (c *RedisStateCache) Delete(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, stateKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cached state: %w", err)
	}
	return nil
}

// HealthCheck verifies Redis connectivity
func (c *RedisStateCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisStateCache) Close() error {
	return c.client.Close()
}
