package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/solosprint/sprint-engine/internal/models"
)

// RecommendationCache stores per-visitor recommendation lists in Redis.
// Entries are invalidated whenever the visitor's profile changes, so a
// short TTL is only a backstop.
type RecommendationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRecommendationCache connects to Redis and verifies connectivity
func NewRecommendationCache(address, password string, ttl time.Duration) (*RecommendationCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       0,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RecommendationCache{client: client, ttl: ttl}, nil
}

func key(sessionID string) string {
	return fmt.Sprintf("recommendations:%s", sessionID)
}

// Get returns the cached list for a visitor, or nil on a miss. Corrupt
// entries are dropped and treated as a miss.
func (c *RecommendationCache) Get(ctx context.Context, sessionID string) ([]*models.Project, error) {
	raw, err := c.client.Get(ctx, key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	var projects []*models.Project
	if err := json.Unmarshal(raw, &projects); err != nil {
		slog.Warn("dropping corrupt cache entry", "session", sessionID, "error", err)
		c.client.Del(ctx, key(sessionID))
		return nil, nil
	}
	return projects, nil
}

// Set stores the list for a visitor with the configured TTL
func (c *RecommendationCache) Set(ctx context.Context, sessionID string, projects []*models.Project) error {
	raw, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("failed to encode projects: %w", err)
	}
	if err := c.client.Set(ctx, key(sessionID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

// Invalidate drops the visitor's cached list
func (c *RecommendationCache) Invalidate(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

// HealthCheck verifies Redis connectivity
func (c *RecommendationCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RecommendationCache) Close() error {
	return c.client.Close()
}
