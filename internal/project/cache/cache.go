// Package cache provides a Redis read-through cache for project views.
// Mutations invalidate; misses and Redis failures fall back to the store, so
// the cache is never load-bearing for correctness.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fundledger/internal/project"
	id "fundledger/pkg/domain"
)

// DefaultTTL bounds staleness for cached views.
const DefaultTTL = 30 * time.Second

type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *ViewCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ViewCache{client: client, ttl: ttl}
}

func key(projectID id.ProjectID) string {
	return fmt.Sprintf("fundledger:project:view:%d", projectID)
}

// Get returns the cached view and whether it was present. Redis errors are
// reported as misses with the error attached for logging.
func (c *ViewCache) Get(ctx context.Context, projectID id.ProjectID) (*project.View, bool, error) {
	raw, err := c.client.Get(ctx, key(projectID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	var view project.View
	if err := json.Unmarshal(raw, &view); err != nil {
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	return &view, true, nil
}

// Set stores the view with the configured TTL.
func (c *ViewCache) Set(ctx context.Context, view *project.View) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, key(view.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate drops the cached view after a mutation.
func (c *ViewCache) Invalidate(ctx context.Context, projectID id.ProjectID) error {
	if err := c.client.Del(ctx, key(projectID)).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
