// Package cache shields the forms provider from repeated full fetches
// by keeping the last submission snapshot in Redis for a short TTL,
// mirroring the refresh cadence of the dashboard. Mutations invalidate
// the snapshot so the next fetch sees the provider's truth.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pioneerbroadband/leadtracker/internal/leads"
	"github.com/pioneerbroadband/leadtracker/pkg/logging"
)

const snapshotKey = "leadtracker:snapshot"

// DefaultTTL matches the dashboard's refresh cadence.
const DefaultTTL = 60 * time.Second

// CachedPersister decorates a Persister with a Redis snapshot cache.
// Cache failures degrade to the inner persister; they are logged, never
// surfaced.
type CachedPersister struct {
	inner  leads.Persister
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// Wrap decorates inner. A nil client returns inner unchanged.
func Wrap(inner leads.Persister, client *redis.Client, ttl time.Duration, logger *logging.Logger) leads.Persister {
	if client == nil {
		return inner
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedPersister{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (c *CachedPersister) Fetch(ctx context.Context) ([]leads.Lead, error) {
	raw, err := c.client.Get(ctx, snapshotKey).Bytes()
	if err == nil {
		var cached []leads.Lead
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		c.logger.Warn("snapshot cache corrupt, refetching")
	} else if err != redis.Nil {
		c.logger.Warn("snapshot cache unavailable", "error", err)
	}

	fetched, err := c.inner.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(fetched); err == nil {
		if err := c.client.Set(ctx, snapshotKey, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("snapshot cache write failed", "error", err)
		}
	}
	return fetched, nil
}

func (c *CachedPersister) Create(ctx context.Context, lead *leads.Lead) (string, error) {
	id, err := c.inner.Create(ctx, lead)
	if err == nil {
		c.invalidate(ctx)
	}
	return id, err
}

func (c *CachedPersister) Update(ctx context.Context, id string, fields map[string]string) error {
	err := c.inner.Update(ctx, id, fields)
	if err == nil {
		c.invalidate(ctx)
	}
	return err
}

func (c *CachedPersister) Delete(ctx context.Context, id string) error {
	err := c.inner.Delete(ctx, id)
	if err == nil {
		c.invalidate(ctx)
	}
	return err
}

func (c *CachedPersister) invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, snapshotKey).Err(); err != nil {
		c.logger.Warn("snapshot cache invalidation failed", "error", err)
	}
}
