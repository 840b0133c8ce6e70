package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"santas-pos/internal/models"
)

const cacheKeyPrefix = "catalog:entrada:"

// TicketTypeCache is a Redis read-through cache for catalog lookups by
// name. Ticket types are read-mostly reference data, so a short TTL bounds
// staleness; correctness-critical quota state never goes through here.
type TicketTypeCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewTicketTypeCache(client *redis.Client, ttl time.Duration) *TicketTypeCache {
	return &TicketTypeCache{Client: client, TTL: ttl}
}

func cacheKey(name string) string {
	return cacheKeyPrefix + strings.ToLower(strings.TrimSpace(name))
}

// Get returns the cached ticket type for the name, or nil on a miss.
func (c *TicketTypeCache) Get(ctx context.Context, name string) (*models.TicketType, error) {
	if c.Client == nil {
		return nil, nil
	}

	payload, err := c.Client.Get(ctx, cacheKey(name)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog cache get: %w", err)
	}

	var tt models.TicketType
	if err := json.Unmarshal([]byte(payload), &tt); err != nil {
		return nil, fmt.Errorf("catalog cache decode: %w", err)
	}
	return &tt, nil
}

// Set stores the ticket type under its lookup name for the configured TTL.
func (c *TicketTypeCache) Set(ctx context.Context, name string, tt *models.TicketType) error {
	if c.Client == nil {
		return nil
	}

	payload, err := json.Marshal(tt)
	if err != nil {
		return fmt.Errorf("catalog cache encode: %w", err)
	}
	if err := c.Client.Set(ctx, cacheKey(name), payload, c.TTL).Err(); err != nil {
		return fmt.Errorf("catalog cache set: %w", err)
	}
	return nil
}
