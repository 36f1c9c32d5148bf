// Package cache holds the read-through catalog cache backed by Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"eventhub/internal/domain"
	"github.com/redis/go-redis/v9"
)

const eventKey = "eventhub:event:%d"

// EventCache stores fully loaded events by id.
type EventCache struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *log.Logger
}

// NewClient returns a Redis client for addr with short dial and IO timeouts.
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

func NewEventCache(rdb redis.Cmdable, ttl time.Duration, logger *log.Logger) *EventCache {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &EventCache{rdb: rdb, ttl: ttl, logger: logger}
}

// Get reports a miss on any Redis failure so callers fall back to the database.
func (c *EventCache) Get(ctx context.Context, id int64) (*domain.Event, bool) {
	raw, err := c.rdb.Get(ctx, fmt.Sprintf(eventKey, id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Printf("cache: get event=%d error=%v", id, err)
		}
		return nil, false
	}
	var ev domain.Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		c.logger.Printf("cache: decode event=%d error=%v", id, err)
		return nil, false
	}
	return &ev, true
}

func (c *EventCache) Set(ctx context.Context, ev *domain.Event) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, fmt.Sprintf(eventKey, ev.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Printf("cache: set event=%d error=%v", ev.ID, err)
	}
}

func (c *EventCache) Invalidate(ctx context.Context, id int64) {
	if err := c.rdb.Del(ctx, fmt.Sprintf(eventKey, id)).Err(); err != nil {
		c.logger.Printf("cache: del event=%d error=%v", id, err)
	}
}

// Ping is used by the readiness probe.
func (c *EventCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
