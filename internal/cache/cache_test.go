package cache

import (
	"context"
	"testing"
	"time"

	"eventhub/internal/domain"
	"github.com/stretchr/testify/assert"
)

// An unreachable Redis must degrade to cache misses, never errors.
func TestEventCacheDegradesToMiss(t *testing.T) {
	rdb := NewClient("127.0.0.1:1")
	defer rdb.Close()
	c := NewEventCache(rdb, time.Minute, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	c.Set(ctx, &domain.Event{ID: 7, Title: "Wedding"})
	_, ok := c.Get(ctx, 7)
	assert.False(t, ok)
	c.Invalidate(ctx, 7)
	assert.Error(t, c.Ping(ctx))
}
