package redis

import (
	"context"
	"encoding/json"
	"time"

	"classroom-ai-assistant/internal/domain/model"
)

// ClassCache holds ClassConfig snapshots with a TTL so the detector and
// attendance paths don't re-read the class record on every event.
type ClassCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewClassCache(client RedisClient, ttl time.Duration) *ClassCache {
	return &ClassCache{client: client, ttl: ttl}
}

func (c *ClassCache) Store(ctx context.Context, class *model.ClassConfig) error {
	data, err := json.Marshal(class)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "class_config:"+class.ID, data, c.ttl)
}

// Get returns (nil, nil) on a cache miss.
func (c *ClassCache) Get(ctx context.Context, classID string) (*model.ClassConfig, error) {
	data, err := c.client.Get(ctx, "class_config:"+classID)
	if err != nil {
		if IsNil(err) {
			return nil, nil
		}
		return nil, err
	}
	var class model.ClassConfig
	if err := json.Unmarshal([]byte(data), &class); err != nil {
		return nil, err
	}
	return &class, nil
}

func (c *ClassCache) Invalidate(ctx context.Context, classID string) error {
	return c.client.Del(ctx, "class_config:"+classID)
}
