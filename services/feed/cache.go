package feed

import (
	"context"
	"encoding/json"
	"time"

	"platepick/models"

	"github.com/go-redis/redis/v8"
)

// SnapshotCache persists the latest feed snapshot per user so the mobile
// client can cold-resume on the last card it saw.
type SnapshotCache interface {
	Set(ctx context.Context, userID string, snap models.FeedSnapshot) error
	Get(ctx context.Context, userID string) (*models.FeedSnapshot, error)
	Delete(ctx context.Context, userID string) error
}

const snapshotKeyPrefix = "feed:snapshot:"

// RedisSnapshotCache stores snapshots as JSON values with a TTL.
type RedisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSnapshotCache(client *redis.Client, ttl time.Duration) *RedisSnapshotCache {
	return &RedisSnapshotCache{client: client, ttl: ttl}
}

func snapshotKey(userID string) string {
	return snapshotKeyPrefix + userID
}

func (c *RedisSnapshotCache) Set(ctx context.Context, userID string, snap models.FeedSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, snapshotKey(userID), data, c.ttl).Err()
}

func (c *RedisSnapshotCache) Get(ctx context.Context, userID string) (*models.FeedSnapshot, error) {
	val, err := c.client.Get(ctx, snapshotKey(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap models.FeedSnapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *RedisSnapshotCache) Delete(ctx context.Context, userID string) error {
	return c.client.Del(ctx, snapshotKey(userID)).Err()
}
