// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/danielhkuo/quickly-vote/models"
)

const keyPrefix = "quickly-vote:results:"

// RedisResults stores result sets of settled elections in Redis.
type RedisResults struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisResults connects to the Redis server at url (redis://...).
// A zero ttl keeps entries forever.
func NewRedisResults(ctx context.Context, url string, ttl time.Duration) (*RedisResults, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisResults{client: client, ttl: ttl}, nil
}

func Key(electionID string) string {
	return keyPrefix + electionID
}

func (c *RedisResults) Get(ctx context.Context, electionID string) (*models.ResultSet, bool, error) {
	data, err := c.client.Get(ctx, Key(electionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var rs models.ResultSet
	if err := json.Unmarshal(data, &rs); err != nil {
		return nil, false, fmt.Errorf("decode cached results: %w", err)
	}
	return &rs, true, nil
}

func (c *RedisResults) Set(ctx context.Context, rs *models.ResultSet) error {
	data, err := json.Marshal(rs)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if err := c.client.Set(ctx, Key(rs.ElectionID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a cached entry.
func (c *RedisResults) Delete(ctx context.Context, electionID string) error {
	return c.client.Del(ctx, Key(electionID)).Err()
}

func (c *RedisResults) Close() error {
	return c.client.Close()
}
