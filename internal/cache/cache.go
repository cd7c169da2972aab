package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client implements service.SessionStore on Redis. A zero TTL stores
// sessions without expiry; otherwise the store evicts them on its own.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Client {
	return &Client{rdb: rdb, ttl: ttl}
}

func (c *Client) Set(ctx context.Context, token, payload string) error {
	return c.rdb.Set(ctx, sessionKey(token), payload, c.ttl).Err()
}

func (c *Client) Get(ctx context.Context, token string) (string, bool, error) {
	value, err := c.rdb.Get(ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (c *Client) Del(ctx context.Context, token string) error {
	return c.rdb.Del(ctx, sessionKey(token)).Err()
}

func sessionKey(token string) string {
	return "session:" + token
}
