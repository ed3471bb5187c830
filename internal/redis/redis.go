package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redisClient "github.com/go-redis/redis/v8"
)

const defaultTTL = 24 * time.Hour

// Cache keeps song records, the song index and rendered output in Redis
type Cache struct {
	client *redisClient.Client
	ttl    time.Duration
}

// NewCache connects to addr over TLS with the default user, the way hosted
// Redis providers expect. addr may also be a full redis:// or rediss:// URL.
func NewCache(addr, password string) (*Cache, error) {
	url := addr
	if !strings.HasPrefix(addr, "redis://") && !strings.HasPrefix(addr, "rediss://") {
		url = fmt.Sprintf("rediss://default:%s@%s", password, addr)
	}

	opt, err := redisClient.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	return NewCacheWithClient(redisClient.NewClient(opt)), nil
}

func NewCacheWithClient(client *redisClient.Client) *Cache {
	return &Cache{client: client, ttl: defaultTTL}
}

// Ping checks the connection
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// get reports found=false on a cache miss. A stored empty value is a hit.
func (c *Cache) get(ctx context.Context, key string) (data []byte, found bool, err error) {
	data, err = c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redisClient.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s from redis: %w", key, err)
	}
	return data, true, nil
}

func (c *Cache) set(ctx context.Context, key string, data []byte) error {
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s to redis: %w", key, err)
	}
	return nil
}
