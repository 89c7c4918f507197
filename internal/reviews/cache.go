package reviews

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// cacheEntry is the stored shape; ExpiresAt is carried explicitly so an
// entry stays self-describing even if the Redis TTL drifts.
type cacheEntry struct {
	Key       string    `json:"key"`
	Payload   Payload   `json:"payload"`
	CachedAt  time.Time `json:"cachedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Cache stores resolved review payloads in Redis with a TTL.
type Cache struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewCache(redisURL string) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewCacheWithClient(client), nil
}

func NewCacheWithClient(client *redis.Client) *Cache {
	return &Cache{
		client: client,
		prefix: "reviews:",
		now:    time.Now,
	}
}

func (c *Cache) key(requestKey string) string {
	return c.prefix + requestKey
}

// Get returns the cached payload for the key if present and not expired.
func (c *Cache) Get(ctx context.Context, requestKey string) (Payload, bool, error) {
	raw, err := c.client.Get(ctx, c.key(requestKey)).Result()
	if err == redis.Nil {
		return Payload{}, false, nil
	}
	if err != nil {
		return Payload{}, false, fmt.Errorf("read review cache: %w", err)
	}

	var entry cacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return Payload{}, false, fmt.Errorf("unmarshal review cache: %w", err)
	}
	if !entry.ExpiresAt.After(c.now()) {
		return Payload{}, false, nil
	}
	return entry.Payload, true, nil
}

// Set writes through a resolved payload with the given TTL.
func (c *Cache) Set(ctx context.Context, requestKey string, payload Payload, ttl time.Duration) error {
	now := c.now()
	entry := cacheEntry{
		Key:       requestKey,
		Payload:   payload,
		CachedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal review cache: %w", err)
	}
	if err := c.client.Set(ctx, c.key(requestKey), raw, ttl).Err(); err != nil {
		return fmt.Errorf("write review cache: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}
