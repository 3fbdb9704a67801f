// Package cache keeps rendered menu documents in Redis for the public menu endpoint.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"tomato-api/menu"
)

const (
	keyPrefix = "menu:"
	genPrefix = "menu-gen:"
)

// setIfGeneration writes the document only while the generation counter is unchanged.
// KEYS[1] document, KEYS[2] generation; ARGV[1] expected generation, ARGV[2] payload,
// ARGV[3] ttl in ms.
var setIfGeneration = redis.NewScript(`
local cur = redis.call('GET', KEYS[2])
if (cur or '0') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

type RedisMenuCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisMenuCache(client *redis.Client, ttl time.Duration) *RedisMenuCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisMenuCache{client: client, ttl: ttl}
}

func key(restaurantID string) string { return keyPrefix + restaurantID }

func genKey(restaurantID string) string { return genPrefix + restaurantID }

func (c *RedisMenuCache) Get(ctx context.Context, restaurantID string) (*menu.Document, bool, error) {
	b, err := c.client.Get(ctx, key(restaurantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var doc menu.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, false, fmt.Errorf("decode cached menu: %w", err)
	}
	return &doc, true, nil
}

// Generation returns the invalidation counter of a restaurant, 0 if never invalidated.
func (c *RedisMenuCache) Generation(ctx context.Context, restaurantID string) (uint64, error) {
	gen, err := c.client.Get(ctx, genKey(restaurantID)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Set stores doc unless the restaurant was invalidated after gen was read. A rejected
// fill is not an error.
func (c *RedisMenuCache) Set(ctx context.Context, doc *menu.Document, gen uint64) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	keys := []string{key(doc.RestaurantID), genKey(doc.RestaurantID)}
	return setIfGeneration.Run(ctx, c.client, keys,
		strconv.FormatUint(gen, 10), b, c.ttl.Milliseconds()).Err()
}

// Invalidate bumps the generation and drops the document in one transaction.
func (c *RedisMenuCache) Invalidate(ctx context.Context, restaurantID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey(restaurantID))
		pipe.Del(ctx, key(restaurantID))
		return nil
	})
	return err
}
