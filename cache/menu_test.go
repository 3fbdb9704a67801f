package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"tomato-api/menu"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "menu:r-1", key("r-1"))
	assert.Equal(t, "menu-gen:r-1", genKey("r-1"))
}

func TestDefaultTTL(t *testing.T) {
	c := NewRedisMenuCache(redis.NewClient(&redis.Options{}), 0)
	assert.Equal(t, 5*time.Minute, c.ttl)
}

func TestUnreachableServerReportsErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	c := NewRedisMenuCache(client, time.Minute)

	_, ok, err := c.Get(context.Background(), "r-1")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.Invalidate(context.Background(), "r-1"))
	_, err = c.Generation(context.Background(), "r-1")
	assert.Error(t, err)
	assert.Error(t, c.Set(context.Background(), &menu.Document{RestaurantID: "r-1"}, 0))

	_, err = NewRedisClient(context.Background(), Config{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
