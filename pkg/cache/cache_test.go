package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func exercise(t *testing.T, s Store) {
	ctx := context.Background()

	var got item
	hit, err := s.Get(ctx, "products:1", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, s.Set(ctx, "products:1", item{ID: 1, Name: "Gaiwan"}, time.Minute))
	hit, err = s.Get(ctx, "products:1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, item{ID: 1, Name: "Gaiwan"}, got)

	require.NoError(t, s.Delete(ctx, "products:1", "products:all"))
	hit, err = s.Get(ctx, "products:1", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemoryStore())
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", 42, time.Second))
	var n int
	hit, _ := s.Get(ctx, "k", &n)
	assert.True(t, hit)

	now = now.Add(time.Second)
	hit, _ = s.Get(ctx, "k", &n)
	assert.False(t, hit)
}

func TestMemoryStoreDecodeMismatchIsMiss(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", "text", 0))

	var n int
	hit, err := s.Get(ctx, "k", &n)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	exercise(t, NewRedisStore(client))
}
