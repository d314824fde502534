package parser

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"
)

func cacheConfig(maxSize int, ttl time.Duration) *config.Config {
	return &config.Config{
		Cache: config.CacheConfig{
			Enabled:         true,
			MaxSize:         maxSize,
			TTL:             ttl,
			CleanupInterval: time.Minute,
		},
	}
}

func TestCacheGetSetRoundTrip(t *testing.T) {
	m := NewCacheManager(cacheConfig(10, time.Minute))
	defer m.Close()
	ctx := context.Background()

	_, err := m.Get(ctx, "beef stew recipe")
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	require.NoError(t, m.Set(ctx, "beef stew recipe", `{"name":"Beef stew"}`))

	value, err := m.Get(ctx, "beef stew recipe")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Beef stew"}`, value)

	stats := m.GetStats()
	assert.EqualValues(t, 1, stats["hits"])
	assert.EqualValues(t, 1, stats["misses"])
}

func TestCacheEntryExpiresAfterTTL(t *testing.T) {
	m := NewCacheManager(cacheConfig(10, 10*time.Millisecond))
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "soup", "parsed"))

	_, err := m.Get(ctx, "soup")
	require.NoError(t, err)

	time.Sleep(25 * time.Millisecond)

	_, err = m.Get(ctx, "soup")
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	stats := m.GetStats()
	assert.EqualValues(t, 1, stats["evictions"])
}

func TestCacheEvictsLRUAtMaxSize(t *testing.T) {
	m := NewCacheManager(cacheConfig(2, time.Minute))
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", "1"))
	require.NoError(t, m.Set(ctx, "b", "2"))

	// 提高 a 的使用次數，讓 b 成為淘汰對象
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", "3"))

	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	value, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", value)

	value, err = m.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "3", value)
}

func TestDisabledCacheReturnsNilManager(t *testing.T) {
	cfg := cacheConfig(10, time.Minute)
	cfg.Cache.Enabled = false

	m := NewCacheManager(cfg)
	require.Nil(t, m)
	ctx := context.Background()

	// nil 管理器的方法安全可呼叫
	_, err := m.Get(ctx, "anything")
	assert.ErrorIs(t, err, common.ErrCacheDisabled)
	assert.NoError(t, m.Set(ctx, "anything", "value"))
	assert.NoError(t, m.Close())
}

func TestRedisCacheDisabledPath(t *testing.T) {
	cache, err := NewRedisCache(&config.CacheConfig{Enabled: false, UseRedis: true})
	require.NoError(t, err)
	ctx := context.Background()

	// 未啟用時不建立連線，操作退化為無作用
	_, err = cache.Get(ctx, "anything")
	assert.ErrorIs(t, err, common.ErrCacheDisabled)
	assert.NoError(t, cache.Set(ctx, "anything", "value"))
	assert.NoError(t, cache.Close())
}

func TestRedisKeyIsStableHash(t *testing.T) {
	cache := &RedisCache{}

	key := cache.generateKey("beef stew recipe")
	assert.True(t, strings.HasPrefix(key, "parse:result:"))
	assert.Equal(t, key, cache.generateKey("beef stew recipe"))
	assert.NotEqual(t, key, cache.generateKey("chicken soup recipe"))
}

func TestCacheCloseIsIdempotent(t *testing.T) {
	m := NewCacheManager(cacheConfig(10, time.Minute))
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "soup", "parsed"))

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	// 關閉後緩存內容已清空
	_, err := m.Get(ctx, "soup")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}
