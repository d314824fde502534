package parser

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/go-redis/redis/v8"

	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"
)

// RedisCache redis 版的解析結果緩存
// 多裝置共用同一個後端時可以共享解析結果
type RedisCache struct {
	client *redis.Client
	config *config.CacheConfig
}

var _ ResultCache = (*RedisCache)(nil)

// NewRedisCache 創建 redis 緩存
func NewRedisCache(cfg *config.CacheConfig) (*RedisCache, error) {
	if !cfg.Enabled || !cfg.UseRedis {
		return &RedisCache{config: cfg}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	// 測試連接
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{
		client: client,
		config: cfg,
	}, nil
}

// Get 獲取緩存
func (s *RedisCache) Get(ctx context.Context, text string) (string, error) {
	if !s.config.Enabled || s.client == nil {
		return "", common.ErrCacheDisabled
	}

	key := s.generateKey(text)
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", common.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	return value, nil
}

// Set 設置緩存
func (s *RedisCache) Set(ctx context.Context, text, value string) error {
	if !s.config.Enabled || s.client == nil {
		return nil
	}

	if err := s.client.Set(ctx, s.generateKey(text), value, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// generateKey 生成緩存鍵
func (s *RedisCache) generateKey(text string) string {
	hash := sha256.Sum256([]byte(text))
	return fmt.Sprintf("parse:result:%s", hex.EncodeToString(hash[:]))
}

// Close 關閉連接
func (s *RedisCache) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
