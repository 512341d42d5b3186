package service

import (
	"context"
	"course_platform_backend/pkg/logger"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const catalogKeyPrefix = "catalog:course:"

// CatalogCache 缓存课程详情里与用户无关的部分
type CatalogCache interface {
	GetStats(ctx context.Context, courseID uint) (*CourseStats, bool)
	SetStats(ctx context.Context, courseID uint, stats *CourseStats)
	Invalidate(ctx context.Context, courseID uint)
}

// NopCatalogCache 未启用 Redis 时使用
type NopCatalogCache struct{}

func (NopCatalogCache) GetStats(ctx context.Context, courseID uint) (*CourseStats, bool) {
	return nil, false
}

func (NopCatalogCache) SetStats(ctx context.Context, courseID uint, stats *CourseStats) {}

func (NopCatalogCache) Invalidate(ctx context.Context, courseID uint) {}

type RedisCatalogCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewRedisCatalogCache(rdb *redis.Client, ttl time.Duration) *RedisCatalogCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCatalogCache{Redis: rdb, TTL: ttl}
}

func catalogKey(courseID uint) string {
	return fmt.Sprintf("%s%d", catalogKeyPrefix, courseID)
}

// 缓存读写失败只记日志，回源数据库
func (c *RedisCatalogCache) GetStats(ctx context.Context, courseID uint) (*CourseStats, bool) {
	val, err := c.Redis.Get(ctx, catalogKey(courseID)).Result()
	if err == redis.Nil {
		return nil, false
	} else if err != nil {
		logger.Log.Warn("Catalog cache read failed", zap.Uint("courseID", courseID), zap.Error(err))
		return nil, false
	}

	var stats CourseStats
	if err := json.Unmarshal([]byte(val), &stats); err != nil {
		logger.Log.Warn("Catalog cache entry corrupted", zap.Uint("courseID", courseID), zap.Error(err))
		return nil, false
	}
	return &stats, true
}

func (c *RedisCatalogCache) SetStats(ctx context.Context, courseID uint, stats *CourseStats) {
	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.Redis.Set(ctx, catalogKey(courseID), data, c.TTL).Err(); err != nil {
		logger.Log.Warn("Catalog cache write failed", zap.Uint("courseID", courseID), zap.Error(err))
	}
}

func (c *RedisCatalogCache) Invalidate(ctx context.Context, courseID uint) {
	if err := c.Redis.Del(ctx, catalogKey(courseID)).Err(); err != nil {
		logger.Log.Warn("Catalog cache invalidate failed", zap.Uint("courseID", courseID), zap.Error(err))
	}
}
