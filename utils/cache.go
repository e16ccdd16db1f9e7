// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"chairtime/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client.
	CacheClient *redis.Client
	// ContextCacheClient is the dedicated client for conversation context storage.
	ContextCacheClient *redis.Client
)

// InitRedis initializes all Redis clients used by the service.
func InitRedis() {
	InitCache()
	InitContextCache()
}

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := CacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitContextCache initializes the Redis client holding conversation context.
func InitContextCache() {
	ContextCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisContextDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := ContextCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Context Cache): %v", err)
	}
}

// GetContextCacheClient returns the Redis client for conversation context.
func GetContextCacheClient() *redis.Client {
	if ContextCacheClient == nil {
		InitContextCache()
	}
	return ContextCacheClient
}
