package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ladybird-ops/ladybird-backend/config"
	"github.com/ladybird-ops/ladybird-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var (
	client   *redis.Client
	cacheTTL time.Duration
)

// Init initializes the Redis connection used as a read-through cache for
// store directory lookups. The rest of the system works without it.
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	cacheTTL = cfg.TTL

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client = nil
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

func storeKey(id string) string {
	return fmt.Sprintf("store:%s", id)
}

// CacheStore stores a serialized store record under its ID.
func CacheStore(ctx context.Context, id string, store interface{}) {
	if client == nil {
		return
	}

	payload, err := json.Marshal(store)
	if err != nil {
		logger.Error("Failed to serialize store for cache", err, map[string]interface{}{
			"store_id": id,
		})
		return
	}

	if err := client.Set(ctx, storeKey(id), payload, cacheTTL).Err(); err != nil {
		logger.Error("Failed to cache store", err, map[string]interface{}{
			"store_id": id,
		})
	}
}

// GetCachedStore loads a cached store record into dest. Returns false on a
// cache miss or when Redis is disabled.
func GetCachedStore(ctx context.Context, id string, dest interface{}) bool {
	if client == nil {
		return false
	}

	payload, err := client.Get(ctx, storeKey(id)).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		logger.Error("Failed to read store from cache", err, map[string]interface{}{
			"store_id": id,
		})
		return false
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		logger.Error("Failed to deserialize cached store", err, map[string]interface{}{
			"store_id": id,
		})
		return false
	}
	return true
}

// InvalidateStore drops a store record from the cache after a mutation.
func InvalidateStore(ctx context.Context, id string) {
	if client == nil {
		return
	}

	if err := client.Del(ctx, storeKey(id)).Err(); err != nil {
		logger.Error("Failed to invalidate cached store", err, map[string]interface{}{
			"store_id": id,
		})
	}
}
