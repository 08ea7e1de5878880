package redis_utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/seonhu82/Dollar-Invest/src/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisHandler encapsulates the Redis client. It satisfies
// utils.CacheHandlerI so it can back the rate cache when configured.
type RedisHandler struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisHandler initializes a new Redis handler.
func NewRedisHandler(cfg *config.Config) (*RedisHandler, error) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Databases.Redis.Host + ":" + cfg.Databases.Redis.Port,
		Username: cfg.Databases.Redis.Username,
		Password: cfg.Databases.Redis.Password,
		DB:       cfg.Databases.Redis.Database,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisHandler{
		client: client,
		ctx:    ctx,
	}, nil
}

// Set stores a key-value pair in Redis with an optional expiration.
func (r *RedisHandler) Set(key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize value: %w", err)
	}

	return r.client.Set(r.ctx, key, data, expiration).Err()
}

// Get retrieves and deserializes the value of a key into the provided result.
func (r *RedisHandler) Get(key string, result interface{}) error {
	data, err := r.client.Get(r.ctx, key).Result()
	if err == redis.Nil {
		return fmt.Errorf("key does not exist: %s", key)
	} else if err != nil {
		return fmt.Errorf("failed to get key: %w", err)
	}

	if err := json.Unmarshal([]byte(data), result); err != nil {
		return fmt.Errorf("failed to deserialize value: %w", err)
	}
	return nil
}

// Delete removes a key from Redis.
func (r *RedisHandler) Delete(key string) error {
	return r.client.Del(r.ctx, key).Err()
}

// GenerateUUID derives a deterministic UUID (v5 style) from the input
// strings, used for stable cache keys across processes.
func GenerateUUID(inputs ...string) (string, error) {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	combined := ""
	for _, input := range inputs {
		combined += input
	}

	deterministicUUID := uuid.NewMD5(namespace, []byte(combined))

	return deterministicUUID.String(), nil
}

// Close closes the Redis client connection.
func (r *RedisHandler) Close() error {
	return r.client.Close()
}
