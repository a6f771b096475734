package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"basera/internal/config"
	"basera/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisConversationRepository stores conversations as JSON with a TTL so an
// abandoned chat eventually evaporates. Redis is a cache of process state
// here, not durable storage.
type RedisConversationRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisConversationRepository(client *redis.Client, ttl time.Duration) *RedisConversationRepository {
	return &RedisConversationRepository{client: client, ttl: ttl}
}

func (r *RedisConversationRepository) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	key := conversationKey(id)
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation from redis: %w", err)
	}

	var conv models.Conversation
	if err := json.Unmarshal([]byte(val), &conv); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}

	return &conv, nil
}

func (r *RedisConversationRepository) SaveConversation(ctx context.Context, conv *models.Conversation) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	conv.UpdatedAt = time.Now()
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	if err := r.client.Set(ctx, conversationKey(conv.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set conversation in redis: %w", err)
	}

	return nil
}

func (r *RedisConversationRepository) DeleteConversation(ctx context.Context, id string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, conversationKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete conversation from redis: %w", err)
	}
	return nil
}

func (r *RedisConversationRepository) CheckRateLimit(ctx context.Context, id string, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	key := fmt.Sprintf("rate_limit:%s", id)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		r.client.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}

func conversationKey(id string) string {
	return fmt.Sprintf("conversation:%s", id)
}

// Ping checks the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
