// Package conversation persists per-user conversation context in Redis so
// state survives restarts and concurrent webhook deliveries.
package conversation

import (
	"context"
	"encoding/json"
	"time"

	"chairtime/models"

	"github.com/go-redis/redis/v8"
)

const conversationPrefix = "convo:ctx:"

// Store reads and writes conversation context.
type Store interface {
	Get(ctx context.Context, userID string) (*models.Conversation, error)
	Set(ctx context.Context, userID string, conv *models.Conversation) error
	Clear(ctx context.Context, userID string) error
}

// RedisStore implements Store on Redis with a per-conversation TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get loads a conversation, returning a fresh one when none is stored.
func (s *RedisStore) Get(ctx context.Context, userID string) (*models.Conversation, error) {
	key := conversationPrefix + userID
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return models.NewConversation(), nil
	}
	if err != nil {
		return nil, err
	}
	var conv models.Conversation
	if err := json.Unmarshal([]byte(data), &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *RedisStore) Set(ctx context.Context, userID string, conv *models.Conversation) error {
	key := conversationPrefix + userID
	b, err := json.Marshal(conv)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, s.ttl).Err()
}

func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	key := conversationPrefix + userID
	return s.client.Del(ctx, key).Err()
}
