package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisTokenKey = "tripmate:" + TokenKey

// RedisTokenStore keeps the token in a Redis string without expiry, so it
// survives restarts of the local UI until logout.
type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(ctx context.Context, addr string, db int) (*RedisTokenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return &RedisTokenStore{client: client}, nil
}

func (s *RedisTokenStore) Load(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, redisTokenKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get token: %w", err)
	}
	return token, nil
}

func (s *RedisTokenStore) Save(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, redisTokenKey, token, 0).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, redisTokenKey).Err(); err != nil {
		return fmt.Errorf("redis del token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Close() error {
	return s.client.Close()
}
