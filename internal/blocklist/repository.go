package blocklist

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"smsrelay/internal/constants"
)

type Repository interface {
	Exists(ctx context.Context, phoneNumber string) (bool, error)
	Set(ctx context.Context, phoneNumber string) error
	Delete(ctx context.Context, phoneNumber string) error
}

type RedisRepository struct {
	client *redis.Client
}

func NewRepository(client *redis.Client) Repository {
	return &RedisRepository{client: client}
}

func cacheKey(phoneNumber string) string {
	return constants.CacheKeyPrefixBlocklist + phoneNumber
}

func (r *RedisRepository) Exists(ctx context.Context, phoneNumber string) (bool, error) {
	n, err := r.client.Exists(ctx, cacheKey(phoneNumber)).Result()
	if err != nil {
		return false, fmt.Errorf("redis EXISTS failed: %w", err)
	}
	return n > 0, nil
}

// Set marks a recipient blocked. Only key presence carries meaning, so
// writing an already blocked recipient is a harmless overwrite.
func (r *RedisRepository) Set(ctx context.Context, phoneNumber string) error {
	if err := r.client.Set(ctx, cacheKey(phoneNumber), "1", 0).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, phoneNumber string) error {
	if err := r.client.Del(ctx, cacheKey(phoneNumber)).Err(); err != nil {
		return fmt.Errorf("redis DEL failed: %w", err)
	}
	return nil
}
