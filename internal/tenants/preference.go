package tenants

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const rememberedKeyPrefix = "dashboard:last_client:"

// RedisPreferences keeps the last selected tenant per identity.
type RedisPreferences struct {
	client *redis.Client
}

func NewRedisPreferences(client *redis.Client) *RedisPreferences {
	return &RedisPreferences{client: client}
}

func (p *RedisPreferences) Remembered(ctx context.Context, userID uuid.UUID) (string, error) {
	value, err := p.client.Get(ctx, rememberedKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return value, err
}

func (p *RedisPreferences) Remember(ctx context.Context, userID uuid.UUID, tenant string) error {
	return p.client.Set(ctx, rememberedKey(userID), tenant, 0).Err()
}

func (p *RedisPreferences) Forget(ctx context.Context, userID uuid.UUID) error {
	return p.client.Del(ctx, rememberedKey(userID)).Err()
}

func rememberedKey(userID uuid.UUID) string {
	return rememberedKeyPrefix + userID.String()
}
