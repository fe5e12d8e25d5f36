package repository

import (
	"context"
	"fmt"
	"time"

	"secure-doc-gateway/config"
	"secure-doc-gateway/internal/util"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimitRepository : те же счётчики окна в Redis, ключ живёт не дольше окна
type RedisRateLimitRepository struct {
	client *redis.Client
}

func NewRedisRateLimitRepository(rdb *config.RedisClient) *RedisRateLimitRepository {
	return &RedisRateLimitRepository{client: rdb.Client}
}

func (r *RedisRateLimitRepository) Increment(ctx context.Context, scope, identity string, bucket int64, window time.Duration) (int, error) {
	key := r.key(scope, identity, bucket)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, util.LogError("[RateLimitRedis] ошибка инкремента счётчика", err)
	}

	return int(incr.Val()), nil
}

// PurgeBefore : ключи истекают сами
func (r *RedisRateLimitRepository) PurgeBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (r *RedisRateLimitRepository) key(scope, identity string, bucket int64) string {
	return fmt.Sprintf("rate_limit:%s:%s:%d", scope, identity, bucket)
}
