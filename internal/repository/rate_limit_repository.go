package repository

import (
	"context"
	"time"

	"secure-doc-gateway/config"
	"secure-doc-gateway/internal/util"

	"github.com/jmoiron/sqlx"
)

// RateLimitRepository : счётчики фиксированного окна в Postgres
type RateLimitRepository struct {
	exec sqlx.ExtContext
}

func NewRateLimitRepository(database *config.Database) *RateLimitRepository {
	return &RateLimitRepository{exec: database}
}

// Increment : upsert + инкремент счётчика окна одним запросом, возвращает новое значение
func (r *RateLimitRepository) Increment(ctx context.Context, scope, identity string, bucket int64, _ time.Duration) (int, error) {
	query := `
		INSERT INTO rate_limits (scope, identity, bucket, count, updated_at)
		VALUES ($1, $2, $3, 1, now())
		ON CONFLICT (scope, identity, bucket)
		DO UPDATE SET count = rate_limits.count + 1, updated_at = now()
		RETURNING count
	`
	var count int
	if err := sqlx.GetContext(ctx, r.exec, &count, query, scope, identity, bucket); err != nil {
		return 0, util.LogError("[RateLimitRepo] ошибка инкремента счётчика", err)
	}
	return count, nil
}

func (r *RateLimitRepository) PurgeBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.exec.ExecContext(ctx, `DELETE FROM rate_limits WHERE updated_at < $1`, before)
	if err != nil {
		return 0, util.LogError("[RateLimitRepo] ошибка очистки счётчиков", err)
	}
	return result.RowsAffected()
}
