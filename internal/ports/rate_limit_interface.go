package ports

import (
	"context"
	"time"

	"secure-doc-gateway/internal/model"
)

// RateLimitStore : счётчики фиксированного окна. Increment атомарно увеличивает и возвращает новое значение
type RateLimitStore interface {
	Increment(ctx context.Context, scope, identity string, bucket int64, window time.Duration) (int, error)
	PurgeBefore(ctx context.Context, before time.Time) (int64, error)
}

type RateLimiter interface {
	Check(ctx context.Context, scope, identity string) (*model.RateDecision, error)
}
