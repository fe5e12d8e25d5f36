package service

import (
	"context"
	"time"

	"secure-doc-gateway/config"
	"secure-doc-gateway/internal/logger"
	"secure-doc-gateway/internal/model"
	"secure-doc-gateway/internal/ports"

	"go.uber.org/zap"
)

// RateLimiterService : фиксированное окно, bucket = floor(now / window)
type RateLimiterService struct {
	store ports.RateLimitStore
	rules config.RateLimitConfig
	now   func() time.Time
}

func NewRateLimiterService(store ports.RateLimitStore, rules config.RateLimitConfig) *RateLimiterService {
	return &RateLimiterService{store: store, rules: rules, now: time.Now}
}

// Check : правило области берётся из конфигурации
func (s *RateLimiterService) Check(ctx context.Context, scope, identity string) (*model.RateDecision, error) {
	rule := s.rules.Rule(scope)
	return s.CheckRule(ctx, scope, identity, rule.Limit, time.Duration(rule.WindowSeconds)*time.Second, rule.FailClosed)
}

// CheckRule : превышение лимита возвращает ErrRateLimited. При недоступном хранилище решение
// определяет failClosed, а ошибка ErrStoreUnavailable возвращается вместе с решением
func (s *RateLimiterService) CheckRule(ctx context.Context, scope, identity string, limit int, window time.Duration, failClosed bool) (*model.RateDecision, error) {
	now := s.now()
	windowSeconds := int64(window / time.Second)
	if windowSeconds <= 0 {
		windowSeconds = 1
	}
	bucket := now.Unix() / windowSeconds
	reset := int((bucket+1)*windowSeconds - now.Unix())

	decision := &model.RateDecision{Limit: limit, ResetSeconds: reset}

	count, err := s.store.Increment(ctx, scope, identity, bucket, time.Duration(windowSeconds)*time.Second)
	if err != nil {
		decision.Degraded = true
		decision.Allowed = !failClosed
		if decision.Allowed {
			decision.Remaining = limit
		}
		logger.Security().Warn("[RateLimiter] хранилище счётчиков недоступно",
			zap.String("scope", scope), zap.Bool("fail_closed", failClosed), zap.Error(err))
		return decision, model.ErrStoreUnavailable
	}

	if remaining := limit - count; remaining > 0 {
		decision.Remaining = remaining
	}
	if count > limit {
		return decision, model.ErrRateLimited
	}

	decision.Allowed = true
	return decision, nil
}

// PurgeBefore : очистка старых окон (для health-прохода)
func (s *RateLimiterService) PurgeBefore(ctx context.Context, before time.Time) (int64, error) {
	return s.store.PurgeBefore(ctx, before)
}
