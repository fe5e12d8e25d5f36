package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"secure-doc-gateway/internal/logger"
	"secure-doc-gateway/internal/model"
	"secure-doc-gateway/internal/ports"
	"secure-doc-gateway/internal/util"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// AccessLog : одна строка на запрос. Токены из пути не пишутся, только шаблон маршрута
func AccessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info("[HTTP] запрос",
				zap.String("method", r.Method),
				zap.String("route", routePattern(r)),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(started)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// RateGuard : проверка лимита в обработчиках. Область и идентичность выбирает вызывающий
type RateGuard struct {
	limiter ports.RateLimiter
}

func NewRateGuard(limiter ports.RateLimiter) *RateGuard {
	return &RateGuard{limiter: limiter}
}

// Allow : false означает, что ответ уже записан. Недоступное хранилище в fail-closed области
// считается превышением лимита (429), прочие ошибки дают 503
func (g *RateGuard) Allow(ctx context.Context, w http.ResponseWriter, scope, identity string) bool {
	decision, err := g.limiter.Check(ctx, scope, identity)
	if decision != nil {
		writeRateHeaders(w, decision)
	}

	switch {
	case decision != nil && decision.Allowed:
		return true
	case errors.Is(err, model.ErrRateLimited), decision != nil && errors.Is(err, model.ErrStoreUnavailable):
		logger.Security().Info("[RateGuard] лимит превышен",
			zap.String("scope", scope), zap.Bool("degraded", decision != nil && decision.Degraded))
		util.HandleError(w, "слишком много запросов", http.StatusTooManyRequests)
		return false
	default:
		logger.Security().Error("[RateGuard] ошибка проверки лимита", zap.String("scope", scope), zap.Error(err))
		util.HandleError(w, "сервис временно недоступен", http.StatusServiceUnavailable)
		return false
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
