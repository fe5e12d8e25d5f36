package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"secure-doc-gateway/config"
	"secure-doc-gateway/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultEventsChannel = "share-events"

// RedisEventEmitter : события шар уходят PUBLISH в канал Redis, доставку подписчикам обеспечивает внешний сервис
type RedisEventEmitter struct {
	redis   *config.RedisClient
	channel string
	now     func() time.Time
}

func NewRedisEventEmitter(redis *config.RedisClient, channel string) *RedisEventEmitter {
	if channel == "" {
		channel = defaultEventsChannel
	}
	return &RedisEventEmitter{redis: redis, channel: channel, now: time.Now}
}

func (e *RedisEventEmitter) EmitShareCreated(ctx context.Context, share *model.Share, actor string) error {
	return e.publish(ctx, newShareEvent(model.EventShareCreated, share, actor, e.now()))
}

func (e *RedisEventEmitter) EmitShareRevoked(ctx context.Context, share *model.Share, actor string) error {
	return e.publish(ctx, newShareEvent(model.EventShareRevoked, share, actor, e.now()))
}

func (e *RedisEventEmitter) publish(ctx context.Context, event model.ShareEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("ошибка сериализации события: %w", err)
	}
	if err := e.redis.Client.Publish(ctx, e.channel, payload).Err(); err != nil {
		return fmt.Errorf("ошибка публикации события %s: %w", event.Type, err)
	}
	return nil
}

// LogEventEmitter : используется, когда Redis выключен. События только пишутся в лог
type LogEventEmitter struct {
	logger *zap.Logger
	now    func() time.Time
}

func NewLogEventEmitter(logger *zap.Logger) *LogEventEmitter {
	return &LogEventEmitter{logger: logger, now: time.Now}
}

func (e *LogEventEmitter) EmitShareCreated(_ context.Context, share *model.Share, actor string) error {
	e.log(newShareEvent(model.EventShareCreated, share, actor, e.now()))
	return nil
}

func (e *LogEventEmitter) EmitShareRevoked(_ context.Context, share *model.Share, actor string) error {
	e.log(newShareEvent(model.EventShareRevoked, share, actor, e.now()))
	return nil
}

func (e *LogEventEmitter) log(event model.ShareEvent) {
	e.logger.Info("[EventEmitter] событие шары",
		zap.String("event_id", event.ID),
		zap.String("type", event.Type),
		zap.String("share_id", event.ShareID),
		zap.String("document_id", event.DocumentID),
		zap.String("actor", event.Actor))
}

func newShareEvent(eventType string, share *model.Share, actor string, now time.Time) model.ShareEvent {
	return model.ShareEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		ShareID:    share.ID,
		DocumentID: share.DocumentID,
		Actor:      actor,
		OccurredAt: now.UTC(),
	}
}
