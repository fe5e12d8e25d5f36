package repository

import (
	"context"
	"database/sql"
	"errors"

	"secure-doc-gateway/config"
	"secure-doc-gateway/internal/model"
	"secure-doc-gateway/internal/util"

	"github.com/jmoiron/sqlx"
)

type ShareRepository struct {
	database *config.Database
}

func NewShareRepository(database *config.Database) *ShareRepository {
	return &ShareRepository{database: database}
}

const shareColumns = `
	id, document_id, owner_uuid, token, alias, expires_at, max_views, views_count, revoked_at,
	password_hash, recipient_email, allow_countries, block_countries, watermark, watermark_text, created_at`

func (r *ShareRepository) GetByToken(ctx context.Context, exec sqlx.ExtContext, token string) (*model.Share, error) {
	return r.getOne(ctx, exec, `SELECT `+shareColumns+` FROM shares WHERE token = $1`, token)
}

func (r *ShareRepository) GetByAlias(ctx context.Context, exec sqlx.ExtContext, alias string) (*model.Share, error) {
	return r.getOne(ctx, exec, `SELECT `+shareColumns+` FROM shares WHERE alias = $1`, alias)
}

func (r *ShareRepository) getOne(ctx context.Context, exec sqlx.ExtContext, query string, arg string) (*model.Share, error) {
	var share model.Share
	if err := sqlx.GetContext(ctx, exec, &share, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, util.LogError("[ShareRepo] ошибка получения шары", err)
	}
	return &share, nil
}

// ConsumeView : условный инкремент просмотров. Проверка и инкремент выполняются одним запросом,
// поэтому при конкурентных запросах успешных инкрементов не больше max_views.
// model.ErrMaxed, если шара исчерпана, отозвана или истекла к моменту запроса
func (r *ShareRepository) ConsumeView(ctx context.Context, exec sqlx.ExtContext, shareID string) (int, error) {
	query := `
		UPDATE shares
		SET views_count = views_count + 1
		WHERE id = $1
		  AND revoked_at IS NULL
		  AND (expires_at IS NULL OR expires_at > now())
		  AND (max_views IS NULL OR views_count < max_views)
		RETURNING views_count
	`
	var views int
	if err := sqlx.GetContext(ctx, exec, &views, query, shareID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, model.ErrMaxed
		}
		return 0, util.LogError("[ShareRepo] ошибка учёта просмотра", err)
	}
	return views, nil
}

// Revoke : отзывает шару. Повторный отзыв возвращает model.ErrNotFound
func (r *ShareRepository) Revoke(ctx context.Context, exec sqlx.ExtContext, token string) (*model.Share, error) {
	query := `
		UPDATE shares
		SET revoked_at = now()
		WHERE token = $1 AND revoked_at IS NULL
		RETURNING ` + shareColumns

	var share model.Share
	if err := sqlx.GetContext(ctx, exec, &share, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, util.LogError("[ShareRepo] ошибка отзыва шары", err)
	}
	return &share, nil
}
