package repository

import (
	"context"

	"secure-doc-gateway/config"
	"secure-doc-gateway/internal/model"
	"secure-doc-gateway/internal/util"

	"github.com/jmoiron/sqlx"
)

type QuarantineRepository struct {
	*config.Database
}

func NewQuarantineRepository(database *config.Database) *QuarantineRepository {
	return &QuarantineRepository{database}
}

func (r *QuarantineRepository) Create(ctx context.Context, exec sqlx.ExtContext, override *model.QuarantineOverride) error {
	query := `
		INSERT INTO quarantine_overrides (id, document_id, expires_at, actor, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := exec.QueryRowxContext(ctx, query,
		override.ID, override.DocumentID, override.ExpiresAt, override.Actor, override.Reason,
	).Scan(&override.CreatedAt)
	if err != nil {
		return util.LogError("[QuarantineRepo] ошибка сохранения override", err)
	}
	return nil
}

// HasActive : есть ли у документа неистёкший override
func (r *QuarantineRepository) HasActive(ctx context.Context, exec sqlx.ExtContext, documentID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM quarantine_overrides WHERE document_id = $1 AND expires_at > now())`
	if err := sqlx.GetContext(ctx, exec, &exists, query, documentID); err != nil {
		return false, util.LogError("[QuarantineRepo] ошибка проверки override", err)
	}
	return exists, nil
}

func (r *QuarantineRepository) DeleteActive(ctx context.Context, exec sqlx.ExtContext, documentID string) (int64, error) {
	result, err := exec.ExecContext(ctx,
		`DELETE FROM quarantine_overrides WHERE document_id = $1 AND expires_at > now()`, documentID)
	if err != nil {
		return 0, util.LogError("[QuarantineRepo] ошибка удаления override", err)
	}
	return result.RowsAffected()
}
