package repository

import (
	"context"
	"database/sql"
	"errors"

	"secure-doc-gateway/config"
	"secure-doc-gateway/internal/model"
	"secure-doc-gateway/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type DocumentRepository struct {
	*config.Database
}

func NewDocumentRepository(database *config.Database) *DocumentRepository {
	return &DocumentRepository{database}
}

const documentColumns = `
	id, owner_uuid, filename_original, mime_type, size_bytes, storage_bucket, storage_key,
	moderation_status, scan_status, risk_level,
	enc_alg, enc_iv, enc_key_id, enc_wrapped_key, enc_wrap_iv, enc_wrap_tag,
	created_at, updated_at`

// GetByID : документ по id, model.ErrNotFound если нет
func (r *DocumentRepository) GetByID(ctx context.Context, exec sqlx.ExtContext, documentID string) (*model.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	var document model.Document
	if err := sqlx.GetContext(ctx, exec, &document, query, documentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) || missingReference(err) {
			return nil, model.ErrNotFound
		}
		return nil, util.LogError("[DocumentRepo] ошибка получения документа", err)
	}

	return &document, nil
}

// ListByKeyID : пачка документов, чей ключ данных обёрнут мастер-ключом keyID
func (r *DocumentRepository) ListByKeyID(ctx context.Context, exec sqlx.ExtContext, keyID string, limit int) ([]model.Document, error) {
	query := `SELECT ` + documentColumns + `
		FROM documents
		WHERE enc_key_id = $1
		ORDER BY id
		LIMIT $2`

	docs := []model.Document{}
	if err := sqlx.SelectContext(ctx, exec, &docs, query, keyID, limit); err != nil {
		return nil, util.LogError("[DocumentRepo] ошибка выборки документов по ключу", err)
	}
	return docs, nil
}

func (r *DocumentRepository) CountByKeyID(ctx context.Context, exec sqlx.ExtContext, keyID string) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, exec, &count, `SELECT count(*) FROM documents WHERE enc_key_id = $1`, keyID); err != nil {
		return 0, util.LogError("[DocumentRepo] ошибка подсчёта документов по ключу", err)
	}
	return count, nil
}

// RewrapKey : сохраняет новую обёртку ключа данных, только если документ всё ещё на fromKeyID.
// false означает, что документ уже перенесён кем-то другим
func (r *DocumentRepository) RewrapKey(ctx context.Context, exec sqlx.ExtContext, documentID, fromKeyID string, envelope *model.Envelope) (bool, error) {
	query := `
		UPDATE documents
		SET enc_key_id = $3, enc_wrapped_key = $4, enc_wrap_iv = $5, enc_wrap_tag = $6, updated_at = now()
		WHERE id = $1 AND enc_key_id = $2
	`
	result, err := exec.ExecContext(ctx, query,
		documentID, fromKeyID, envelope.KeyID, envelope.WrappedKey, envelope.WrapIV, envelope.WrapTag)
	if err != nil {
		return false, util.LogError("[DocumentRepo] ошибка сохранения новой обёртки ключа", err)
	}

	return affectedOne(result)
}

// Seal : записывает весь набор полей шифрования и новый ключ объекта одним запросом.
// Срабатывает только для ещё не зашифрованного документа
func (r *DocumentRepository) Seal(ctx context.Context, exec sqlx.ExtContext, documentID, storageKey string, envelope *model.Envelope) (bool, error) {
	query := `
		UPDATE documents
		SET enc_alg = $2, enc_iv = $3, enc_key_id = $4, enc_wrapped_key = $5, enc_wrap_iv = $6, enc_wrap_tag = $7,
		    storage_key = $8, updated_at = now()
		WHERE id = $1 AND enc_key_id IS NULL
	`
	result, err := exec.ExecContext(ctx, query,
		documentID, envelope.Alg, envelope.IV, envelope.KeyID, envelope.WrappedKey, envelope.WrapIV, envelope.WrapTag, storageKey)
	if err != nil {
		return false, util.LogError("[DocumentRepo] ошибка сохранения полей шифрования", err)
	}

	return affectedOne(result)
}

func (r *DocumentRepository) SetScanStatus(ctx context.Context, exec sqlx.ExtContext, documentID string, status model.ScanStatus) error {
	_, err := exec.ExecContext(ctx,
		`UPDATE documents SET scan_status = $2, updated_at = now() WHERE id = $1`, documentID, status)
	if err != nil {
		return util.LogError("[DocumentRepo] ошибка обновления статуса проверки", err)
	}
	return nil
}

// ApplyScanOutcome : результат успешной проверки
func (r *DocumentRepository) ApplyScanOutcome(ctx context.Context, exec sqlx.ExtContext, documentID string, status model.ScanStatus, risk model.RiskLevel) error {
	_, err := exec.ExecContext(ctx,
		`UPDATE documents SET scan_status = $2, risk_level = $3, updated_at = now() WHERE id = $1`,
		documentID, status, risk)
	if err != nil {
		return util.LogError("[DocumentRepo] ошибка записи результата проверки", err)
	}
	return nil
}

// MarkScanError : scan_status = error, если документ не под модерационной блокировкой
func (r *DocumentRepository) MarkScanError(ctx context.Context, exec sqlx.ExtContext, documentID string) (bool, error) {
	query := `
		UPDATE documents
		SET scan_status = 'error', updated_at = now()
		WHERE id = $1 AND moderation_status NOT IN ('disabled', 'quarantined', 'deleted')
	`
	result, err := exec.ExecContext(ctx, query, documentID)
	if err != nil {
		return false, util.LogError("[DocumentRepo] ошибка записи ошибки проверки", err)
	}

	return affectedOne(result)
}

// RequeueRunning : возвращает документ из running в queued перед повтором задачи. Другие статусы не трогает
func (r *DocumentRepository) RequeueRunning(ctx context.Context, exec sqlx.ExtContext, documentID string) (bool, error) {
	result, err := exec.ExecContext(ctx,
		`UPDATE documents SET scan_status = 'queued', updated_at = now() WHERE id = $1 AND scan_status = 'running'`,
		documentID)
	if err != nil {
		return false, util.LogError("[DocumentRepo] ошибка возврата документа в очередь", err)
	}

	return affectedOne(result)
}

func (r *DocumentRepository) BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return tx, tx.Rollback, tx.Commit, nil
}

// missingReference : внешний ключ не найден или id не является uuid. Для клиента это то же, что отсутствие строки
func missingReference(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23503" || pqErr.Code == "22P02"
}

func affectedOne(result sql.Result) (bool, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return false, util.LogError("не удалось получить число изменённых строк", err)
	}
	return rows == 1, nil
}
