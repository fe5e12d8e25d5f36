package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"secure-doc-gateway/config"
	"secure-doc-gateway/internal/model"
	"secure-doc-gateway/internal/util"

	"github.com/jmoiron/sqlx"
)

type TicketRepository struct {
	*config.Database
}

func NewTicketRepository(database *config.Database) *TicketRepository {
	return &TicketRepository{database}
}

// Insert : сохраняет тикет. expires_at считается часами БД, теми же, что сравниваются при погашении
func (r *TicketRepository) Insert(ctx context.Context, exec sqlx.ExtContext, ticket *model.AccessTicket, ttl time.Duration) error {
	query := `
		INSERT INTO access_tickets (id, document_id, share_id, purpose, content_type, content_disposition,
		                            storage_bucket, storage_key, ip_hash, ua_hash, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now() + ($11::bigint * interval '1 millisecond'))
		RETURNING expires_at, created_at
	`
	err := exec.QueryRowxContext(ctx, query,
		ticket.ID,
		ticket.DocumentID,
		ticket.ShareID,
		ticket.Purpose,
		ticket.ContentType,
		ticket.ContentDisposition,
		ticket.StorageBucket,
		ticket.StorageKey,
		ticket.IPHash,
		ticket.UAHash,
		ttl.Milliseconds(),
	).Scan(&ticket.ExpiresAt, &ticket.CreatedAt)
	if err != nil {
		return util.LogError("[TicketRepo] ошибка сохранения тикета", err)
	}

	return nil
}

// Redeem : гасит тикет одним условным UPDATE. Из конкурентных вызовов успешен ровно один,
// остальные (как и просроченные/чужие тикеты) получают model.ErrNotFound
func (r *TicketRepository) Redeem(ctx context.Context, exec sqlx.ExtContext, ticketID, ipHash, uaHash string) (*model.AccessTicket, error) {
	query := `
		UPDATE access_tickets
		SET used_at = now()
		WHERE id = $1
		  AND used_at IS NULL
		  AND expires_at > now()
		  AND (ip_hash IS NULL OR ip_hash = $2)
		  AND (ua_hash IS NULL OR ua_hash = $3)
		RETURNING id, document_id, share_id, purpose, content_type, content_disposition,
		          storage_bucket, storage_key, ip_hash, ua_hash, expires_at, used_at, created_at
	`
	var ticket model.AccessTicket
	if err := sqlx.GetContext(ctx, exec, &ticket, query, ticketID, ipHash, uaHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, util.LogError("[TicketRepo] ошибка погашения тикета", err)
	}

	return &ticket, nil
}

// PurgeBefore : удаляет погашенные и просроченные тикеты старше before
func (r *TicketRepository) PurgeBefore(ctx context.Context, exec sqlx.ExtContext, before time.Time) (int64, error) {
	result, err := exec.ExecContext(ctx, `DELETE FROM access_tickets WHERE expires_at < $1`, before)
	if err != nil {
		return 0, util.LogError("[TicketRepo] ошибка очистки тикетов", err)
	}
	return result.RowsAffected()
}
