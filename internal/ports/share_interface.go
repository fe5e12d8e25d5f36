package ports

import (
	"context"

	"secure-doc-gateway/internal/model"

	"github.com/jmoiron/sqlx"
)

type ShareRepository interface {
	GetByToken(ctx context.Context, exec sqlx.ExtContext, token string) (*model.Share, error)
	GetByAlias(ctx context.Context, exec sqlx.ExtContext, alias string) (*model.Share, error)
	ConsumeView(ctx context.Context, exec sqlx.ExtContext, shareID string) (int, error)
	Revoke(ctx context.Context, exec sqlx.ExtContext, token string) (*model.Share, error)
}

// ResolverService : единая точка, выдающая вердикт по токену или алиасу
type ResolverService interface {
	ResolveToken(ctx context.Context, token string, credentials model.Credentials) *model.Resolution
	ResolveAlias(ctx context.Context, alias string, credentials model.Credentials) *model.Resolution
	ConsumeView(ctx context.Context, share *model.Share) error
}

// ShareService : действия над шарой, не требующие вердикта резолвера
type ShareService interface {
	Unlock(ctx context.Context, token, password string) (*model.Share, error)
	VerifyEmail(ctx context.Context, token, email string) (*model.Share, error)
	Revoke(ctx context.Context, token, actorUUID string, isAdmin bool) (*model.Share, error)
}

// EventEmitter : исходящие события о шарах, доставка вне зоны ответственности
type EventEmitter interface {
	EmitShareCreated(ctx context.Context, share *model.Share, actor string) error
	EmitShareRevoked(ctx context.Context, share *model.Share, actor string) error
}
