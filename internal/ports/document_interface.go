package ports

import (
	"context"

	"secure-doc-gateway/internal/model"

	"github.com/jmoiron/sqlx"
)

// DocumentRepository : SQL слой документов. Каждая изменяющая операция выражена одним условным запросом
type DocumentRepository interface {
	GetByID(ctx context.Context, exec sqlx.ExtContext, documentID string) (*model.Document, error)
	ListByKeyID(ctx context.Context, exec sqlx.ExtContext, keyID string, limit int) ([]model.Document, error)
	CountByKeyID(ctx context.Context, exec sqlx.ExtContext, keyID string) (int, error)
	RewrapKey(ctx context.Context, exec sqlx.ExtContext, documentID, fromKeyID string, envelope *model.Envelope) (bool, error)
	Seal(ctx context.Context, exec sqlx.ExtContext, documentID, storageKey string, envelope *model.Envelope) (bool, error)
	SetScanStatus(ctx context.Context, exec sqlx.ExtContext, documentID string, status model.ScanStatus) error
	ApplyScanOutcome(ctx context.Context, exec sqlx.ExtContext, documentID string, status model.ScanStatus, risk model.RiskLevel) error
	MarkScanError(ctx context.Context, exec sqlx.ExtContext, documentID string) (bool, error)
	RequeueRunning(ctx context.Context, exec sqlx.ExtContext, documentID string) (bool, error)
	BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error)
}

// QuarantineRepository : временные разрешения для документов на карантине
type QuarantineRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, override *model.QuarantineOverride) error
	HasActive(ctx context.Context, exec sqlx.ExtContext, documentID string) (bool, error)
	DeleteActive(ctx context.Context, exec sqlx.ExtContext, documentID string) (int64, error)
}

// KeyProvider : набор мастер-ключей, загруженный при старте
type KeyProvider interface {
	Active() (*model.MasterKey, error)
	ByID(keyID string) (*model.MasterKey, error)
}

// EncryptionService : конвертное шифрование тел документов
type EncryptionService interface {
	DecryptDocument(document *model.Document, ciphertext []byte) ([]byte, error)
	RotateDocKeys(ctx context.Context, fromKeyID, toKeyID string, limit int) (*model.RotationResult, error)
	RotateAll(ctx context.Context, fromKeyID, toKeyID string, batchSize int) (*model.RotationResult, int, error)
	SealDocument(ctx context.Context, documentID string) (*model.Document, error)
}

// ModerationService : ручные разрешения модератора
type ModerationService interface {
	GrantOverride(ctx context.Context, documentID, actor, reason string, minutes int) (*model.QuarantineOverride, error)
	RemoveOverrides(ctx context.Context, documentID string) (int64, error)
}
