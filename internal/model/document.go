package model

import "time"

type ModerationStatus string

const (
	ModerationActive      ModerationStatus = "active"
	ModerationQuarantined ModerationStatus = "quarantined"
	ModerationDisabled    ModerationStatus = "disabled"
	ModerationDeleted     ModerationStatus = "deleted"
)

type ScanStatus string

const (
	ScanUnscanned   ScanStatus = "unscanned"
	ScanQueued      ScanStatus = "queued"
	ScanRunning     ScanStatus = "running"
	ScanClean       ScanStatus = "clean"
	ScanRisky       ScanStatus = "risky"
	ScanQuarantined ScanStatus = "quarantined"
	ScanError       ScanStatus = "error"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// EncryptionAlgorithm : единственный поддерживаемый алгоритм тела документа
const EncryptionAlgorithm = "AES-256-GCM"

type Document struct {
	ID               string           `db:"id" json:"id"`
	OwnerUUID        string           `db:"owner_uuid" json:"owner_uuid"`
	FilenameOriginal string           `db:"filename_original" json:"filename_original"`
	MimeType         string           `db:"mime_type" json:"mime_type"`
	SizeBytes        int64            `db:"size_bytes" json:"size_bytes"`
	StorageBucket    string           `db:"storage_bucket" json:"-"`
	StorageKey       string           `db:"storage_key" json:"-"`
	ModerationStatus ModerationStatus `db:"moderation_status" json:"moderation_status"`
	ScanStatus       ScanStatus       `db:"scan_status" json:"scan_status"`
	RiskLevel        RiskLevel        `db:"risk_level" json:"risk_level"`

	EncAlg        *string `db:"enc_alg" json:"-"`
	EncIV         []byte  `db:"enc_iv" json:"-"`
	EncKeyID      *string `db:"enc_key_id" json:"-"`
	EncWrappedKey []byte  `db:"enc_wrapped_key" json:"-"`
	EncWrapIV     []byte  `db:"enc_wrap_iv" json:"-"`
	EncWrapTag    []byte  `db:"enc_wrap_tag" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Envelope : набор полей шифрования документа. Хранится целиком или не хранится вовсе
type Envelope struct {
	Alg        string
	IV         []byte
	KeyID      string
	WrappedKey []byte
	WrapIV     []byte
	WrapTag    []byte
}

// Encrypted : тело объекта в хранилище является шифртекстом
func (d *Document) Encrypted() bool {
	return d.EncKeyID != nil && d.EncAlg != nil
}

// Envelope : nil, если документ не зашифрован
func (d *Document) Envelope() *Envelope {
	if !d.Encrypted() {
		return nil
	}
	return &Envelope{
		Alg:        *d.EncAlg,
		IV:         d.EncIV,
		KeyID:      *d.EncKeyID,
		WrappedKey: d.EncWrappedKey,
		WrapIV:     d.EncWrapIV,
		WrapTag:    d.EncWrapTag,
	}
}

// SetEnvelope : заполняет все поля шифрования разом
func (d *Document) SetEnvelope(e *Envelope) {
	alg, keyID := e.Alg, e.KeyID
	d.EncAlg = &alg
	d.EncIV = e.IV
	d.EncKeyID = &keyID
	d.EncWrappedKey = e.WrappedKey
	d.EncWrapIV = e.WrapIV
	d.EncWrapTag = e.WrapTag
}

// ModerationBlocked : модерация запрещает отдачу. Карантин снимается только действующим override
func (d *Document) ModerationBlocked(hasOverride bool) bool {
	switch d.ModerationStatus {
	case ModerationDisabled, ModerationDeleted:
		return true
	case ModerationQuarantined:
		return !hasOverride
	default:
		return false
	}
}

// ModerationHeld : документ под модерационной блокировкой, статус скана не перезаписывается ошибками
func (d *Document) ModerationHeld() bool {
	return d.ModerationStatus == ModerationDisabled ||
		d.ModerationStatus == ModerationQuarantined ||
		d.ModerationStatus == ModerationDeleted
}

// ScanBlocking : результат проверки сам по себе запрещает отдачу
func (d *Document) ScanBlocking() bool {
	switch d.ScanStatus {
	case ScanQuarantined, ScanError:
		return true
	case ScanRisky:
		return d.RiskLevel == RiskHigh
	default:
		return false
	}
}
