package service

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"secure-doc-gateway/internal/model"
	"secure-doc-gateway/internal/ports"
	"secure-doc-gateway/internal/util"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	DataKeySize = 32
	IVSize      = 12
	TagSize     = 16

	defaultRotationLimit = 100
)

// WrappedKey : ключ данных, зашифрованный мастер-ключом. Тег хранится отдельно от шифртекста
type WrappedKey struct {
	Wrapped []byte
	IV      []byte
	Tag     []byte
}

type EncryptionService struct {
	keys               ports.KeyProvider
	documentRepository ports.DocumentRepository
	storage            ports.ObjectStorage
	db                 sqlx.ExtContext
}

func NewEncryptionService(
	keys ports.KeyProvider,
	documentRepository ports.DocumentRepository,
	storage ports.ObjectStorage,
	db sqlx.ExtContext,
) *EncryptionService {
	return &EncryptionService{
		keys:               keys,
		documentRepository: documentRepository,
		storage:            storage,
		db:                 db,
	}
}

func GenerateDataKey() ([]byte, error) {
	return randomBytes(DataKeySize)
}

// GenerateIV : новый nonce на каждую операцию шифрования
func GenerateIV() ([]byte, error) {
	return randomBytes(IVSize)
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("ошибка генерации случайных байт: %w", err)
	}
	return b, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// WrapDataKey : AES-GCM под мастер-ключом, id ключа входит в AAD
func WrapDataKey(dataKey []byte, masterKey *model.MasterKey) (*WrappedKey, error) {
	if len(dataKey) != DataKeySize {
		return nil, fmt.Errorf("ключ данных должен быть %d байт", DataKeySize)
	}

	aead, err := newGCM(masterKey.Key)
	if err != nil {
		return nil, err
	}

	iv, err := GenerateIV()
	if err != nil {
		return nil, err
	}

	sealed := aead.Seal(nil, iv, dataKey, []byte(masterKey.ID))
	split := len(sealed) - TagSize
	return &WrappedKey{
		Wrapped: sealed[:split],
		IV:      iv,
		Tag:     sealed[split:],
	}, nil
}

func UnwrapDataKey(wrapped *WrappedKey, masterKey *model.MasterKey) ([]byte, error) {
	aead, err := newGCM(masterKey.Key)
	if err != nil {
		return nil, err
	}
	if len(wrapped.IV) != aead.NonceSize() || len(wrapped.Tag) != TagSize {
		return nil, errors.New("некорректная обёртка ключа данных")
	}

	sealed := make([]byte, 0, len(wrapped.Wrapped)+len(wrapped.Tag))
	sealed = append(sealed, wrapped.Wrapped...)
	sealed = append(sealed, wrapped.Tag...)

	dataKey, err := aead.Open(nil, wrapped.IV, sealed, []byte(masterKey.ID))
	if err != nil {
		return nil, fmt.Errorf("ошибка развёртывания ключа данных: %w", err)
	}
	return dataKey, nil
}

// Encrypt : шифртекст тела с тегом в конце
func Encrypt(plaintext, iv, dataKey []byte) ([]byte, error) {
	aead, err := newGCM(dataKey)
	if err != nil {
		return nil, err
	}
	if len(iv) != aead.NonceSize() {
		return nil, errors.New("некорректный размер iv")
	}
	return aead.Seal(nil, iv, plaintext, nil), nil
}

func Decrypt(ciphertext, iv, dataKey []byte) ([]byte, error) {
	aead, err := newGCM(dataKey)
	if err != nil {
		return nil, err
	}
	if len(iv) != aead.NonceSize() {
		return nil, errors.New("некорректный размер iv")
	}
	plaintext, err := aead.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка расшифровки: %w", err)
	}
	return plaintext, nil
}

// GetActiveMasterKeyOrThrow : активный неотозванный ключ или фатальная ошибка конфигурации
func (s *EncryptionService) GetActiveMasterKeyOrThrow() (*model.MasterKey, error) {
	return s.keys.Active()
}

// GetMasterKeyByIdOrThrow : отозванный ключ не отдаётся ни для шифрования, ни для расшифровки
func (s *EncryptionService) GetMasterKeyByIdOrThrow(keyID string) (*model.MasterKey, error) {
	return s.keys.ByID(keyID)
}

// DecryptDocument : разворачивает ключ данных документа и расшифровывает тело
func (s *EncryptionService) DecryptDocument(document *model.Document, ciphertext []byte) ([]byte, error) {
	envelope := document.Envelope()
	if envelope == nil {
		return nil, errors.New("документ не зашифрован")
	}
	if envelope.Alg != model.EncryptionAlgorithm {
		return nil, fmt.Errorf("неподдерживаемый алгоритм %s", envelope.Alg)
	}

	masterKey, err := s.GetMasterKeyByIdOrThrow(envelope.KeyID)
	if err != nil {
		return nil, err
	}

	dataKey, err := UnwrapDataKey(&WrappedKey{Wrapped: envelope.WrappedKey, IV: envelope.WrapIV, Tag: envelope.WrapTag}, masterKey)
	if err != nil {
		return nil, err
	}

	return Decrypt(ciphertext, envelope.IV, dataKey)
}

// RotateDocKeys : один ограниченный проход переноса документов с fromKeyID на toKeyID.
// Ошибка на отдельном документе учитывается в Failed и не прерывает проход.
// Remaining пересчитывается запросом, поэтому повторный вызов после полного переноса ничего не делает
func (s *EncryptionService) RotateDocKeys(ctx context.Context, fromKeyID, toKeyID string, limit int) (*model.RotationResult, error) {
	if fromKeyID == toKeyID {
		return nil, fmt.Errorf("%w: исходный и целевой ключи совпадают", model.ErrInvalidRequest)
	}
	if limit <= 0 {
		limit = defaultRotationLimit
	}

	fromKey, err := s.GetMasterKeyByIdOrThrow(fromKeyID)
	if err != nil {
		return nil, err
	}
	toKey, err := s.GetMasterKeyByIdOrThrow(toKeyID)
	if err != nil {
		return nil, err
	}

	docs, err := s.documentRepository.ListByKeyID(ctx, s.db, fromKeyID, limit)
	if err != nil {
		return nil, err
	}

	result := &model.RotationResult{Scanned: len(docs)}
	for i := range docs {
		doc := &docs[i]
		rotated, err := s.rewrap(ctx, doc, fromKey, toKey)
		if err != nil {
			result.Failed++
			zap.L().Warn("[EncryptionService] документ не перенесён на новый ключ",
				zap.String("document_id", doc.ID), zap.Error(err))
			continue
		}
		if rotated {
			result.Rotated++
		}
	}

	remaining, err := s.documentRepository.CountByKeyID(ctx, s.db, fromKeyID)
	if err != nil {
		return nil, err
	}
	result.Remaining = remaining

	zap.L().Info("[EncryptionService] проход ротации ключей",
		zap.String("from", fromKeyID), zap.String("to", toKeyID),
		zap.Int("scanned", result.Scanned), zap.Int("rotated", result.Rotated),
		zap.Int("failed", result.Failed), zap.Int("remaining", result.Remaining))
	return result, nil
}

func (s *EncryptionService) rewrap(ctx context.Context, doc *model.Document, fromKey, toKey *model.MasterKey) (bool, error) {
	envelope := doc.Envelope()
	if envelope == nil {
		return false, errors.New("нет полей шифрования")
	}

	dataKey, err := UnwrapDataKey(&WrappedKey{Wrapped: envelope.WrappedKey, IV: envelope.WrapIV, Tag: envelope.WrapTag}, fromKey)
	if err != nil {
		return false, err
	}

	wrapped, err := WrapDataKey(dataKey, toKey)
	if err != nil {
		return false, err
	}

	envelope.KeyID = toKey.ID
	envelope.WrappedKey = wrapped.Wrapped
	envelope.WrapIV = wrapped.IV
	envelope.WrapTag = wrapped.Tag

	return s.documentRepository.RewrapKey(ctx, s.db, doc.ID, fromKey.ID, envelope)
}

// RotateAll : повторяет проходы, пока документы на fromKeyID не кончатся или проход не перестанет продвигаться
func (s *EncryptionService) RotateAll(ctx context.Context, fromKeyID, toKeyID string, batchSize int) (*model.RotationResult, int, error) {
	total := &model.RotationResult{}
	batches := 0

	for {
		if err := ctx.Err(); err != nil {
			return total, batches, err
		}

		result, err := s.RotateDocKeys(ctx, fromKeyID, toKeyID, batchSize)
		if err != nil {
			return total, batches, err
		}
		batches++

		total.Scanned += result.Scanned
		total.Rotated += result.Rotated
		total.Failed += result.Failed
		total.Remaining = result.Remaining

		if result.Remaining == 0 || result.Rotated == 0 {
			return total, batches, nil
		}
	}
}

// SealDocument : шифрует незашифрованный документ под активным ключом.
// Шифртекст пишется в новый объект, затем одним запросом сохраняются поля шифрования и новый ключ объекта,
// и только после этого удаляется открытый объект
func (s *EncryptionService) SealDocument(ctx context.Context, documentID string) (*model.Document, error) {
	doc, err := s.documentRepository.GetByID(ctx, s.db, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Encrypted() {
		return doc, nil
	}

	masterKey, err := s.GetActiveMasterKeyOrThrow()
	if err != nil {
		return nil, err
	}

	body, _, err := s.storage.GetObject(ctx, doc.StorageBucket, doc.StorageKey, nil)
	if err != nil {
		return nil, err
	}
	plaintext, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		return nil, util.LogError("[EncryptionService] ошибка чтения объекта", err)
	}

	dataKey, err := GenerateDataKey()
	if err != nil {
		return nil, err
	}
	iv, err := GenerateIV()
	if err != nil {
		return nil, err
	}
	ciphertext, err := Encrypt(plaintext, iv, dataKey)
	if err != nil {
		return nil, err
	}
	wrapped, err := WrapDataKey(dataKey, masterKey)
	if err != nil {
		return nil, err
	}

	sealedKey := fmt.Sprintf("%s.sealed-%s", doc.StorageKey, uuid.NewString()[:8])
	if err := s.storage.PutObject(ctx, doc.StorageBucket, sealedKey, ciphertext, "application/octet-stream"); err != nil {
		return nil, err
	}

	envelope := &model.Envelope{
		Alg:        model.EncryptionAlgorithm,
		IV:         iv,
		KeyID:      masterKey.ID,
		WrappedKey: wrapped.Wrapped,
		WrapIV:     wrapped.IV,
		WrapTag:    wrapped.Tag,
	}
	sealed, err := s.documentRepository.Seal(ctx, s.db, doc.ID, sealedKey, envelope)
	if err != nil || !sealed {
		if delErr := s.storage.DeleteObject(ctx, doc.StorageBucket, sealedKey); delErr != nil {
			zap.L().Warn("[EncryptionService] не удалён лишний шифртекст", zap.String("key", sealedKey), zap.Error(delErr))
		}
		if err != nil {
			return nil, err
		}
		return s.documentRepository.GetByID(ctx, s.db, doc.ID)
	}

	if err := s.storage.DeleteObject(ctx, doc.StorageBucket, doc.StorageKey); err != nil {
		zap.L().Warn("[EncryptionService] открытый объект не удалён", zap.String("document_id", doc.ID), zap.Error(err))
	}

	plainKey := doc.StorageKey
	doc.StorageKey = sealedKey
	doc.SetEnvelope(envelope)

	zap.L().Info("[EncryptionService] документ зашифрован",
		zap.String("document_id", doc.ID), zap.String("key_id", masterKey.ID), zap.String("replaced", plainKey))
	return doc, nil
}
