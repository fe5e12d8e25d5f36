package service

import (
	"bytes"
	"context"
	"io"

	"secure-doc-gateway/internal/logger"
	"secure-doc-gateway/internal/model"
	"secure-doc-gateway/internal/ports"
	"secure-doc-gateway/internal/util"

	"go.uber.org/zap"
)

// DeliveryService : отдача тела документа. Зашифрованные объекты читаются целиком и расшифровываются,
// открытые проксируются как есть, если политика это разрешает
type DeliveryService struct {
	storage             ports.ObjectStorage
	encryption          ports.EncryptionService
	allowPlaintextProxy bool
}

func NewDeliveryService(storage ports.ObjectStorage, encryption ports.EncryptionService, allowPlaintextProxy bool) *DeliveryService {
	return &DeliveryService{
		storage:             storage,
		encryption:          encryption,
		allowPlaintextProxy: allowPlaintextProxy,
	}
}

// Deliverable : проверка политики без обращения к хранилищу
func (s *DeliveryService) Deliverable(document *model.Document) error {
	if document.Encrypted() || s.allowPlaintextProxy {
		return nil
	}
	logger.Security().Warn("[DeliveryService] отдача незашифрованного объекта запрещена политикой",
		zap.String("document_id", document.ID))
	return model.ErrPolicyBlocked
}

func (s *DeliveryService) Open(ctx context.Context, document *model.Document, byteRange *model.ByteRange) (*model.Content, error) {
	if err := s.Deliverable(document); err != nil {
		return nil, err
	}
	if document.Encrypted() {
		return s.openEncrypted(ctx, document, byteRange)
	}
	return s.openPlain(ctx, document, byteRange)
}

func (s *DeliveryService) openEncrypted(ctx context.Context, document *model.Document, byteRange *model.ByteRange) (*model.Content, error) {
	body, _, err := s.storage.GetObject(ctx, document.StorageBucket, document.StorageKey, nil)
	if err != nil {
		return nil, err
	}
	ciphertext, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		return nil, util.LogError("[DeliveryService] ошибка чтения шифртекста", err)
	}

	plaintext, err := s.encryption.DecryptDocument(document, ciphertext)
	if err != nil {
		return nil, err
	}

	total := int64(len(plaintext))
	content := &model.Content{
		Total:       total,
		ContentType: document.MimeType,
		Decrypted:   true,
	}

	// GCM не даёт произвольного доступа, диапазон вырезается из расшифрованного буфера
	resolved, err := ResolveRange(byteRange, total)
	if err != nil {
		return nil, err
	}
	if resolved == nil {
		content.Body = io.NopCloser(bytes.NewReader(plaintext))
		content.Length = total
		return content, nil
	}

	content.Body = io.NopCloser(bytes.NewReader(plaintext[resolved.Start : resolved.End+1]))
	content.Start = resolved.Start
	content.Length = resolved.End - resolved.Start + 1
	content.Partial = true
	return content, nil
}

func (s *DeliveryService) openPlain(ctx context.Context, document *model.Document, byteRange *model.ByteRange) (*model.Content, error) {
	var resolved *model.ByteRange
	if byteRange != nil {
		info, err := s.storage.HeadObject(ctx, document.StorageBucket, document.StorageKey)
		if err != nil {
			return nil, err
		}
		resolved, err = ResolveRange(byteRange, info.Size)
		if err != nil {
			return nil, err
		}
	}

	body, info, err := s.storage.GetObject(ctx, document.StorageBucket, document.StorageKey, resolved)
	if err != nil {
		return nil, err
	}

	contentType := document.MimeType
	if contentType == "" {
		contentType = info.ContentType
	}
	content := &model.Content{
		Body:        body,
		Total:       info.Size,
		ContentType: contentType,
	}
	if resolved == nil {
		content.Length = info.Size
		return content, nil
	}

	content.Start = resolved.Start
	content.Length = resolved.End - resolved.Start + 1
	content.Partial = true
	return content, nil
}
