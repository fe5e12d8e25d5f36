package service

import (
	"context"
	"fmt"
	"time"

	"secure-doc-gateway/internal/model"
	"secure-doc-gateway/internal/ports"
	"secure-doc-gateway/internal/util"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const maxOverrideMinutes = 7 * 24 * 60

// ModerationService : override не меняет moderation_status, только открывает выдачу на время
type ModerationService struct {
	documentRepository   ports.DocumentRepository
	quarantineRepository ports.QuarantineRepository
	db                   sqlx.ExtContext
	now                  func() time.Time
}

func NewModerationService(documentRepository ports.DocumentRepository, quarantineRepository ports.QuarantineRepository, db sqlx.ExtContext) *ModerationService {
	return &ModerationService{
		documentRepository:   documentRepository,
		quarantineRepository: quarantineRepository,
		db:                   db,
		now:                  time.Now,
	}
}

func (s *ModerationService) GrantOverride(ctx context.Context, documentID, actor, reason string, minutes int) (*model.QuarantineOverride, error) {
	if minutes <= 0 || minutes > maxOverrideMinutes {
		return nil, fmt.Errorf("%w: длительность override должна быть от 1 до %d минут", model.ErrInvalidRequest, maxOverrideMinutes)
	}

	document, err := s.documentRepository.GetByID(ctx, s.db, documentID)
	if err != nil {
		return nil, err
	}
	if document.ModerationStatus != model.ModerationQuarantined {
		zap.L().Info("[ModerationService] override для документа не на карантине",
			zap.String("document_id", documentID), zap.String("status", string(document.ModerationStatus)))
	}

	override := &model.QuarantineOverride{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		ExpiresAt:  s.now().Add(time.Duration(minutes) * time.Minute),
		Actor:      actor,
		Reason:     reason,
	}
	if err := s.quarantineRepository.Create(ctx, s.db, override); err != nil {
		return nil, util.LogError("[ModerationService] не удалось сохранить override", err)
	}

	zap.L().Info("[ModerationService] выдан override карантина",
		zap.String("document_id", documentID), zap.String("actor", actor), zap.Time("expires_at", override.ExpiresAt))
	return override, nil
}

func (s *ModerationService) RemoveOverrides(ctx context.Context, documentID string) (int64, error) {
	removed, err := s.quarantineRepository.DeleteActive(ctx, s.db, documentID)
	if err != nil {
		return 0, util.LogError("[ModerationService] не удалось удалить override", err)
	}
	return removed, nil
}
