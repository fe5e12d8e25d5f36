package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"secure-doc-gateway/internal/logger"
	"secure-doc-gateway/internal/model"
	"secure-doc-gateway/internal/ports"
	"secure-doc-gateway/internal/util"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type ShareService struct {
	shareRepository ports.ShareRepository
	emitter         ports.EventEmitter
	db              sqlx.ExtContext
}

func NewShareService(shareRepository ports.ShareRepository, emitter ports.EventEmitter, db sqlx.ExtContext) *ShareService {
	return &ShareService{
		shareRepository: shareRepository,
		emitter:         emitter,
		db:              db,
	}
}

// Unlock : проверка пароля шары. Несовпадение и отсутствие шары неразличимы для клиента
func (s *ShareService) Unlock(ctx context.Context, token, password string) (*model.Share, error) {
	share, err := s.shareRepository.GetByToken(ctx, s.db, token)
	if err != nil {
		return nil, s.lookupError(err)
	}
	if !share.RequiresPassword() {
		return share, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*share.PasswordHash), []byte(password)); err != nil {
		logger.Security().Info("[ShareService] неверный пароль шары", zap.String("share_id", share.ID))
		return nil, model.ErrInvalidCredentials
	}

	return share, nil
}

// VerifyEmail : сравнение нормализованного адреса с привязкой шары
func (s *ShareService) VerifyEmail(ctx context.Context, token, email string) (*model.Share, error) {
	share, err := s.shareRepository.GetByToken(ctx, s.db, token)
	if err != nil {
		return nil, s.lookupError(err)
	}
	if !share.RequiresEmail() {
		return share, nil
	}

	expected := normalizeEmail(*share.RecipientEmail)
	given := normalizeEmail(email)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(given)) != 1 {
		logger.Security().Info("[ShareService] email не совпал с привязкой", zap.String("share_id", share.ID))
		return nil, model.ErrInvalidCredentials
	}

	return share, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Revoke : отзыв владельцем или администратором, затем событие share.revoked
func (s *ShareService) Revoke(ctx context.Context, token, actorUUID string, isAdmin bool) (*model.Share, error) {
	share, err := s.shareRepository.GetByToken(ctx, s.db, token)
	if err != nil {
		return nil, s.lookupError(err)
	}
	if !isAdmin && share.OwnerUUID != actorUUID {
		// чужая шара выглядит как несуществующая
		return nil, model.ErrNotFound
	}

	revoked, err := s.shareRepository.Revoke(ctx, s.db, token)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		return nil, util.LogError("[ShareService] не удалось отозвать шару", err)
	}

	if err := s.emitter.EmitShareRevoked(ctx, revoked, actorUUID); err != nil {
		zap.L().Warn("[ShareService] событие share.revoked не отправлено", zap.String("share_id", revoked.ID), zap.Error(err))
	}

	zap.L().Info("[ShareService] шара отозвана", zap.String("share_id", revoked.ID), zap.String("actor", actorUUID))
	return revoked, nil
}

func (s *ShareService) lookupError(err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return model.ErrNotFound
	}
	logger.Security().Error("[ShareService] ошибка чтения шары", zap.Error(err))
	return model.ErrNotFound
}
