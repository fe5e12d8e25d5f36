package service

import (
	"context"
	"errors"
	"time"

	"secure-doc-gateway/internal/logger"
	"secure-doc-gateway/internal/model"
	"secure-doc-gateway/internal/ports"
	"secure-doc-gateway/internal/security"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ResolverService : единственное место, где задан порядок проверок шары.
// Ошибка хранилища на любом шаге превращается в NOT_FOUND
type ResolverService struct {
	shareRepository      ports.ShareRepository
	documentRepository   ports.DocumentRepository
	quarantineRepository ports.QuarantineRepository
	cookies              *security.CookieSigner
	db                   sqlx.ExtContext
	now                  func() time.Time
}

func NewResolverService(
	shareRepository ports.ShareRepository,
	documentRepository ports.DocumentRepository,
	quarantineRepository ports.QuarantineRepository,
	cookies *security.CookieSigner,
	db sqlx.ExtContext,
) *ResolverService {
	return &ResolverService{
		shareRepository:      shareRepository,
		documentRepository:   documentRepository,
		quarantineRepository: quarantineRepository,
		cookies:              cookies,
		db:                   db,
		now:                  time.Now,
	}
}

func (s *ResolverService) ResolveToken(ctx context.Context, token string, credentials model.Credentials) *model.Resolution {
	if token == "" {
		return &model.Resolution{Verdict: model.VerdictNotFound}
	}
	share, err := s.shareRepository.GetByToken(ctx, s.db, token)
	return s.resolve(ctx, share, err, credentials)
}

func (s *ResolverService) ResolveAlias(ctx context.Context, alias string, credentials model.Credentials) *model.Resolution {
	if alias == "" {
		return &model.Resolution{Verdict: model.VerdictNotFound}
	}
	share, err := s.shareRepository.GetByAlias(ctx, s.db, alias)
	return s.resolve(ctx, share, err, credentials)
}

// resolve : NOT_FOUND → REVOKED → EXPIRED → MAXED → MODERATION_BLOCKED → SCAN_BLOCKED →
// GEO_BLOCKED → PASSWORD_REQUIRED / EMAIL_REQUIRED → OK
func (s *ResolverService) resolve(ctx context.Context, share *model.Share, err error, credentials model.Credentials) *model.Resolution {
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			logger.Security().Error("[ResolverService] ошибка чтения шары, отказ", zap.Error(err))
		}
		return &model.Resolution{Verdict: model.VerdictNotFound}
	}

	now := s.now()
	resolution := &model.Resolution{Share: share}

	switch {
	case share.Revoked():
		resolution.Verdict = model.VerdictRevoked
		return resolution
	case share.Expired(now):
		resolution.Verdict = model.VerdictExpired
		return resolution
	case share.Maxed():
		resolution.Verdict = model.VerdictMaxed
		return resolution
	}

	document, err := s.documentRepository.GetByID(ctx, s.db, share.DocumentID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			logger.Security().Error("[ResolverService] ошибка чтения документа, отказ",
				zap.String("share_id", share.ID), zap.Error(err))
		}
		return &model.Resolution{Verdict: model.VerdictNotFound}
	}
	resolution.Document = document

	hasOverride := false
	if document.ModerationStatus == model.ModerationQuarantined {
		hasOverride, err = s.quarantineRepository.HasActive(ctx, s.db, document.ID)
		if err != nil {
			logger.Security().Error("[ResolverService] ошибка проверки override, отказ",
				zap.String("document_id", document.ID), zap.Error(err))
			return &model.Resolution{Verdict: model.VerdictNotFound}
		}
	}

	switch {
	case document.ModerationBlocked(hasOverride):
		resolution.Verdict = model.VerdictModerationBlocked
	case document.ScanBlocking():
		resolution.Verdict = model.VerdictScanBlocked
	case share.CountryBlocked(credentials.Country):
		resolution.Verdict = model.VerdictGeoBlocked
	case share.RequiresPassword() && !s.presented(security.KindDeviceTrust, share.Token, credentials, now):
		resolution.Verdict = model.VerdictPasswordRequired
	case share.RequiresEmail() && !s.presented(security.KindEmailProof, share.Token, credentials, now):
		resolution.Verdict = model.VerdictEmailRequired
	default:
		resolution.Verdict = model.VerdictOK
	}

	return resolution
}

func (s *ResolverService) presented(kind, token string, credentials model.Credentials, now time.Time) bool {
	value, ok := credentials.Cookies[security.CookieName(kind, token)]
	if !ok || value == "" {
		return false
	}
	return s.cookies.Verify(kind, token, value, now)
}

// ConsumeView : атомарный инкремент с проверкой лимита в том же запросе
func (s *ResolverService) ConsumeView(ctx context.Context, share *model.Share) error {
	views, err := s.shareRepository.ConsumeView(ctx, s.db, share.ID)
	if err != nil {
		if errors.Is(err, model.ErrMaxed) {
			return err
		}
		logger.Security().Error("[ResolverService] не удалось учесть просмотр", zap.String("share_id", share.ID), zap.Error(err))
		return model.ErrStoreUnavailable
	}
	share.ViewsCount = views
	return nil
}
