package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"secure-doc-gateway/internal/logger"
	"secure-doc-gateway/internal/model"
	"secure-doc-gateway/internal/ports"
	"secure-doc-gateway/internal/util"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const ticketIDBytes = 24

// TicketService : брокер одноразовых тикетов. Клиент получает только непрозрачный id,
// адрес объекта в хранилище наружу не выходит
type TicketService struct {
	ticketRepository     ports.TicketRepository
	documentRepository   ports.DocumentRepository
	quarantineRepository ports.QuarantineRepository
	delivery             ports.DeliveryService
	hasher               ports.BindingHasher
	db                   sqlx.ExtContext
	ttl                  time.Duration
}

func NewTicketService(
	ticketRepository ports.TicketRepository,
	documentRepository ports.DocumentRepository,
	quarantineRepository ports.QuarantineRepository,
	delivery ports.DeliveryService,
	hasher ports.BindingHasher,
	db sqlx.ExtContext,
	ttl time.Duration,
) *TicketService {
	return &TicketService{
		ticketRepository:     ticketRepository,
		documentRepository:   documentRepository,
		quarantineRepository: quarantineRepository,
		delivery:             delivery,
		hasher:               hasher,
		db:                   db,
		ttl:                  ttl,
	}
}

// Mint : сохраняет тикет с хэшами IP/UA и коротким абсолютным сроком жизни
func (s *TicketService) Mint(ctx context.Context, request model.MintRequest) (string, time.Duration, error) {
	if !request.Purpose.Valid() {
		return "", 0, fmt.Errorf("неизвестное назначение тикета %q", request.Purpose)
	}
	if request.DocumentID == "" && request.StorageKey == "" {
		return "", 0, errors.New("тикет должен ссылаться на документ или объект")
	}

	id, err := util.GenerateOpaqueID(ticketIDBytes)
	if err != nil {
		return "", 0, util.LogError("[TicketService] не удалось сгенерировать id тикета", err)
	}

	ticket := &model.AccessTicket{
		ID:                 id,
		DocumentID:         optional(request.DocumentID),
		ShareID:            optional(request.ShareID),
		Purpose:            request.Purpose,
		ContentType:        request.ContentType,
		ContentDisposition: request.ContentDisposition,
		StorageBucket:      request.StorageBucket,
		StorageKey:         request.StorageKey,
		IPHash:             optional(s.hasher.Hash(request.RequestIP)),
		UAHash:             optional(s.hasher.Hash(request.RequestUA)),
	}

	if err := s.ticketRepository.Insert(ctx, s.db, ticket, s.ttl); err != nil {
		return "", 0, err
	}

	zap.L().Debug("[TicketService] тикет выпущен",
		zap.String("purpose", string(ticket.Purpose)), zap.Time("expires_at", ticket.ExpiresAt))
	return id, s.ttl, nil
}

// Redeem : погашение атомарно, затем повторная проверка модерации документа.
// Любой отказ (включая ошибку хранилища) для клиента выглядит как model.ErrNotFound
func (s *TicketService) Redeem(ctx context.Context, ticketID, requestIP, requestUA string) (*model.AccessTicket, *model.Content, error) {
	ipHash := s.hasher.Hash(requestIP)
	uaHash := s.hasher.Hash(requestUA)

	ticket, err := s.ticketRepository.Redeem(ctx, s.db, ticketID, ipHash, uaHash)
	if err != nil {
		fields := []zap.Field{zap.String("ip_hash", ipHash), zap.String("ua_hash", uaHash)}
		if errors.Is(err, model.ErrNotFound) {
			logger.Security().Info("[TicketService] тикет не погашен", fields...)
		} else {
			logger.Security().Error("[TicketService] ошибка погашения тикета, отказ", append(fields, zap.Error(err))...)
		}
		return nil, nil, model.ErrNotFound
	}

	document, err := s.target(ctx, ticket)
	if err != nil {
		return nil, nil, err
	}

	content, err := s.delivery.Open(ctx, document, nil)
	if err != nil {
		return nil, nil, err
	}
	if ticket.ContentType != "" {
		content.ContentType = ticket.ContentType
	}

	return ticket, content, nil
}

// target : документ тикета с проверкой модерации и скана на момент погашения.
// Тикет без документа ссылается на объект напрямую и идёт через политику открытой отдачи
func (s *TicketService) target(ctx context.Context, ticket *model.AccessTicket) (*model.Document, error) {
	if ticket.DocumentID == nil {
		return &model.Document{
			StorageBucket: ticket.StorageBucket,
			StorageKey:    ticket.StorageKey,
			MimeType:      ticket.ContentType,
		}, nil
	}

	document, err := s.documentRepository.GetByID(ctx, s.db, *ticket.DocumentID)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			logger.Security().Error("[TicketService] ошибка чтения документа, отказ", zap.Error(err))
		}
		return nil, model.ErrNotFound
	}

	hasOverride := false
	if document.ModerationStatus == model.ModerationQuarantined {
		hasOverride, err = s.quarantineRepository.HasActive(ctx, s.db, document.ID)
		if err != nil {
			logger.Security().Error("[TicketService] ошибка проверки override, отказ", zap.Error(err))
			return nil, model.ErrNotFound
		}
	}
	if document.ModerationBlocked(hasOverride) {
		logger.Security().Info("[TicketService] документ заблокирован модерацией",
			zap.String("document_id", document.ID), zap.String("status", string(document.ModerationStatus)))
		return nil, model.ErrNotFound
	}
	if document.ScanBlocking() {
		logger.Security().Info("[TicketService] документ заблокирован результатом скана", zap.String("document_id", document.ID))
		return nil, model.ErrForbidden
	}

	return document, nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
