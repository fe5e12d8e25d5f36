package handler

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"secure-doc-gateway/config"
	"secure-doc-gateway/internal/logger"
	"secure-doc-gateway/internal/model"
	requestresponse "secure-doc-gateway/internal/model/requestresponse"
	"secure-doc-gateway/internal/ports"
	"secure-doc-gateway/internal/security"
	"secure-doc-gateway/internal/service"
	"secure-doc-gateway/internal/util"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type resolveFunc func(ctx context.Context, credentials model.Credentials) *model.Resolution

// viewReceiptTTL : сколько живёт квитанция, позволяющая догружать диапазоны без списания просмотра
const viewReceiptTTL = 10 * time.Minute

type ShareHandler struct {
	resolver     ports.ResolverService
	shares       ports.ShareService
	tickets      ports.TicketService
	delivery     ports.DeliveryService
	guard        *RateGuard
	cookies      *security.CookieSigner
	receipts     *security.CookieSigner
	hasher       ports.BindingHasher
	server       config.ServerConfig
	cookieSecure bool
	now          func() time.Time
}

func NewShareHandler(
	resolver ports.ResolverService,
	shares ports.ShareService,
	tickets ports.TicketService,
	delivery ports.DeliveryService,
	guard *RateGuard,
	cookies *security.CookieSigner,
	hasher ports.BindingHasher,
	server config.ServerConfig,
	cookieSecure bool,
) *ShareHandler {
	return &ShareHandler{
		resolver:     resolver,
		shares:       shares,
		tickets:      tickets,
		delivery:     delivery,
		guard:        guard,
		cookies:      cookies,
		receipts:     cookies.WithTTL(viewReceiptTTL),
		hasher:       hasher,
		server:       server,
		cookieSecure: cookieSecure,
		now:          time.Now,
	}
}

// RawByToken godoc
// @Summary Скачивание документа по токену шары
// @Description Отдаёт тело документа. Поддерживает одиночный Range. Каждый запрос учитывает просмотр,
// @Description кроме догрузки диапазона с ненулевого смещения при действующей квитанции просмотра
// @Tags Shares
// @Produce octet-stream
// @Param token path string true "Токен шары"
// @Param Range header string false "Диапазон байт" default(bytes=0-)
// @Success 200 {file} binary "Документ целиком"
// @Success 206 {file} binary "Запрошенный диапазон"
// @Failure 302 "Требуется пароль или подтверждение email"
// @Failure 403 {object} requestresponse.ErrorResponse "Доступ запрещён"
// @Failure 404 {object} requestresponse.ErrorResponse "Не найдено"
// @Failure 410 {object} requestresponse.ErrorResponse "Ссылка больше не действует"
// @Failure 416 {object} requestresponse.ErrorResponse "Диапазон недоступен"
// @Failure 429 {object} requestresponse.ErrorResponse "Слишком много запросов"
// @Failure 503 {object} requestresponse.ErrorResponse "Сервис временно недоступен"
// @Router /s/{token}/raw [get]
func (h *ShareHandler) RawByToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	h.serveRaw(w, r, func(ctx context.Context, credentials model.Credentials) *model.Resolution {
		return h.resolver.ResolveToken(ctx, token, credentials)
	})
}

// RawByAlias godoc
// @Summary Скачивание документа по алиасу
// @Tags Shares
// @Produce octet-stream
// @Param alias path string true "Алиас шары"
// @Param Range header string false "Диапазон байт"
// @Success 200 {file} binary "Документ целиком"
// @Success 206 {file} binary "Запрошенный диапазон"
// @Failure 404 {object} requestresponse.ErrorResponse "Не найдено"
// @Failure 410 {object} requestresponse.ErrorResponse "Ссылка больше не действует"
// @Router /a/{alias}/raw [get]
func (h *ShareHandler) RawByAlias(w http.ResponseWriter, r *http.Request) {
	alias := chi.URLParam(r, "alias")
	h.serveRaw(w, r, func(ctx context.Context, credentials model.Credentials) *model.Resolution {
		return h.resolver.ResolveAlias(ctx, alias, credentials)
	})
}

func (h *ShareHandler) serveRaw(w http.ResponseWriter, r *http.Request, resolve resolveFunc) {
	ctx := r.Context()
	ip := util.ClientIP(r, h.server.RealIPHeader)
	if !h.guard.Allow(ctx, w, config.ScopeShareRaw, ip) {
		return
	}

	resolution := resolve(ctx, h.credentials(r))
	if resolution.Verdict != model.VerdictOK {
		h.deny(r, resolution, ip)
		writeVerdict(w, r, resolution)
		return
	}

	byteRange, err := service.ParseRange(r.Header.Get("Range"))
	if err != nil {
		writeDeliveryError(w, err)
		return
	}

	// просмотр списывается только после успешного открытия тела
	content, err := h.delivery.Open(ctx, resolution.Document, byteRange)
	if err != nil {
		writeDeliveryError(w, err)
		return
	}

	if !h.hasViewReceipt(r, resolution.Share, byteRange) {
		if !h.consumeView(ctx, w, resolution.Share) {
			content.Body.Close()
			return
		}
		h.issueViewReceipt(w, resolution.Share)
	}

	writeContent(w, content, disposition("inline", resolution.Document.FilenameOriginal))
}

// hasViewReceipt : догрузка с ненулевого смещения в пределах уже учтённого просмотра.
// Суффиксные диапазоны и запросы с нуля всегда списывают просмотр
func (h *ShareHandler) hasViewReceipt(r *http.Request, share *model.Share, byteRange *model.ByteRange) bool {
	if byteRange == nil || byteRange.Start <= 0 {
		return false
	}
	cookie, err := r.Cookie(security.CookieName(security.KindViewReceipt, share.Token))
	if err != nil {
		return false
	}
	return h.receipts.Verify(security.KindViewReceipt, share.Token, cookie.Value, h.now())
}

func (h *ShareHandler) issueViewReceipt(w http.ResponseWriter, share *model.Share) {
	value, expiresAt := h.receipts.Issue(security.KindViewReceipt, share.Token, h.now())
	http.SetCookie(w, &http.Cookie{
		Name:     security.CookieName(security.KindViewReceipt, share.Token),
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TicketByToken godoc
// @Summary Выпуск одноразового тикета по токену шары
// @Description Проверяет шару, учитывает просмотр и выпускает тикет, привязанный к IP и User-Agent
// @Tags Shares
// @Produce json
// @Param token path string true "Токен шары"
// @Param purpose query string false "preview_view | file_download | watermarked_file_download" default(preview_view)
// @Success 200 {object} requestresponse.TicketResponse "Ссылка на тикет"
// @Failure 400 {object} requestresponse.ErrorResponse "Неизвестное назначение"
// @Failure 403 {object} requestresponse.ErrorResponse "Отдача запрещена политикой"
// @Failure 404 {object} requestresponse.ErrorResponse "Не найдено"
// @Failure 410 {object} requestresponse.ErrorResponse "Ссылка больше не действует"
// @Failure 429 {object} requestresponse.ErrorResponse "Слишком много запросов"
// @Router /s/{token}/ticket [post]
func (h *ShareHandler) TicketByToken(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	h.mintTicket(w, r, func(ctx context.Context, credentials model.Credentials) *model.Resolution {
		return h.resolver.ResolveToken(ctx, token, credentials)
	})
}

// TicketByAlias godoc
// @Summary Выпуск одноразового тикета по алиасу
// @Tags Shares
// @Produce json
// @Param alias path string true "Алиас шары"
// @Param purpose query string false "Назначение тикета"
// @Success 200 {object} requestresponse.TicketResponse "Ссылка на тикет"
// @Failure 404 {object} requestresponse.ErrorResponse "Не найдено"
// @Router /a/{alias}/ticket [post]
func (h *ShareHandler) TicketByAlias(w http.ResponseWriter, r *http.Request) {
	alias := chi.URLParam(r, "alias")
	h.mintTicket(w, r, func(ctx context.Context, credentials model.Credentials) *model.Resolution {
		return h.resolver.ResolveAlias(ctx, alias, credentials)
	})
}

func (h *ShareHandler) mintTicket(w http.ResponseWriter, r *http.Request, resolve resolveFunc) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	purpose := model.TicketPurpose(r.URL.Query().Get("purpose"))
	if purpose == "" {
		purpose = model.PurposePreviewView
	}
	if !purpose.Valid() {
		util.HandleError(w, "неизвестное назначение тикета", http.StatusBadRequest)
		return
	}

	ip := util.ClientIP(r, h.server.RealIPHeader)
	if !h.guard.Allow(ctx, w, config.ScopeShareTicket, ip) {
		return
	}

	resolution := resolve(ctx, h.credentials(r))
	if resolution.Verdict != model.VerdictOK {
		h.deny(r, resolution, ip)
		writeVerdict(w, r, resolution)
		return
	}

	share, document := resolution.Share, resolution.Document
	if share.Watermark && purpose == model.PurposeFileDownload {
		purpose = model.PurposeWatermarkedFileDownload
	}

	// отказ политики не должен сжигать просмотр
	if err := h.delivery.Deliverable(document); err != nil {
		writeDeliveryError(w, err)
		return
	}
	if !h.consumeView(ctx, w, share) {
		return
	}

	dispositionType := "attachment"
	if purpose == model.PurposePreviewView {
		dispositionType = "inline"
	}

	ticketID, ttl, err := h.tickets.Mint(ctx, model.MintRequest{
		Purpose:            purpose,
		DocumentID:         document.ID,
		ShareID:            share.ID,
		ContentType:        document.MimeType,
		ContentDisposition: disposition(dispositionType, document.FilenameOriginal),
		RequestIP:          ip,
		RequestUA:          r.UserAgent(),
	})
	if err != nil {
		zap.L().Error("[ShareHandler] не удалось выпустить тикет", zap.String("share_id", share.ID), zap.Error(err))
		util.HandleError(w, "сервис временно недоступен", http.StatusServiceUnavailable)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.TicketResponse{
		TicketURL: "/t/" + ticketID,
		ExpiresIn: int(ttl / time.Second),
	})
}

// Unlock godoc
// @Summary Ввод пароля шары
// @Description При верном пароле выставляет cookie доверенного устройства для этой шары
// @Tags Shares
// @Accept json
// @Produce json
// @Param token path string true "Токен шары"
// @Param request body requestresponse.UnlockRequest true "Пароль"
// @Success 200 {object} requestresponse.UnlockResponse "Cookie выставлена"
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный формат запроса"
// @Failure 401 {object} requestresponse.ErrorResponse "Неверный пароль"
// @Failure 404 {object} requestresponse.ErrorResponse "Не найдено"
// @Failure 429 {object} requestresponse.ErrorResponse "Слишком много попыток"
// @Router /s/{token}/unlock [post]
func (h *ShareHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	var request requestresponse.UnlockRequest
	h.proveAndRemember(w, r, security.KindDeviceTrust, &request, func(ctx context.Context, token string) (*model.Share, error) {
		return h.shares.Unlock(ctx, token, request.Password)
	})
}

// VerifyEmail godoc
// @Summary Подтверждение адреса получателя
// @Tags Shares
// @Accept json
// @Produce json
// @Param token path string true "Токен шары"
// @Param request body requestresponse.VerifyEmailRequest true "Email получателя"
// @Success 200 {object} requestresponse.UnlockResponse "Cookie выставлена"
// @Failure 401 {object} requestresponse.ErrorResponse "Адрес не совпал"
// @Failure 404 {object} requestresponse.ErrorResponse "Не найдено"
// @Router /s/{token}/verify-email [post]
func (h *ShareHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var request requestresponse.VerifyEmailRequest
	h.proveAndRemember(w, r, security.KindEmailProof, &request, func(ctx context.Context, token string) (*model.Share, error) {
		return h.shares.VerifyEmail(ctx, token, request.Email)
	})
}

// proveAndRemember : общий путь пароля и email. Лимит считается на пару IP+шара
func (h *ShareHandler) proveAndRemember(
	w http.ResponseWriter,
	r *http.Request,
	kind string,
	request any,
	prove func(ctx context.Context, token string) (*model.Share, error),
) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	token := chi.URLParam(r, "token")
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(request); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}

	ip := util.ClientIP(r, h.server.RealIPHeader)
	if !h.guard.Allow(ctx, w, config.ScopeShareUnlock, ip+":"+security.CookieName(kind, token)) {
		return
	}

	share, err := prove(ctx, token)
	switch {
	case errors.Is(err, model.ErrInvalidCredentials):
		util.HandleError(w, "неверные данные", http.StatusUnauthorized)
		return
	case err != nil:
		util.HandleError(w, "не найдено", http.StatusNotFound)
		return
	}

	now := h.now()
	value, expiresAt := h.cookies.Issue(kind, share.Token, now)
	http.SetCookie(w, &http.Cookie{
		Name:     security.CookieName(kind, share.Token),
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	util.WriteJSON(w, http.StatusOK, requestresponse.UnlockResponse{
		Unlocked:  true,
		ExpiresIn: cookieExpiresIn(expiresAt, now),
	})
}

func (h *ShareHandler) consumeView(ctx context.Context, w http.ResponseWriter, share *model.Share) bool {
	err := h.resolver.ConsumeView(ctx, share)
	switch {
	case err == nil:
		return true
	case errors.Is(err, model.ErrMaxed):
		util.HandleError(w, "ссылка больше не действует", http.StatusGone)
	default:
		util.HandleError(w, "сервис временно недоступен", http.StatusServiceUnavailable)
	}
	return false
}

func (h *ShareHandler) credentials(r *http.Request) model.Credentials {
	cookies := make(map[string]string)
	for _, cookie := range r.Cookies() {
		cookies[cookie.Name] = cookie.Value
	}
	return model.Credentials{
		Cookies: cookies,
		Country: util.Country(r, h.server.CountryHeader),
	}
}

// deny : внутренняя причина отказа остаётся в журнале безопасности
func (h *ShareHandler) deny(r *http.Request, resolution *model.Resolution, ip string) {
	fields := []zap.Field{
		zap.String("verdict", string(resolution.Verdict)),
		zap.String("route", routePattern(r)),
		zap.String("ip_hash", h.hasher.Hash(ip)),
	}
	if resolution.Share != nil {
		fields = append(fields, zap.String("share_id", resolution.Share.ID))
	}
	logger.Security().Info("[ShareHandler] отказ в доступе", fields...)
}

func disposition(kind, filename string) string {
	if filename == "" {
		return kind
	}
	if value := mime.FormatMediaType(kind, map[string]string{"filename": filename}); value != "" {
		return value
	}
	return kind
}
