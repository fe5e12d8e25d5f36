package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"secure-doc-gateway/config"
	"secure-doc-gateway/internal/logger"
	"secure-doc-gateway/internal/model"
	requestresponse "secure-doc-gateway/internal/model/requestresponse"
	"secure-doc-gateway/internal/ports"
	"secure-doc-gateway/internal/security"
	"secure-doc-gateway/internal/util"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ScanHandler : внутренние ручки очереди проверки, вызываются планировщиком снаружи
type ScanHandler struct {
	scans  ports.ScanService
	guard  *RateGuard
	secret string
	server config.ServerConfig
	now    func() time.Time
}

func NewScanHandler(scans ports.ScanService, guard *RateGuard, secret string, server config.ServerConfig) *ScanHandler {
	return &ScanHandler{scans: scans, guard: guard, secret: secret, server: server, now: time.Now}
}

// RequireTrigger : общий секрет или подпись HMAC с меткой времени
func (h *ScanHandler) RequireTrigger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := util.ClientIP(r, h.server.RealIPHeader)
		if !h.guard.Allow(r.Context(), w, config.ScopeScanTrigger, ip) {
			return
		}
		if !security.VerifyScanTrigger(h.secret, r.Header, h.now()) {
			logger.Security().Warn("[ScanHandler] запуск без валидной подписи", zap.String("route", r.URL.Path))
			util.HandleError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Run godoc
// @Summary Обработка одной пачки задач проверки
// @Tags Scan
// @Produce json
// @Param X-Scan-Secret header string false "Общий секрет"
// @Param X-Scan-Timestamp header string false "Unix-время подписи"
// @Param X-Scan-Signature header string false "HMAC-SHA256(secret, timestamp)"
// @Success 200 {object} model.ScanBatchSummary "Итог пачки"
// @Failure 401 {object} requestresponse.ErrorResponse "Нет подписи"
// @Failure 503 {object} requestresponse.ErrorResponse "Хранилище недоступно"
// @Router /internal/scan/run [post]
func (h *ScanHandler) Run(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	summary, err := h.scans.RunBatch(ctx)
	if err != nil {
		util.HandleError(w, "сервис временно недоступен", http.StatusServiceUnavailable)
		return
	}
	util.WriteJSON(w, http.StatusOK, summary)
}

// Health godoc
// @Summary Возврат зависших задач, dead-letter бэклог и очистка старых записей
// @Tags Scan
// @Produce json
// @Success 200 {object} model.HealthReport "Отчёт"
// @Failure 401 {object} requestresponse.ErrorResponse "Нет подписи"
// @Router /internal/scan/health [post]
func (h *ScanHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	report, err := h.scans.HealthPass(ctx)
	if err != nil {
		util.HandleError(w, "сервис временно недоступен", http.StatusServiceUnavailable)
		return
	}
	util.WriteJSON(w, http.StatusOK, report)
}

// Enqueue godoc
// @Summary Постановка документа в очередь проверки
// @Tags Scan
// @Produce json
// @Param id path string true "Идентификатор документа"
// @Success 202 {object} requestresponse.EnqueueScanResponse "Задача поставлена или уже существует"
// @Failure 404 {object} requestresponse.ErrorResponse "Документ не найден"
// @Router /internal/scan/documents/{id} [post]
func (h *ScanHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	documentID := chi.URLParam(r, "id")
	enqueued, err := h.scans.EnqueueScan(ctx, documentID)
	switch {
	case errors.Is(err, model.ErrNotFound):
		util.HandleError(w, "не найдено", http.StatusNotFound)
		return
	case err != nil:
		util.HandleError(w, "сервис временно недоступен", http.StatusServiceUnavailable)
		return
	}

	util.WriteJSON(w, http.StatusAccepted, requestresponse.EnqueueScanResponse{DocumentID: documentID, Enqueued: enqueued})
}
