package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"secure-doc-gateway/internal/logger"
	"secure-doc-gateway/internal/model"
	"secure-doc-gateway/internal/service"
	"secure-doc-gateway/internal/util"

	"go.uber.org/zap"
)

// verdictStatus : HTTP-код для вердикта резолвера. Причины отказа наружу не раскрываются
func verdictStatus(verdict model.Verdict) int {
	switch verdict {
	case model.VerdictOK:
		return http.StatusOK
	case model.VerdictRevoked, model.VerdictExpired, model.VerdictMaxed:
		return http.StatusGone
	case model.VerdictScanBlocked, model.VerdictGeoBlocked:
		return http.StatusForbidden
	case model.VerdictPasswordRequired, model.VerdictEmailRequired:
		return http.StatusFound
	default:
		return http.StatusNotFound
	}
}

// writeVerdict : отказ по вердикту. Для пароля/почты клиент уходит на страницу ввода
func writeVerdict(w http.ResponseWriter, r *http.Request, resolution *model.Resolution) {
	status := verdictStatus(resolution.Verdict)
	switch status {
	case http.StatusFound:
		gate := "password"
		if resolution.Verdict == model.VerdictEmailRequired {
			gate = "email"
		}
		w.Header().Set("Cache-Control", "no-store")
		http.Redirect(w, r, "/s/"+resolution.Share.Token+"/gate?require="+gate, http.StatusFound)
	case http.StatusGone:
		util.HandleError(w, "ссылка больше не действует", status)
	case http.StatusForbidden:
		util.HandleError(w, "доступ запрещён", status)
	default:
		util.HandleError(w, "не найдено", http.StatusNotFound)
	}
}

// writeDeliveryError : ошибки открытия тела. Ключевые ошибки шифрования закрывают отдачу целиком
func writeDeliveryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRangeNotSatisfiable):
		util.HandleError(w, "диапазон недоступен", http.StatusRequestedRangeNotSatisfiable)
	case errors.Is(err, model.ErrNotFound):
		util.HandleError(w, "не найдено", http.StatusNotFound)
	case errors.Is(err, model.ErrForbidden), errors.Is(err, model.ErrPolicyBlocked):
		util.HandleError(w, "доступ запрещён", http.StatusForbidden)
	case errors.Is(err, model.ErrEncryptionNotConfigured),
		errors.Is(err, model.ErrMasterKeyRevoked),
		errors.Is(err, model.ErrMasterKeyNotFound),
		errors.Is(err, model.ErrStoreUnavailable):
		util.HandleError(w, "сервис временно недоступен", http.StatusServiceUnavailable)
	default:
		logger.Security().Error("[Handler] ошибка отдачи документа", zap.Error(err))
		util.HandleError(w, "сервис временно недоступен", http.StatusServiceUnavailable)
	}
}

// writeContent : отдаёт тело с заголовками диапазона. Тело закрывается здесь
func writeContent(w http.ResponseWriter, content *model.Content, disposition string) {
	defer content.Body.Close()

	header := w.Header()
	contentType := content.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	header.Set("Content-Length", strconv.FormatInt(content.Length, 10))
	header.Set("Accept-Ranges", "bytes")
	header.Set("Cache-Control", "private, no-store")
	header.Set("X-Content-Type-Options", "nosniff")
	if disposition != "" {
		header.Set("Content-Disposition", disposition)
	}

	status := http.StatusOK
	if content.Partial {
		end := content.Start + content.Length - 1
		header.Set("Content-Range", "bytes "+strconv.FormatInt(content.Start, 10)+"-"+
			strconv.FormatInt(end, 10)+"/"+strconv.FormatInt(content.Total, 10))
		status = http.StatusPartialContent
	}

	w.WriteHeader(status)
	if _, err := io.Copy(w, content.Body); err != nil {
		zap.L().Debug("[Handler] клиент прервал загрузку", zap.Error(err))
	}
}

// writeRateHeaders : X-RateLimit-* на каждый ответ, Retry-After только при отказе
func writeRateHeaders(w http.ResponseWriter, decision *model.RateDecision) {
	header := w.Header()
	header.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	header.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	header.Set("X-RateLimit-Reset", strconv.Itoa(decision.ResetSeconds))
	if !decision.Allowed {
		header.Set("Retry-After", strconv.Itoa(decision.ResetSeconds))
	}
}

// cookieExpiresIn : секунды до истечения для ответа клиенту
func cookieExpiresIn(expiresAt, now time.Time) int {
	seconds := int(expiresAt.Sub(now) / time.Second)
	if seconds < 0 {
		return 0
	}
	return seconds
}
