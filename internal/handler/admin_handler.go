package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"secure-doc-gateway/internal/model"
	requestresponse "secure-doc-gateway/internal/model/requestresponse"
	"secure-doc-gateway/internal/ports"
	"secure-doc-gateway/internal/security"
	"secure-doc-gateway/internal/util"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdminHandler : операции владельцев и модераторов, все маршруты за JWTMiddleware
type AdminHandler struct {
	shares     ports.ShareService
	moderation ports.ModerationService
	encryption ports.EncryptionService
}

func NewAdminHandler(shares ports.ShareService, moderation ports.ModerationService, encryption ports.EncryptionService) *AdminHandler {
	return &AdminHandler{shares: shares, moderation: moderation, encryption: encryption}
}

// RevokeShare godoc
// @Summary Отзыв шары
// @Description Доступно владельцу шары и администратору. Чужая или уже отозванная шара даёт 404
// @Tags Admin
// @Produce json
// @Param token path string true "Токен шары"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.RevokeShareResponse "Шара отозвана"
// @Failure 401 {object} requestresponse.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} requestresponse.ErrorResponse "Не найдено"
// @Security ApiKeyAuth
// @Router /api/shares/{token} [delete]
func (h *AdminHandler) RevokeShare(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	token := chi.URLParam(r, "token")
	if _, err := h.shares.Revoke(ctx, token, claims.UserUUID, claims.IsAdmin()); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			util.HandleError(w, "не найдено", http.StatusNotFound)
			return
		}
		util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.RevokeShareResponse{Token: token, Revoked: true})
}

// GrantOverride godoc
// @Summary Временный доступ к документу на карантине
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Идентификатор документа"
// @Param request body requestresponse.QuarantineOverrideRequest true "Длительность и причина"
// @Success 201 {object} requestresponse.QuarantineOverrideResponse "Override создан"
// @Failure 400 {object} requestresponse.ErrorResponse "Неверная длительность"
// @Failure 403 {object} requestresponse.ErrorResponse "Только для администратора"
// @Failure 404 {object} requestresponse.ErrorResponse "Документ не найден"
// @Security ApiKeyAuth
// @Router /api/admin/documents/{id}/quarantine-override [post]
func (h *AdminHandler) GrantOverride(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		util.HandleError(w, "пользователь не авторизован", http.StatusUnauthorized)
		return
	}

	var request requestresponse.QuarantineOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}

	override, err := h.moderation.GrantOverride(ctx, chi.URLParam(r, "id"), claims.UserUUID, request.Reason, request.Minutes)
	if err != nil {
		writeAdminError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, requestresponse.QuarantineOverrideResponse{Data: *override})
}

// RemoveOverrides godoc
// @Summary Снять активные override карантина
// @Tags Admin
// @Produce json
// @Param id path string true "Идентификатор документа"
// @Success 200 {object} requestresponse.RemoveOverridesResponse "Сколько снято"
// @Security ApiKeyAuth
// @Router /api/admin/documents/{id}/quarantine-override [delete]
func (h *AdminHandler) RemoveOverrides(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	documentID := chi.URLParam(r, "id")
	removed, err := h.moderation.RemoveOverrides(ctx, documentID)
	if err != nil {
		writeAdminError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.RemoveOverridesResponse{DocumentID: documentID, Removed: removed})
}

// RotateKeys godoc
// @Summary Перенос документов на другой мастер-ключ
// @Description Один проход ограниченного размера, либо (drain) проходы до полного переноса или отсутствия прогресса
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body requestresponse.RotateKeysRequest true "Ключи и размер прохода"
// @Success 200 {object} requestresponse.RotateKeysResponse "Итог ротации"
// @Failure 400 {object} requestresponse.ErrorResponse "Неизвестный ключ или неверный запрос"
// @Failure 409 {object} requestresponse.ErrorResponse "Целевой ключ отозван"
// @Failure 503 {object} requestresponse.ErrorResponse "Шифрование не настроено"
// @Security ApiKeyAuth
// @Router /api/admin/keys/rotate [post]
func (h *AdminHandler) RotateKeys(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	var request requestresponse.RotateKeysRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.FromKeyID == "" || request.ToKeyID == "" {
		util.HandleError(w, "неверный формат запроса", http.StatusBadRequest)
		return
	}

	var (
		result  *model.RotationResult
		batches = 1
		err     error
	)
	if request.Drain {
		result, batches, err = h.encryption.RotateAll(ctx, request.FromKeyID, request.ToKeyID, request.Limit)
	} else {
		result, err = h.encryption.RotateDocKeys(ctx, request.FromKeyID, request.ToKeyID, request.Limit)
	}
	if err != nil {
		writeAdminError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.RotateKeysResponse{Data: *result, Batches: batches})
}

// SealDocument godoc
// @Summary Зашифровать открытый документ под активным ключом
// @Tags Admin
// @Produce json
// @Param id path string true "Идентификатор документа"
// @Success 200 {object} requestresponse.SealDocumentResponse "Документ зашифрован"
// @Failure 404 {object} requestresponse.ErrorResponse "Документ не найден"
// @Failure 503 {object} requestresponse.ErrorResponse "Шифрование не настроено"
// @Security ApiKeyAuth
// @Router /api/admin/documents/{id}/seal [post]
func (h *AdminHandler) SealDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Minute)
	defer cancel()

	document, err := h.encryption.SealDocument(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeAdminError(w, err)
		return
	}

	response := requestresponse.SealDocumentResponse{DocumentID: document.ID}
	if document.EncKeyID != nil {
		response.KeyID = *document.EncKeyID
	}
	util.WriteJSON(w, http.StatusOK, response)
}

func writeAdminError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		util.HandleError(w, "не найдено", http.StatusNotFound)
	case errors.Is(err, model.ErrInvalidRequest), errors.Is(err, model.ErrMasterKeyNotFound):
		util.HandleError(w, "неверный запрос", http.StatusBadRequest)
	case errors.Is(err, model.ErrMasterKeyRevoked):
		util.HandleError(w, "ключ отозван", http.StatusConflict)
	case errors.Is(err, model.ErrEncryptionNotConfigured):
		util.HandleError(w, "шифрование не настроено", http.StatusServiceUnavailable)
	default:
		zap.L().Error("[AdminHandler] ошибка операции", zap.Error(err))
		util.HandleError(w, "внутренняя ошибка сервера", http.StatusInternalServerError)
	}
}
