package handler

import (
	"net/http"

	"secure-doc-gateway/config"
	"secure-doc-gateway/internal/ports"
	"secure-doc-gateway/internal/util"

	"github.com/go-chi/chi/v5"
)

type TicketHandler struct {
	tickets ports.TicketService
	guard   *RateGuard
	server  config.ServerConfig
}

func NewTicketHandler(tickets ports.TicketService, guard *RateGuard, server config.ServerConfig) *TicketHandler {
	return &TicketHandler{tickets: tickets, guard: guard, server: server}
}

// Redeem godoc
// @Summary Погашение одноразового тикета
// @Description Тикет гасится атомарно. Повторное погашение, чужой IP/UA или истёкший срок дают 404
// @Tags Tickets
// @Produce octet-stream
// @Param ticketId path string true "Идентификатор тикета"
// @Success 200 {file} binary "Тело документа"
// @Failure 403 {object} requestresponse.ErrorResponse "Отдача запрещена политикой"
// @Failure 404 {object} requestresponse.ErrorResponse "Не найдено"
// @Failure 429 {object} requestresponse.ErrorResponse "Слишком много запросов"
// @Failure 503 {object} requestresponse.ErrorResponse "Сервис временно недоступен"
// @Router /t/{ticketId} [get]
func (h *TicketHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ip := util.ClientIP(r, h.server.RealIPHeader)
	if !h.guard.Allow(ctx, w, config.ScopeTicketRedeem, ip) {
		return
	}

	ticket, content, err := h.tickets.Redeem(ctx, chi.URLParam(r, "ticketId"), ip, r.UserAgent())
	if err != nil {
		writeDeliveryError(w, err)
		return
	}

	writeContent(w, content, ticket.ContentDisposition)
}
