package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	domain "github.com/oggyb/wa-autoreply/internal/domain/message"
	"github.com/oggyb/wa-autoreply/internal/response"
	"github.com/oggyb/wa-autoreply/internal/service"
)

// MessageHandler wires the dashboard read endpoints to the message service.
type MessageHandler struct {
	msgSvc service.MessageService
	log    *slog.Logger
}

// NewMessageHandler constructs a new MessageHandler with its dependencies.
func NewMessageHandler(msgSvc service.MessageService, log *slog.Logger) *MessageHandler {
	if log == nil {
		log = slog.Default()
	}
	return &MessageHandler{
		msgSvc: msgSvc,
		log:    log.With("handler", "message"),
	}
}

// ListMessages godoc
// @Summary     List messages
// @Description Returns the most recent messages, newest first.
// @Tags        messages
// @Produce     json
// @Param       limit query int false "Maximum number of messages" default(100)
// @Success     200 {array}  response.MessageDTO
// @Failure     500 {object} response.ErrorResponse
// @Router      /api/messages [get]
func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	limit := domain.DefaultListLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}

	items, err := h.msgSvc.List(r.Context(), limit)
	if err != nil {
		h.log.ErrorContext(r.Context(), "list messages failed", "error", err)
		response.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, response.FromDomainMessages(items))
}

// GetMessage godoc
// @Summary     Get a message
// @Description Returns a single message by id.
// @Tags        messages
// @Produce     json
// @Param       id path string true "Message id"
// @Success     200 {object} response.MessageDTO
// @Failure     404 {object} response.ErrorResponse
// @Failure     500 {object} response.ErrorResponse
// @Router      /api/messages/{id} [get]
func (h *MessageHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	msg, err := h.msgSvc.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrNotFound) {
		response.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.log.ErrorContext(r.Context(), "get message failed", "error", err)
		response.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, response.FromDomainMessage(msg))
}

// GetStats godoc
// @Summary     Message statistics
// @Description Counts received and sent messages over the last 24 hours and 7 days.
// @Tags        messages
// @Produce     json
// @Success     200 {object} response.StatsDTO
// @Failure     500 {object} response.ErrorResponse
// @Router      /api/stats [get]
func (h *MessageHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.msgSvc.Stats(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "compute stats failed", "error", err)
		response.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, response.FromDomainStats(st))
}
