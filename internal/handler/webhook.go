package handler

import (
	"errors"
	"log/slog"
	"net/http"

	domain "github.com/oggyb/wa-autoreply/internal/domain/message"
	"github.com/oggyb/wa-autoreply/internal/metrics"
	"github.com/oggyb/wa-autoreply/internal/request"
	"github.com/oggyb/wa-autoreply/internal/response"
	"github.com/oggyb/wa-autoreply/internal/service"
)

const (
	msgInvalidPayload = "Bad Request: Invalid payload"
	msgInternalError  = "Internal server error"
)

// WebhookHandler accepts inbound message callbacks from Twilio.
type WebhookHandler struct {
	autoReply service.AutoReplyService
	validate  *request.Validator
	log       *slog.Logger
}

func NewWebhookHandler(autoReply service.AutoReplyService, validate *request.Validator, log *slog.Logger) *WebhookHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WebhookHandler{
		autoReply: autoReply,
		validate:  validate,
		log:       log.With("handler", "webhook"),
	}
}

// ReceiveWhatsApp godoc
// @Summary     Inbound WhatsApp callback
// @Description Stores the inbound message, acknowledges with empty TwiML and schedules the auto-reply.
// @Tags        webhook
// @Accept      x-www-form-urlencoded
// @Accept      json
// @Produce     xml
// @Param       From        formData string true  "Sender address"
// @Param       Body        formData string true  "Message text"
// @Param       To          formData string false "Recipient address"
// @Param       MessageSid  formData string false "Provider message id"
// @Param       AccountSid  formData string false "Provider account id"
// @Param       NumMedia    formData string false "Number of media items"
// @Param       ProfileName formData string false "Sender profile name"
// @Success     200 {string} string "TwiML acknowledgment"
// @Failure     400 {string} string "Bad Request: Invalid payload"
// @Failure     500 {string} string "Internal server error"
// @Router      /api/webhook/whatsapp [post]
func (h *WebhookHandler) ReceiveWhatsApp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := request.DecodeWebhook(r)
	if err != nil {
		metrics.WebhookRejected.WithLabelValues("decode").Inc()
		h.log.WarnContext(ctx, "failed to decode webhook payload", "error", err)
		response.RespondText(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}

	if err := h.validate.Struct(ctx, req); err != nil {
		metrics.WebhookRejected.WithLabelValues("validation").Inc()
		h.log.WarnContext(ctx, "invalid webhook payload", "error", err, "message_sid", req.MessageSid)
		response.RespondText(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}

	inbound, err := h.autoReply.Receive(ctx, req.ToInbound())
	if errors.Is(err, domain.ErrEmptySender) || errors.Is(err, domain.ErrEmptyBody) {
		metrics.WebhookRejected.WithLabelValues("validation").Inc()
		response.RespondText(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}
	if err != nil {
		h.log.ErrorContext(ctx, "failed to store inbound message", "error", err)
		response.RespondText(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	response.RespondTwiML(w)

	// Runs after the acknowledgment and outlives the request.
	h.autoReply.ScheduleReply(inbound)
}
