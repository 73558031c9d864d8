package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/oggyb/wa-autoreply/internal/domain/botconfig"
	"github.com/oggyb/wa-autoreply/internal/request"
	"github.com/oggyb/wa-autoreply/internal/response"
	"github.com/oggyb/wa-autoreply/internal/service"
)

// ConfigHandler exposes the auto-reply configuration.
type ConfigHandler struct {
	msgSvc   service.MessageService
	validate *request.Validator
	log      *slog.Logger
}

func NewConfigHandler(msgSvc service.MessageService, validate *request.Validator, log *slog.Logger) *ConfigHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ConfigHandler{
		msgSvc:   msgSvc,
		validate: validate,
		log:      log.With("handler", "config"),
	}
}

// GetConfig godoc
// @Summary     Get bot configuration
// @Tags        config
// @Produce     json
// @Success     200 {object} response.ConfigDTO
// @Failure     500 {object} response.ErrorResponse
// @Router      /api/config [get]
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.msgSvc.GetConfig(r.Context())
	if err != nil {
		h.log.ErrorContext(r.Context(), "load config failed", "error", err)
		response.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, response.FromDomainConfig(cfg))
}

// UpdateConfig godoc
// @Summary     Update bot configuration
// @Description Merges the given fields into the configuration. Omitted fields keep their value.
// @Tags        config
// @Accept      json
// @Produce     json
// @Param       request body request.ConfigPatchRequest true "Fields to change"
// @Success     200 {object} response.ConfigDTO
// @Failure     400 {object} response.ErrorResponse
// @Failure     500 {object} response.ErrorResponse
// @Router      /api/config [patch]
func (h *ConfigHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	req, err := request.DecodeConfigPatch(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.validate.Struct(r.Context(), req); err != nil {
		response.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg, err := h.msgSvc.UpdateConfig(r.Context(), req.ToPatch())
	if errors.Is(err, botconfig.ErrNegativeDelay) || errors.Is(err, botconfig.ErrDelayTooLarge) {
		response.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.log.ErrorContext(r.Context(), "update config failed", "error", err)
		response.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.log.InfoContext(r.Context(), "config updated",
		"auto_reply_enabled", cfg.AutoReplyEnabled,
		"response_delay_seconds", cfg.ResponseDelaySeconds,
	)
	response.RespondJSON(w, http.StatusOK, response.FromDomainConfig(cfg))
}
