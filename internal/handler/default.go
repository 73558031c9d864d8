package handler

import (
	"net/http"
	"time"

	"github.com/oggyb/wa-autoreply/internal/response"
	"github.com/oggyb/wa-autoreply/internal/service"
)

// HomeHandler serves the health and provider status endpoints.
type HomeHandler struct {
	status service.StatusService
	now    func() time.Time
}

// NewHomeHandler returns a new HomeHandler.
func NewHomeHandler(status service.StatusService) *HomeHandler {
	return &HomeHandler{status: status, now: time.Now}
}

// Health godoc
// @Summary     Health check
// @Description Returns a basic status payload to indicate the API is running.
// @Tags        home
// @Produce     json
// @Success     200 {object} response.HealthResponse
// @Router      /api/health [get]
func (h *HomeHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, response.NewHealthResponse(h.now()))
}

// Status godoc
// @Summary     Provider status
// @Description Reports whether the WhatsApp provider is reachable, based on the last health probe.
// @Tags        home
// @Produce     json
// @Success     200 {object} response.StatusDTO
// @Router      /api/status [get]
func (h *HomeHandler) Status(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, response.FromProviderStatus(h.status.Status()))
}
