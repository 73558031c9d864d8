package routes

import (
	"net/http"

	_ "github.com/oggyb/wa-autoreply/internal/docs" // swagger docs
	"github.com/oggyb/wa-autoreply/internal/metrics"
	"github.com/oggyb/wa-autoreply/internal/response"
	swaggerHandler "github.com/swaggo/http-swagger"
)

type AppDeps struct {
	Home    HomeHandler
	Message MessageHandler
	Config  ConfigHandler
	Webhook WebhookHandler
}

type HomeHandler interface {
	Health(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
}

type MessageHandler interface {
	ListMessages(w http.ResponseWriter, r *http.Request)
	GetMessage(w http.ResponseWriter, r *http.Request)
	GetStats(w http.ResponseWriter, r *http.Request)
}

type ConfigHandler interface {
	GetConfig(w http.ResponseWriter, r *http.Request)
	UpdateConfig(w http.ResponseWriter, r *http.Request)
}

type WebhookHandler interface {
	ReceiveWhatsApp(w http.ResponseWriter, r *http.Request)
}

func Register(mux *http.ServeMux, d AppDeps) {
	mux.HandleFunc("GET /api/health", d.Home.Health)
	mux.HandleFunc("GET /api/status", d.Home.Status)

	mux.HandleFunc("GET /api/messages", d.Message.ListMessages)
	mux.HandleFunc("GET /api/messages/{id}", d.Message.GetMessage)
	mux.HandleFunc("GET /api/stats", d.Message.GetStats)

	mux.HandleFunc("GET /api/config", d.Config.GetConfig)
	mux.HandleFunc("PATCH /api/config", d.Config.UpdateConfig)

	mux.HandleFunc("POST /api/webhook/whatsapp", d.Webhook.ReceiveWhatsApp)

	mux.Handle("GET /metrics", metrics.Handler())

	//Swagger
	mux.HandleFunc("GET /swagger/", swaggerHandler.WrapHandler)

	// Fallback handler for undefined routes (404)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.RespondError(w, http.StatusNotFound, "route not found")
	}))
}
