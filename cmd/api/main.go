// @title       WhatsApp Auto-Reply API
// @version     1.0
// @description Receives WhatsApp messages from Twilio, answers them automatically and serves the dashboard API.
// @BasePath    /
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/oggyb/wa-autoreply/internal/cache"
	"github.com/oggyb/wa-autoreply/internal/cache/redis"
	"github.com/oggyb/wa-autoreply/internal/config"
	"github.com/oggyb/wa-autoreply/internal/db/gormdb"
	"github.com/oggyb/wa-autoreply/internal/domain/botconfig"
	"github.com/oggyb/wa-autoreply/internal/domain/message"
	"github.com/oggyb/wa-autoreply/internal/handler"
	"github.com/oggyb/wa-autoreply/internal/logger"
	cfgRepo "github.com/oggyb/wa-autoreply/internal/repository/gorm/botconfig"
	mesgRepo "github.com/oggyb/wa-autoreply/internal/repository/gorm/message"
	"github.com/oggyb/wa-autoreply/internal/repository/memory"
	"github.com/oggyb/wa-autoreply/internal/request"
	routes "github.com/oggyb/wa-autoreply/internal/router"
	"github.com/oggyb/wa-autoreply/internal/scheduler"
	"github.com/oggyb/wa-autoreply/internal/server"
	"github.com/oggyb/wa-autoreply/internal/service"
	"github.com/oggyb/wa-autoreply/internal/whatsapp"
)

func main() {
	if err := run(); err != nil {
		slog.Error("[Main] fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Base context for the whole application lifetime.
	rootCtx := context.Background()

	// Load configuration from environment/.env.
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(cfg.App.LogLevel).With("app", cfg.App.Name, "env", cfg.App.Env)
	slog.SetDefault(log)

	// Init storage.
	var (
		msgRepository message.Repository
		botRepository botconfig.Repository
		closeStore    = func() error { return nil }
	)

	switch cfg.Store.Driver {
	case config.StorePostgres:
		db, err := gormdb.New(cfg.PostgresDSN())
		if err != nil {
			return fmt.Errorf("failed to connect db: %w", err)
		}
		if err := mesgRepo.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate messages: %w", err)
		}
		if err := cfgRepo.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate bot config: %w", err)
		}
		msgRepository = mesgRepo.NewRepository(db)
		botRepository = cfgRepo.NewRepository(db, cfg.BotDefaults())
		closeStore = db.Close
		log.Info("[Main] Using postgres store", "db", cfg.DB.Name)

	default:
		store := memory.NewStore(cfg.BotDefaults())
		msgRepository = store
		botRepository = store
		log.Info("[Main] Using in-memory store")
	}

	// Init cache (optional).
	var replyCache cache.Cache
	if cfg.Redis.Addr != "" {
		rc := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := rc.Ping(rootCtx); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rc.Close()
		replyCache = rc
		log.Info("[Main] Redis cache enabled", "addr", cfg.Redis.Addr)
	}

	// Init WhatsApp provider client. Credentials are read on every call.
	waClient := whatsapp.NewTwilioClient(cfg.Twilio.BaseURL, whatsapp.EnvCredentials{})
	if _, err := (whatsapp.EnvCredentials{}).Credentials(rootCtx); err != nil {
		log.Warn("[Main] Twilio credentials incomplete; auto-replies will be recorded as failed", "error", err)
	}

	// Services
	msgSvc := service.NewMessageService(msgRepository, botRepository)
	autoReplySvc := service.NewAutoReplyService(msgRepository, botRepository, waClient, replyCache, log, cfg.Twilio.SendTimeout)
	statusSvc := service.NewStatusService(waClient, log)

	// Provider status probe
	var probe scheduler.SchedulerService
	if cfg.Status.ProbeInterval > 0 {
		probe = scheduler.NewSchedulerService("provider-status", statusSvc, cfg.Status.ProbeInterval, cfg.Status.ProbeTimeout)
	}

	// HTTP dependencies & server wiring.
	validate := request.NewValidator()
	deps := routes.AppDeps{
		Home:    handler.NewHomeHandler(statusSvc),
		Message: handler.NewMessageHandler(msgSvc, log),
		Config:  handler.NewConfigHandler(msgSvc, validate, log),
		Webhook: handler.NewWebhookHandler(autoReplySvc, validate, log),
	}

	addr := fmt.Sprintf("%s:%s", cfg.API.Host, cfg.API.Port)
	srv := server.New(addr, deps, log)

	// Create a context that is cancelled on SIGINT/SIGTERM (Ctrl+C, docker stop etc.).
	ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		log.Info("[Main] HTTP server listening", "addr", addr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if probe != nil {
		// First probe right away so /api/status is not stuck on the stub.
		go func() {
			probeCtx, cancel := context.WithTimeout(rootCtx, cfg.Status.ProbeTimeout)
			defer cancel()
			_ = statusSvc.Run(probeCtx)
		}()

		if err := probe.Start(); err != nil {
			return fmt.Errorf("status probe: %w", err)
		}
		log.Info("[Main] Status probe started", "interval", cfg.Status.ProbeInterval.String())
	}

	// Block until we receive a shutdown signal or the server dies.
	select {
	case <-ctx.Done():
		log.Info("[Main] Shutdown signal received, starting graceful shutdown...")
	case err := <-serverErr:
		log.Error("[Main] HTTP server error", "error", err)
	}

	// Give components some time to shut down cleanly.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if probe != nil {
		if err := probe.Stop(); err != nil {
			log.Warn("[Main] Status probe could not be stopped", "error", err)
		}
	}

	// Stop accepting callbacks before draining replies they scheduled.
	log.Info("[Main] Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("[Main] HTTP server graceful shutdown failed", "error", err)
	}

	log.Info("[Main] Waiting for pending auto-replies...")
	if err := autoReplySvc.Shutdown(shutdownCtx); err != nil {
		log.Warn("[Main] Pending auto-replies aborted", "error", err)
	}

	if err := closeStore(); err != nil {
		log.Warn("[Main] Closing store failed", "error", err)
	}

	log.Info("[Main] Shutdown complete.")
	return nil
}
