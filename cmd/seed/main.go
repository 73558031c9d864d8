package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/oggyb/wa-autoreply/internal/config"
	"github.com/oggyb/wa-autoreply/internal/db/gormdb"
	domain "github.com/oggyb/wa-autoreply/internal/domain/message"
	"github.com/oggyb/wa-autoreply/internal/logger"
	cfgRepo "github.com/oggyb/wa-autoreply/internal/repository/gorm/botconfig"
	mesgRepo "github.com/oggyb/wa-autoreply/internal/repository/gorm/message"
)

const (
	seedCount  = 50
	botAddress = "whatsapp:+14155238886"
)

func main() {
	ctx := context.Background()

	// Load application configuration (DB, Redis, etc.) from env/.env.
	cfg := config.New()
	log := logger.New(cfg.App.LogLevel)

	fatal := func(msg string, err error) {
		log.Error(msg, "error", err)
		os.Exit(1)
	}

	// Open a Postgres connection through our GORM adapter.
	db, err := gormdb.New(cfg.PostgresDSN())
	if err != nil {
		fatal("[Seed] Failed to connect to database", err)
	}
	defer db.Close()

	log.Info("[Seed] Connected to database", "db", cfg.DB.Name)

	// 1) AutoMigrate: make sure both tables exist.
	if err := mesgRepo.Migrate(db); err != nil {
		fatal("[Seed] AutoMigrate messages failed", err)
	}
	if err := cfgRepo.Migrate(db); err != nil {
		fatal("[Seed] AutoMigrate bot_config failed", err)
	}
	log.Info("[Seed] Tables are up to date (AutoMigrate completed).")

	// 2) Make sure the configuration row exists.
	bot, err := cfgRepo.NewRepository(db, cfg.BotDefaults()).GetConfig(ctx)
	if err != nil {
		fatal("[Seed] Failed to load bot config", err)
	}

	// 3) Conversations spread over the last week: one inbound message and,
	// most of the time, the auto-reply that answered it.
	repo := mesgRepo.NewRepository(db)
	now := time.Now().UTC()
	inserted := 0

	for i := 0; i < seedCount; i++ {
		user := randomPhone()
		at := now.Add(-time.Duration(rand.Int63n(int64(domain.Window7d))))

		in, err := domain.NewInbound(user, botAddress, randomContent(i+1), fmt.Sprintf("SMseed%04d", i+1))
		if err != nil {
			fatal("[Seed] Failed to build inbound message", err)
		}
		in.Timestamp = at
		if err := repo.Create(ctx, in); err != nil {
			fatal(fmt.Sprintf("[Seed] Failed to save inbound message #%d", i+1), err)
		}
		inserted++

		if rand.Intn(5) == 0 {
			continue
		}

		var sendErr error
		if rand.Intn(10) == 0 {
			sendErr = fmt.Errorf("seeded failure")
		}
		out, err := domain.NewOutbound(botAddress, user, bot.AutoReplyMessage, fmt.Sprintf("SMreply%04d", i+1), sendErr)
		if err != nil {
			fatal("[Seed] Failed to build outbound message", err)
		}
		out.Timestamp = at.Add(bot.ResponseDelay() + time.Second)
		if err := repo.Create(ctx, out); err != nil {
			fatal(fmt.Sprintf("[Seed] Failed to save outbound message #%d", i+1), err)
		}
		inserted++
	}

	log.Info("[Seed] Done.", "inserted", inserted, "table", "messages")
}

// randomPhone generates a fake WhatsApp address in an E.164-like format.
// Example output: whatsapp:+905123456789
func randomPhone() string {
	base := "whatsapp:+905"
	n := rand.Intn(900000000) + 100000000 // 9 digits
	return fmt.Sprintf("%s%d", base, n)
}

// randomContent generates a simple message body for seeding.
func randomContent(i int) string {
	bodies := []string{"Hi!", "Is the store open today?", "I need help with my order", "Thanks", "Hello there"}
	return fmt.Sprintf("%s (#%d)", bodies[rand.Intn(len(bodies))], i)
}
