package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/oggyb/wa-autoreply/internal/domain/botconfig"
)

// Storage backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	App struct {
		Name     string
		Env      string
		LogLevel string
	}

	API struct {
		Host string
		Port string
	}

	Store struct {
		Driver string
	}

	DB struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	Twilio struct {
		BaseURL     string
		SendTimeout time.Duration
	}

	Status struct {
		ProbeInterval time.Duration
		ProbeTimeout  time.Duration
	}

	AutoReply struct {
		Enabled      bool
		Message      string
		DelaySeconds int
	}

	ShutdownTimeout time.Duration
}

// New loads .env (if present) and reads the configuration from the
// environment. Twilio credentials are not part of it; they are read from
// the environment on every send.
func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	// App
	cfg.App.Name = getEnv("APP_NAME", "wa-autoreply")
	cfg.App.Env = getEnv("APP_ENV", "development")
	cfg.App.LogLevel = getEnv("LOG_LEVEL", "info")

	// API
	cfg.API.Host = getEnv("API_HOST", "0.0.0.0")
	cfg.API.Port = getEnv("API_PORT", "8080")

	// Storage
	cfg.Store.Driver = strings.ToLower(getEnv("STORE_DRIVER", StoreMemory))

	// DB
	cfg.DB.Host = getEnv("DB_HOST", "db")
	cfg.DB.Port = getInt("DB_PORT", 5432)
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.Name = getEnv("DB_NAME", "wa_autoreply")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	// Redis; an empty address disables the cache.
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getInt("REDIS_DB", 0)

	// Twilio
	cfg.Twilio.BaseURL = getEnv("TWILIO_BASE_URL", "")
	cfg.Twilio.SendTimeout = getDuration("TWILIO_SEND_TIMEOUT", 15*time.Second)

	// Provider status probe; 0 disables it.
	cfg.Status.ProbeInterval = getDuration("STATUS_PROBE_INTERVAL", time.Minute)
	cfg.Status.ProbeTimeout = getDuration("STATUS_PROBE_TIMEOUT", 10*time.Second)

	// Auto-reply defaults for a fresh configuration
	def := botconfig.Default()
	cfg.AutoReply.Enabled = getBool("AUTOREPLY_DEFAULT_ENABLED", def.AutoReplyEnabled)
	cfg.AutoReply.Message = getEnv("AUTOREPLY_DEFAULT_MESSAGE", def.AutoReplyMessage)
	cfg.AutoReply.DelaySeconds = getInt("AUTOREPLY_DEFAULT_DELAY_SECONDS", def.ResponseDelaySeconds)
	cfg.AutoReply.DelaySeconds = min(max(cfg.AutoReply.DelaySeconds, 0), botconfig.MaxResponseDelaySeconds)

	cfg.ShutdownTimeout = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)

	return cfg
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreMemory, StorePostgres:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q (want %s or %s)", c.Store.Driver, StoreMemory, StorePostgres)
	}
	if c.Status.ProbeInterval < 0 {
		return fmt.Errorf("config: STATUS_PROBE_INTERVAL must not be negative")
	}
	return nil
}

// BotDefaults is the configuration a new store starts from.
func (c *Config) BotDefaults() botconfig.Config {
	return botconfig.Config{
		AutoReplyEnabled:     c.AutoReply.Enabled,
		AutoReplyMessage:     c.AutoReply.Message,
		ResponseDelaySeconds: c.AutoReply.DelaySeconds,
	}
}

func getEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return isTruthy(v)
}

func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}
