package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store backends understood by the kvstore package.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds every runtime setting of the API process.
type Config struct {
	Port         string
	Environment  string
	StoreBackend string
	DatabaseURL  string
	RedisURL     string

	JWTSecret     string
	TokenDuration time.Duration

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	ChatTimeout   time.Duration

	ExpiryCheckPeriod time.Duration
	ExpiryWarningDays int

	// SMTP delivers expiry notices to sellers; empty SMTPHost logs them instead.
	SMTPHost        string
	SMTPPort        string
	SMTPUsername    string
	SMTPPassword    string
	SMTPSenderName  string
	SMTPSenderEmail string
}

// IsDevelopment reports whether the process runs with development defaults.
func (c Config) IsDevelopment() bool { return c.Environment == "development" }

// Load reads the process environment, seeded from a .env file when one exists.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:          get("APP_PORT", "8080"),
		Environment:   get("ENVIRONMENT", "production"),
		StoreBackend:  get("STORE_BACKEND", BackendMemory),
		DatabaseURL:   getenv("DATABASE_URL"),
		RedisURL:      get("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:     getenv("JWT_SECRET"),
		OpenAIAPIKey:  getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: get("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   get("OPENAI_MODEL", "gpt-3.5-turbo"),

		SMTPHost:        getenv("SMTP_HOST"),
		SMTPPort:        get("SMTP_PORT", "587"),
		SMTPUsername:    getenv("SMTP_USERNAME"),
		SMTPPassword:    getenv("SMTP_PASSWORD"),
		SMTPSenderName:  get("SMTP_SENDER_NAME", "MediBridge"),
		SMTPSenderEmail: getenv("SMTP_SENDER_EMAIL"),
	}

	var err error
	if cfg.TokenDuration, err = duration(get("TOKEN_DURATION", "24h"), "TOKEN_DURATION"); err != nil {
		return Config{}, err
	}
	if cfg.ChatTimeout, err = duration(get("CHAT_TIMEOUT", "30s"), "CHAT_TIMEOUT"); err != nil {
		return Config{}, err
	}
	if cfg.ExpiryCheckPeriod, err = duration(get("EXPIRY_CHECK_PERIOD", "24h"), "EXPIRY_CHECK_PERIOD"); err != nil {
		return Config{}, err
	}
	days, err := strconv.Atoi(get("EXPIRY_WARNING_DAYS", "180"))
	if err != nil || days < 0 {
		return Config{}, fmt.Errorf("invalid EXPIRY_WARNING_DAYS %q", getenv("EXPIRY_WARNING_DAYS"))
	}
	cfg.ExpiryWarningDays = days

	switch cfg.StoreBackend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required for the postgres store backend")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	if cfg.SMTPHost != "" && cfg.SMTPSenderEmail == "" {
		return Config{}, errors.New("SMTP_SENDER_EMAIL is required when SMTP_HOST is set")
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return Config{}, errors.New("JWT_SECRET is required outside development")
		}
		cfg.JWTSecret = "medibridge-dev-secret"
	}
	return cfg, nil
}

func duration(raw, name string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", name)
	}
	return d, nil
}
