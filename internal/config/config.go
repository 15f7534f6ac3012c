package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port        int              `json:"port" env:"PORT"`
	AdminToken  string           `json:"admin_token" env:"ADMIN_TOKEN"`
	MaxBodySize int64            `json:"max_body_size"`
	CORSOrigins []string         `json:"cors_origins"`
	LogConfig   logger.LogConfig `json:"log_config"`
	Database    DatabaseConfig   `json:"database"`
	Session     SessionConfig    `json:"session"`
	Mail        MailConfig       `json:"mail"`
	AI          AIConfig         `json:"ai"`
	FileStore   FileStoreConfig  `json:"file_store"`
	RateLimit   RateLimitConfig  `json:"rate_limit"`
	Jobs        JobsConfig       `json:"jobs"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn" env:"DATABASE_URL"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
	// MaxConnLifetime is in seconds. Idle connections are recycled before the server drops them.
	MaxConnLifetime int `json:"max_conn_lifetime"`
}

type SessionConfig struct {
	Secret     string `json:"secret" env:"SECRET_KEY"`
	TTLHours   int    `json:"ttl_hours"`
	CookieName string `json:"cookie_name"`
	Secure     bool   `json:"secure"`
}

type MailConfig struct {
	Type         string `json:"type" env:"MAIL_TYPE"`
	Host         string `json:"host" env:"MAIL_SERVER"`
	Port         int    `json:"port" env:"MAIL_PORT"`
	Username     string `json:"username" env:"MAIL_USERNAME"`
	Password     string `json:"password" env:"MAIL_PASSWORD"`
	From         string `json:"from" env:"MAIL_DEFAULT_SENDER"`
	ResendAPIKey string `json:"resend_api_key" env:"RESEND_API_KEY"`
	Subject      string `json:"subject"`
}

type AIConfig struct {
	Provider        string                 `json:"provider" env:"AI_PROVIDER"`
	Model           string                 `json:"model" env:"AI_MODEL"`
	APIKey          string                 `json:"api_key" env:"AI_API_KEY"`
	AnthropicAPIKey string                 `json:"-" env:"ANTHROPIC_API_KEY"`
	Timeout         int                    `json:"timeout"`
	MaxInputChars   int                    `json:"max_input_chars"`
	ChatMaxTokens   int                    `json:"chat_max_tokens"`
	NewsMaxTokens   int                    `json:"news_max_tokens"`
	Data            map[string]interface{} `json:"data"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type RateLimitConfig struct {
	WindowSeconds int `json:"window_seconds"`
	Max           int `json:"max"`
}

type JobsConfig struct {
	SessionCleanupCron string `json:"session_cleanup_cron"`
	LeadExportCron     string `json:"lead_export_cron"`
}

const (
	defaultPort          = 5000
	defaultMaxBodySize   = 1 << 20
	defaultModel         = "claude-sonnet-4-6"
	defaultChatMaxTokens = 1024
	defaultNewsMaxTokens = 1500
)

// Load reads an optional JSON file, then lets .env and the process environment override it.
// An empty path means configuration comes from the environment only.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(path); err != nil {
		return nil, err
	}
	cfg := &Config{}
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()
		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	candidates := []string{".env"}
	if path != "" {
		candidates = append([]string{filepath.Join(filepath.Dir(path), ".env")}, candidates...)
	}
	for _, file := range candidates {
		err := godotenv.Load(file)
		if err == nil {
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

func (cfg *Config) normalize() error {
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.MaxBodySize == 0 {
		cfg.MaxBodySize = defaultMaxBodySize
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.Database.MaxConnLifetime == 0 {
		cfg.Database.MaxConnLifetime = 280
	}
	if cfg.Session.Secret == "" {
		return fmt.Errorf("session.secret is required")
	}
	if cfg.Session.TTLHours == 0 {
		cfg.Session.TTLHours = 72
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "caas_session"
	}
	if err := cfg.Mail.normalize(); err != nil {
		return err
	}
	cfg.AI.normalize()
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
		if cfg.FileStore.Data == nil {
			cfg.FileStore.Data = map[string]interface{}{"dir": "exports"}
		}
	}
	if cfg.RateLimit.WindowSeconds < 0 {
		return fmt.Errorf("rate_limit.window_seconds must not be negative")
	}
	if cfg.RateLimit.WindowSeconds > 0 && cfg.RateLimit.Max <= 0 {
		cfg.RateLimit.Max = 10
	}
	if cfg.Jobs.SessionCleanupCron == "" {
		cfg.Jobs.SessionCleanupCron = "*/30 * * * *"
	}
	return nil
}

func (m *MailConfig) normalize() error {
	m.Type = strings.ToLower(strings.TrimSpace(m.Type))
	if m.Type == "" {
		m.Type = "smtp"
	}
	if m.Subject == "" {
		m.Subject = "Your Prezent.Energy verification code"
	}
	switch m.Type {
	case "smtp":
		if m.Host == "" {
			m.Host = "smtp.gmail.com"
		}
		if m.Port == 0 {
			m.Port = 587
		}
	case "resend":
		if m.ResendAPIKey == "" {
			return fmt.Errorf("mail.resend_api_key is required for resend mail")
		}
	case "log":
	default:
		return fmt.Errorf("mail.type must be smtp, resend or log")
	}
	return nil
}

func (a *AIConfig) normalize() {
	a.Provider = strings.ToLower(strings.TrimSpace(a.Provider))
	if a.Provider == "" {
		a.Provider = "anthropic"
	}
	if a.Model == "" {
		a.Model = defaultModel
	}
	if a.APIKey == "" && a.Provider == "anthropic" {
		a.APIKey = a.AnthropicAPIKey
	}
	if a.Timeout == 0 {
		a.Timeout = 60
	}
	if a.MaxInputChars == 0 {
		a.MaxInputChars = 20000
	}
	if a.ChatMaxTokens == 0 {
		a.ChatMaxTokens = defaultChatMaxTokens
	}
	if a.NewsMaxTokens == 0 {
		a.NewsMaxTokens = defaultNewsMaxTokens
	}
	if a.Data == nil {
		a.Data = map[string]interface{}{}
	}
	if a.APIKey != "" {
		a.Data["api_key"] = a.APIKey
	}
}
