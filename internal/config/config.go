// Load envs from .env
// Load YAML config
// Override with env vars
// Provide default values and validate

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "configs/config.yaml"

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Store        StoreConfig        `yaml:"store"`
	Uploads      UploadConfig       `yaml:"uploads"`
	Tokens       TokenConfig        `yaml:"tokens"`
	SMTP         SMTPConfig         `yaml:"smtp"`
	Telegram     TelegramConfig     `yaml:"telegram"`
	Notification NotificationConfig `yaml:"notification"`
	Reminder     ReminderConfig     `yaml:"reminder"`
	Log          LogConfig          `yaml:"log"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	//public URL used to build signature links in emails
	BaseURL string `yaml:"base_url"`
	//requests per second per client IP on write routes
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

type StoreConfig struct {
	//memory | file | postgres
	Driver      string `yaml:"driver"`
	DatabaseURL string `yaml:"database_url"`
	FilePath    string `yaml:"file_path"`
}

type UploadConfig struct {
	Dir      string `yaml:"dir"`
	MaxBytes int64  `yaml:"max_bytes"`
}

type TokenConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
	//approve/deny calls must carry the token from the email link; defaults to true
	Required bool `yaml:"required"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

type NotificationConfig struct {
	Workers     int           `yaml:"workers"`
	MaxAttempts int           `yaml:"max_attempts"`
	Backoff     time.Duration `yaml:"backoff"`
}

type ReminderConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Schedule string        `yaml:"schedule"`
	After    time.Duration `yaml:"after"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads .env, then the YAML file at CONFIG_PATH, then environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	return LoadFile(path)
}

// LoadFile is Load without the .env step, used by tests.
func LoadFile(path string) (*Config, error) {
	//bool defaults go in before unmarshalling, an absent key leaves them set
	cfg := &Config{Tokens: TokenConfig{Required: true}}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warnf("could not read %s: %v", path, err)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "APP_PORT")
	setString(&c.Server.BaseURL, "BASE_URL")
	setString(&c.Store.Driver, "STORE_DRIVER")
	setString(&c.Store.DatabaseURL, "DATABASE_URL")
	setString(&c.Store.FilePath, "STORE_FILE")
	setString(&c.Uploads.Dir, "UPLOAD_DIR")
	setString(&c.Tokens.Secret, "TOKEN_SECRET")
	setString(&c.SMTP.Host, "SMTP_HOST")
	setString(&c.SMTP.Username, "SMTP_USERNAME")
	setString(&c.SMTP.Password, "SMTP_PASSWORD")
	setString(&c.SMTP.From, "SMTP_FROM")
	setString(&c.Telegram.Token, "TELEGRAM_BOT_TOKEN")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	if port := os.Getenv("SMTP_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
		c.SMTP.Port = p
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}

	if required := os.Getenv("TOKEN_REQUIRED"); required != "" {
		v, err := strconv.ParseBool(required)
		if err != nil {
			return fmt.Errorf("invalid TOKEN_REQUIRED: %w", err)
		}
		c.Tokens.Required = v
	}

	if maxBytes := os.Getenv("UPLOAD_MAX_BYTES"); maxBytes != "" {
		v, err := strconv.ParseInt(maxBytes, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid UPLOAD_MAX_BYTES: %w", err)
		}
		c.Uploads.MaxBytes = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = "http://localhost:" + c.Server.Port
	}
	c.Server.BaseURL = strings.TrimRight(c.Server.BaseURL, "/")
	if c.Server.RateLimit <= 0 {
		c.Server.RateLimit = 5
	}
	if c.Server.RateBurst <= 0 {
		c.Server.RateBurst = 10
	}

	if c.Store.Driver == "" {
		c.Store.Driver = "memory"
	}
	if c.Store.FilePath == "" {
		c.Store.FilePath = "data/applications.json"
	}

	if c.Uploads.Dir == "" {
		c.Uploads.Dir = "uploads"
	}
	if c.Uploads.MaxBytes <= 0 {
		c.Uploads.MaxBytes = 10 << 20
	}

	if c.Tokens.TTL <= 0 {
		c.Tokens.TTL = 14 * 24 * time.Hour
	}

	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}

	if c.Notification.Workers <= 0 {
		c.Notification.Workers = 4
	}
	if c.Notification.MaxAttempts <= 0 {
		c.Notification.MaxAttempts = 3
	}
	if c.Notification.Backoff <= 0 {
		c.Notification.Backoff = 2 * time.Second
	}

	if c.Reminder.Schedule == "" {
		c.Reminder.Schedule = "@daily"
	}
	if c.Reminder.After <= 0 {
		c.Reminder.After = 72 * time.Hour
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks required fields for the selected store and channels.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory", "file":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when store driver is postgres")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.Tokens.Secret == "" {
		return errors.New("TOKEN_SECRET is required")
	}
	if len(c.Tokens.Secret) < 16 {
		return errors.New("TOKEN_SECRET must be at least 16 characters")
	}

	if c.SMTP.Host != "" && c.SMTP.From == "" {
		return errors.New("SMTP_FROM is required when SMTP_HOST is set")
	}

	if (c.Telegram.Token == "") != (c.Telegram.ChatID == 0) {
		return errors.New("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}
	return nil
}

// NewLogger builds the process logger from the log section.
func (c *Config) NewLogger() *log.Logger {
	logger := log.New()
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	if c.Log.Format == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return logger
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
