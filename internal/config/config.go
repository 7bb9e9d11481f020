// Package config loads and exposes application configuration (TOML plus env overrides).
package config

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath  = "config.toml"
	DefaultHTTPAddr    = ":8080"
	DefaultAPIBaseURL  = "http://127.0.0.1:8080"
	DefaultPGHost      = "127.0.0.1"
	DefaultPGPort      = 5432
	DefaultPGUser      = "postgres"
	DefaultPGDatabase  = "teleclip"
	DefaultPGSSLMode   = "disable"
	DefaultStorageKind = "local"
	DefaultLocalRoot   = "data/thumbnails"
)

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	API      APIConfig      `toml:"api"`
	Telegram TelegramConfig `toml:"telegram"`
	Postgres PostgresConfig `toml:"postgres"`
	Storage  StorageConfig  `toml:"storage"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServerConfig holds the HTTP server listen address.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// APIConfig holds the externally visible base URL used to compose
// thumbnail URLs returned to API clients.
type APIConfig struct {
	BaseURL string `toml:"base_url"`
}

// TelegramConfig holds the bot credentials and the channel to index.
// Announce controls whether a confirmation reply is posted to the channel
// after a video is indexed.
type TelegramConfig struct {
	BotToken string `toml:"bot_token"`
	Channel  string `toml:"channel"`
	Announce bool   `toml:"announce"`
}

// PostgresConfig holds PostgreSQL connection parameters. When URL is set it
// is used verbatim and the discrete fields are ignored.
type PostgresConfig struct {
	URL      string `toml:"url"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// StorageConfig selects the thumbnail blob backend.
type StorageConfig struct {
	Backend string          `toml:"backend"`
	Local   LocalStorage    `toml:"local"`
	S3      S3StorageConfig `toml:"s3"`
}

// LocalStorage holds the root directory for the local blob backend.
type LocalStorage struct {
	Root string `toml:"root"`
}

// S3StorageConfig holds the bucket and region for the S3 blob backend.
type S3StorageConfig struct {
	Bucket string `toml:"bucket"`
	Region string `toml:"region"`
}

// Load reads and parses the TOML config file at path, applies default values
// for missing fields, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		API: APIConfig{
			BaseURL: DefaultAPIBaseURL,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		Storage: StorageConfig{
			Backend: DefaultStorageKind,
			Local: LocalStorage{
				Root: DefaultLocalRoot,
			},
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overlays the environment variables recognized for deployment:
// TELEGRAM_BOT_TOKEN, CHANNEL_ID, DATABASE_URL, API_BASE_URL, HTTP_ADDR.
func applyEnv(cfg *Config) {
	if value := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")); value != "" {
		cfg.Telegram.BotToken = value
	}
	if value := strings.TrimSpace(os.Getenv("CHANNEL_ID")); value != "" {
		cfg.Telegram.Channel = value
	}
	if value := strings.TrimSpace(os.Getenv("DATABASE_URL")); value != "" {
		cfg.Postgres.URL = value
	}
	if value := strings.TrimSpace(os.Getenv("API_BASE_URL")); value != "" {
		cfg.API.BaseURL = value
	}
	if value := strings.TrimSpace(os.Getenv("HTTP_ADDR")); value != "" {
		cfg.Server.Addr = value
	}
}
