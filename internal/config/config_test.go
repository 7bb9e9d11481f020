package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != DefaultHTTPAddr {
		t.Fatalf("unexpected addr: %q", cfg.Server.Addr)
	}
	if cfg.Postgres.Database != DefaultPGDatabase {
		t.Fatalf("unexpected database: %q", cfg.Postgres.Database)
	}
	if cfg.Storage.Backend != "local" || cfg.Storage.Local.Root != DefaultLocalRoot {
		t.Fatalf("unexpected storage defaults: %+v", cfg.Storage)
	}
	if cfg.Telegram.Announce {
		t.Fatalf("announce must default to off")
	}
}

func TestLoadParsesTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[log]
level = "debug"

[telegram]
bot_token = "123:abc"
channel = "@clips"
announce = true

[storage]
backend = "s3"

[storage.s3]
bucket = "thumbs"
region = "eu-central-1"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.Log.Level)
	}
	if cfg.Telegram.Channel != "@clips" || !cfg.Telegram.Announce {
		t.Fatalf("unexpected telegram config: %+v", cfg.Telegram)
	}
	if cfg.Storage.Backend != "s3" || cfg.Storage.S3.Bucket != "thumbs" {
		t.Fatalf("unexpected storage config: %+v", cfg.Storage)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "999:zzz")
	t.Setenv("CHANNEL_ID", "@other")
	t.Setenv("DATABASE_URL", "postgres://u:p@example:5432/videos")
	t.Setenv("API_BASE_URL", "https://api.example.com")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.BotToken != "999:zzz" || cfg.Telegram.Channel != "@other" {
		t.Fatalf("env overrides not applied: %+v", cfg.Telegram)
	}
	if cfg.Postgres.URL != "postgres://u:p@example:5432/videos" {
		t.Fatalf("database url override not applied: %q", cfg.Postgres.URL)
	}
	if cfg.API.BaseURL != "https://api.example.com" {
		t.Fatalf("api base url override not applied: %q", cfg.API.BaseURL)
	}
}
