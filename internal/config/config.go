package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sukalov/chordbook/internal/db"
	"github.com/sukalov/chordbook/internal/utils"
)

// Config collects the environment needed by the chordbook binaries
type Config struct {
	DatabaseURL   string
	DatabaseToken string

	// RedisURL empty disables the cache.
	RedisURL      string
	RedisPassword string

	BotToken     string
	LogChannelID int64
	// Editors are Telegram usernames allowed to /edit songs.
	Editors []string

	LogLevel  string
	LogFormat string
}

// Load reads the database, cache and logging settings.
func Load() (*Config, error) {
	env, err := utils.LoadEnv([]string{"TURSO_DATABASE_URL"})
	if err != nil {
		return nil, fmt.Errorf("failed to load db env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:   env["TURSO_DATABASE_URL"],
		DatabaseToken: utils.GetEnv("TURSO_AUTH_TOKEN", ""),
		RedisURL:      utils.GetEnv("REDIS_URL", ""),
		RedisPassword: utils.GetEnv("REDIS_PASSWORD", ""),
		LogLevel:      strings.ToLower(utils.GetEnv("LOG_LEVEL", "info")),
		LogFormat:     strings.ToLower(utils.GetEnv("LOG_FORMAT", "text")),
	}

	if cfg.IsRemoteDatabase() && cfg.DatabaseToken == "" {
		return nil, fmt.Errorf("missing required environment variable: TURSO_AUTH_TOKEN")
	}

	return cfg, nil
}

// LoadBot extends Load with the Telegram settings.
func LoadBot() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	env, err := utils.LoadEnv([]string{"BOT_TOKEN"})
	if err != nil {
		return nil, fmt.Errorf("failed to load bot env: %w", err)
	}
	cfg.BotToken = env["BOT_TOKEN"]

	if raw := utils.GetEnv("LOG_CHANNEL_ID", ""); raw != "" {
		cfg.LogChannelID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse LOG_CHANNEL_ID: %w", err)
		}
	}

	cfg.Editors = splitList(utils.GetEnv("EDITOR_USERNAMES", ""))

	return cfg, nil
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimPrefix(strings.TrimSpace(item), "@")
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// IsRemoteDatabase reports whether the database URL points at a hosted server
// rather than a local SQLite file.
func (c *Config) IsRemoteDatabase() bool {
	return db.IsRemote(c.DatabaseURL)
}
