package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sukalov/chordbook/internal/config"
	"github.com/sukalov/chordbook/internal/db"
	"github.com/sukalov/chordbook/internal/editor"
	"github.com/sukalov/chordbook/internal/logger"
	"github.com/sukalov/chordbook/internal/redis"
)

// setupLogging applies config and the --log-level override
func setupLogging(cmd *cobra.Command, cfg *config.Config) {
	level := cfg.LogLevel
	if override, _ := cmd.Root().PersistentFlags().GetString("log-level"); override != "" {
		level = override
	}
	logger.Init(level, cfg.LogFormat)
}

// openService connects the songbook database and, when configured, the
// Redis cache. The returned func releases both.
func openService(cmd *cobra.Command) (*editor.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	setupLogging(cmd, cfg)

	ctx := cmd.Context()
	database, err := db.Open(ctx, cfg.DatabaseURL, cfg.DatabaseToken)
	if err != nil {
		return nil, nil, err
	}

	store := db.NewStore(database)
	if err := store.Migrate(ctx); err != nil {
		database.Close()
		return nil, nil, err
	}

	closers := []func() error{database.Close}

	var cache editor.Cache
	if cfg.RedisURL != "" {
		c, err := connectCache(ctx, cfg)
		if err != nil {
			logger.Error("redis unavailable, running without cache", "error", err)
		} else {
			cache = c
			closers = append(closers, c.Close)
		}
	}

	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Error("close failed", "error", err)
			}
		}
	}
	return editor.NewService(store, cache), release, nil
}

func connectCache(ctx context.Context, cfg *config.Config) (*redis.Cache, error) {
	cache, err := redis.NewCache(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}
	if err := cache.Ping(ctx); err != nil {
		cache.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return cache, nil
}

// readSource reads a file, or stdin when path is "-"
func readSource(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
