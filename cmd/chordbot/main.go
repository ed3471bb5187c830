package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sukalov/chordbook/internal/bot"
	"github.com/sukalov/chordbook/internal/bot/songs"
	"github.com/sukalov/chordbook/internal/config"
	"github.com/sukalov/chordbook/internal/db"
	"github.com/sukalov/chordbook/internal/editor"
	"github.com/sukalov/chordbook/internal/logger"
	"github.com/sukalov/chordbook/internal/redis"
)

func main() {
	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL, cfg.DatabaseToken)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	store := db.NewStore(database)
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var cache editor.Cache
	if cfg.RedisURL != "" {
		c, err := redis.NewCache(cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("failed to configure redis: %v", err)
		}
		defer c.Close()

		if err := c.Ping(ctx); err != nil {
			logger.Error("redis unavailable, running without cache", "error", err)
		} else {
			cache = c
		}
	}

	songBot, err := bot.New("chordbot", cfg.BotToken)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}
	if cfg.LogChannelID != 0 {
		logger.SetSink(songBot, cfg.LogChannelID)
	}

	handlers := songs.NewSongHandlers(editor.NewService(store, cache), cfg.Editors)

	logger.Info("starting bot", "editors", len(cfg.Editors), "cache", cache != nil)
	songBot.Start(ctx, handlers.Handlers())
	logger.Info("bot stopped")
}
