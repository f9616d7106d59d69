package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"alchemy_webapp/internal/bot"
	"alchemy_webapp/internal/config"
	"alchemy_webapp/internal/kv"
	"alchemy_webapp/internal/logger"
	"alchemy_webapp/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	if err := cfg.RequireBot(); err != nil {
		logger.Fatal("invalid config", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := kv.Open(ctx, kv.Options{
		Backend:       cfg.KVBackend,
		RedisURL:      cfg.RedisURL,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		DatabaseURL:   cfg.DatabaseURL,
	})
	if err != nil {
		logger.Fatal("kv store init failed", "error", err)
	}
	defer store.Close()
	kv.StartJanitor(ctx, store, 10*time.Minute)

	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal("bot authorization failed", "error", err)
	}
	chat := bot.NewChatNotifier(botAPI)
	defer chat.Close()

	svc := service.NewServices(service.Deps{
		Store:    store,
		Economy:  cfg.Economy,
		Notifier: chat,
		BotToken: cfg.BotToken,
	})

	b := bot.NewWithAPI(botAPI, cfg, svc)
	go b.Start()
	logger.Info("bot started", "username", botAPI.Self.UserName, "web_app_url", cfg.WebAppURL)

	<-ctx.Done()
	b.Stop()
	logger.Info("bot exited")
}
