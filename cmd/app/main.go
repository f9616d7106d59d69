package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alchemy_webapp/internal/bot"
	"alchemy_webapp/internal/config"
	httpServer "alchemy_webapp/internal/http"
	"alchemy_webapp/internal/http/middleware"
	"alchemy_webapp/internal/kv"
	"alchemy_webapp/internal/logger"
	"alchemy_webapp/internal/service"
	"alchemy_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	if err := cfg.RequireAPI(); err != nil {
		logger.Fatal("invalid config", "error", err)
	}
	if err := service.InitJWT(cfg.JWTSecret); err != nil {
		logger.Fatal("jwt init failed", "error", err)
	}
	if !cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
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

	// rate limit в том же Redis, иначе счётчики в памяти процесса
	if rs, ok := store.(*kv.RedisStore); ok {
		middleware.InitRedisRateLimiter(rs.Client())
	}

	hub := ws.NewHub()
	notifiers := service.MultiNotifier{hub}
	if cfg.BotNotifications && cfg.BotToken != "" {
		botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
		if err != nil {
			logger.Warn("chat notifications disabled", "error", err)
		} else {
			chat := bot.NewChatNotifier(botAPI)
			defer chat.Close()
			notifiers = append(notifiers, chat)
		}
	}

	svc := service.NewServices(service.Deps{
		Store:    store,
		Economy:  cfg.Economy,
		Notifier: notifiers,
		BotToken: cfg.BotToken,
		DevMode:  cfg.DevMode,
	})
	if cfg.DevMode {
		logger.Warn("DEV_MODE is on: telegram init data signatures are not checked")
	}

	r := httpServer.NewRouter(cfg, svc, store, hub)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "backend", store.Backend())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
