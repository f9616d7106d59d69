package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"alchemy_webapp/internal/config"
	"alchemy_webapp/internal/domain"
	"alchemy_webapp/internal/kv"
	"alchemy_webapp/internal/logger"
	"alchemy_webapp/internal/service"
)

// seed_user создаёт (или обновляет) пользователя в хранилище и печатает JWT для ручных запросов.
func main() {
	tgID := flag.Int64("id", 1234567890, "telegram id")
	firstName := flag.String("name", "Tester", "first name")
	username := flag.String("username", "testuser", "telegram username")
	light := flag.Int64("light", 0, "extra light to add after creation")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	if err := service.InitJWT(cfg.JWTSecret); err != nil {
		logger.Fatal("jwt init failed", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

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
	if store.Backend() == kv.BackendMemory {
		logger.Warn("seeding the in-memory store: the user disappears when this command exits")
	}

	svc := service.NewServices(service.Deps{Store: store, Economy: cfg.Economy})

	u, created, err := svc.Users.Initialize(ctx, domain.Profile{ID: *tgID, FirstName: *firstName, Username: *username})
	if err != nil {
		logger.Fatal("initialize user failed", "error", err)
	}
	logger.Info("user ready", "user_id", u.ID, "created", created, "light", u.LightBalance)

	if *light != 0 {
		balance, err := svc.Balance.AdjustLight(ctx, u.ID, *light)
		if err != nil {
			logger.Fatal("adjust light failed", "error", err)
		}
		logger.Info("light adjusted", "user_id", u.ID, "balance", balance)
	}

	token, err := service.GenerateJWT(u.ID)
	if err != nil {
		logger.Fatal("failed to generate token", "error", err)
	}
	fmt.Println(token)
}
