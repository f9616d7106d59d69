package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Economy описывает числа световой экономики
type Economy struct {
	StartingLight   int64
	MissionReward   int64
	ReferralBonus   int64
	DailyLightLimit int64
}

type Config struct {
	AppPort          string
	Version          string
	BotToken         string
	BotUsername      string
	WebAppURL        string
	WebAppShortName  string
	JWTSecret        string
	DevMode          bool
	AllowedOrigin    string
	AdminTelegramIDs []int64 // tg id админов через запятую
	// Дублировать уведомления в чат с ботом из API-процесса
	BotNotifications bool

	// Хранилище: memory | redis | postgres | "" (авто)
	KVBackend     string
	RedisURL      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DatabaseURL   string

	LogLevel string
	LogJSON  bool

	APIRateLimit   int
	APIRateWindow  time.Duration
	AuthRateLimit  int
	AuthRateWindow time.Duration

	Economy Economy
}

// Загрузка конфига из env (+ .env если есть)
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv собирает конфиг из произвольного источника переменных
func FromEnv(getenv func(string) string) *Config {
	cfg := &Config{
		AppPort:         envString(getenv, "APP_PORT", "8080"),
		Version:         envString(getenv, "APP_VERSION", "dev"),
		BotToken:        getenv("BOT_TOKEN"),
		BotUsername:     envString(getenv, "BOT_USERNAME", "brain_alchemy_bot"),
		WebAppURL:       strings.TrimRight(envString(getenv, "WEB_APP_URL", "https://alchemy-of-mind.vercel.app"), "/"),
		WebAppShortName: envString(getenv, "WEB_APP_SHORT_NAME", "app"),
		JWTSecret:       getenv("JWT_SECRET"),
		DevMode:         getenv("DEV_MODE") == "true",
		AllowedOrigin:   getenv("ALLOWED_ORIGIN"),

		BotNotifications: getenv("BOT_NOTIFICATIONS") == "true",

		KVBackend:     strings.ToLower(strings.TrimSpace(getenv("KV_BACKEND"))),
		RedisURL:      getenv("REDIS_URL"),
		RedisAddr:     getenv("REDIS_ADDR"),
		RedisPassword: getenv("REDIS_PASSWORD"),
		RedisDB:       envInt(getenv, "REDIS_DB", 0),
		DatabaseURL:   getenv("DATABASE_URL"),

		LogLevel: envString(getenv, "LOG_LEVEL", "info"),
		LogJSON:  getenv("LOG_JSON") == "true",

		APIRateLimit:   envInt(getenv, "API_RATE_LIMIT", 60),
		APIRateWindow:  time.Duration(envInt(getenv, "API_RATE_WINDOW_SECONDS", 60)) * time.Second,
		AuthRateLimit:  envInt(getenv, "AUTH_RATE_LIMIT", 10),
		AuthRateWindow: time.Duration(envInt(getenv, "AUTH_RATE_WINDOW_SECONDS", 60)) * time.Second,

		Economy: Economy{
			StartingLight:   int64(envInt(getenv, "STARTING_LIGHT", 100)),
			MissionReward:   int64(envInt(getenv, "MISSION_REWARD", 10)),
			ReferralBonus:   int64(envInt(getenv, "REFERRAL_BONUS", 30)),
			DailyLightLimit: int64(envInt(getenv, "DAILY_LIGHT_LIMIT", 50)),
		},
	}

	// Проверка тг id админов !! ЧЕРЕЗ ЗАПЯТУЮ В ENV !!
	if raw := getenv("ADMIN_TELEGRAM_IDS"); raw != "" {
		for _, idStr := range strings.Split(raw, ",") {
			idStr = strings.TrimSpace(idStr)
			if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
				cfg.AdminTelegramIDs = append(cfg.AdminTelegramIDs, id)
			}
		}
	}

	return cfg
}

// RequireAPI проверяет переменные, без которых HTTP API не стартует
func (c *Config) RequireAPI() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is not set"))
	}
	if c.BotToken == "" && !c.DevMode {
		errs = append(errs, errors.New("BOT_TOKEN is not set"))
	}
	if err := c.requireStore(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// RequireBot проверяет переменные для бота
func (c *Config) RequireBot() error {
	var errs []error
	if c.BotToken == "" {
		errs = append(errs, errors.New("BOT_TOKEN is not set"))
	}
	if c.WebAppURL == "" {
		errs = append(errs, errors.New("WEB_APP_URL is not set"))
	}
	if err := c.requireStore(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Config) requireStore() error {
	switch c.KVBackend {
	case "", "memory":
		return nil
	case "redis":
		if c.RedisURL == "" && c.RedisAddr == "" {
			return errors.New("KV_BACKEND=redis requires REDIS_URL or REDIS_ADDR")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("KV_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return errors.New("unknown KV_BACKEND " + c.KVBackend)
	}
	return nil
}

// IsAdmin checks the ADMIN_TELEGRAM_IDS list
func (c *Config) IsAdmin(tgID int64) bool {
	for _, id := range c.AdminTelegramIDs {
		if id == tgID {
			return true
		}
	}
	return false
}

func envString(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

// положительное целое или значение по умолчанию
func envInt(getenv func(string) string, key string, def int) int {
	if v := getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			return n
		}
	}
	return def
}
