package main

import (
	"context"
	"flag"
	"time"

	"alchemy_webapp/internal/config"
	"alchemy_webapp/internal/db"
	"alchemy_webapp/internal/logger"
)

func main() {
	apply := flag.Bool("apply", false, "apply pending migrations")
	down := flag.Bool("down", false, "roll back the latest migration")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db connect failed", "error", err)
	}
	defer pool.Close()

	switch {
	case *apply && *down:
		logger.Fatal("use either -apply or -down")
	case *apply:
		err = db.Migrate(ctx, pool)
	case *down:
		err = db.MigrateDown(ctx, pool)
	}
	if err != nil {
		logger.Fatal("migration failed", "error", err)
	}

	// без флагов только показываем состояние
	if err := db.MigrationStatus(ctx, pool); err != nil {
		logger.Fatal("migration status failed", "error", err)
	}
}
