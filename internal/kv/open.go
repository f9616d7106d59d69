package kv

import (
	"context"
	"fmt"
	"time"

	"alchemy_webapp/internal/db"
	"alchemy_webapp/internal/logger"
	"alchemy_webapp/internal/metrics"

	redis "github.com/redis/go-redis/v9"
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Options struct {
	// Backend: memory, redis, postgres or empty for auto-detect.
	Backend       string
	RedisURL      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DatabaseURL   string
}

func (o Options) redisConfigured() bool {
	return o.RedisURL != "" || o.RedisAddr != ""
}

func (o Options) redisOptions() (*redis.Options, error) {
	if o.RedisURL != "" {
		opts, err := redis.ParseURL(o.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: o.RedisAddr, Password: o.RedisPassword, DB: o.RedisDB}, nil
}

// Open picks a backend. In auto mode Redis is used when configured and
// reachable, otherwise the app runs on the in-memory store.
func Open(ctx context.Context, opts Options) (Store, error) {
	log := logger.With("component", "kv")

	var (
		store Store
		err   error
	)
	switch opts.Backend {
	case BackendRedis:
		store, err = openRedis(ctx, opts)
	case BackendPostgres:
		store, err = openPostgres(ctx, opts)
	case BackendMemory:
		store = NewMemoryStore()
	case "":
		if !opts.redisConfigured() {
			log.Warn("redis is not configured, using in-memory store: data will be lost on restart")
			metrics.StoreFallback.Inc()
			store = NewMemoryStore()
			break
		}
		store, err = openRedis(ctx, opts)
		if err != nil {
			log.Warn("redis unavailable, using in-memory store: data will be lost on restart", "error", err)
			metrics.StoreFallback.Inc()
			store, err = NewMemoryStore(), nil
		}
	default:
		return nil, fmt.Errorf("unknown kv backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}

	metrics.StoreBackend.WithLabelValues(store.Backend()).Set(1)
	log.Info("kv store ready", "backend", store.Backend())
	return store, nil
}

func openRedis(ctx context.Context, opts Options) (*RedisStore, error) {
	ropts, err := opts.redisOptions()
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(ropts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStore(client), nil
}

func openPostgres(ctx context.Context, opts Options) (*PostgresStore, error) {
	if opts.DatabaseURL == "" {
		return nil, fmt.Errorf("postgres backend requires DATABASE_URL")
	}
	pool, err := db.Connect(ctx, opts.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return NewPostgresStore(pool), nil
}

type purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// StartJanitor periodically purges expired keys on backends without native
// TTL eviction. Redis expires keys itself, so it is a no-op there.
func StartJanitor(ctx context.Context, s Store, every time.Duration) {
	p, ok := s.(purger)
	if !ok {
		return
	}
	log := logger.With("component", "kv_janitor", "backend", s.Backend())

	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := p.PurgeExpired(ctx)
				if err != nil {
					log.Warn("purge expired keys failed", "error", err)
					continue
				}
				if n > 0 {
					log.Debug("purged expired keys", "count", n)
				}
			}
		}
	}()
}
