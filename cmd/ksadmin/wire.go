package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/digicoders-git/ksadmin/internal/auth"
	"github.com/digicoders-git/ksadmin/internal/config"
	"github.com/digicoders-git/ksadmin/internal/logging"
	"github.com/digicoders-git/ksadmin/internal/session"
	"github.com/digicoders-git/ksadmin/internal/storage"
	"github.com/digicoders-git/ksadmin/pkg/client"
)

// deps holds the process-wide collaborators built from configuration.
type deps struct {
	cfg    *config.Config
	log    *zap.Logger
	auth   *auth.Manager
	client *client.Client

	closers []func() error
}

func setup(cfgFile string) (*deps, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	d := &deps{cfg: cfg, log: log}

	kv, closeKV := openStorage(cfg, log)
	if closeKV != nil {
		d.closers = append(d.closers, closeKV)
	}

	d.auth = auth.NewManager(session.NewStore(kv, log), log)

	opts := []client.Option{
		client.WithTimeout(cfg.HTTPTimeout),
		client.WithRateLimit(rate.Limit(cfg.RateLimit), cfg.RateBurst),
	}
	if cfg.LogoutOnUnauthorized {
		mgr := d.auth
		opts = append(opts, client.WithUnauthorizedHandler(func() {
			log.Warn("request rejected with 401, dropping session")
			mgr.Logout(context.Background())
		}))
	}
	d.client = client.New(cfg.APIURL, d.auth, opts...)

	log.Info("ksadmin starting",
		zap.String("version", version),
		zap.String("api", cfg.APIURL),
		zap.String("storage", cfg.Storage),
	)
	return d, nil
}

// openStorage builds the configured backend. An unreachable Redis is logged
// and kept; the session store degrades to no-ops on its errors.
func openStorage(cfg *config.Config, log *zap.Logger) (storage.Store, func() error) {
	switch cfg.Storage {
	case config.StorageRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		r := storage.NewRedis(rdb, cfg.RedisPrefix)
		return r, r.Close
	case config.StorageMemory:
		return storage.NewMemory(), nil
	default:
		return storage.NewFile(cfg.StorageDir), nil
	}
}

func (d *deps) Close() error {
	var firstErr error
	for _, c := range d.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close: %w", err)
		}
	}
	_ = d.log.Sync()
	return firstErr
}
