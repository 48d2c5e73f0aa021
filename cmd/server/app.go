package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/nourishtogether/donation-api/internal/auth"
	"github.com/nourishtogether/donation-api/internal/cache"
	"github.com/nourishtogether/donation-api/internal/config"
	"github.com/nourishtogether/donation-api/internal/database"
	"github.com/nourishtogether/donation-api/internal/handlers"
	"github.com/nourishtogether/donation-api/internal/logger"
	"github.com/nourishtogether/donation-api/internal/payments"
	"github.com/nourishtogether/donation-api/internal/repository"
	"github.com/nourishtogether/donation-api/internal/storage"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const serviceName = "nourish-api"

// app holds the process-wide dependencies shared by every subcommand.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	repos  repository.Repositories
	tokens *auth.Tokens

	gormDB  *gorm.DB
	closers []func() error
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
	})
	zerolog.DefaultContextLogger = &log

	a := &app{
		cfg:    cfg,
		log:    log,
		tokens: auth.NewTokens(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL),
	}
	if err := a.openStore(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	if a.cfg.DB.Driver == config.DriverMongo {
		client, db, err := database.ConnectMongo(ctx, a.cfg.DB)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() error { return client.Disconnect(context.Background()) })
		if err := repository.EnsureMongoIndexes(ctx, db); err != nil {
			return fmt.Errorf("failed to create mongo indexes: %w", err)
		}
		a.repos = repository.NewMongoRepositories(db, a.cfg.DB.Timeout)
		a.log.Info().Str("driver", a.cfg.DB.Driver).Msg("store.connected")
		return nil
	}

	db, err := database.Connect(a.cfg.DB, strings.EqualFold(a.cfg.App.GinMode, "debug"))
	if err != nil {
		return err
	}
	a.gormDB = db
	a.closers = append(a.closers, func() error { return database.Close(db) })
	a.repos = repository.NewGormRepositories(db)
	a.log.Info().Str("driver", a.cfg.DB.Driver).Msg("store.connected")
	return nil
}

// migrate creates or updates the schema. Mongo only needs its indexes,
// which openStore already ensured.
func (a *app) migrate() error {
	if a.gormDB == nil {
		return nil
	}
	return database.Migrate(a.gormDB)
}

func (a *app) gateway() payments.Gateway {
	if !a.cfg.Razorpay.Enabled() {
		a.log.Warn().Msg("razorpay credentials not set; money donation orders are disabled")
		return nil
	}
	return payments.NewRazorpay(a.cfg.Razorpay.KeyID, a.cfg.Razorpay.KeySecret)
}

func (a *app) imageStore() storage.ImageStore {
	if !a.cfg.Cloudinary.Enabled() {
		a.log.Warn().Msg("cloudinary credentials not set; profile image uploads are disabled")
		return nil
	}
	c := a.cfg.Cloudinary
	store, err := storage.NewCloudinary(c.CloudName, c.APIKey, c.APISecret, c.Folder)
	if err != nil {
		a.log.Error().Err(err).Msg("cloudinary init failed; profile image uploads are disabled")
		return nil
	}
	return store
}

// redis returns nil when REDIS_URL is unset or unreachable; auth rate
// limiting is then off.
func (a *app) redis(ctx context.Context) *cache.Client {
	if !a.cfg.Redis.Enabled() {
		return nil
	}
	client, err := cache.New(ctx, a.cfg.Redis.URL)
	if err != nil {
		a.log.Error().Err(err).Msg("redis unavailable; auth rate limiting is disabled")
		return nil
	}
	a.closers = append(a.closers, client.Close)
	return client
}

func (a *app) healthChecks(redis *cache.Client) map[string]handlers.Pinger {
	checks := map[string]handlers.Pinger{"database": a.repos.Users}
	if redis != nil {
		checks["redis"] = redis
	}
	return checks
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn().Err(err).Msg("shutdown.close_failed")
		}
	}
}
