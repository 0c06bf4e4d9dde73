// Package cli wires the intake service from configuration and exposes it as
// cobra commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/Chative-core-poc-v1/intake/internal/core"
	"github.com/Chative-core-poc-v1/intake/internal/intake/classifier"
	"github.com/Chative-core-poc-v1/intake/internal/intake/complaints"
	"github.com/Chative-core-poc-v1/intake/internal/intake/dialogue"
	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
	"github.com/Chative-core-poc-v1/intake/internal/intake/otp"
	"github.com/Chative-core-poc-v1/intake/internal/intake/registry"
	"github.com/Chative-core-poc-v1/intake/internal/intake/service"
	"github.com/Chative-core-poc-v1/intake/internal/intake/session"
	logx "github.com/Chative-core-poc-v1/intake/pkg/logger"
	pkgpostgres "github.com/Chative-core-poc-v1/intake/pkg/postgres"
	pkgredis "github.com/Chative-core-poc-v1/intake/pkg/redis"
)

// AppConfig defines every configurable parameter of the intake service,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`

	// Infrastructure
	Redis    pkgredis.Config
	Postgres pkgpostgres.Config

	HTTP       model.HTTPConfig
	Session    model.SessionConfig
	Dialogue   model.DialogueConfig
	Registry   model.RegistryConfig
	Classifier model.ClassifierConfig
	Storage    model.StorageConfig
}

const (
	backendMemory   = "memory"
	backendRedis    = "redis"
	backendPostgres = "postgres"
)

// LoadConfig reads .env when present and binds the environment.
func LoadConfig(envFile string) (AppConfig, error) {
	var cfg AppConfig
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			logx.Warn().Err(err).Str("path", envFile).Msg("Could not load env file")
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to process environment config: %w", err)
	}
	return cfg, nil
}

// Env is the parsed deployment environment.
func (c AppConfig) Env() core.Environment {
	return core.ParseEnvironment(strings.ToLower(strings.TrimSpace(c.Environment)))
}

// App holds the wired collaborators one process needs.
type App struct {
	Config     AppConfig
	Registry   *registry.Set
	Complaints complaints.Repository
	Sessions   session.Store
	Engine     *dialogue.Engine
	Service    *service.Service

	closers []func() error
}

// Close releases backend connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Build wires registries, classifier, storage backends and the dialogue
// engine from cfg. Callers must Close the returned App.
func Build(ctx context.Context, cfg AppConfig) (*App, error) {
	app := &App{Config: cfg}

	app.Registry = registry.NewSet(registry.FileSources(cfg.Registry))
	app.Registry.Load()

	cls, err := classifier.New(ctx, cfg.Classifier)
	if err != nil {
		return nil, fmt.Errorf("build classifier: %w", err)
	}

	repo, err := app.openComplaints(ctx)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Complaints = repo

	store, err := app.openSessions(ctx)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Sessions = store

	popts := []complaints.PersisterOption{complaints.WithPrefix(cfg.Dialogue.RefPrefix)}
	if path := strings.TrimSpace(cfg.Storage.DatasetCSV); path != "" {
		popts = append(popts, complaints.WithDataset(complaints.NewDatasetWriter(path)))
	}

	env := cfg.Env()
	devEcho := cfg.Dialogue.ShowDevCode && env.AllowsDevEcho()
	app.Engine = dialogue.New(app.Registry, cls, complaints.NewPersister(repo, popts...),
		dialogue.WithOTP(otp.NewManager(otp.WithExpiry(model.DurationOr(cfg.Dialogue.OTPTTL, otp.DefaultExpiry)))),
		dialogue.WithDevEcho(devEcho),
	)
	app.Service = service.New(app.Engine, store, app.Registry)

	logx.Info().
		Str("environment", env.String()).
		Str("sessions", cfg.Session.Backend).
		Str("complaints", cfg.Storage.Backend).
		Str("classifier", cfg.Classifier.Backend).
		Bool("dev_echo", devEcho).
		Msg("Intake service wired")
	return app, nil
}

func (a *App) openComplaints(ctx context.Context) (complaints.Repository, error) {
	switch backend := strings.ToLower(strings.TrimSpace(a.Config.Storage.Backend)); backend {
	case "", backendMemory:
		return complaints.NewMemoryRepository(), nil
	case backendPostgres:
		db, err := a.Config.Postgres.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to initialise postgres: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		return complaints.NewPostgresRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown complaint backend %q", backend)
	}
}

func (a *App) openSessions(ctx context.Context) (session.Store, error) {
	ttl := model.DurationOr(a.Config.Session.TTL, 0)
	switch backend := strings.ToLower(strings.TrimSpace(a.Config.Session.Backend)); backend {
	case "", backendMemory:
		return session.NewMemoryStore(ttl), nil
	case backendRedis:
		rdb, err := a.Config.Redis.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to initialise redis: %w", err)
		}
		a.closers = append(a.closers, rdb.Close)
		return session.NewRedisStore(rdb, ttl), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", backend)
	}
}

// Postgres returns the repository when the complaint backend is postgres.
func (a *App) Postgres() (*complaints.PostgresRepository, bool) {
	pg, ok := a.Complaints.(*complaints.PostgresRepository)
	return pg, ok
}
