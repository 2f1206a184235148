package main

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yanqian/auth-service/internal/domain/auth"
	"github.com/yanqian/auth-service/internal/infra/config"
	"github.com/yanqian/auth-service/internal/infra/credentialrepo"
	"github.com/yanqian/auth-service/internal/infra/postgres"
	"github.com/yanqian/auth-service/internal/infra/sessionrepo"
	"github.com/yanqian/auth-service/internal/infra/sqlite"
	httpiface "github.com/yanqian/auth-service/internal/interface/http"
)

const connectTimeout = 30 * time.Second

// backend is the auth service bound to the configured engine plus its liveness probe.
type backend struct {
	service auth.Service
	health  httpiface.HealthChecker
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		SessionTTL:        cfg.Auth.SessionTTL,
		MinPasswordLength: cfg.Auth.MinPasswordLength,
		Password: auth.PasswordParams{
			MemoryKiB:   cfg.Auth.Argon2.MemoryKiB,
			Iterations:  cfg.Auth.Argon2.Iterations,
			Parallelism: cfg.Auth.Argon2.Parallelism,
			SaltLength:  cfg.Auth.Argon2.SaltLength,
			KeyLength:   cfg.Auth.Argon2.KeyLength,
		},
	}
}

// provideBackend opens the configured engine once for the process lifetime and
// binds the service to its transaction type. The cleanup closes the pool.
func provideBackend(cfg *config.Config, authCfg auth.Config, logger *slog.Logger) (backend, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	switch cfg.Database.Engine {
	case config.EnginePostgres:
		pool, err := postgres.Connect(ctx, postgres.Options{
			URL:      cfg.Database.URL,
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
			Migrate:  cfg.Database.Migrate,
		})
		if err != nil {
			return backend{}, nil, err
		}
		runner := postgres.NewRunner(pool, cfg.Database.AcquireTimeout)
		svc := auth.NewService[pgx.Tx](authCfg, runner, credentialrepo.NewPostgresRepository(), sessionrepo.NewPostgresRepository(), logger)
		logger.Info("postgres storage ready", "migrate", cfg.Database.Migrate)
		return backend{service: svc, health: runner}, pool.Close, nil
	default:
		db, err := sqlite.Open(ctx, cfg.Database.URL)
		if err != nil {
			return backend{}, nil, err
		}
		runner := sqlite.NewRunner(db, cfg.Database.AcquireTimeout)
		svc := auth.NewService[*sql.Tx](authCfg, runner, credentialrepo.NewSQLiteRepository(), sessionrepo.NewSQLiteRepository(), logger)
		logger.Info("sqlite storage ready", "url", cfg.Database.URL)
		cleanup := func() {
			if err := db.Close(); err != nil {
				logger.Error("close sqlite database", "error", err)
			}
		}
		return backend{service: svc, health: runner}, cleanup, nil
	}
}

func provideAuthService(b backend) auth.Service {
	return b.service
}

func provideHealthChecker(b backend) httpiface.HealthChecker {
	return b.health
}
