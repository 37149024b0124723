package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"clubhub/internal/accounts"
	"clubhub/internal/audit"
	"clubhub/internal/auth"
	"clubhub/internal/config"
	"clubhub/internal/directory"
	"clubhub/internal/httpapi"
	"clubhub/pkg/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/crypto/bcrypt"
)

const healthTimeout = 2 * time.Second

// buildHandlers wires the services behind the router. Postgres is optional: without
// DB_HOST the audit trail goes to the structured log.
func buildHandlers(ctx context.Context, cfg config.Config, log *slog.Logger) (httpapi.Handlers, func(), error) {
	cleanup := func() {}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		return httpapi.Handlers{}, cleanup, fmt.Errorf("auth: %w", err)
	}

	var auditRepo audit.Repository = audit.NewLogRepo(log)
	var dbCheck func(context.Context) error
	if cfg.HasDatabase() {
		db, err := utils.OpenPostgres(ctx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			return httpapi.Handlers{}, cleanup, fmt.Errorf("postgres: %w", err)
		}
		cleanup = func() { _ = db.Close() }

		pg := audit.NewPostgresRepo(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			cleanup()
			return httpapi.Handlers{}, func() {}, fmt.Errorf("audit schema: %w", err)
		}
		auditRepo = pg
		dbCheck = func(ctx context.Context) error { return utils.HealthCheck(ctx, db, healthTimeout) }
		log.Info("audit trail in postgres", "host", cfg.DB.Host, "db", cfg.DB.Name)
	}

	cost := bcrypt.DefaultCost
	if !cfg.IsProduction() {
		cost = bcrypt.MinCost
	}
	acc, err := accounts.NewService(accounts.NewMemoryRepo(), cost)
	if err != nil {
		cleanup()
		return httpapi.Handlers{}, func() {}, fmt.Errorf("accounts: %w", err)
	}
	dir := directory.NewService(directory.NewMemoryRepo())

	if cfg.SeedDemoData {
		if err := httpapi.SeedDemo(ctx, acc, dir, time.Now()); err != nil {
			cleanup()
			return httpapi.Handlers{}, func() {}, err
		}
		for _, a := range httpapi.DemoAccounts {
			log.Info("demo account", "email", a.Email, "role", string(a.Role))
		}
	}

	return httpapi.Handlers{
		Auth:          authManager,
		Accounts:      acc,
		Directory:     dir,
		Audit:         audit.NewService(auditRepo, audit.SourceBackend),
		RotateRefresh: cfg.Auth.RotateRefresh,
		DBCheck:       dbCheck,
	}, cleanup, nil
}
