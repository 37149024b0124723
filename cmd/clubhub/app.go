package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"clubhub/internal/audit"
	"clubhub/internal/backend"
	"clubhub/internal/config"
	"clubhub/internal/navigation"
	"clubhub/internal/reporting"
	"clubhub/internal/session"
	"clubhub/pkg/logger"
	"clubhub/pkg/utils"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in")

var _ reporting.Repository = (*backend.ResourceClient)(nil)

// app is everything one command invocation needs. The authenticator is the only writer of
// the session; the navigator follows it.
type app struct {
	cfg     config.ClientConfig
	log     *slog.Logger
	store   session.Store
	auth    *session.Authenticator
	nav     *navigation.Navigator
	creds   *backend.CredentialClient
	api     *backend.ResourceClient
	reports *reporting.Service

	closers []func()
}

func newApp(ctx context.Context, cfg config.ClientConfig, verbose bool) (*app, error) {
	log := logger.Discard()
	if verbose {
		log = logger.NewWithWriter(cfg.Env, os.Stderr).With("profile", cfg.Profile)
	}
	slog.SetDefault(log)

	a := &app{cfg: cfg, log: log}

	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	a.store = store

	a.creds = backend.NewCredentialClient(cfg.APIURL, cfg.HTTPTimeout, log)
	trail := audit.NewService(audit.NewLogRepo(log), audit.SourceClient).ForProfile(cfg.Profile)
	a.auth = session.NewAuthenticator(store, a.creds, session.WithLogger(log), session.WithAudit(trail))
	a.auth.Initialize(ctx)

	a.nav = navigation.New(a.auth.State(), log)
	a.closers = append(a.closers, a.nav.Close)
	a.nav.OnChange(func(ev navigation.Event) {
		if ev.Forced {
			pterm.Warning.WithWriter(os.Stderr).Println("Your session has expired. Please log in again.")
		}
	})

	a.api = backend.NewResourceClient(cfg.APIURL, cfg.HTTPTimeout, a.auth, log)
	a.reports = reporting.NewService(a.api)
	return a, nil
}

func (a *app) openStore(ctx context.Context) (session.Store, error) {
	switch a.cfg.Store {
	case config.StoreMemory:
		return session.NewMemoryStore(), nil
	case config.StoreRedis:
		rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{Addr: a.cfg.RedisAddr})
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		return session.NewRedisStore(rdb, a.cfg.Profile), nil
	default:
		return session.NewFileStore(a.cfg.ProfileDir()), nil
	}
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// requireSession guards command groups that only make sense signed in.
func requireSession(cmd *cobra.Command, args []string) error {
	if _, ok := cli.requireLogin(); !ok {
		return errNotLoggedIn
	}
	return nil
}

// requireLogin reports whether a session is present and tells the user otherwise.
func (a *app) requireLogin() (session.Identity, bool) {
	id, ok := a.auth.State().Current()
	if !ok {
		pterm.Warning.Println("Not logged in. Run `clubhub login` first.")
	}
	return id, ok
}
