package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/retroplay/internal/config"
	"github.com/vovakirdan/retroplay/internal/core"
	"github.com/vovakirdan/retroplay/internal/identity"
	"github.com/vovakirdan/retroplay/internal/profile"
	"github.com/vovakirdan/retroplay/internal/remote"
	"github.com/vovakirdan/retroplay/internal/remote/httpstore"
	"github.com/vovakirdan/retroplay/internal/remote/pgstore"
	"github.com/vovakirdan/retroplay/internal/remote/sqlitestore"
	"github.com/vovakirdan/retroplay/internal/storage"
)

// remoteOpener checks cfg and returns the opener of the selected store.
// The none backend returns a nil opener and no error.
func remoteOpener(cfg config.SyncConfig) (remote.Opener, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "none":
		return nil, nil
	case "sqlite":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("sqlite backend needs a dsn (database path)")
		}
		path, err := storage.ExpandPath(cfg.DSN)
		if err != nil {
			return nil, err
		}
		return func(context.Context) (remote.Store, error) {
			return sqlitestore.Open(path)
		}, nil
	case "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("postgres backend needs a dsn")
		}
		return func(ctx context.Context) (remote.Store, error) {
			if cfg.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
				defer cancel()
			}
			return pgstore.Open(ctx, cfg.DSN)
		}, nil
	case "http":
		client, err := httpstore.New(cfg.URL, httpstore.WithToken(cfg.Token))
		if err != nil {
			return nil, err
		}
		return func(context.Context) (remote.Store, error) {
			return client, nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown sync backend %q", cfg.Backend)
	}
}

// openRemoteStore opens the store selected by cfg.Backend now. The none
// backend returns a nil store and no error.
func openRemoteStore(ctx context.Context, cfg config.SyncConfig) (remote.Store, error) {
	open, err := remoteOpener(cfg)
	if err != nil || open == nil {
		return nil, err
	}
	return open(ctx)
}

// lazyRemoteStore returns the store selected by cfg.Backend, opened on
// first use and reopened after failures. Only configuration errors are
// reported here.
func lazyRemoteStore(cfg config.SyncConfig) (remote.Store, error) {
	open, err := remoteOpener(cfg)
	if err != nil || open == nil {
		return nil, err
	}
	return remote.NewLazy(open), nil
}

// loadSyncConfig reads sync.yaml, falling back to defaults.
func loadSyncConfig(logger *log.Logger) config.SyncConfig {
	cfg, err := config.LoadSync(flagSyncConfig)
	if err != nil {
		logger.Warn("sync config unreadable, using defaults", "error", err)
		return config.DefaultSyncConfig()
	}
	return cfg
}

// session is what a local command needs to play under a profile.
type session struct {
	kv      storage.Backend
	store   remote.Store
	profile *profile.Service
}

// openSession opens local storage, prepares the remote store, resolves the
// player and starts the profile service. Nothing here fails: a missing
// database degrades to in-memory storage and an unreachable store is
// retried on every foreground sync.
func openSession(ctx context.Context, logger *log.Logger) *session {
	kv := storage.OpenOrMemory(flagDBPath, logger)
	syncCfg := loadSyncConfig(logger)

	store, err := lazyRemoteStore(syncCfg)
	if err != nil {
		logger.Warn("remote store misconfigured, playing offline", "backend", syncCfg.Backend, "error", err)
		store = nil
	}

	ident := identity.Resolve(identity.Source{Explicit: flagUser, KV: kv})
	logger.Info("player resolved", "identity", ident.ID, "name", ident.DisplayName)

	svc := profile.New(profile.Options{
		Store:    store,
		KV:       kv,
		Identity: ident,
		Config:   syncCfg,
		Logger:   logger,
	})
	svc.Start(ctx)
	return &session{kv: kv, store: store, profile: svc}
}

func (s *session) Close() {
	s.profile.Close()
	if s.store != nil {
		s.store.Close()
	}
	s.kv.Close()
}

// runtimeConfig returns the engine config for the current terminal.
func runtimeConfig(width, height int) core.RuntimeConfig {
	cfg := core.DefaultConfig()
	cfg.ScreenW, cfg.ScreenH = width, height
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed
	return cfg
}
