package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/google/uuid"

	"github.com/bananahana720/pocket-brain-sub000/internal/adapter"
	"github.com/bananahana720/pocket-brain-sub000/internal/config"
	"github.com/bananahana720/pocket-brain-sub000/internal/engine"
	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/internal/store"
	"github.com/bananahana720/pocket-brain-sub000/internal/tui"
)

type App struct {
	db     *store.DB
	state  store.LocalSyncRepository
	server adapter.ServerAdapter
	engine *engine.SyncEngine
	tui    *tui.TUI

	logger *logger.Logger
}

// NewApp wires the client from the merged configuration: local SQLite
// store, device identity, server adapter, sync engine, and terminal UI.
func NewApp(cfg *config.ClientConfig, log *logger.Logger) (*App, error) {
	ctx := context.Background()

	db, err := store.NewConnectSQLite(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	notes := store.NewLocalNoteRepository(db, log)
	state := store.NewLocalSyncRepository(db, log)

	device, err := deviceIdentity(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("resolve device identity: %w", err)
	}

	serverAdapter, err := adapter.NewHTTPServerAdapter(cfg.Adapter, device, log)
	if err != nil {
		return nil, fmt.Errorf("create server adapter: %w", err)
	}

	// restore the bearer token of the previous session, if any
	if token, err := state.GetMeta(ctx, store.MetaToken); err == nil && token != "" {
		serverAdapter.SetToken(token)
	}

	syncEngine := engine.New(cfg.Engine, serverAdapter, notes, state, log)

	ui, err := tui.New(syncEngine, serverAdapter, state, log)
	if err != nil {
		return nil, fmt.Errorf("create ui: %w", err)
	}

	return &App{
		db:     db,
		state:  state,
		server: serverAdapter,
		engine: syncEngine,
		tui:    ui,
		logger: log,
	}, nil
}

// Run starts the sync engine and blocks in the terminal UI until exit.
func (a *App) Run() error {
	ctx := context.Background()
	defer a.db.Close()

	if err := a.engine.Hydrate(ctx); err != nil {
		return fmt.Errorf("hydrate sync engine: %w", err)
	}

	if err := a.engine.Start(ctx); err != nil {
		return fmt.Errorf("start sync engine: %w", err)
	}
	defer a.engine.Close()

	// with a restored session the engine syncs immediately; otherwise it
	// stays disabled until the UI completes a sign-in
	if a.server.Token() != "" {
		a.engine.Enable()

		if err := a.engine.Bootstrap(ctx); err != nil {
			a.logger.Warn().Err(err).Msg("bootstrap on startup failed, will retry after next sign-in")
		}
	}

	return a.tui.Run()
}

// deviceIdentity loads the stable per-installation device ID, minting and
// persisting one on first run.
func deviceIdentity(ctx context.Context, state store.LocalSyncRepository) (adapter.DeviceInfo, error) {
	deviceID, err := state.GetMeta(ctx, store.MetaDeviceID)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrMetaNotFound):
		deviceID = uuid.NewString()
		if err = state.SetMeta(ctx, store.MetaDeviceID, deviceID); err != nil {
			return adapter.DeviceInfo{}, fmt.Errorf("persist device id: %w", err)
		}
	default:
		return adapter.DeviceInfo{}, fmt.Errorf("load device id: %w", err)
	}

	label, err := os.Hostname()
	if err != nil || label == "" {
		label = "unknown-host"
	}

	return adapter.DeviceInfo{
		ID:       deviceID,
		Label:    label,
		Platform: runtime.GOOS,
	}, nil
}
