// Package tui implements the terminal client: sign-in and registration,
// the note list with live sync status, capture and edit forms, the
// manual conflict screen, and device management. It is a Bubble Tea
// application; all sync work happens in the engine, the TUI only renders
// its state and issues commands.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bananahana720/pocket-brain-sub000/internal/adapter"
	"github.com/bananahana720/pocket-brain-sub000/internal/engine"
	"github.com/bananahana720/pocket-brain-sub000/internal/logger"
	"github.com/bananahana720/pocket-brain-sub000/internal/store"
)

// ErrUserQuit reports that the user exited the program from the auth flow.
var ErrUserQuit = errors.New("user quit")

type TUI struct {
	engine *engine.SyncEngine
	server adapter.ServerAdapter
	state  store.LocalSyncRepository

	logger *logger.Logger
}

func New(syncEngine *engine.SyncEngine, server adapter.ServerAdapter, state store.LocalSyncRepository, log *logger.Logger) (*TUI, error) {
	return &TUI{
		engine: syncEngine,
		server: server,
		state:  state,
		logger: log,
	}, nil
}

// Run drives the whole client session: the auth flow when no token is
// held, then the main loop. Logging out returns to the auth flow.
func (t *TUI) Run() error {
	ctx := context.Background()

	for {
		if t.server.Token() == "" {
			if err := t.authFlow(ctx); err != nil {
				if errors.Is(err, ErrUserQuit) {
					return nil
				}
				return err
			}

			// the token is durable so a restart resumes the session
			if err := t.state.SetMeta(ctx, store.MetaToken, t.server.Token()); err != nil {
				t.logger.Warn().Err(err).Msg("persist session token")
			}

			t.engine.Enable()
			if err := t.engine.Bootstrap(ctx); err != nil {
				t.logger.Warn().Err(err).Msg("bootstrap after sign-in failed")
			}
		}

		logout, err := t.mainLoop(ctx)
		if err != nil {
			return err
		}
		if !logout {
			return nil
		}

		// sign out: drop the session but keep notes and queued ops durable
		t.engine.Disable()
		t.server.SetToken("")
		if err := t.state.DeleteMeta(ctx, store.MetaToken); err != nil {
			t.logger.Warn().Err(err).Msg("drop session token")
		}
	}
}

func (t *TUI) authFlow(ctx context.Context) error {
	pages := map[string]tea.Model{
		"menu":     NewMenuModel(),
		"login":    NewAuthFormModel(ctx, t.server, authModeLogin),
		"register": NewAuthFormModel(ctx, t.server, authModeRegister),
	}

	root := NewRootModel(pages, "menu")
	finalModel, err := tea.NewProgram(root, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(RootModel)
	if !ok {
		return tea.ErrProgramKilled
	}
	if result.quitByUser {
		return ErrUserQuit
	}

	return nil
}

func (t *TUI) mainLoop(ctx context.Context) (logout bool, err error) {
	model := newMainLoopModel(ctx, t.engine, t.server)
	finalModel, runErr := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if runErr != nil {
		return false, runErr
	}

	result, ok := finalModel.(mainLoopModel)
	if !ok {
		return false, tea.ErrProgramKilled
	}
	return result.logout, nil
}
