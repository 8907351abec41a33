package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// RootModel is the auth-flow router:
// 1) keeps the active page
// 2) handles global Ctrl+C quit
// 3) handles NavigateTo messages
// 4) delegates all other messages to the active page
type RootModel struct {
	pages   map[string]tea.Model
	current tea.Model

	quitByUser bool
}

// NewRootModel registers all pages and opens startPage.
func NewRootModel(pages map[string]tea.Model, startPage string) RootModel {
	return RootModel{
		pages:   pages,
		current: pages[startPage],
	}
}

func (r RootModel) Init() tea.Cmd {
	if r.current == nil {
		return nil
	}
	return r.current.Init()
}

func (r RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Global hotkey for every page.
	if key, ok := msg.(tea.KeyMsg); ok {
		if key.String() == "ctrl+c" {
			r.quitByUser = true
			return r, tea.Quit
		}
	}

	// Cross-page navigation.
	if nav, ok := msg.(NavigateTo); ok {
		next, exists := r.pages[nav.Page]
		if !exists {
			return r, nil
		}

		r.current = next
		return r, r.current.Init()
	}

	// A successful login ends the auth flow; a successful registration
	// returns to the menu so the user signs in explicitly.
	if result, ok := msg.(AuthResult); ok && result.Err == nil {
		// let the form clear its submitting state before leaving it
		updated, _ := r.current.Update(msg)
		r.current = updated

		if !result.Registered {
			return r, tea.Quit
		}

		if menu, exists := r.pages["menu"]; exists {
			r.current = menu
			return r, func() tea.Msg { return RegisterSuccessNotice{Login: result.Login} }
		}
		return r, nil
	}

	if r.current == nil {
		return r, nil
	}

	updated, cmd := r.current.Update(msg)
	r.current = updated
	return r, cmd
}

func (r RootModel) View() string {
	if r.current == nil {
		return renderPage("POCKET BRAIN", "", "")
	}
	return r.current.View()
}
