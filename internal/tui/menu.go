package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type menuItem struct {
	label string
	page  string
}

// MenuModel is the entry page of the auth flow.
type MenuModel struct {
	items  []menuItem
	cursor int
	notice string
}

func NewMenuModel() MenuModel {
	return MenuModel{
		items: []menuItem{
			{label: "Sign in", page: "login"},
			{label: "Register", page: "register"},
		},
	}
}

func (m MenuModel) Init() tea.Cmd {
	return nil
}

func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RegisterSuccessNotice:
		m.notice = fmt.Sprintf("Account %q created. Sign in to start syncing.", msg.Login)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "enter":
			m.notice = ""
			return m, func() tea.Msg { return NavigateTo{Page: m.items[m.cursor].page} }
		}
	}

	return m, nil
}

func (m MenuModel) View() string {
	var b strings.Builder

	if m.notice != "" {
		b.WriteString(m.notice)
		b.WriteString("\n\n")
	}

	for i, item := range m.items {
		pointer := "  "
		if i == m.cursor {
			pointer = "> "
		}
		b.WriteString(pointer)
		b.WriteString(item.label)
		b.WriteString("\n")
	}

	return renderPage("POCKET BRAIN", b.String(), "up/down: move | enter: select")
}
