package tui

import (
	"context"
	"strings"

	"github.com/bananahana720/pocket-brain-sub000/internal/adapter"
	"github.com/bananahana720/pocket-brain-sub000/models"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type authMode int

const (
	authModeLogin authMode = iota
	authModeRegister
)

// AuthFormModel is the Bubble Tea model for the sign-in and register
// screens. Both share the same two-input form; mode selects which
// adapter call the submit command dispatches. On success an [AuthResult]
// message is produced and handled by [RootModel].
type AuthFormModel struct {
	ctx    context.Context
	server adapter.ServerAdapter
	mode   authMode

	inputs     []textinput.Model
	focus      int
	submitting bool
	errMsg     string
}

// NewAuthFormModel creates an [AuthFormModel] with pre-configured login
// and password inputs. The login field receives focus immediately; the
// password field uses masked echo.
func NewAuthFormModel(ctx context.Context, server adapter.ServerAdapter, mode authMode) *AuthFormModel {
	loginInput := textinput.New()
	loginInput.Placeholder = "login"
	loginInput.CharLimit = 64
	loginInput.Width = 40
	loginInput.Focus()

	passwordInput := textinput.New()
	passwordInput.Placeholder = "password"
	passwordInput.CharLimit = 256
	passwordInput.Width = 40
	passwordInput.EchoMode = textinput.EchoPassword
	passwordInput.EchoCharacter = '*'

	return &AuthFormModel{
		ctx:    ctx,
		server: server,
		mode:   mode,
		inputs: []textinput.Model{loginInput, passwordInput},
	}
}

// Init implements [tea.Model]. Starts the cursor-blink animation for the
// active input.
func (m *AuthFormModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements [tea.Model]. Handled messages:
//   - [AuthResult] — clears submitting state; on error, populates errMsg.
//   - esc          — cancels and navigates back to the menu.
//   - tab          — moves focus to the next input.
//   - shift+tab    — moves focus to the previous input.
//   - enter        — validates inputs and dispatches the async submit command.
//
// All other key events are forwarded to the focused input widget.
func (m *AuthFormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(AuthResult); ok {
		m.submitting = false
		if result.Err != nil {
			m.errMsg = humanizeError(result.Err)
		}
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			m.submitting = false
			m.errMsg = ""
			return m, func() tea.Msg { return NavigateTo{Page: "menu"} }
		case "tab":
			m.focusNext()
			return m, nil
		case "shift+tab":
			m.focusPrev()
			return m, nil
		case "enter":
			if m.submitting {
				return m, nil
			}

			login := strings.TrimSpace(m.inputs[0].Value())
			pass := m.inputs[1].Value()
			if login == "" || pass == "" {
				m.errMsg = "login and password are required"
				return m, nil
			}

			m.errMsg = ""
			m.submitting = true
			return m, m.cmdSubmit(login, pass)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// View implements [tea.Model]. Renders the form as a two-column table
// with login and password inputs, a submission indicator, and an
// optional error message.
func (m *AuthFormModel) View() string {
	var b strings.Builder
	b.WriteString("Field    │ Value\n")
	b.WriteString("─────────┼────────────────────────────────────────────\n")
	b.WriteString("Login    │ [")
	b.WriteString(m.inputs[0].View())
	b.WriteString("]\n")
	b.WriteString("Password │ [")
	b.WriteString(m.inputs[1].View())
	b.WriteString("]\n")

	submitLabel := "Sign in"
	title := "SIGN IN"
	if m.mode == authModeRegister {
		submitLabel = "Register"
		title = "REGISTER"
	}

	if m.submitting {
		b.WriteString("\n[" + submitLabel + "...]\n")
	} else {
		b.WriteString("\n[" + submitLabel + "]\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.errMsg))
		b.WriteString("\n")
	}

	return renderPage(title, strings.TrimRight(b.String(), "\n"), "esc: back | tab: next field | enter: submit")
}

func (m *AuthFormModel) cmdSubmit(login, pass string) tea.Cmd {
	ctx := m.ctx
	server := m.server
	mode := m.mode

	return func() tea.Msg {
		user := models.User{Login: login, Password: pass}

		var err error
		if mode == authModeRegister {
			_, err = server.Register(ctx, user)
		} else {
			_, err = server.Login(ctx, user)
		}

		return AuthResult{
			Err:        err,
			Login:      login,
			Registered: mode == authModeRegister,
		}
	}
}

func (m *AuthFormModel) focusNext() {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + 1) % len(m.inputs)
	m.inputs[m.focus].Focus()
}

func (m *AuthFormModel) focusPrev() {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus - 1 + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
}
