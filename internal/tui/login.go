package tui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/digicoders-git/ksadmin/internal/auth"
	"github.com/digicoders-git/ksadmin/pkg/client"
)

type loginField int

const (
	fieldIdentifier loginField = iota
	fieldSecret
	numLoginFields
)

// loginResultMsg carries the outcome of a login exchange. On success the
// session has already been handed to the auth manager.
type loginResultMsg struct {
	err error
}

type loginModel struct {
	fields     [numLoginFields]textinput.Model
	focus      loginField
	statusMsg  string
	submitting bool
}

func newLoginModel() loginModel {
	id := textinput.New()
	id.Placeholder = "email or username"
	id.Prompt = "  "
	id.CharLimit = 254
	id.Width = 40
	id.PromptStyle = inputPromptStyle
	id.PlaceholderStyle = inputPlaceholderStyle
	id.Focus()

	secret := textinput.New()
	secret.Placeholder = "password"
	secret.Prompt = "  "
	secret.CharLimit = 256
	secret.Width = 40
	secret.EchoMode = textinput.EchoPassword
	secret.EchoCharacter = '•'
	secret.PromptStyle = inputPromptStyle
	secret.PlaceholderStyle = inputPlaceholderStyle

	return loginModel{fields: [numLoginFields]textinput.Model{id, secret}}
}

func (m loginModel) identifier() string {
	return strings.TrimSpace(m.fields[fieldIdentifier].Value())
}

func (m loginModel) secret() string {
	return m.fields[fieldSecret].Value()
}

func (m loginModel) Update(msg tea.Msg, api API, mgr *auth.Manager) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.statusMsg = loginErrorMessage(msg.err)
			m.fields[fieldSecret].SetValue("")
			return m, nil
		}
		m.statusMsg = ""
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg, api, mgr)
	}
	return m, nil
}

func (m loginModel) updateKeys(msg tea.KeyMsg, api API, mgr *auth.Manager) (loginModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	switch msg.String() {
	case "tab", "down", "shift+tab", "up":
		// Two fields: forward and backward cycling coincide.
		return m.focusField((m.focus + 1) % numLoginFields), nil
	case "enter":
		if m.focus == fieldIdentifier {
			return m.focusField(fieldSecret), nil
		}
		return m.submit(api, mgr)
	case "ctrl+s":
		return m.submit(api, mgr)
	}

	m.statusMsg = ""
	var cmd tea.Cmd
	m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
	return m, cmd
}

func (m loginModel) focusField(f loginField) loginModel {
	m.fields[m.focus].Blur()
	m.focus = f
	m.fields[m.focus].Focus()
	return m
}

func (m loginModel) submit(api API, mgr *auth.Manager) (loginModel, tea.Cmd) {
	identifier, secret := m.identifier(), m.secret()
	if identifier == "" {
		m.statusMsg = "identifier is required"
		return m.focusField(fieldIdentifier), nil
	}
	if secret == "" {
		m.statusMsg = "password is required"
		return m.focusField(fieldSecret), nil
	}

	m.submitting = true
	m.statusMsg = ""
	return m, loginCmd(api, mgr, identifier, secret)
}

// loginCmd performs the exchange and, on success, commits the session.
func loginCmd(api API, mgr *auth.Manager, identifier, secret string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		resp, err := api.Login(ctx, identifier, secret)
		if err != nil {
			return loginResultMsg{err: err}
		}
		if err := mgr.SetLoginData(ctx, resp.Identity()); err != nil {
			return loginResultMsg{err: err}
		}
		return loginResultMsg{}
	}
}

// loginErrorMessage maps a login failure to the text shown in the form.
func loginErrorMessage(err error) string {
	var httpErr *client.HTTPError
	switch {
	case client.IsStatus(err, http.StatusUnauthorized),
		client.IsStatus(err, http.StatusBadRequest),
		client.IsStatus(err, http.StatusForbidden):
		return "Invalid credentials."
	case errors.Is(err, client.ErrMalformedLogin),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrMissingSubject):
		return "Unexpected response from server."
	case errors.As(err, &httpErr):
		return fmt.Sprintf("Login failed (HTTP %d). Try again later.", httpErr.StatusCode)
	default:
		return "Server unreachable. Check your connection."
	}
}

func (m loginModel) View(width int) string {
	var b strings.Builder

	b.WriteString("\n\n")
	b.WriteString("  " + titleStyle.Render("K S   M E D I A L") + "\n")
	b.WriteString("  " + dimStyle.Render("Admin sign in") + "\n\n")

	labels := [numLoginFields]string{"identifier", "password"}
	for i := loginField(0); i < numLoginFields; i++ {
		cursor := " "
		style := metaStyle
		if i == m.focus {
			cursor = accentStyle.Render(">")
			style = selectedStyle
		}
		fmt.Fprintf(&b, "  %s %s\n", cursor, style.Render(labels[i]))
		fmt.Fprintf(&b, "  %s\n\n", m.fields[i].View())
	}

	switch {
	case m.submitting:
		b.WriteString("  " + dimStyle.Render("signing in...") + "\n")
	case m.statusMsg != "":
		b.WriteString("  " + errorStyle.Render(truncStr(m.statusMsg, max(width-4, 20))) + "\n")
	}
	return b.String()
}

func (m loginModel) helpKeys() string {
	return helpBar("tab", "next field", "enter", "sign in", "ctrl+c", "quit")
}
