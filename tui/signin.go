package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"skybook-cli/service"
)

type signInModel struct {
	email    textinput.Model
	password textinput.Model
	focus    int
	signUp   bool

	note       string
	submitting bool
}

func newSignIn() signInModel {
	email := textinput.New()
	email.Prompt = ""
	email.Placeholder = "you@example.com"
	email.CharLimit = 64

	password := textinput.New()
	password.Prompt = ""
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 64

	email.Focus()
	return signInModel{email: email, password: password}
}

func (s signInModel) focusCmd() tea.Cmd {
	return textinput.Blink
}

func (s signInModel) update(msg tea.KeyMsg, client *service.Client) (signInModel, tea.Cmd) {
	if s.submitting {
		return s, nil
	}

	switch msg.String() {
	case "tab", "down", "shift+tab", "up":
		s.focus = 1 - s.focus
		if s.focus == 0 {
			s.password.Blur()
			return s, s.email.Focus()
		}
		s.email.Blur()
		return s, s.password.Focus()
	case "ctrl+n":
		s.signUp = !s.signUp
		s.note = ""
		return s, nil
	case "enter":
		if s.focus == 0 {
			s.focus = 1
			s.email.Blur()
			return s, s.password.Focus()
		}
		email := strings.TrimSpace(s.email.Value())
		password := s.password.Value()
		if email == "" || password == "" {
			s.note = "Email and password are required."
			return s, nil
		}
		s.note = ""
		s.submitting = true
		return s, signInCmd(client, email, password, s.signUp)
	}

	var cmd tea.Cmd
	if s.focus == 0 {
		s.email, cmd = s.email.Update(msg)
	} else {
		s.password, cmd = s.password.Update(msg)
	}
	return s, cmd
}

func signInCmd(client *service.Client, email string, password string, signUp bool) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var session service.Session
		var err error
		if signUp {
			session, err = client.SignUp(ctx, email, password)
		} else {
			session, err = client.SignIn(ctx, email, password)
		}
		return sessionMsg{session: session, err: err}
	}
}

func (s signInModel) view() string {
	title := "Sign in to continue"
	action := "sign in"
	if s.signUp {
		title = "Create an account"
		action = "sign up"
	}

	focusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	emailLabel := "  Email"
	passwordLabel := "  Password"
	if s.focus == 0 {
		emailLabel = focusStyle.Render("> Email")
	} else {
		passwordLabel = focusStyle.Render("> Password")
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(title),
		"",
		emailLabel + "     " + s.email.View(),
		passwordLabel + "  " + s.password.View(),
	}
	if s.submitting {
		lines = append(lines, "", hint("Signing in..."))
	} else {
		lines = append(lines, "", hint("Press enter to "+action+", ctrl+n to switch sign in/up."))
	}
	if s.note != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(s.note))
	}
	return strings.Join(lines, "\n")
}
