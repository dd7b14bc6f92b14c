package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	fieldUsername = iota
	fieldPassword
)

// loginForm is the sign-in screen shown when a guarded view redirects.
type loginForm struct {
	inputs     []textinput.Model
	focused    int
	submitting bool
	err        string
}

func newLoginForm() loginForm {
	inputs := make([]textinput.Model, 2)

	inputs[fieldUsername] = textinput.New()
	inputs[fieldUsername].Placeholder = "username"
	inputs[fieldUsername].Prompt = "Username: "
	inputs[fieldUsername].CharLimit = 150

	inputs[fieldPassword] = textinput.New()
	inputs[fieldPassword].Placeholder = "password"
	inputs[fieldPassword].Prompt = "Password: "
	inputs[fieldPassword].EchoMode = textinput.EchoPassword
	inputs[fieldPassword].EchoCharacter = '•'

	form := loginForm{inputs: inputs}
	form.inputs[fieldUsername].Focus()
	return form
}

func (f loginForm) username() string {
	return strings.TrimSpace(f.inputs[fieldUsername].Value())
}

func (f loginForm) password() string {
	return f.inputs[fieldPassword].Value()
}

// focus moves the cursor to field i.
func (f loginForm) focus(i int) (loginForm, tea.Cmd) {
	f.focused = i
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == i {
			cmd = f.inputs[j].Focus()
			continue
		}
		f.inputs[j].Blur()
	}
	return f, cmd
}

// update handles a key. submit is true when the user asked to sign in with
// both fields filled.
func (f loginForm) update(msg tea.KeyMsg) (form loginForm, cmd tea.Cmd, submit bool) {
	if f.submitting {
		return f, nil, false
	}
	switch msg.String() {
	case "tab", "down", "shift+tab", "up":
		next := (f.focused + 1) % len(f.inputs)
		f, cmd = f.focus(next)
		return f, cmd, false
	case "enter":
		if f.focused == fieldUsername {
			f, cmd = f.focus(fieldPassword)
			return f, cmd, false
		}
		if f.username() == "" || f.password() == "" {
			f.err = "Username and password are required"
			return f, nil, false
		}
		f.err = ""
		f.submitting = true
		return f, nil, true
	}

	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	return f, cmd, false
}

// failed records a rejected attempt and clears the password.
func (f loginForm) failed(message string) loginForm {
	f.submitting = false
	f.err = message
	f.inputs[fieldPassword].SetValue("")
	return f
}

func (f loginForm) view() string {
	lines := []string{
		titleStyle.Render("Sign in"),
		mutedStyle.Render("A session is required to open this view."),
		"",
		f.inputs[fieldUsername].View(),
		f.inputs[fieldPassword].View(),
		"",
	}
	switch {
	case f.submitting:
		lines = append(lines, mutedStyle.Render("Signing in..."))
	case f.err != "":
		lines = append(lines, errorStyle.Render(f.err))
	}
	lines = append(lines, helpStyle.Render("tab switch field • enter sign in • ctrl+c quit"))
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
