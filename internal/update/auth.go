package update

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskboard/internal/session"
	"github.com/sandeepkv93/taskboard/internal/views"
)

// authLabels is the field order of each auth screen.
func authLabels(s Screen) []string {
	if s == ScreenRegister {
		return []string{"Name", "Email", "Password"}
	}
	return []string{"Email", "Password"}
}

func (m *Model) resetAuthInputs() {
	labels := authLabels(m.Screen)
	m.authInputs = make([]textinput.Model, len(labels))
	for i, label := range labels {
		in := textinput.New()
		in.Prompt = "> "
		in.CharLimit = 128
		in.Width = 36
		in.Placeholder = strings.ToLower(label)
		if label == "Password" {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '*'
		}
		m.authInputs[i] = in
	}
	m.authFocus = 0
	m.authBusy = false
	m.authErr = ""
	m.focusAuthInput()
}

func (m *Model) focusAuthInput() {
	for i := range m.authInputs {
		if i == m.authFocus {
			_ = m.authInputs[i].Focus()
		} else {
			m.authInputs[i].Blur()
		}
	}
}

// authValue returns the trimmed value of the field labelled label. Passwords
// are taken verbatim.
func (m Model) authValue(label string) string {
	for i, l := range authLabels(m.Screen) {
		if l != label || i >= len(m.authInputs) {
			continue
		}
		if label == "Password" {
			return m.authInputs[i].Value()
		}
		return strings.TrimSpace(m.authInputs[i].Value())
	}
	return ""
}

func (m Model) handleAuthKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.authBusy {
		return m, nil
	}
	switch msg.String() {
	case "tab", "down":
		m.authFocus = (m.authFocus + 1) % len(m.authInputs)
		m.focusAuthInput()
		return m, nil
	case "shift+tab", "up":
		m.authFocus = (m.authFocus - 1 + len(m.authInputs)) % len(m.authInputs)
		m.focusAuthInput()
		return m, nil
	case "ctrl+n":
		if m.Screen == ScreenLogin {
			m.Screen = ScreenRegister
		} else {
			m.Screen = ScreenLogin
		}
		m.resetAuthInputs()
		return m, nil
	case "enter":
		return m.submitAuth()
	}
	var cmd tea.Cmd
	m.authInputs[m.authFocus], cmd = m.authInputs[m.authFocus].Update(msg)
	m.authErr = ""
	return m, cmd
}

func (m Model) submitAuth() (Model, tea.Cmd) {
	for _, label := range authLabels(m.Screen) {
		if m.authValue(label) == "" {
			m.authErr = label + " is required"
			return m, nil
		}
	}
	m.authBusy = true
	m.authErr = ""
	email, password := m.authValue("Email"), m.authValue("Password")
	if m.Screen == ScreenRegister {
		return m, m.registerCmd(m.authValue("Name"), email, password)
	}
	return m, m.loginCmd(email, password)
}

func (m Model) onAuthResult(msg authResultMsg) (Model, tea.Cmd) {
	m.authBusy = false
	if msg.err == nil {
		m.authErr = ""
		name := ""
		if u := m.deps.Session.User(); u != nil {
			name = u.Name
		}
		next, fetch := m.enterDashboard()
		toast := next.setStatus("Welcome "+name, false)
		return next, tea.Batch(fetch, toast)
	}
	var sErr *session.Error
	if errors.As(msg.err, &sErr) {
		m.authErr = sErr.Message
	} else {
		m.authErr = friendlyError(msg.err)
	}
	m.logger.Info().Err(msg.err).Str("screen", string(m.Screen)).Msg("authentication failed")
	return m, nil
}

func (m Model) renderAuthView() string {
	labels := authLabels(m.Screen)
	fields := make([]views.AuthField, 0, len(labels))
	for i, label := range labels {
		if i >= len(m.authInputs) {
			break
		}
		fields = append(fields, views.AuthField{Label: label, View: m.authInputs[i].View(), Focused: i == m.authFocus})
	}
	body := views.RenderAuthScreen(views.AuthScreenData{
		Register: m.Screen == ScreenRegister,
		Fields:   fields,
		Error:    m.authErr,
		Busy:     m.authBusy,
		Spinner:  m.spinner.View(),
	}, m.styles)
	return views.RenderApp(views.AppData{
		Header:      "taskboard",
		Body:        body,
		StatusLine:  m.Status.Text,
		StatusError: m.Status.IsError,
	}, m.styles)
}
