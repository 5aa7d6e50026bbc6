package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskboard/internal/commands"
	"github.com/sandeepkv93/taskboard/internal/views"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		return m, nil
	case "enter":
		raw := m.commandInput.Value()
		m.closePalette()
		return m.executePaletteCommand(raw)
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	return m, cmd
}

func (m *Model) closePalette() {
	m.paletteActive = false
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

// executePaletteCommand runs one palette line. Handlers only touch engine
// state; the network work is returned as a command.
func (m Model) executePaletteCommand(raw string) (Model, tea.Cmd) {
	cmd, err := commands.Parse(raw)
	if err != nil {
		toast := m.setStatus(err.Error(), true)
		return m, toast
	}

	var followUp tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			followUp = m.quickAddCmd(a.Title)
			return commands.Result{Message: fmt.Sprintf("adding %q", a.Title)}, nil
		},
		Search: func(a commands.SearchArgs) (commands.Result, error) {
			m.deps.Query.SetSearch(a.Text)
			followUp = m.markLoading()
			if a.Text == "" {
				return commands.Result{Message: "search cleared"}, nil
			}
			return commands.Result{Message: fmt.Sprintf("searching %q", a.Text)}, nil
		},
		Status: func(a commands.StatusArgs) (commands.Result, error) {
			m.deps.Query.SetStatus(a.Status)
			followUp = m.markLoading()
			return commands.Result{Message: "status: " + a.Status.Label()}, nil
		},
		Priority: func(a commands.PriorityArgs) (commands.Result, error) {
			m.deps.Query.SetPriority(a.Priority)
			followUp = m.markLoading()
			return commands.Result{Message: "priority: " + a.Priority.Label()}, nil
		},
		Sort: func(a commands.SortArgs) (commands.Result, error) {
			m.deps.Query.SetSort(a.Key)
			followUp = m.markLoading()
			return commands.Result{Message: "sort: " + a.Key.Label()}, nil
		},
		Page: func(a commands.PageArgs) (commands.Result, error) {
			q := m.deps.Query.SetPage(a.Page)
			followUp = m.markLoading()
			return commands.Result{Message: fmt.Sprintf("page %d", q.Page)}, nil
		},
		Theme: func(a commands.ThemeArgs) (commands.Result, error) {
			m.applyTheme(views.ParseTheme(a.Name))
			followUp = m.saveThemeCmd(m.Theme)
			return commands.Result{Message: "theme: " + string(m.Theme)}, nil
		},
		Refresh: func() (commands.Result, error) {
			followUp = m.markLoading()
			return commands.Result{Message: "refreshing"}, nil
		},
		Logout: func() (commands.Result, error) {
			m.leaveDashboard()
			m.Screen = ScreenLogin
			followUp = m.logoutCmd()
			return commands.Result{Message: "Logged out"}, nil
		},
	})
	if err != nil {
		toast := m.setStatus(err.Error(), true)
		return m, toast
	}
	toast := m.setStatus(res.Message, false)
	return m, tea.Batch(followUp, toast)
}

func (m *Model) markLoading() tea.Cmd {
	m.loading = true
	return m.fetchCmd()
}
