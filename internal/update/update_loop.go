package update

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskboard/internal/api"
	"github.com/sandeepkv93/taskboard/internal/model"
	"github.com/sandeepkv93/taskboard/internal/route"
	"github.com/sandeepkv93/taskboard/internal/scheduler"
	"github.com/sandeepkv93/taskboard/internal/tasks"
	"github.com/sandeepkv93/taskboard/internal/views"
)

const sessionExpiredNotice = "Session expired, please log in again"

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.restoreCmd(), m.loadThemeCmd()}
	if m.deps.Scheduler != nil {
		cmds = append(cmds, waitForDeadlineCmd(m.deps.Scheduler.C()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	guardCmd := next.enforceGuard()
	return next, tea.Batch(cmd, guardCmd)
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.helpModel.Width = typed.Width
		return m, nil
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			return m.quit()
		}
		switch m.Screen {
		case ScreenLogin, ScreenRegister:
			return m.handleAuthKey(typed)
		case ScreenDashboard:
			if route.Guard(m.deps.Session) != route.Render {
				if typed.String() == "q" {
					return m.quit()
				}
				return m, nil
			}
			return m.handleDashboardKey(typed)
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		return m, cmd
	case restoredMsg:
		if typed.err != nil {
			m.logger.Warn().Err(typed.err).Msg("restore session")
		}
		if route.Guard(m.deps.Session) == route.Render {
			return m.enterDashboard()
		}
		m.Screen = ScreenLogin
		return m, nil
	case themeLoadedMsg:
		m.applyTheme(typed.theme)
		return m, nil
	case themeSavedMsg:
		if typed.err != nil {
			m.logger.Warn().Err(typed.err).Msg("persist theme")
		}
		return m, nil
	case authResultMsg:
		return m.onAuthResult(typed)
	case loggedOutMsg:
		if typed.err != nil {
			m.logger.Warn().Err(typed.err).Msg("logout")
		}
		return m, nil
	case tasksLoadedMsg:
		return m.onTasksLoaded(typed)
	case savedMsg:
		return m.onSaved(typed)
	case quickAddedMsg:
		m.syncFromEngine()
		if typed.err != nil {
			cmd := m.fail(typed.err)
			return m, cmd
		}
		cmd := m.setStatus(fmt.Sprintf("Task created: %s", typed.task.Title), false)
		return m, cmd
	case removedMsg:
		m.syncFromEngine()
		if typed.err != nil {
			cmd := m.fail(typed.err)
			return m, cmd
		}
		if !typed.sent {
			return m, nil
		}
		cmd := m.setStatus("Task deleted", false)
		return m, cmd
	case toggledMsg:
		m.syncFromEngine()
		if typed.err != nil {
			cmd := m.fail(typed.err)
			return m, cmd
		}
		cmd := m.setStatus(fmt.Sprintf("%q is now %s", typed.task.Title, typed.task.Status.Label()), false)
		return m, cmd
	case bulkDoneMsg:
		m.syncFromEngine()
		cmd := m.onBulkDone(typed)
		return m, cmd
	case deadlineMsg:
		var cmd tea.Cmd
		if typed.deadline.Kind == scheduler.KindSessionExpiry && m.deps.Session.Snapshot().Token != "" {
			m.logger.Info().Time("at", typed.deadline.At).Msg("session token expired")
			cmd = m.logoutCmd()
			if m.Screen == ScreenDashboard {
				m.leaveDashboard()
				m.Screen = ScreenLogin
				cmd = tea.Batch(cmd, m.setStatus(sessionExpiredNotice, true))
			}
		}
		return m, tea.Batch(cmd, waitForDeadlineCmd(m.deps.Scheduler.C()))
	case clearStatusMsg:
		if typed.seq == m.toastSeq {
			m.Status = StatusBar{}
		}
		return m, nil
	}
	return m, nil
}

// enforceGuard redirects away from the dashboard as soon as the session is
// gone, e.g. after the server rejected the token.
func (m *Model) enforceGuard() tea.Cmd {
	if m.Screen != ScreenDashboard || m.deps.Session == nil {
		return nil
	}
	if route.Guard(m.deps.Session) != route.RedirectLogin {
		return nil
	}
	m.leaveDashboard()
	m.Screen = ScreenLogin
	return tea.Batch(m.logoutCmd(), m.setStatus(sessionExpiredNotice, true))
}

func (m Model) quit() (Model, tea.Cmd) {
	m.Quitting = true
	if m.deps.Query != nil {
		m.deps.Query.Abandon()
	}
	return m, tea.Quit
}

func (m Model) enterDashboard() (Model, tea.Cmd) {
	m.Screen = ScreenDashboard
	m.selection.Clear()
	m.tasks = nil
	m.loading = true
	m.listErr = nil
	m.armExpiry()
	return m, m.fetchCmd()
}

// leaveDashboard drops everything tied to the dashboard and abandons the
// fetch in flight so its response is never applied.
func (m *Model) leaveDashboard() {
	if m.deps.Query != nil {
		m.deps.Query.Abandon()
	}
	m.selection.Clear()
	m.tasks = nil
	m.pagination = model.Pagination{}
	m.loading = false
	m.listErr = nil
	m.form.Close()
	m.formBusy = false
	m.formErr = ""
	m.confirm = confirmState{}
	m.paletteActive = false
	m.searchActive = false
	m.detailFor = ""
	m.notice = ""
	m.table.SetRows(nil)
	m.resetAuthInputs()
}

func (m Model) onTasksLoaded(msg tasksLoadedMsg) (Model, tea.Cmd) {
	if errors.Is(msg.err, tasks.ErrSuperseded) {
		// The newer fetch may already have landed through a mutation.
		if m.deps.Query != nil {
			m.loading = m.deps.Query.InFlight()
		}
		return m, nil
	}
	m.syncFromEngine()
	switch {
	case msg.err == nil:
		return m, nil
	case api.IsUnauthorized(msg.err):
		return m, nil
	default:
		m.LastError = msg.err
		return m, nil
	}
}

func (m *Model) onBulkDone(msg bulkDoneMsg) tea.Cmd {
	res := msg.result
	if !msg.sent || res.Empty() {
		return nil
	}
	verb := "Completed"
	if res.Op == "delete" {
		verb = "Deleted"
	}
	failed := len(res.Failed())
	total := len(res.Items)
	if failed == 0 {
		m.notice = ""
		return m.setStatus(fmt.Sprintf("%s %d task(s)", verb, total), false)
	}
	m.LastError = res.Err()
	m.notice = m.bulkFailureNotice(res)
	return m.setStatus(fmt.Sprintf("%s %d of %d task(s); %d failed and stay selected", verb, total-failed, total, failed), true)
}

// bulkFailureNotice lists the tasks a bulk action could not change.
func (m Model) bulkFailureNotice(res tasks.BulkResult) string {
	titles := make(map[string]string, len(m.tasks))
	for _, t := range m.tasks {
		titles[t.ID] = t.Title
	}
	var lines []string
	for _, item := range res.Failed() {
		name := titles[item.ID]
		if name == "" {
			name = item.ID
		}
		lines = append(lines, fmt.Sprintf("%s: %s", name, friendlyError(item.Err)))
	}
	return views.RenderNotification("error", strings.Join(lines, "\n"))
}

func (m *Model) applyTheme(t views.Theme) {
	m.Theme = views.ParseTheme(string(t))
	m.styles = views.StylesFor(m.Theme)
	m.table.SetStyles(m.styles.Table)
	m.detailFor = ""
	m.syncDetail()
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	switch m.Screen {
	case ScreenLogin, ScreenRegister:
		return m.renderAuthView()
	}

	switch route.Guard(m.deps.Session) {
	case route.Wait:
		return views.RenderWaiting(m.spinner.View(), m.styles)
	case route.RedirectLogin:
		return m.renderAuthView()
	}
	return m.renderDashboardView()
}
