package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskboard/internal/model"
	"github.com/sandeepkv93/taskboard/internal/views"
)

var (
	statusFilters   = append([]model.Status{""}, model.Statuses...)
	priorityFilters = append([]model.Priority{""}, model.Priorities...)
)

func (m Model) handleDashboardKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case m.confirm.kind != confirmNone:
		return m.handleConfirmKey(msg)
	case m.form.IsOpen():
		return m.handleFormKey(msg)
	case m.paletteActive:
		return m.handlePaletteKey(msg)
	case m.searchActive:
		return m.handleSearchKey(msg)
	}

	if m.HelpVisible && (msg.String() == "esc" || msg.String() == "?") {
		m.HelpVisible = false
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m.quit()
	case "?":
		m.HelpVisible = true
		return m, nil
	case "j", "down":
		m.table.MoveDown(1)
		m.syncDetail()
		return m, nil
	case "k", "up":
		m.table.MoveUp(1)
		m.syncDetail()
		return m, nil
	case " ":
		if task, ok := m.current(); ok {
			m.selection.Toggle(task.ID)
			m.refreshRows()
		}
		return m, nil
	case "a":
		ids := make([]string, 0, len(m.tasks))
		for _, t := range m.tasks {
			ids = append(ids, t.ID)
		}
		m.selection.Add(ids...)
		m.refreshRows()
		return m, nil
	case "u":
		m.selection.Clear()
		m.notice = ""
		m.refreshRows()
		return m, nil
	case "n":
		m.openForm(nil)
		return m, nil
	case "e", "enter":
		if task, ok := m.current(); ok {
			m.openForm(&task)
		}
		return m, nil
	case "d":
		if task, ok := m.current(); ok {
			m.confirm = confirmState{kind: confirmDelete, taskID: task.ID, prompt: fmt.Sprintf("Delete %q?", task.Title)}
		}
		return m, nil
	case "c":
		if task, ok := m.current(); ok {
			return m, m.toggleCmd(task)
		}
		return m, nil
	case "C":
		if m.selection.Len() == 0 {
			cmd := m.setStatus("No tasks selected", true)
			return m, cmd
		}
		return m, m.bulkCompleteCmd()
	case "X":
		if n := m.selection.Len(); n > 0 {
			m.confirm = confirmState{kind: confirmBulkDelete, prompt: fmt.Sprintf("Delete %d selected task(s)?", n)}
			return m, nil
		}
		cmd := m.setStatus("No tasks selected", true)
		return m, cmd
	case "/":
		m.searchActive = true
		m.searchInput.SetValue(m.deps.Query.Query().Search)
		m.searchInput.CursorEnd()
		_ = m.searchInput.Focus()
		return m, nil
	case ":":
		m.paletteActive = true
		m.commandInput.SetValue("")
		_ = m.commandInput.Focus()
		return m, nil
	case "f":
		m.deps.Query.SetStatus(cycleNext(statusFilters, m.deps.Query.Query().Status))
		return m.refetch()
	case "p":
		m.deps.Query.SetPriority(cycleNext(priorityFilters, m.deps.Query.Query().Priority))
		return m.refetch()
	case "s":
		m.deps.Query.SetSort(cycleNext(model.SortKeys, m.deps.Query.Query().Sort))
		return m.refetch()
	case "h", "left":
		before := m.deps.Query.Query().Page
		if m.deps.Query.PrevPage().Page == before {
			return m, nil
		}
		return m.refetch()
	case "l", "right":
		before := m.deps.Query.Query().Page
		if m.deps.Query.NextPage().Page == before {
			return m, nil
		}
		return m.refetch()
	case "r":
		return m.refetch()
	case "t":
		m.applyTheme(m.Theme.Toggle())
		return m, m.saveThemeCmd(m.Theme)
	case "L":
		return m.logout()
	}
	return m, nil
}

func cycleNext[T comparable](values []T, cur T) T {
	for i, v := range values {
		if v == cur {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

func (m Model) refetch() (Model, tea.Cmd) {
	m.loading = true
	return m, m.fetchCmd()
}

func (m Model) logout() (Model, tea.Cmd) {
	m.leaveDashboard()
	m.Screen = ScreenLogin
	toast := m.setStatus("Logged out", false)
	return m, tea.Batch(m.logoutCmd(), toast)
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	c := m.confirm
	switch msg.String() {
	case "y", "Y":
		m.confirm = confirmState{}
		if c.kind == confirmBulkDelete {
			return m, m.bulkDeleteCmd()
		}
		return m, m.removeCmd(c.taskID)
	case "n", "N", "esc":
		m.confirm = confirmState{}
		cmd := m.setStatus("Delete cancelled", false)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchActive = false
		m.searchInput.Blur()
		m.deps.Query.SetSearch(strings.TrimSpace(m.searchInput.Value()))
		return m.refetch()
	case "esc":
		m.searchActive = false
		m.searchInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// current is the task under the table cursor.
func (m Model) current() (model.Task, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.tasks) {
		return model.Task{}, false
	}
	return m.tasks[i], true
}

// syncFromEngine copies the query engine's page into the model.
func (m *Model) syncFromEngine() {
	if m.deps.Query == nil {
		return
	}
	m.tasks = m.deps.Query.Tasks()
	m.pagination = m.deps.Query.Pagination()
	m.listErr = m.deps.Query.LastError()
	m.loading = m.deps.Query.InFlight()
	m.selection.Retain(m.tasks)

	pages := max(m.pagination.Pages, 1)
	m.pager.SetTotalPages(pages)
	m.pager.Page = min(max(m.deps.Query.Query().Page, 1), pages) - 1
	m.refreshRows()
}

func (m *Model) refreshRows() {
	rows := make([]table.Row, 0, len(m.tasks))
	for _, t := range m.tasks {
		marker := "[ ]"
		if m.selection.Has(t.ID) {
			marker = "[x]"
		}
		rows = append(rows, table.Row{marker, t.Title, t.Status.Label(), priorityLabel(t.Priority), t.DueLabel()})
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) || c < 0 {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
	m.syncDetail()
}

func priorityLabel(p model.Priority) string {
	if p == "" {
		return ""
	}
	return p.Label()
}

// syncDetail renders the description of the task under the cursor. The
// rendered markdown is cached per task id until the theme changes.
func (m *Model) syncDetail() {
	task, ok := m.current()
	if !ok {
		m.detailFor = ""
		m.detail.SetContent("")
		return
	}
	key := task.ID + "\x00" + task.Description
	if key == m.detailFor {
		return
	}
	m.detailFor = key
	m.detail.SetContent(views.RenderMarkdown(task.Description, m.Theme, m.detail.Width))
	m.detail.GotoTop()
}

func (m Model) emptyText() string {
	switch {
	case m.listErr != nil:
		return "Could not load tasks: " + friendlyError(m.listErr)
	case m.loading && len(m.tasks) == 0:
		return "Loading tasks..."
	case len(m.tasks) == 0:
		return "No tasks found"
	default:
		return ""
	}
}

func (m Model) renderDashboardView() string {
	q := m.deps.Query.Query()
	data := views.DashboardData{
		Filters: views.FilterData{
			Search:   q.Search,
			Status:   q.Status.Label(),
			Priority: q.Priority.Label(),
			Sort:     q.Sort.Label(),
		},
		TableView: m.table.View(),
		Empty:     m.emptyText(),
		Page:      q.Page,
		Pages:     m.pagination.Pages,
		Total:     m.pagination.Total,
		Selected:  m.selection.Len(),
		Loading:   m.loading,
		Spinner:   m.spinner.View(),
	}
	if m.pagination.Pages > 1 {
		data.Paginator = m.pager.View()
	}
	if m.searchActive {
		data.SearchView = m.searchInput.View()
	}
	if task, ok := m.current(); ok {
		data.DetailTitle = task.Title
		meta := []string{task.Status.Label()}
		if task.Priority != "" {
			meta = append(meta, task.Priority.Label()+" priority")
		}
		if due := task.DueLabel(); due != "" {
			meta = append(meta, "due "+due)
		}
		data.DetailMeta = strings.Join(meta, " / ")
		data.DetailView = m.detail.View()
	}

	var overlay string
	switch {
	case m.confirm.kind != confirmNone:
		overlay = views.RenderConfirm(m.confirm.prompt, m.styles)
	case m.form.IsOpen():
		overlay = m.renderFormView()
	case m.paletteActive:
		overlay = views.RenderCommandPalette(true, m.commandInput.View())
	case m.HelpVisible:
		overlay = m.renderHelpView()
	}

	header := "taskboard"
	if u := m.deps.Session.User(); u != nil && u.Name != "" {
		header += " | " + u.Name
	}
	return views.RenderApp(views.AppData{
		Header:       header,
		Body:         views.RenderDashboard(data, m.styles),
		Overlay:      overlay,
		StatusLine:   m.Status.Text,
		StatusError:  m.Status.IsError,
		Notification: m.notice,
		Footer:       "n: new | e: edit | d: delete | c: complete | space: select | /: search | f/p/s: filters | h/l: page | :: command | ?: help | q: quit",
	}, m.styles)
}
