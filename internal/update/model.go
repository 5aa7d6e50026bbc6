// Package update is the bubbletea program: screens, key handling and the
// glue that turns engine calls into messages.
package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/rs/zerolog"

	"github.com/sandeepkv93/taskboard/internal/form"
	"github.com/sandeepkv93/taskboard/internal/model"
	"github.com/sandeepkv93/taskboard/internal/scheduler"
	"github.com/sandeepkv93/taskboard/internal/session"
	"github.com/sandeepkv93/taskboard/internal/storage"
	"github.com/sandeepkv93/taskboard/internal/tasks"
	"github.com/sandeepkv93/taskboard/internal/views"
)

type Screen string

const (
	ScreenLogin     Screen = "Login"
	ScreenRegister  Screen = "Register"
	ScreenDashboard Screen = "Dashboard"
)

// sessionDeadlineID names the scheduler deadline tracking token expiry.
const sessionDeadlineID = "session"

// Deps are built once at process start and shared by every component.
type Deps struct {
	Session   *session.Store
	Query     *tasks.QueryEngine
	Mutation  *tasks.MutationEngine
	Repo      storage.Repository
	Scheduler *scheduler.Engine
	Logger    zerolog.Logger
	// ToastDuration <= 0 keeps notices until the next one replaces them.
	ToastDuration time.Duration
}

type StatusBar struct {
	Text    string
	IsError bool
}

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDelete
	confirmBulkDelete
)

type confirmState struct {
	kind   confirmKind
	taskID string
	prompt string
}

type Model struct {
	deps   Deps
	ctx    context.Context
	logger zerolog.Logger

	Screen      Screen
	Status      StatusBar
	Theme       views.Theme
	HelpVisible bool
	Quitting    bool
	LastError   error

	styles   views.Styles
	toastSeq int
	width    int

	// auth screens
	authInputs []textinput.Model
	authFocus  int
	authBusy   bool
	authErr    string

	// dashboard
	tasks      []model.Task
	pagination model.Pagination
	selection  *tasks.Selection
	loading    bool
	listErr    error
	table      table.Model
	pager      paginator.Model
	detail     viewport.Model
	detailFor  string

	searchActive bool
	searchInput  textinput.Model

	paletteActive bool
	commandInput  textinput.Model

	confirm confirmState
	notice  string

	// task dialog
	form       form.Controller
	formFocus  int
	formBusy   bool
	formErr    string
	titleInput textinput.Model
	descInput  textarea.Model
	dueInput   textinput.Model

	spinner   spinner.Model
	helpModel help.Model
}

func New(deps Deps) Model {
	m := Model{
		deps:      deps,
		ctx:       context.Background(),
		logger:    deps.Logger.With().Str("component", "ui").Logger(),
		Screen:    ScreenDashboard,
		Theme:     views.DefaultTheme,
		selection: tasks.NewSelection(),
		width:     120,
	}
	m.styles = views.StylesFor(m.Theme)
	m.initBubbleComponents()
	m.resetAuthInputs()
	if deps.Session != nil && deps.Query != nil {
		deps.Session.OnLogout(deps.Query.Reset)
	}
	if deps.Session != nil && deps.Scheduler != nil {
		deps.Session.OnLogout(func() { deps.Scheduler.Cancel(sessionDeadlineID) })
	}
	return m
}

func (m *Model) initBubbleComponents() {
	cols := []table.Column{
		{Title: " ", Width: 3},
		{Title: "Title", Width: 32},
		{Title: "Status", Width: 12},
		{Title: "Priority", Width: 8},
		{Title: "Due", Width: 10},
	}
	m.table = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(tasks.DefaultPageSize+1))
	m.table.SetStyles(m.styles.Table)

	m.pager = paginator.New()
	m.pager.Type = paginator.Dots
	m.pager.PerPage = 1

	m.detail = viewport.New(42, 10)

	m.searchInput = textinput.New()
	m.searchInput.Prompt = "search> "
	m.searchInput.CharLimit = 128
	m.searchInput.Width = 40

	m.commandInput = textinput.New()
	m.commandInput.Prompt = ":"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.titleInput = textinput.New()
	m.titleInput.Placeholder = "What needs doing?"
	m.titleInput.CharLimit = 200
	m.titleInput.Width = 48

	m.descInput = textarea.New()
	m.descInput.SetWidth(50)
	m.descInput.SetHeight(5)
	m.descInput.ShowLineNumbers = false
	m.descInput.Placeholder = "Description (markdown)"

	m.dueInput = textinput.New()
	m.dueInput.Placeholder = model.DateLayout
	m.dueInput.CharLimit = len(model.DateLayout)
	m.dueInput.Width = 12

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	m.helpModel = help.New()
}

// Selection exposes the ids picked for bulk actions.
func (m Model) Selection() *tasks.Selection { return m.selection }

// Tasks is the page currently shown.
func (m Model) Tasks() []model.Task { return append([]model.Task(nil), m.tasks...) }

// Cursor is the table row under the cursor.
func (m Model) Cursor() int { return m.table.Cursor() }

func (m Model) FormOpen() bool { return m.form.IsOpen() }

func (m Model) Confirming() bool { return m.confirm.kind != confirmNone }

// Messages.

type restoredMsg struct{ err error }

type themeLoadedMsg struct{ theme views.Theme }

type themeSavedMsg struct{ err error }

type authResultMsg struct{ err error }

type loggedOutMsg struct{ err error }

type tasksLoadedMsg struct {
	page tasks.Page
	err  error
}

type savedMsg struct {
	mode form.Mode
	task model.Task
	err  error
}

type removedMsg struct {
	sent bool
	err  error
}

type toggledMsg struct {
	task model.Task
	err  error
}

type bulkDoneMsg struct {
	result tasks.BulkResult
	sent   bool
}

type deadlineMsg struct{ deadline scheduler.Deadline }

type clearStatusMsg struct{ seq int }

type quickAddedMsg struct {
	task model.Task
	err  error
}
