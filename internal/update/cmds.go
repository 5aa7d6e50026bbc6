package update

import (
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskboard/internal/api"
	"github.com/sandeepkv93/taskboard/internal/form"
	"github.com/sandeepkv93/taskboard/internal/model"
	"github.com/sandeepkv93/taskboard/internal/scheduler"
	"github.com/sandeepkv93/taskboard/internal/storage"
	"github.com/sandeepkv93/taskboard/internal/tasks"
	"github.com/sandeepkv93/taskboard/internal/views"
)

func accept() bool { return true }

func (m Model) restoreCmd() tea.Cmd {
	store, ctx := m.deps.Session, m.ctx
	return func() tea.Msg {
		return restoredMsg{err: store.Restore(ctx)}
	}
}

func (m Model) loadThemeCmd() tea.Cmd {
	repo, ctx := m.deps.Repo, m.ctx
	if repo == nil {
		return nil
	}
	return func() tea.Msg {
		raw, err := repo.Get(ctx, storage.KeyTheme)
		if err != nil {
			return themeLoadedMsg{theme: views.DefaultTheme}
		}
		return themeLoadedMsg{theme: views.ParseTheme(raw)}
	}
}

func (m Model) saveThemeCmd(theme views.Theme) tea.Cmd {
	repo, ctx := m.deps.Repo, m.ctx
	if repo == nil {
		return nil
	}
	return func() tea.Msg {
		return themeSavedMsg{err: repo.Put(ctx, storage.KeyTheme, string(theme))}
	}
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	store, ctx := m.deps.Session, m.ctx
	return func() tea.Msg {
		return authResultMsg{err: store.Login(ctx, email, password)}
	}
}

func (m Model) registerCmd(name, email, password string) tea.Cmd {
	store, ctx := m.deps.Session, m.ctx
	return func() tea.Msg {
		return authResultMsg{err: store.Register(ctx, name, email, password)}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	store, ctx := m.deps.Session, m.ctx
	return func() tea.Msg {
		return loggedOutMsg{err: store.Logout(ctx)}
	}
}

func (m Model) fetchCmd() tea.Cmd {
	query, ctx := m.deps.Query, m.ctx
	return func() tea.Msg {
		page, err := query.Refresh(ctx)
		return tasksLoadedMsg{page: page, err: err}
	}
}

func (m Model) saveCmd(sub form.Submission, mode form.Mode) tea.Cmd {
	mut, ctx := m.deps.Mutation, m.ctx
	return func() tea.Msg {
		var (
			task model.Task
			err  error
		)
		if mode == form.ModeEdit {
			task, err = mut.Update(ctx, sub.ID, sub.Form)
		} else {
			task, err = mut.Create(ctx, sub.Form)
		}
		return savedMsg{mode: mode, task: task, err: err}
	}
}

func (m Model) quickAddCmd(title string) tea.Cmd {
	mut, ctx := m.deps.Mutation, m.ctx
	f := model.BlankForm()
	f.Title = title
	return func() tea.Msg {
		task, err := mut.Create(ctx, f)
		return quickAddedMsg{task: task, err: err}
	}
}

func (m Model) removeCmd(id string) tea.Cmd {
	mut, ctx := m.deps.Mutation, m.ctx
	return func() tea.Msg {
		sent, err := mut.Remove(ctx, id, accept)
		return removedMsg{sent: sent, err: err}
	}
}

func (m Model) toggleCmd(task model.Task) tea.Cmd {
	mut, ctx := m.deps.Mutation, m.ctx
	return func() tea.Msg {
		updated, err := mut.ToggleComplete(ctx, task)
		return toggledMsg{task: updated, err: err}
	}
}

func (m Model) bulkCompleteCmd() tea.Cmd {
	mut, ctx, sel := m.deps.Mutation, m.ctx, m.selection
	return func() tea.Msg {
		return bulkDoneMsg{result: mut.BulkComplete(ctx, sel), sent: true}
	}
}

func (m Model) bulkDeleteCmd() tea.Cmd {
	mut, ctx, sel := m.deps.Mutation, m.ctx, m.selection
	return func() tea.Msg {
		res, sent := mut.BulkDelete(ctx, sel, accept)
		return bulkDoneMsg{result: res, sent: sent}
	}
}

func waitForDeadlineCmd(ch <-chan scheduler.Deadline) tea.Cmd {
	return func() tea.Msg {
		d, ok := <-ch
		if !ok {
			return nil
		}
		return deadlineMsg{deadline: d}
	}
}

// armExpiry schedules the session deadline for the current token, if it
// carries an expiry.
func (m Model) armExpiry() {
	if m.deps.Scheduler == nil {
		return
	}
	snap := m.deps.Session.Snapshot()
	if snap.Expiry.IsZero() {
		m.deps.Scheduler.Cancel(sessionDeadlineID)
		return
	}
	err := m.deps.Scheduler.Schedule(scheduler.Deadline{
		ID:   sessionDeadlineID,
		Kind: scheduler.KindSessionExpiry,
		At:   snap.Expiry,
	})
	if err != nil {
		m.logger.Warn().Err(err).Msg("arm session expiry")
	}
}

// setStatus shows a notice and, when a toast duration is configured,
// schedules its removal.
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.Status = StatusBar{Text: text, IsError: isErr}
	m.toastSeq++
	if m.deps.ToastDuration <= 0 || text == "" {
		return nil
	}
	seq := m.toastSeq
	return tea.Tick(m.deps.ToastDuration, func(time.Time) tea.Msg { return clearStatusMsg{seq: seq} })
}

func (m *Model) fail(err error) tea.Cmd {
	m.LastError = err
	return m.setStatus(friendlyError(err), true)
}

// friendlyError is the text shown to the user for a failed operation.
func friendlyError(err error) string {
	var vErr *model.ValidationError
	var bulkErr *tasks.BulkError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &vErr):
		return capitalize(vErr.Field) + " " + vErr.Reason
	case errors.As(err, &bulkErr):
		if bulkErr.Op == "delete" {
			return "Some tasks could not be deleted"
		}
		return "Some tasks could not be updated"
	}
	if msg := api.Message(err); msg != "" {
		return msg
	}
	switch {
	case errors.Is(err, api.ErrNetwork):
		return "Network error, check your connection"
	case errors.Is(err, api.ErrNotFound):
		return "Task no longer exists"
	case errors.Is(err, api.ErrConflict):
		return "Task was changed elsewhere"
	case errors.Is(err, api.ErrUnauthorized):
		return sessionExpiredNotice
	default:
		return "Something went wrong"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
