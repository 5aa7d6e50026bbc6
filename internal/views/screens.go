package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type AuthField struct {
	Label   string
	View    string
	Focused bool
}

type AuthScreenData struct {
	Register bool
	Fields   []AuthField
	Error    string
	Busy     bool
	Spinner  string
}

func RenderAuthScreen(data AuthScreenData, st Styles) string {
	title, alt := "Log in", "ctrl+n: create an account"
	if data.Register {
		title, alt = "Create account", "ctrl+n: back to log in"
	}
	var b strings.Builder
	b.WriteString(st.Title.Render(title) + "\n\n")
	for _, f := range data.Fields {
		label := st.Muted.Render(f.Label)
		if f.Focused {
			label = st.Focused.Render(f.Label)
		}
		b.WriteString(label + "\n" + f.View + "\n\n")
	}
	switch {
	case data.Busy:
		b.WriteString(data.Spinner + " signing in...")
	case data.Error != "":
		b.WriteString(st.Error.Render(data.Error))
	}
	b.WriteString("\n" + st.Footer.Render("tab: next field | enter: submit | "+alt+" | ctrl+c: quit"))
	return st.Panel.Render(b.String())
}

// RenderWaiting is shown while the session is being restored. It shows
// nothing but the spinner.
func RenderWaiting(spinner string, st Styles) string {
	return st.Muted.Render(spinner)
}

type FilterData struct {
	Search   string
	Status   string
	Priority string
	Sort     string
}

type DashboardData struct {
	Filters     FilterData
	SearchView  string
	TableView   string
	Empty       string
	Page        int
	Pages       int
	Total       int
	Paginator   string
	Selected    int
	Loading     bool
	Spinner     string
	DetailTitle string
	DetailMeta  string
	DetailView  string
}

func RenderDashboard(data DashboardData, st Styles) string {
	var b strings.Builder

	filters := []string{
		"status: " + st.Badge.Render(data.Filters.Status),
		"priority: " + st.Badge.Render(data.Filters.Priority),
		"sort: " + st.Badge.Render(data.Filters.Sort),
	}
	if data.Filters.Search != "" {
		filters = append([]string{"search: " + st.Badge.Render(data.Filters.Search)}, filters...)
	}
	b.WriteString(strings.Join(filters, "  ") + "\n")
	if data.SearchView != "" {
		b.WriteString(data.SearchView + "\n")
	}

	if data.Empty != "" {
		b.WriteString("\n" + st.Muted.Render(data.Empty) + "\n")
	} else {
		b.WriteString(data.TableView + "\n")
	}

	pager := fmt.Sprintf("page %d of %d", data.Page, max(data.Pages, 1))
	if data.Total > 0 {
		pager += fmt.Sprintf(" (%d tasks)", data.Total)
	}
	if data.Paginator != "" {
		pager += "  " + data.Paginator
	}
	if data.Selected > 0 {
		pager += "  " + st.Selected.Render(fmt.Sprintf("%d selected", data.Selected))
	}
	if data.Loading {
		pager += "  " + data.Spinner + " loading"
	}
	b.WriteString(st.Muted.Render(pager))

	list := st.Panel.Render(b.String())
	if data.DetailTitle == "" {
		return list
	}
	detail := st.Title.Render(data.DetailTitle) + "\n" + st.Muted.Render(data.DetailMeta)
	if data.DetailView != "" {
		detail += "\n\n" + data.DetailView
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, list, st.Panel.Width(44).Render(detail))
}

type ModalField struct {
	Label   string
	View    string
	Focused bool
}

type ModalData struct {
	Title  string
	Fields []ModalField
	Error  string
	Busy   bool
}

func RenderModal(data ModalData, st Styles) string {
	var b strings.Builder
	b.WriteString(st.Title.Render(data.Title) + "\n\n")
	for _, f := range data.Fields {
		label := f.Label
		if f.Focused {
			label = st.Focused.Render("> " + label)
		} else {
			label = st.Muted.Render("  " + label)
		}
		b.WriteString(label + "\n  " + f.View + "\n")
	}
	if data.Busy {
		b.WriteString("\nsaving...")
	} else if data.Error != "" {
		b.WriteString("\n" + st.Error.Render(data.Error))
	}
	b.WriteString("\n" + st.Footer.Render("tab: next | left/right: change choice | ctrl+s: save | esc: cancel"))
	return st.Modal.Render(b.String())
}

func RenderConfirm(prompt string, st Styles) string {
	return st.Modal.Render(st.Title.Render(prompt) + "\n\n" + st.Footer.Render("y: confirm | n/esc: cancel"))
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return "command: " + input
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("[%s] %s", strings.ToUpper(level), body)
}

type HelpPanelData struct {
	Screen   string
	Bindings []string
	HelpView string
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help (%s):\n%s\n\n%s",
		strings.ToLower(data.Screen),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}
