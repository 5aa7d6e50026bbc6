// Package views turns plain render data into styled terminal output. It holds
// no state of its own.
package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type AppData struct {
	Header       string
	Body         string
	Overlay      string
	StatusLine   string
	StatusError  bool
	Footer       string
	Notification string
}

func RenderApp(data AppData, st Styles) string {
	lines := []string{st.Header.Render(data.Header)}
	if data.Body != "" {
		lines = append(lines, data.Body)
	}
	if data.Overlay != "" {
		lines = append(lines, data.Overlay)
	}
	if data.StatusLine != "" {
		if data.StatusError {
			lines = append(lines, st.Error.Render(data.StatusLine))
		} else {
			lines = append(lines, st.Status.Render(data.StatusLine))
		}
	}
	if data.Notification != "" {
		lines = append(lines, st.Panel.Render(data.Notification))
	}
	if data.Footer != "" {
		lines = append(lines, st.Footer.Render(data.Footer))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// RenderMarkdown renders md with the glamour style matching the theme. On a
// renderer failure the source text is returned as is.
func RenderMarkdown(md string, theme Theme, width int) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(string(ParseTheme(string(theme))))}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
