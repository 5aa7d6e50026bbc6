package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"

	"github.com/sandeepkv93/taskboard/internal/commands"
	"github.com/sandeepkv93/taskboard/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.screenBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	for _, t := range commands.Types {
		plain = append(plain, fmt.Sprintf("- :%s", t))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		Screen:   string(m.Screen),
		Bindings: plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) screenBindings() []KeyBinding {
	switch m.Screen {
	case ScreenLogin, ScreenRegister:
		return []KeyBinding{
			{Key: "tab/shift+tab", Action: "move between fields"},
			{Key: "enter", Action: "submit"},
			{Key: "ctrl+n", Action: "switch log in / create account"},
		}
	default:
		return []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: "space", Action: "toggle select"},
			{Key: "a/u", Action: "select page / clear selection"},
			{Key: "n/e", Action: "new task / edit task"},
			{Key: "d", Action: "delete task"},
			{Key: "c", Action: "toggle complete"},
			{Key: "C/X", Action: "complete / delete selected"},
			{Key: "/", Action: "search"},
			{Key: "f/p/s", Action: "cycle status / priority / sort"},
			{Key: "h/l", Action: "previous / next page"},
			{Key: "r", Action: "refresh"},
			{Key: "t", Action: "toggle theme"},
			{Key: ":", Action: "command palette"},
			{Key: "L", Action: "log out"},
			{Key: "?", Action: "toggle help"},
			{Key: "q", Action: "quit"},
		}
	}
}

func (m Model) helpBindings() []key.Binding {
	kbs := m.screenBindings()
	out := make([]key.Binding, 0, len(kbs))
	for _, kb := range kbs {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
