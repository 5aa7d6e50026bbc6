package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskboard/internal/form"
	"github.com/sandeepkv93/taskboard/internal/model"
	"github.com/sandeepkv93/taskboard/internal/views"
)

// openForm shows the task dialog. The inputs are re-seeded only when the
// controller picked a new target, so reopening the same task keeps edits.
func (m *Model) openForm(task *model.Task) {
	wasOpen, prevMode, prevTarget := m.form.IsOpen(), m.form.Mode(), m.form.TargetID()
	m.form.Open(task)
	if wasOpen && prevMode == m.form.Mode() && prevTarget == m.form.TargetID() {
		return
	}
	m.titleInput.SetValue(m.form.Get(form.FieldTitle))
	m.descInput.SetValue(m.form.Get(form.FieldDescription))
	m.dueInput.SetValue(m.form.Get(form.FieldDueDate))
	m.formFocus = 0
	m.formBusy = false
	m.formErr = ""
	m.focusFormField()
}

func (m *Model) closeForm() {
	m.form.Close()
	m.formBusy = false
	m.formErr = ""
	m.titleInput.Blur()
	m.descInput.Blur()
	m.dueInput.Blur()
}

func (m *Model) focusFormField() {
	m.titleInput.Blur()
	m.descInput.Blur()
	m.dueInput.Blur()
	switch form.Fields[m.formFocus] {
	case form.FieldTitle:
		_ = m.titleInput.Focus()
	case form.FieldDescription:
		_ = m.descInput.Focus()
	case form.FieldDueDate:
		_ = m.dueInput.Focus()
	}
}

// storeInputs copies the text inputs into the controller buffer.
func (m *Model) storeInputs() {
	_ = m.form.Set(form.FieldTitle, m.titleInput.Value())
	_ = m.form.Set(form.FieldDescription, m.descInput.Value())
	_ = m.form.Set(form.FieldDueDate, m.dueInput.Value())
}

func (m Model) handleFormKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.formBusy {
		return m, nil
	}
	field := form.Fields[m.formFocus]
	switch msg.String() {
	case "esc":
		m.closeForm()
		return m, nil
	case "tab":
		m.formFocus = (m.formFocus + 1) % len(form.Fields)
		m.focusFormField()
		return m, nil
	case "shift+tab":
		m.formFocus = (m.formFocus - 1 + len(form.Fields)) % len(form.Fields)
		m.focusFormField()
		return m, nil
	case "ctrl+s":
		return m.submitForm()
	case "enter":
		if field != form.FieldDescription {
			return m.submitForm()
		}
	case "left", "right":
		if field.Enum() {
			delta := 1
			if msg.String() == "left" {
				delta = -1
			}
			_ = m.form.Cycle(field, delta)
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch field {
	case form.FieldTitle:
		m.titleInput, cmd = m.titleInput.Update(msg)
	case form.FieldDescription:
		m.descInput, cmd = m.descInput.Update(msg)
	case form.FieldDueDate:
		m.dueInput, cmd = m.dueInput.Update(msg)
	}
	m.storeInputs()
	return m, cmd
}

func (m Model) submitForm() (Model, tea.Cmd) {
	m.storeInputs()
	sub, err := m.form.Submit()
	if err != nil {
		return m, nil
	}
	if err := sub.Form.Validate(); err != nil {
		m.formErr = friendlyError(err)
		return m, nil
	}
	m.formBusy = true
	m.formErr = ""
	return m, m.saveCmd(sub, m.form.Mode())
}

func (m Model) onSaved(msg savedMsg) (Model, tea.Cmd) {
	m.formBusy = false
	m.syncFromEngine()
	if msg.err != nil {
		m.LastError = msg.err
		if m.form.IsOpen() {
			m.formErr = friendlyError(msg.err)
			return m, nil
		}
		cmd := m.fail(msg.err)
		return m, cmd
	}
	m.closeForm()
	text := "Task created"
	if msg.mode == form.ModeEdit {
		text = "Task updated"
	}
	cmd := m.setStatus(text, false)
	return m, cmd
}

func (m Model) renderFormView() string {
	title := "New task"
	if m.form.Mode() == form.ModeEdit {
		title = "Edit task"
	}
	fields := make([]views.ModalField, 0, len(form.Fields))
	for i, f := range form.Fields {
		var view string
		switch f {
		case form.FieldTitle:
			view = m.titleInput.View()
		case form.FieldDescription:
			view = m.descInput.View()
		case form.FieldDueDate:
			view = m.dueInput.View()
		case form.FieldStatus:
			view = "< " + model.Status(m.form.Get(f)).Label() + " >"
		case form.FieldPriority:
			view = "< " + model.Priority(m.form.Get(f)).Label() + " >"
		}
		fields = append(fields, views.ModalField{Label: f.Label(), View: view, Focused: i == m.formFocus})
	}
	return views.RenderModal(views.ModalData{
		Title:  title,
		Fields: fields,
		Error:  m.formErr,
		Busy:   m.formBusy,
	}, m.styles)
}
