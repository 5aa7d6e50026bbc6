// Package form holds the edit buffer behind the create/edit task dialog.
// It never talks to the network; Submit hands the buffer to the caller.
package form

import (
	"errors"
	"fmt"

	"github.com/sandeepkv93/taskboard/internal/model"
)

var ErrClosed = errors.New("form: dialog is not open")

type Field int

const (
	FieldTitle Field = iota
	FieldDescription
	FieldStatus
	FieldPriority
	FieldDueDate
)

// Fields is the focus order of the dialog.
var Fields = []Field{FieldTitle, FieldDescription, FieldStatus, FieldPriority, FieldDueDate}

func (f Field) Label() string {
	switch f {
	case FieldTitle:
		return "Title"
	case FieldDescription:
		return "Description"
	case FieldStatus:
		return "Status"
	case FieldPriority:
		return "Priority"
	case FieldDueDate:
		return "Due date"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Enum reports whether the field is picked from a fixed set.
func (f Field) Enum() bool {
	return f == FieldStatus || f == FieldPriority
}

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// Submission is what the dialog hands over on submit. ID is empty in
// create mode.
type Submission struct {
	ID   string
	Form model.TaskForm
}

type Controller struct {
	open   bool
	mode   Mode
	target string
	buf    model.TaskForm
}

// Open shows the dialog for task, or for a new task when task is nil. The
// buffer is seeded only when the target differs from the one already open.
func (c *Controller) Open(task *model.Task) {
	mode, target := ModeCreate, ""
	if task != nil {
		mode, target = ModeEdit, task.ID
	}
	if c.open && c.mode == mode && c.target == target {
		return
	}
	c.open, c.mode, c.target = true, mode, target
	if task != nil {
		c.buf = model.FormFromTask(*task)
	} else {
		c.buf = model.BlankForm()
	}
}

func (c *Controller) Close() {
	c.open = false
	c.target = ""
	c.buf = model.TaskForm{}
}

func (c *Controller) IsOpen() bool     { return c.open }
func (c *Controller) Mode() Mode       { return c.mode }
func (c *Controller) TargetID() string { return c.target }

func (c *Controller) Buffer() model.TaskForm { return c.buf }

func (c *Controller) Get(f Field) string {
	switch f {
	case FieldTitle:
		return c.buf.Title
	case FieldDescription:
		return c.buf.Description
	case FieldStatus:
		return string(c.buf.Status)
	case FieldPriority:
		return string(c.buf.Priority)
	case FieldDueDate:
		return c.buf.DueDate
	default:
		return ""
	}
}

// Set stores value verbatim; validation happens when the form is sent.
func (c *Controller) Set(f Field, value string) error {
	if !c.open {
		return ErrClosed
	}
	switch f {
	case FieldTitle:
		c.buf.Title = value
	case FieldDescription:
		c.buf.Description = value
	case FieldStatus:
		c.buf.Status = model.Status(value)
	case FieldPriority:
		c.buf.Priority = model.Priority(value)
	case FieldDueDate:
		c.buf.DueDate = value
	default:
		return fmt.Errorf("form: unknown field %d", int(f))
	}
	return nil
}

// Cycle steps an enum field by delta through its values, wrapping around.
func (c *Controller) Cycle(f Field, delta int) error {
	if !c.open {
		return ErrClosed
	}
	switch f {
	case FieldStatus:
		c.buf.Status = step(model.Statuses, c.buf.Status, delta)
	case FieldPriority:
		c.buf.Priority = step(model.Priorities, c.buf.Priority, delta)
	default:
		return fmt.Errorf("form: %s is not a choice field", f.Label())
	}
	return nil
}

func step[T comparable](values []T, cur T, delta int) T {
	idx := 0
	for i, v := range values {
		if v == cur {
			idx = i
			break
		}
	}
	n := len(values)
	return values[((idx+delta)%n+n)%n]
}

// Submit returns the buffer as it stands. The dialog stays open so a failed
// save can be corrected; the caller closes it on success.
func (c *Controller) Submit() (Submission, error) {
	if !c.open {
		return Submission{}, ErrClosed
	}
	return Submission{ID: c.target, Form: c.buf}, nil
}
