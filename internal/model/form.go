package model

import (
	"strings"
	"time"
)

// TaskForm is the payload of POST /tasks and PUT /tasks/:id.
type TaskForm struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	DueDate     string   `json:"dueDate"`
}

// ValidationError reports a form field rejected before it reaches the server.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return "model: " + e.Field + " " + e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BlankForm is the create-mode default.
func BlankForm() TaskForm {
	return TaskForm{Status: StatusPending, Priority: PriorityMedium}
}

func FormFromTask(t Task) TaskForm {
	f := TaskForm{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueLabel(),
	}
	if f.Status == "" {
		f.Status = StatusPending
	}
	if f.Priority == "" {
		f.Priority = PriorityMedium
	}
	return f
}

func (f TaskForm) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	if !f.Status.IsValid() {
		return &ValidationError{Field: "status", Reason: "must be pending, in-progress or completed", Err: ErrInvalidStatus}
	}
	if f.Priority != "" && !f.Priority.IsValid() {
		return &ValidationError{Field: "priority", Reason: "must be low, medium or high", Err: ErrInvalidPriority}
	}
	if d := strings.TrimSpace(f.DueDate); d != "" {
		if _, err := time.Parse(DateLayout, d); err != nil {
			return &ValidationError{Field: "dueDate", Reason: "must be YYYY-MM-DD", Err: ErrInvalidDueDate}
		}
	}
	return nil
}
