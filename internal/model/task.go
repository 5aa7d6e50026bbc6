package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidStatus   = errors.New("model: invalid task status")
	ErrInvalidPriority = errors.New("model: invalid task priority")
	ErrInvalidDueDate  = errors.New("model: invalid due date")
)

// DateLayout is the wire and form layout of a due date.
const DateLayout = "2006-01-02"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists the statuses in the order the dashboard cycles through them.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case "":
		return "All"
	default:
		return string(s)
	}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

func (p Priority) Label() string {
	if p == "" {
		return "All"
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type taskWire struct {
	ID          string   `json:"id"`
	MongoID     string   `json:"_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	DueDate     string   `json:"dueDate"`
	CreatedAt   string   `json:"createdAt"`
}

// UnmarshalJSON accepts both "id" and "_id" and lenient date strings.
func (t *Task) UnmarshalJSON(data []byte) error {
	var w taskWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	out := Task{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Status:      w.Status,
		Priority:    w.Priority,
	}
	if out.ID == "" {
		out.ID = w.MongoID
	}
	due, err := ParseTime(w.DueDate)
	if err != nil {
		return fmt.Errorf("task %s dueDate: %w", out.ID, err)
	}
	out.DueDate = due
	created, err := ParseTime(w.CreatedAt)
	if err != nil {
		return fmt.Errorf("task %s createdAt: %w", out.ID, err)
	}
	if created != nil {
		out.CreatedAt = *created
	}
	*t = out
	return nil
}

// DueLabel renders the due date the way the dashboard shows it, or "".
func (t Task) DueLabel() string {
	if t.DueDate == nil {
		return ""
	}
	return t.DueDate.UTC().Format(DateLayout)
}

func (t Task) Completed() bool {
	return t.Status == StatusCompleted
}

// ParseTime reads RFC3339 timestamps (fractional seconds optional) and bare
// dates. An empty string yields nil.
func ParseTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, DateLayout} {
		if tm, err := time.Parse(layout, raw); err == nil {
			return &tm, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidDueDate, raw)
}
